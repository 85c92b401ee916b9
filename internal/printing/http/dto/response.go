// Package dto provides data transfer objects for the printing HTTP layer.
package dto

import (
	"time"

	"github.com/google/uuid"
)

// PrintJobResponse represents the API response for a print job
type PrintJobResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	JobType     string    `json:"job_type"`
	Format      string    `json:"format"`
	Status      string    `json:"status"`
	RetryCount  int       `json:"retry_count"`
	MaxRetries  int       `json:"max_retries"`
	Error       *string   `json:"error,omitempty"`
	DeviceID    string    `json:"device_id"`
	Copies      int       `json:"copies"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PrintJobListResponse represents a list of print jobs
type PrintJobListResponse struct {
	Jobs []PrintJobResponse `json:"jobs"`
}

// DrainResultResponse represents the outcome of a retry queue drain
type DrainResultResponse struct {
	Printed int `json:"printed"`
	Failed  int `json:"failed"`
}

// AssignmentsResponse represents the role-to-device mapping
type AssignmentsResponse struct {
	Assignments map[string]string `json:"assignments"`
}
