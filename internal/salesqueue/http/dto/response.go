// Package dto provides data transfer objects for the sale queue HTTP layer.
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillware/posd/internal/salesqueue/domain"
)

// SaleResponse represents the API response for a queued sale
type SaleResponse struct {
	ID         uuid.UUID          `json:"id"`
	Payload    domain.SalePayload `json:"payload"`
	Status     string             `json:"status"`
	RetryCount int                `json:"retry_count"`
	LastError  *string            `json:"last_error,omitempty"`
	SyncedAt   *time.Time         `json:"synced_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// SaleListResponse represents a paginated list of queued sales
type SaleListResponse struct {
	Sales  []SaleResponse `json:"sales"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

// CountsResponse represents queue depth per status
type CountsResponse struct {
	Queued   int `json:"queued"`
	Syncing  int `json:"syncing"`
	Synced   int `json:"synced"`
	Failed   int `json:"failed"`
	Rejected int `json:"rejected"`
}

// SyncResultResponse represents the outcome of an on-demand queue drain
type SyncResultResponse struct {
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
	Counts CountsResponse `json:"counts"`
}
