// Package domain defines the print job entities and lifecycle rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobType identifies the role a printed document plays.
type JobType string

const (
	// JobTypeReceipt is the customer-facing till receipt.
	JobTypeReceipt JobType = "receipt"
	// JobTypeInvoice is the full-page invoice copy.
	JobTypeInvoice JobType = "invoice"
	// JobTypeKitchen is the kitchen/preparation ticket.
	JobTypeKitchen JobType = "kitchen"
)

// JobFormat identifies how the artifact is rendered.
type JobFormat string

const (
	// JobFormatThermal is raw line-printer markup sent directly to the device.
	JobFormatThermal JobFormat = "thermal"
	// JobFormatPDF is a page-based document spooled to disk and dispatched by path.
	JobFormatPDF JobFormat = "pdf"
)

// JobStatus represents the lifecycle state of a print job.
type JobStatus string

const (
	// JobStatusPending means the job is created but not yet dispatched.
	JobStatusPending JobStatus = "pending"
	// JobStatusPrinting means a dispatch to the device is in flight.
	JobStatusPrinting JobStatus = "printing"
	// JobStatusSuccess means every requested copy printed.
	JobStatusSuccess JobStatus = "success"
	// JobStatusFailed means the last dispatch failed; the job is awaiting an
	// automatic retry or an operator decision.
	JobStatusFailed JobStatus = "failed"
	// JobStatusQueued means the operator deferred the job to the persisted
	// retry queue for a later drain.
	JobStatusQueued JobStatus = "queued"
	// JobStatusAbandoned means the operator skipped the job. Terminal: it
	// stays visible in history but is never dispatched again.
	JobStatusAbandoned JobStatus = "abandoned"
)

// CanTransitionTo reports whether a status change is legal. The failed state
// fans out to the three operator escalation choices: retry, queue, skip.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusPrinting
	case JobStatusPrinting:
		return next == JobStatusSuccess || next == JobStatusFailed
	case JobStatusFailed:
		return next == JobStatusPrinting || next == JobStatusQueued || next == JobStatusAbandoned
	case JobStatusQueued:
		return next == JobStatusPrinting
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the print lifecycle.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSuccess || s == JobStatusAbandoned
}

// PrintJob represents one attempt to put an order on paper. The artifact is
// rendered once at submit time and reused verbatim on every retry.
type PrintJob struct {
	ID          uuid.UUID
	OrderID     string
	OrderNumber string
	JobType     JobType
	Format      JobFormat
	Status      JobStatus
	RetryCount  int
	MaxRetries  int
	Error       *string
	DeviceID    string
	Artifact    string
	Copies      int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanRetry reports whether the automatic retry budget still has room.
func (j *PrintJob) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}
