// Package domain defines the durable sale queue entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SaleStatus represents the sync status of a queued sale.
type SaleStatus string

const (
	// SaleStatusQueued means the sale is captured locally and awaiting sync.
	SaleStatusQueued SaleStatus = "queued"
	// SaleStatusSyncing means a submission to the remote system is in flight.
	SaleStatusSyncing SaleStatus = "syncing"
	// SaleStatusSynced means the remote system has acknowledged the sale.
	SaleStatusSynced SaleStatus = "synced"
	// SaleStatusFailed means the last submission failed with a retryable error.
	SaleStatusFailed SaleStatus = "failed"
	// SaleStatusRejected means the remote system rejected the sale for a
	// business reason. Terminal: the sync engine will not retry it.
	SaleStatusRejected SaleStatus = "rejected"
)

// CanTransitionTo reports whether a status change is legal. Transitions are
// monotonic except failed -> syncing (retry) and syncing -> syncing: a
// submission interrupted by a crash or cancellation leaves the row in syncing,
// and a later drain re-claims it. The queue item id doubles as the
// idempotency token, so re-submitting is safe.
func (s SaleStatus) CanTransitionTo(next SaleStatus) bool {
	switch s {
	case SaleStatusQueued:
		return next == SaleStatusSyncing
	case SaleStatusSyncing:
		return next == SaleStatusSyncing || next == SaleStatusSynced ||
			next == SaleStatusFailed || next == SaleStatusRejected
	case SaleStatusFailed:
		return next == SaleStatusSyncing
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the sync lifecycle.
func (s SaleStatus) IsTerminal() bool {
	return s == SaleStatusSynced || s == SaleStatusRejected
}

// QueuedSale represents a sale captured by the terminal. The queue item id is
// the idempotency token for the remote submission, and the payload is
// immutable after enqueue.
type QueuedSale struct {
	ID         uuid.UUID
	Payload    SalePayload
	Status     SaleStatus
	RetryCount int
	LastError  *string
	SyncedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
