// Package dto provides data transfer objects for the printing HTTP layer.
package dto

import (
	"time"
)

// OrderLineRequest represents a single order line in a print request
type OrderLineRequest struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// OrderRequest represents the order snapshot to render
type OrderRequest struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	Lines         []OrderLineRequest `json:"lines"`
	Subtotal      float64            `json:"subtotal"`
	Tax           float64            `json:"tax"`
	Total         float64            `json:"total"`
	PaymentMethod string             `json:"paymentMethod"`
	AmountPaid    float64            `json:"amountPaid"`
	Change        float64            `json:"change"`
	CustomerName  string             `json:"customerName,omitempty"`
	CreatedAt     *time.Time         `json:"createdAt,omitempty"`
}

// SubmitPrintRequest represents the API request for printing an order.
// Field-level validation happens in the use case so the pipeline applies the
// same rules regardless of transport.
type SubmitPrintRequest struct {
	Order   OrderRequest `json:"order"`
	JobType string       `json:"jobType"`
	Format  string       `json:"format,omitempty"`
	Copies  int          `json:"copies,omitempty"`
}

// ResolvePrintRequest carries the operator's decision for a failed job
type ResolvePrintRequest struct {
	Choice string `json:"choice"`
}
