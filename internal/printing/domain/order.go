package domain

import (
	"time"

	validation "github.com/jellydator/validation"
)

// OrderLine is a single sold item as it appears on a printed document.
type OrderLine struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Total       float64 `json:"total"`
}

// Validate checks a single order line.
func (l OrderLine) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Description, validation.Required),
		validation.Field(&l.Quantity, validation.Required, validation.Min(1)),
	)
}

// Order carries everything the renderer needs to produce a printable
// document. It is a snapshot of a committed sale, not a live entity: the
// print pipeline never mutates it.
type Order struct {
	ID            string      `json:"id"`
	Number        string      `json:"number"`
	Lines         []OrderLine `json:"lines"`
	Subtotal      float64     `json:"subtotal"`
	Tax           float64     `json:"tax"`
	Total         float64     `json:"total"`
	PaymentMethod string      `json:"paymentMethod"`
	AmountPaid    float64     `json:"amountPaid"`
	Change        float64     `json:"change"`
	CustomerName  string      `json:"customerName,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Validate checks the order snapshot before rendering.
func (o Order) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.ID, validation.Required),
		validation.Field(&o.Number, validation.Required),
		validation.Field(&o.Lines, validation.Required, validation.Length(1, 0)),
	)
	if err != nil {
		return err
	}

	for _, line := range o.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}

	return nil
}
