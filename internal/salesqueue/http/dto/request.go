// Package dto provides data transfer objects for the sale queue HTTP layer.
package dto

import (
	"time"
)

// CartLineRequest represents a single cart line in an enqueue request
type CartLineRequest struct {
	ProductID     string  `json:"productId"`
	VariantID     string  `json:"variantId"`
	SellingUnitID string  `json:"sellingUnitId"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
}

// EnqueueSaleRequest represents the API request for capturing a sale.
// Field-level validation happens in the use case so the queue applies the
// same rules regardless of transport.
type EnqueueSaleRequest struct {
	CartItems         []CartLineRequest `json:"cartItems"`
	LocationID        string            `json:"locationId"`
	SaleNumber        *string           `json:"saleNumber,omitempty"`
	IsWholesale       bool              `json:"isWholesale"`
	CustomerID        *string           `json:"customerId,omitempty"`
	BusinessAccountID *string           `json:"businessAccountId,omitempty"`
	PaymentMethod     string            `json:"paymentMethod"`
	PaymentStatus     string            `json:"paymentStatus"`
	AmountReceived    *float64          `json:"amountReceived,omitempty"`
	Change            *float64          `json:"change,omitempty"`
	MpesaPhoneNumber  string            `json:"mpesaPhoneNumber,omitempty"`
	TaxIDs            []string          `json:"taxIds,omitempty"`
	SaleDate          *time.Time        `json:"saleDate,omitempty"`
}
