package domain

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/tillware/posd/internal/validation"
)

// PaymentMethod identifies how the customer paid.
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodCredit        PaymentMethod = "CREDIT"
	PaymentMethodCard          PaymentMethod = "CARD"
	PaymentMethodMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	PaymentMethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque        PaymentMethod = "CHEQUE"
	PaymentMethodStoreCredit   PaymentMethod = "STORE_CREDIT"
	PaymentMethodGiftCard      PaymentMethod = "GIFT_CARD"
	PaymentMethodLoyaltyPoints PaymentMethod = "LOYALTY_POINTS"
	PaymentMethodOnAccount     PaymentMethod = "ON_ACCOUNT"
	PaymentMethodMpesa         PaymentMethod = "MPESA"
	PaymentMethodOther         PaymentMethod = "OTHER"
)

// PaymentStatus identifies the settlement state at capture time.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusPartially PaymentStatus = "PARTIALLY_PAID"
)

// paymentMethods lists every accepted payment method value.
var paymentMethods = []string{
	string(PaymentMethodCash),
	string(PaymentMethodCredit),
	string(PaymentMethodCard),
	string(PaymentMethodMobilePayment),
	string(PaymentMethodBankTransfer),
	string(PaymentMethodCheque),
	string(PaymentMethodStoreCredit),
	string(PaymentMethodGiftCard),
	string(PaymentMethodLoyaltyPoints),
	string(PaymentMethodOnAccount),
	string(PaymentMethodMpesa),
	string(PaymentMethodOther),
}

// paymentStatuses lists every accepted payment status value.
var paymentStatuses = []string{
	string(PaymentStatusPending),
	string(PaymentStatusCompleted),
	string(PaymentStatusPartially),
}

// CartLine is a single sold item in the sale payload.
type CartLine struct {
	ProductID     string  `json:"productId"`
	VariantID     string  `json:"variantId"`
	SellingUnitID string  `json:"sellingUnitId"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
}

// Validate checks a single cart line.
func (l CartLine) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ProductID, validation.Required),
		validation.Field(&l.VariantID, validation.Required),
		validation.Field(&l.SellingUnitID, validation.Required),
		validation.Field(&l.Quantity, validation.Required, validation.Min(1)),
	)
}

// SalePayload is the sale submission body. It is immutable after enqueue and
// serialized verbatim on every submission attempt.
type SalePayload struct {
	CartItems         []CartLine    `json:"cartItems"`
	LocationID        string        `json:"locationId"`
	SaleNumber        *string       `json:"saleNumber,omitempty"`
	IsWholesale       bool          `json:"isWholesale"`
	CustomerID        *string       `json:"customerId,omitempty"`
	BusinessAccountID *string       `json:"businessAccountId,omitempty"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	AmountReceived    *float64      `json:"amountReceived,omitempty"`
	Change            *float64      `json:"change,omitempty"`
	MpesaPhoneNumber  string        `json:"mpesaPhoneNumber,omitempty"`
	TaxIDs            []string      `json:"taxIds,omitempty"`
	SaleDate          *time.Time    `json:"saleDate,omitempty"`
}

// Validate checks the sale payload. The rules mirror what the checkout form
// enforces, so a payload that fails here indicates a terminal-side bug rather
// than operator error.
func (p SalePayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.CartItems, validation.Required, validation.Length(1, 0)),
		validation.Field(&p.LocationID, validation.Required),
		validation.Field(&p.PaymentMethod,
			validation.Required,
			validation.By(func(value interface{}) error {
				return customValidation.OneOf{Choices: paymentMethods}.Validate(string(p.PaymentMethod))
			}),
		),
		validation.Field(&p.PaymentStatus,
			validation.Required,
			validation.By(func(value interface{}) error {
				return customValidation.OneOf{Choices: paymentStatuses}.Validate(string(p.PaymentStatus))
			}),
		),
		validation.Field(&p.MpesaPhoneNumber, customValidation.MpesaPhone{}),
	)
	if err != nil {
		return err
	}

	for _, line := range p.CartItems {
		if err := line.Validate(); err != nil {
			return err
		}
	}

	// M-Pesa pushes need a destination phone and an amount to charge.
	if p.PaymentMethod == PaymentMethodMpesa {
		if p.MpesaPhoneNumber == "" {
			return validation.NewError("validation_mpesa_phone", "phone number is required for M-Pesa payments")
		}
		if p.AmountReceived == nil || *p.AmountReceived <= 0 {
			return validation.NewError("validation_amount_received", "amount to charge is required for M-Pesa payments")
		}
	}

	// Completed cash payments must record tendered amount and change.
	if p.PaymentMethod == PaymentMethodCash && p.PaymentStatus == PaymentStatusCompleted {
		if p.AmountReceived == nil || p.Change == nil {
			return validation.NewError(
				"validation_amount_received",
				"both amount received and change must be provided for cash payments",
			)
		}
	}

	return nil
}
