// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"

	validation "github.com/jellydator/validation"

	apperrors "github.com/tillware/posd/internal/errors"
)

var (
	// mpesaPhoneRegex matches Kenyan mobile numbers in local or international form.
	mpesaPhoneRegex = regexp.MustCompile(`^(?:254|\+254|0)?(7(?:(?:[129][0-9])|(?:0[0-8])|(?:4[0-1]))[0-9]{6})$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// MpesaPhone validates a phone number acceptable for an M-Pesa charge push.
type MpesaPhone struct{}

// Validate checks the value is a well-formed Kenyan mobile number.
func (MpesaPhone) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_mpesa_phone", "phone number must be a string")
	}

	if s == "" {
		// Presence is enforced separately when the payment method requires it.
		return nil
	}

	if !mpesaPhoneRegex.MatchString(s) {
		return validation.NewError("validation_mpesa_phone", "invalid M-Pesa phone number")
	}

	return nil
}

// OneOf validates that a string value is one of the allowed choices.
type OneOf struct {
	Choices []string
}

// Validate checks the value against the configured choices.
func (r OneOf) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_one_of", "value must be a string")
	}

	for _, choice := range r.Choices {
		if s == choice {
			return nil
		}
	}

	return validation.NewError("validation_one_of", "value must be one of the allowed choices")
}

// CopiesRange validates a print copies count against the configured ceiling.
type CopiesRange struct {
	Max int
}

// Validate checks the value is between 1 and Max inclusive.
func (r CopiesRange) Validate(value interface{}) error {
	n, ok := value.(int)
	if !ok {
		return validation.NewError("validation_copies_range", "copies must be an integer")
	}

	if n < 1 || n > r.Max {
		return validation.NewError("validation_copies_range", "copies out of range")
	}

	return nil
}
