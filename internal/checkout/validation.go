package checkout

import (
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const DefaultMinPhoneLength = 10

const (
	FieldFirstName        = "firstName"
	FieldLastName         = "lastName"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldAddress          = "address"
	FieldCountry          = "country"
	FieldState            = "state"
	FieldDeliveryLocation = "deliveryLocation"
	FieldCity             = "city"
)

// FieldOrder is the order fields appear on the form. The first failing
// field in this order is the one the client scrolls to.
var FieldOrder = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldAddress,
	FieldCountry,
	FieldState,
	FieldDeliveryLocation,
	FieldCity,
}

type FieldErrors map[string]string

func (fe FieldErrors) First() string {
	for _, field := range FieldOrder {
		if _, ok := fe[field]; ok {
			return field
		}
	}
	return ""
}

type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %d field(s), first %s", ErrInvalidForm, len(e.Fields), e.Fields.First())
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidForm
}

// Validate checks the required-field contract. It has no side effects; an
// empty map means the form may proceed to payment.
func Validate(form Form, minPhoneLength int) FieldErrors {
	if minPhoneLength <= 0 {
		minPhoneLength = DefaultMinPhoneLength
	}
	errs := FieldErrors{}
	required := func(field, value, message string) {
		if strings.TrimSpace(value) == "" {
			errs[field] = message
		}
	}

	required(FieldFirstName, form.FirstName, "First name is required")
	required(FieldLastName, form.LastName, "Last name is required")
	if email := strings.TrimSpace(form.Email); email == "" || !strings.Contains(email, "@") {
		errs[FieldEmail] = "Enter a valid email address"
	}
	if len(strings.TrimSpace(form.Phone)) < minPhoneLength {
		errs[FieldPhone] = fmt.Sprintf("Phone number must be at least %d digits", minPhoneLength)
	}
	required(FieldAddress, form.Address, "Street address is required")
	required(FieldCountry, form.Country, "Country is required")
	required(FieldState, form.State, "State is required")
	required(FieldDeliveryLocation, form.DeliveryLocation, "Select a delivery location")
	if form.DeliveryLocation == domain.CustomDeliveryValue {
		required(FieldCity, form.City, "City is required for custom delivery")
	}
	return errs
}
