package services

import (
	"errors"

	"github.com/dmitrijs2005/freightdesk/internal/client/api"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidQuote     = errors.New("invalid quote")
	ErrSuperseded       = errors.New("superseded by a newer check")
	ErrEmailInUse       = errors.New("email already in use")
	ErrPhoneInUse       = errors.New("phone number already in use")
	ErrDeleteSelf       = errors.New("you cannot delete your own account")

	// ErrForbidden is also returned without a request when a non-admin
	// calls an admin operation.
	ErrForbidden = api.ErrForbidden
)

// FieldError rejects one form field with a message for the user.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

var (
	emailInUse = &FieldError{Field: "email", Message: "This email is already in use by another user", Err: ErrEmailInUse}
	phoneInUse = &FieldError{Field: "phone_number", Message: "This phone number is already in use by another user", Err: ErrPhoneInUse}
)
