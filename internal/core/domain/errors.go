package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed creation input.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateAddress is returned when the address is already registered.
	ErrDuplicateAddress = errors.New("duplicate address")

	// ErrNotFound is returned when an operation references an unknown account id.
	ErrNotFound = errors.New("account not found")

	// ErrImmutableField is returned when an update would change the address.
	ErrImmutableField = errors.New("cannot change the address of an existing account")

	// ErrUnsupportedOperation is returned for every update of a watch-only account.
	ErrUnsupportedOperation = errors.New("operation not supported for watch-only accounts")

	// ErrUnsupportedSigning is returned for every signing attempt.
	ErrUnsupportedSigning = errors.New("watch-only accounts cannot sign")

	// ErrFormat is returned when a persisted snapshot is malformed.
	ErrFormat = errors.New("malformed snapshot")
)

// Display reasons shared by the validator and the registry.
const (
	ReasonAddressRequired  = "address required"
	ReasonAddressInvalid   = "Address Invalidate"
	ReasonAddressDuplicate = "Address Duplicate"
	ReasonNameDuplicate    = "Account name already exists"
	ReasonLabelRequired    = "label required"
)

// ValidationError carries a reason suitable for direct display next to the
// offending input field.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind(), e.Reason)
}

// Unwrap lets errors.Is match ErrDuplicateAddress or ErrValidation.
func (e *ValidationError) Unwrap() error {
	return e.kind()
}

func (e *ValidationError) kind() error {
	if e.Reason == ReasonAddressDuplicate {
		return ErrDuplicateAddress
	}
	return ErrValidation
}

// SigningError rejects a signing attempt. AccountID is empty when the caller
// bypassed the request path and invoked a signing primitive directly.
type SigningError struct {
	AccountID string
	Method    string
}

func (e *SigningError) Error() string {
	if e.AccountID == "" {
		return fmt.Sprintf("watch only accounts cannot %s", e.Method)
	}
	if e.Method == "" {
		return fmt.Sprintf("watch only account %s cannot sign transactions or messages", e.AccountID)
	}
	return fmt.Sprintf("watch only account %s cannot sign transactions or messages (%s)", e.AccountID, e.Method)
}

func (e *SigningError) Unwrap() error {
	return ErrUnsupportedSigning
}

// UnsupportedMessage is shown for every signing or update rejection.
const UnsupportedMessage = "not supported for watch-only accounts"

// UserMessage maps an error to the text shown to the person filling the form.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Reason
	case errors.Is(err, ErrUnsupportedSigning),
		errors.Is(err, ErrUnsupportedOperation),
		errors.Is(err, ErrImmutableField):
		return UnsupportedMessage
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	default:
		return err.Error()
	}
}
