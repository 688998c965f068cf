package services

import (
	"errors"
	"fmt"
)

// Taxonomy of failures raised by the service layer. Each sentinel maps to
// exactly one HTTP status at the transport boundary; services raise them
// at the point of detection and never translate them on the way up.
var (
	// ErrValidation marks malformed or missing input. No side effects
	// have been performed when it is raised.
	ErrValidation = errors.New("invalid input")

	// ErrConflict marks a duplicate where uniqueness is required, such
	// as registering an email twice.
	ErrConflict = errors.New("conflict")

	// ErrForbidden marks a request from a valid identity that does not
	// own the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials is raised only at the login boundary when
	// email/password verification fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// FanOutError reports that a tracked mutation committed but the
// notification batch could not be persisted. The mutation is NOT rolled
// back; the error carries enough context for operators to reconcile the
// missed recipients.
type FanOutError struct {
	ProductID  int64
	Recipients int
	Err        error
}

func (e *FanOutError) Error() string {
	return fmt.Sprintf("notification fan-out failed for product %d (%d recipients): %v",
		e.ProductID, e.Recipients, e.Err)
}

func (e *FanOutError) Unwrap() error { return e.Err }
