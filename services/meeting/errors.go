package meeting

import (
	"errors"
	"fmt"
)

// Error is a negotiation failure the caller can act on. Local state is
// never mutated on any of these paths.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	CodeNotAuthenticated  = "notAuthenticated"
	CodeNotAuthorized     = "notAuthorized"
	CodeInvalidTransition = "invalidTransition"
	CodeValidation        = "validation"
)

// ErrFetchInFlight rejects a duplicate concurrent availability fetch for
// the same meeting within one confirmation session.
var ErrFetchInFlight = &Error{
	Code:    CodeInvalidTransition,
	Message: "availability fetch already in progress",
}

func NewValidationError(msg string) error {
	return &Error{Code: CodeValidation, Message: msg}
}

func NewNotAuthorizedError(msg string) error {
	return &Error{Code: CodeNotAuthorized, Message: msg}
}

func NewNotAuthenticatedError(msg string) error {
	return &Error{Code: CodeNotAuthenticated, Message: msg}
}

func NewInvalidTransitionError(msg string) error {
	return &Error{Code: CodeInvalidTransition, Message: msg}
}

// HasCode reports whether err is a negotiation error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IsValidation(err error) bool        { return HasCode(err, CodeValidation) }
func IsNotAuthorized(err error) bool     { return HasCode(err, CodeNotAuthorized) }
func IsNotAuthenticated(err error) bool  { return HasCode(err, CodeNotAuthenticated) }
func IsInvalidTransition(err error) bool { return HasCode(err, CodeInvalidTransition) }
