package types

import "fmt"

// ErrorCode identifies a class of formula error.
type ErrorCode string

// Error codes.
const (
	// F00xx: malformed expressions
	ErrBadExpression   ErrorCode = "F0001"
	ErrSyntax          ErrorCode = "F0002"
	ErrInvalidOperator ErrorCode = "F0003"

	// F01xx: arity
	ErrTooFewArguments  ErrorCode = "F0101"
	ErrTooManyArguments ErrorCode = "F0102"
	ErrRepeatingGroup   ErrorCode = "F0103"

	// F02xx: argument shape
	ErrExpectedReference ErrorCode = "F0201"
	ErrMetaArgument      ErrorCode = "F0202"

	// F03xx: registry
	ErrUnknownFunction ErrorCode = "F0301"
)

// Error is a compile-time formula error. MessageID and Data allow the
// message to be rendered again in another language; Message is the English
// rendering.
type Error struct {
	Code      ErrorCode
	Message   string
	MessageID string
	Data      map[string]any
	Position  int
	Err       error
}

// NewError creates a new formula error. A negative position means the error
// is not attached to a source location.
func NewError(code ErrorCode, message string, position int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Position: position,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// WithMessage records the catalogue id and template data of the message.
func (e *Error) WithMessage(id string, data map[string]any) *Error {
	e.MessageID = id
	e.Data = data
	return e
}
