package calc

import "errors"

// ErrorResult is the only failure value Evaluate ever returns.
const ErrorResult = "Error"

var (
	// ErrEmpty is returned for an empty or whitespace-only expression
	ErrEmpty = errors.New("empty expression")
	// ErrSyntax covers malformed expressions
	ErrSyntax = errors.New("syntax error")
	// ErrUnknownSymbol covers disallowed characters and unrecognized identifiers
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrDomain is returned when a function argument is outside its domain
	ErrDomain = errors.New("domain error")
	// ErrNonFinite covers division by zero and overflow to infinity
	ErrNonFinite = errors.New("non-finite result")
)
