// Package xdr implements RFC 4506 XDR encoding: the core bounded type
// library (opaque, string, array, vector, optional, union) and the
// archive framework (encode, decode, size, clear, print, compare, depth
// check, generate) that operations on those types are built from.
package xdr

import "fmt"

// ErrorCode identifies the kind of XDR codec failure that occurred.
type ErrorCode int

const (
	// ErrOverflow indicates a bounded value (array, vector, string,
	// opaque) was given more elements/bytes than its bound allows.
	ErrOverflow ErrorCode = iota + 1

	// ErrBadMessageSize indicates a decoded length field describes more
	// data than remains in the input, or is not a multiple of 4 where
	// required.
	ErrBadMessageSize

	// ErrBadDiscriminant indicates a union discriminant value has no
	// matching arm and the union has no default arm.
	ErrBadDiscriminant

	// ErrShouldBeZero indicates padding bytes, or an XDR boolean's upper
	// bits, were non-zero on the wire.
	ErrShouldBeZero

	// ErrInvariantFailed indicates a value broke a type invariant: a
	// user-declared validator rejected it on marshal or unmarshal, or a
	// fixed-length array or opaque held the wrong number of elements.
	ErrInvariantFailed

	// ErrWrongUnion indicates a caller accessed a union arm that is not
	// the arm currently selected by the discriminant. This is a
	// programmer error, not a wire fault.
	ErrWrongUnion

	// ErrDepthExceeded indicates a recursive type nested deeper than the
	// depth checker's configured limit, guarding against unbounded
	// stack growth while decoding attacker-controlled input.
	ErrDepthExceeded
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrOverflow:
		return "Overflow"
	case ErrBadMessageSize:
		return "BadMessageSize"
	case ErrBadDiscriminant:
		return "BadDiscriminant"
	case ErrShouldBeZero:
		return "ShouldBeZero"
	case ErrInvariantFailed:
		return "InvariantFailed"
	case ErrWrongUnion:
		return "WrongUnion"
	case ErrDepthExceeded:
		return "DepthExceeded"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// CodecError is the error type for every codec-level XDR failure.
type CodecError struct {
	Code    ErrorCode
	Message string
	Field   string // name of the archived field, if known
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewOverflowError creates an Overflow error for a bound violation.
func NewOverflowError(field string, got, bound uint32) *CodecError {
	return &CodecError{
		Code:    ErrOverflow,
		Message: fmt.Sprintf("length %d exceeds bound %d", got, bound),
		Field:   field,
	}
}

// NewBadMessageSizeError creates a BadMessageSize error.
func NewBadMessageSizeError(field, reason string) *CodecError {
	return &CodecError{
		Code:    ErrBadMessageSize,
		Message: reason,
		Field:   field,
	}
}

// NewBadDiscriminantError creates a BadDiscriminant error.
func NewBadDiscriminantError(field string, disc int32) *CodecError {
	return &CodecError{
		Code:    ErrBadDiscriminant,
		Message: fmt.Sprintf("discriminant %d has no matching arm", disc),
		Field:   field,
	}
}

// NewShouldBeZeroError creates a ShouldBeZero error.
func NewShouldBeZeroError(field string) *CodecError {
	return &CodecError{
		Code:    ErrShouldBeZero,
		Message: "padding or reserved bits were non-zero",
		Field:   field,
	}
}

// NewInvariantFailedError creates an InvariantFailed error.
func NewInvariantFailedError(field, reason string) *CodecError {
	return &CodecError{
		Code:    ErrInvariantFailed,
		Message: reason,
		Field:   field,
	}
}

// NewWrongUnionError creates a WrongUnion error.
func NewWrongUnionError(field string, want, got int32) *CodecError {
	return &CodecError{
		Code:    ErrWrongUnion,
		Message: fmt.Sprintf("arm for discriminant %d accessed, but active arm is %d", want, got),
		Field:   field,
	}
}

// NewDepthExceededError creates a DepthExceeded error.
func NewDepthExceededError(field string, limit int) *CodecError {
	return &CodecError{
		Code:    ErrDepthExceeded,
		Message: fmt.Sprintf("nesting exceeds limit %d", limit),
		Field:   field,
	}
}

// IsOverflowError returns true if err is an Overflow CodecError.
func IsOverflowError(err error) bool {
	ce, ok := err.(*CodecError)
	return ok && ce.Code == ErrOverflow
}

// IsInvariantFailedError returns true if err is an InvariantFailed CodecError.
func IsInvariantFailedError(err error) bool {
	ce, ok := err.(*CodecError)
	return ok && ce.Code == ErrInvariantFailed
}

// IsWrongUnionError returns true if err is a WrongUnion CodecError.
func IsWrongUnionError(err error) bool {
	ce, ok := err.(*CodecError)
	return ok && ce.Code == ErrWrongUnion
}
