package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrInvalidBoundary    = errors.New("invalid boundary")
	ErrArityMismatch      = errors.New("arity mismatch")
	ErrMissingInput       = errors.New("missing input")
	ErrInvalidDomain      = errors.New("invalid domain range")
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrInvalidOperator    = errors.New("invalid operator")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrUnknownLayer       = errors.New("unknown layer")
	ErrNotFound           = errors.New("not found")
	ErrStoreUnavailable   = errors.New("store unavailable")
)
