package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidVatRate is returned for a VAT rate of -100%, which would
	// divide by zero when deriving the net price from a gross price.
	ErrInvalidVatRate = errors.New("invalid vat rate")
	// ErrConsistency indicates more than one active cart exists for a single
	// identity. The API never produces this state on its own; if it is
	// detected the lookup fails instead of silently picking one cart.
	ErrConsistency = errors.New("consistency violation")
)
