package types

import "errors"

var (
	ErrMissingInput    = errors.New("missing input file")
	ErrMalformedRecord = errors.New("malformed record")
	ErrEmptyIteration  = errors.New("no samples for participant")
	ErrNotFound        = errors.New("record not found")
	ErrGridMismatch    = errors.New("series length does not match grid")
)
