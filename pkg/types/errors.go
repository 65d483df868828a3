package types

import "github.com/cockroachdb/errors"

// Decoding and validation errors. All of them describe a fault in a
// single client message and never affect shared state.
var (
	ErrInvalidJSON   = errors.New("message is not a valid JSON object")
	ErrUnknownAction = errors.New("unknown action")
	ErrMissingField  = errors.New("required field missing")
	ErrInvalidRating = errors.New("rating must be an integer")
	ErrInvalidName   = errors.New("name must be 1-50 characters")
)
