package engine

import "errors"

// ErrInvalidInput is returned when a caller supplies out-of-domain numeric
// input (non-positive simulation count, negative monthly amount, an invalid
// goal). Wrapped errors carry the specifics; check with errors.Is.
var ErrInvalidInput = errors.New("invalid input")
