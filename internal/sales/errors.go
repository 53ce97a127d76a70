package sales

import "errors"

// Error kinds returned by the engine. Callers match them with errors.Is; the
// wrapped message carries the detail.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPersistence       = errors.New("persistence failure")
)
