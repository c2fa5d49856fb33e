package gpu

import "errors"

var (
	// ErrUnknownHandle indicates a call referenced a handle the context
	// never created or already destroyed.
	ErrUnknownHandle = errors.New("gpu: unknown handle")
	// ErrOutOfRange indicates a sub-range write fell outside the target
	// buffer's allocated size.
	ErrOutOfRange = errors.New("gpu: write out of range")
)
