package fractal

import "errors"

// Sentinel errors returned by the engine.
var (
	// ErrClosed is returned by Render after Close.
	ErrClosed = errors.New("engine closed")

	// ErrInvalidPoolSize is returned by New for fewer than one worker.
	ErrInvalidPoolSize = errors.New("invalid worker pool size")

	// ErrInvalidParams is returned when render parameters fail validation.
	ErrInvalidParams = errors.New("invalid render parameters")

	// ErrInvalidBuffer is returned when the destination buffer is unusable.
	ErrInvalidBuffer = errors.New("invalid destination buffer")
)
