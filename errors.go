package physac

import "errors"

var (
	// ErrInvalidParameter reports a non-positive radius, density or side count,
	// or polygon vertices that are not convex and counter-clockwise.
	ErrInvalidParameter = errors.New("physac: invalid parameter")
	ErrPoolExhausted    = errors.New("physac: body pool exhausted")
	ErrNotFound         = errors.New("physac: body not found")
	// ErrNotInitialized is returned before Init and after Close.
	ErrNotInitialized = errors.New("physac: world not initialized")
	ErrAlreadyRunning = errors.New("physac: world already running")
)
