package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidRecipe   = errors.New("invalid recipe")
	ErrStepOutOfRange  = errors.New("step index out of range")
	ErrStepCompleted   = errors.New("step already completed")
	ErrNoActiveRun     = errors.New("no recipe run in progress")
)
