package engine

import "github.com/google/uuid"

// newRunID returns a fresh identifier for one recipe run.
func newRunID() string {
	return uuid.NewString()
}
