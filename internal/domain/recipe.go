// Package domain defines the core types and interfaces for the coach.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Step is a single unit of recipe execution.
type Step struct {
	Index                  int // position in the recipe, also the execution order
	Description            string
	PlannedDurationSeconds int
}

// PlannedDuration returns the step's planned duration as a time.Duration.
func (s Step) PlannedDuration() time.Duration {
	return time.Duration(s.PlannedDurationSeconds) * time.Second
}

// StepInput is the shape the generation layer hands over before a Recipe exists.
type StepInput struct {
	Description     string
	DurationSeconds int
}

// Recipe is an ordered, immutable list of steps. A new generation replaces
// the whole value; nothing mutates it after NewRecipe returns.
type Recipe struct {
	Title     string
	Steps     []Step
	CreatedAt time.Time
}

// NewRecipe validates the inputs and builds a Recipe. Indices follow input order.
func NewRecipe(title string, inputs []StepInput) (*Recipe, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidRecipe)
	}

	steps := make([]Step, len(inputs))
	for i, in := range inputs {
		if in.DurationSeconds <= 0 {
			return nil, fmt.Errorf("%w: step %d has duration %ds", ErrInvalidRecipe, i+1, in.DurationSeconds)
		}
		desc := strings.TrimSpace(in.Description)
		if desc == "" {
			return nil, fmt.Errorf("%w: step %d has no description", ErrInvalidRecipe, i+1)
		}
		steps[i] = Step{
			Index:                  i,
			Description:            desc,
			PlannedDurationSeconds: in.DurationSeconds,
		}
	}

	return &Recipe{
		Title:     strings.TrimSpace(title),
		Steps:     steps,
		CreatedAt: time.Now(),
	}, nil
}

// Validate reports whether the recipe still satisfies the NewRecipe invariants.
// Useful for values built by hand in tests or fixtures.
func (r *Recipe) Validate() error {
	if r == nil || len(r.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidRecipe)
	}
	for i, s := range r.Steps {
		if s.Index != i {
			return fmt.Errorf("%w: step at position %d has index %d", ErrInvalidRecipe, i, s.Index)
		}
		if s.PlannedDurationSeconds <= 0 {
			return fmt.Errorf("%w: step %d has duration %ds", ErrInvalidRecipe, i+1, s.PlannedDurationSeconds)
		}
	}
	return nil
}

// TotalDuration sums the planned durations of all steps.
func (r *Recipe) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range r.Steps {
		total += s.PlannedDuration()
	}
	return total
}
