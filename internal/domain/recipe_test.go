package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewRecipe(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []StepInput
		wantErr bool
	}{
		{"valid", []StepInput{{"Chop vegetables", 300}, {"Boil water", 60}}, false},
		{"no steps", nil, true},
		{"zero duration", []StepInput{{"Chop", 0}}, true},
		{"negative duration", []StepInput{{"Chop", 10}, {"Boil", -1}}, true},
		{"blank description", []StepInput{{"   ", 10}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRecipe(" Pasta ", tt.inputs)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRecipe) {
					t.Fatalf("expected ErrInvalidRecipe, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Title != "Pasta" {
				t.Fatalf("expected trimmed title, got %q", r.Title)
			}
			for i, s := range r.Steps {
				if s.Index != i {
					t.Fatalf("step %d has index %d", i, s.Index)
				}
			}
			if got := r.TotalDuration(); got != 6*time.Minute {
				t.Fatalf("expected 6m total, got %s", got)
			}
		})
	}
}

func TestRecipeValidate(t *testing.T) {
	var nilRecipe *Recipe
	if err := nilRecipe.Validate(); !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("nil recipe: expected ErrInvalidRecipe, got %v", err)
	}

	shuffled := &Recipe{Steps: []Step{{Index: 1, Description: "a", PlannedDurationSeconds: 5}}}
	if err := shuffled.Validate(); !errors.Is(err, ErrInvalidRecipe) {
		t.Fatalf("bad index: expected ErrInvalidRecipe, got %v", err)
	}

	ok := &Recipe{Steps: []Step{{Index: 0, Description: "a", PlannedDurationSeconds: 5}}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStepStatusString(t *testing.T) {
	want := map[StepStatus]string{
		StepNotStarted: "not_started",
		StepRunning:    "running",
		StepCompleted:  "completed",
	}
	for s, name := range want {
		if s.String() != name {
			t.Errorf("%d: expected %q, got %q", s, name, s.String())
		}
	}
}
