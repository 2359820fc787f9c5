// Package storage holds in-memory state for the current recipe run.
package storage

import (
	"fmt"
	"sync"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// StatusStore is the authoritative per-step status for one run. Safe for
// concurrent access. Transitions only move forward:
// NotStarted -> Running -> Completed, or NotStarted -> Completed directly.
type StatusStore struct {
	mu       sync.RWMutex
	statuses []domain.StepStatus
	log      *logger.Logger
}

// NewStatusStore creates an empty store. Call Reset before use.
func NewStatusStore(log *logger.Logger) *StatusStore {
	return &StatusStore{log: log}
}

// Reset discards all state and tracks n steps, all NotStarted.
func (s *StatusStore) Reset(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses = make([]domain.StepStatus, n)
	s.log.Debug("status store reset to %d step(s)", n)
}

// MarkRunning moves a step from NotStarted to Running. Already running is a
// no-op. A completed step cannot run again; ErrStepCompleted is returned and
// nothing changes.
func (s *StatusStore) MarkRunning(stepIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(stepIndex); err != nil {
		return err
	}

	switch s.statuses[stepIndex] {
	case domain.StepCompleted:
		return fmt.Errorf("step %d: %w", stepIndex, domain.ErrStepCompleted)
	case domain.StepRunning:
		return nil
	}
	s.statuses[stepIndex] = domain.StepRunning
	return nil
}

// MarkCompleted moves a step to Completed from either earlier state.
// Idempotent.
func (s *StatusStore) MarkCompleted(stepIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(stepIndex); err != nil {
		return err
	}
	s.statuses[stepIndex] = domain.StepCompleted
	return nil
}

// StatusOf returns the status of a step. Unknown indices read as NotStarted.
func (s *StatusStore) StatusOf(stepIndex int) domain.StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if stepIndex < 0 || stepIndex >= len(s.statuses) {
		return domain.StepNotStarted
	}
	return s.statuses[stepIndex]
}

// Len returns the number of tracked steps.
func (s *StatusStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statuses)
}

// AllCompleted reports whether every tracked step is Completed. An empty
// store is never complete.
func (s *StatusStore) AllCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.statuses) == 0 {
		return false
	}
	for _, st := range s.statuses {
		if st != domain.StepCompleted {
			return false
		}
	}
	return true
}

// Counts returns how many steps are in each status.
func (s *StatusStore) Counts() map[domain.StepStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[domain.StepStatus]int{
		domain.StepNotStarted: 0,
		domain.StepRunning:    0,
		domain.StepCompleted:  0,
	}
	for _, st := range s.statuses {
		out[st]++
	}
	return out
}

func (s *StatusStore) checkIndex(stepIndex int) error {
	if stepIndex < 0 || stepIndex >= len(s.statuses) {
		return fmt.Errorf("step %d of %d: %w", stepIndex, len(s.statuses), domain.ErrStepOutOfRange)
	}
	return nil
}
