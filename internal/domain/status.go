package domain

// StepStatus tracks the state of a single step within a run.
type StepStatus int

const (
	StepNotStarted StepStatus = iota
	StepRunning
	StepCompleted // terminal for a run
)

// String returns a human-readable step status.
func (s StepStatus) String() string {
	switch s {
	case StepNotStarted:
		return "not_started"
	case StepRunning:
		return "running"
	case StepCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// TimerState is a countdown owned by the timer registry.
type TimerState struct {
	StepIndex        int
	RemainingSeconds int
	Running          bool
	// Generation identifies the Start call that created this timer.
	// It increases monotonically across the registry.
	Generation uint64
}

// Completion is emitted once when a countdown reaches zero.
type Completion struct {
	StepIndex  int
	Generation uint64
}

// StepView is what the presentation layer renders for one step.
type StepView struct {
	Step             Step
	Status           StepStatus
	RemainingSeconds int
	HasRemaining     bool // false when the step never had a timer
}
