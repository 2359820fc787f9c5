package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentStartStep
	IntentEndStep
	IntentStatus
	IntentListSteps
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentStartStep:
		return "start_step"
	case IntentEndStep:
		return "end_step"
	case IntentStatus:
		return "status"
	case IntentListSteps:
		return "list_steps"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type      IntentType
	StepIndex int    // 0-based, only meaningful for start/end
	Payload   string // raw input for unknown intents
}
