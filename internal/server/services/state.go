package services

// State is a step of the submission lifecycle.
type State string

const (
	StateReceived            State = "RECEIVED"
	StateValidating          State = "VALIDATING"
	StateBlockedShortCircuit State = "BLOCKED_SHORT_CIRCUIT"
	StateRejected            State = "REJECTED"
	StateValidated           State = "VALIDATED"
	StateStoringPhoto        State = "STORING_PHOTO"
	StatePersisting          State = "PERSISTING"
	StateCompleted           State = "COMPLETED"
	StateFailed              State = "FAILED"
)

var transitions = map[State][]State{
	StateReceived:     {StateValidating},
	StateValidating:   {StateBlockedShortCircuit, StateRejected, StateValidated, StateFailed},
	StateValidated:    {StateStoringPhoto, StateFailed},
	StateStoringPhoto: {StatePersisting, StateFailed},
	StatePersisting:   {StateCompleted, StateFailed},
}

// CanTransition reports whether the lifecycle allows moving from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the lifecycle.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
