// Package counterfactual provides the core domain model for the
// counterfactual image generation runtime.
package counterfactual

// State represents a stage in the plan/edit/critique loop.
// States are identified by stable strings, not behavioral definitions.
type State string

// Canonical workflow states.
const (
	StatePlanning   State = "planning"   // Propose an edit plan
	StateSegmenting State = "segmenting" // Localize the target object (masked variant only)
	StateEditing    State = "editing"    // Apply the edit
	StateCritiquing State = "critiquing" // Judge realism and minimality
	StateDone       State = "done"       // Terminal: accepted or budget exhausted
	StateFailed     State = "failed"     // Terminal: unrecoverable error
)

// IsTerminal returns true if this is a terminal state (done or failed).
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// IsValid returns true if the state is a recognized canonical state.
func (s State) IsValid() bool {
	switch s {
	case StatePlanning, StateSegmenting, StateEditing, StateCritiquing, StateDone, StateFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// AllStates returns all canonical states.
func AllStates() []State {
	return []State{
		StatePlanning,
		StateSegmenting,
		StateEditing,
		StateCritiquing,
		StateDone,
		StateFailed,
	}
}
