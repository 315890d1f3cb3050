// Package statemachine provides the statekit statechart for the
// plan/edit/critique loop.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

// Context carries run state through the state machine.
type Context struct {
	Run *counterfactual.Run

	// MaxAttempts bounds the number of completed loop iterations. A
	// value <= 0 still allows exactly one iteration; the bound is
	// checked only after a critique.
	MaxAttempts int
}

// NewContext creates a new machine context.
func NewContext(run *counterfactual.Run, maxAttempts int) *Context {
	return &Context{
		Run:         run,
		MaxAttempts: maxAttempts,
	}
}

// State IDs as StateID type for statekit.
const (
	statePlanning   statekit.StateID = statekit.StateID(counterfactual.StatePlanning)
	stateSegmenting statekit.StateID = statekit.StateID(counterfactual.StateSegmenting)
	stateEditing    statekit.StateID = statekit.StateID(counterfactual.StateEditing)
	stateCritiquing statekit.StateID = statekit.StateID(counterfactual.StateCritiquing)
	stateDone       statekit.StateID = statekit.StateID(counterfactual.StateDone)
	stateFailed     statekit.StateID = statekit.StateID(counterfactual.StateFailed)
)

// NewLoopMachine creates the canonical counterfactual statechart. The
// masked variant passes through segmenting between planning and editing;
// the baseline variant transitions straight to editing.
func NewLoopMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("counterfactual").
		WithInitial(statePlanning).
		WithContext(&Context{}).
		WithAction("recordTransition", recordTransition).
		State(statePlanning).
			On("SEGMENT").Target(stateSegmenting).Do("recordTransition").
			On("EDIT").Target(stateEditing).Do("recordTransition").
			On("FAIL").Target(stateFailed).Do("recordTransition").
			Done().
		State(stateSegmenting).
			On("EDIT").Target(stateEditing).Do("recordTransition").
			On("FAIL").Target(stateFailed).Do("recordTransition").
			Done().
		State(stateEditing).
			On("CRITIQUE").Target(stateCritiquing).Do("recordTransition").
			On("FAIL").Target(stateFailed).Do("recordTransition").
			Done().
		State(stateCritiquing).
			On("REPLAN").Target(statePlanning).Do("recordTransition"). // Loop back with critic notes
			On("DONE").Target(stateDone).Do("recordTransition").
			On("FAIL").Target(stateFailed).Do("recordTransition").
			Done().
		State(stateDone).
			Final().
			Done().
		State(stateFailed).
			Final().
			Done().
		Build()
}

// EventForTransition returns the event type for a state transition.
func EventForTransition(to counterfactual.State) statekit.EventType {
	switch to {
	case counterfactual.StateSegmenting:
		return "SEGMENT"
	case counterfactual.StateEditing:
		return "EDIT"
	case counterfactual.StateCritiquing:
		return "CRITIQUE"
	case counterfactual.StatePlanning:
		return "REPLAN"
	case counterfactual.StateDone:
		return "DONE"
	case counterfactual.StateFailed:
		return "FAIL"
	default:
		return statekit.EventType(to)
	}
}
