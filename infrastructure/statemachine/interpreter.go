package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

// Interpreter wraps the statekit interpreter with workflow-specific
// functionality.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates a new interpreter for the loop state machine.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// Start initializes the interpreter and enters the initial state.
func (i *Interpreter) Start() {
	i.interp.Start()
	state := i.interp.State()
	i.ctx.Run.CurrentState = counterfactual.State(state.Value)
	i.ctx.Run.Start()
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// State returns the current state.
func (i *Interpreter) State() counterfactual.State {
	state := i.interp.State()
	return counterfactual.State(state.Value)
}

// Transition moves the machine to the target state.
func (i *Interpreter) Transition(to counterfactual.State, reason string) {
	event := statekit.Event{
		Type: EventForTransition(to),
		Payload: TransitionPayload{
			ToState: to,
			Reason:  reason,
		},
	}
	i.interp.Send(event)

	newState := i.interp.State()
	i.ctx.Run.CurrentState = counterfactual.State(newState.Value)
}

// IsTerminal returns true if the interpreter is in a terminal state.
func (i *Interpreter) IsTerminal() bool {
	return i.interp.Done()
}

// Context returns the interpreter context.
func (i *Interpreter) Context() *Context {
	return i.ctx
}
