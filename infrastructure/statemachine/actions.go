package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

// TransitionPayload carries additional data with a transition event.
type TransitionPayload struct {
	ToState counterfactual.State
	Reason  string
}

// recordTransition syncs the run's current state on every transition.
// In statekit, actions receive a pointer to the context; since our
// context is *Context, actions receive **Context.
func recordTransition(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil || (*ctx).Run == nil {
		return
	}

	c := *ctx

	var toState counterfactual.State
	if payload, ok := event.Payload.(TransitionPayload); ok {
		toState = payload.ToState
	} else {
		toState = stateFromEventType(event.Type)
	}

	if toState != "" {
		c.Run.TransitionTo(toState)
	}
}

// stateFromEventType derives the target state from an event type.
func stateFromEventType(eventType statekit.EventType) counterfactual.State {
	switch eventType {
	case "SEGMENT":
		return counterfactual.StateSegmenting
	case "EDIT":
		return counterfactual.StateEditing
	case "CRITIQUE":
		return counterfactual.StateCritiquing
	case "REPLAN":
		return counterfactual.StatePlanning
	case "DONE":
		return counterfactual.StateDone
	case "FAIL":
		return counterfactual.StateFailed
	default:
		return counterfactual.State(eventType)
	}
}
