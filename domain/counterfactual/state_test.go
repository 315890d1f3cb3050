package counterfactual

import "testing"

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePlanning, false},
		{StateSegmenting, false},
		{StateEditing, false},
		{StateCritiquing, false},
		{StateDone, true},
		{StateFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State(%q).IsTerminal() = %v, want %v", tt.state, got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePlanning, true},
		{StateSegmenting, true},
		{StateEditing, true},
		{StateCritiquing, true},
		{StateDone, true},
		{StateFailed, true},
		{State("unknown"), false},
		{State(""), false},
		{State("PLANNING"), false}, // Case sensitive
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State(%q).IsValid() = %v, want %v", tt.state, got, tt.expected)
			}
		})
	}
}

func TestAllStates(t *testing.T) {
	states := AllStates()
	if len(states) != 6 {
		t.Fatalf("AllStates() returned %d states, want 6", len(states))
	}
	for _, s := range states {
		if !s.IsValid() {
			t.Errorf("AllStates() contains invalid state %q", s)
		}
	}
}
