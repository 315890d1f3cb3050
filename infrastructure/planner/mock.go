package planner

import (
	"context"
	"sync"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

// MockPlanner returns deterministic proposals and critiques without
// calling any backend. Used in mock mode and tests.
type MockPlanner struct {
	// Proposal returned by every ProposeEdit call. Zero value falls
	// back to a fixed streetlight edit.
	Proposal counterfactual.Proposal

	// Verdict returned by every Critique call. Zero value accepts.
	Verdict *counterfactual.Critique

	mu            sync.Mutex
	proposeCalls  int
	critiqueCalls int
}

// NewMockPlanner creates a mock planner that proposes a fixed edit and
// accepts it on critique.
func NewMockPlanner() *MockPlanner {
	return &MockPlanner{}
}

// ProposeEdit implements counterfactual.Planner.
func (p *MockPlanner) ProposeEdit(_ context.Context, _, _, _, _ string) (counterfactual.Proposal, error) {
	p.mu.Lock()
	p.proposeCalls++
	p.mu.Unlock()

	proposal := p.Proposal
	if proposal.EditPlan == "" {
		proposal.EditPlan = "Repair the broken streetlight"
	}
	if proposal.TargetObject == "" {
		proposal.TargetObject = "streetlight"
	}
	proposal.TargetObject = counterfactual.SanitizeTargetObject(proposal.TargetObject)
	return proposal, nil
}

// Critique implements counterfactual.Planner.
func (p *MockPlanner) Critique(_ context.Context, _, _, _, _ string) (counterfactual.Critique, error) {
	p.mu.Lock()
	p.critiqueCalls++
	p.mu.Unlock()

	if p.Verdict != nil {
		return *p.Verdict, nil
	}
	return counterfactual.Critique{IsRealistic: true, IsMinimalEdit: true, Notes: "mock critique"}, nil
}

// ProposeCalls returns the number of ProposeEdit invocations.
func (p *MockPlanner) ProposeCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.proposeCalls
}

// CritiqueCalls returns the number of Critique invocations.
func (p *MockPlanner) CritiqueCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.critiqueCalls
}
