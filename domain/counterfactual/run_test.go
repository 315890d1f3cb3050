package counterfactual

import (
	"errors"
	"strings"
	"testing"
)

func TestNewRun(t *testing.T) {
	r := NewRun("run-1", "/data/01_raw/street.png", "safety")

	if r.CurrentState != StatePlanning {
		t.Errorf("CurrentState = %q, want %q", r.CurrentState, StatePlanning)
	}
	if r.Status != RunStatusPending {
		t.Errorf("Status = %q, want %q", r.Status, RunStatusPending)
	}
	if r.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0", r.Attempts)
	}
	if r.IsRealistic || r.IsMinimalEdit || r.UsedMock {
		t.Error("loop-control flags must start false")
	}
}

func TestRun_RecordCritique(t *testing.T) {
	r := NewRun("run-1", "img.png", "safety")

	r.RecordCritique(Critique{IsRealistic: false, IsMinimalEdit: true, Notes: "too broad"})
	if r.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", r.Attempts)
	}
	if r.Accepted() {
		t.Error("Accepted() = true with failing realism flag")
	}

	r.RecordCritique(Critique{IsRealistic: true, IsMinimalEdit: true, Notes: "ok"})
	if r.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", r.Attempts)
	}
	if !r.Accepted() {
		t.Error("Accepted() = false after passing critique")
	}
	if r.CriticNotes != "ok" {
		t.Errorf("CriticNotes = %q, want %q", r.CriticNotes, "ok")
	}
}

func TestRun_TransitionTo_Terminal(t *testing.T) {
	tests := []struct {
		state  State
		status RunStatus
	}{
		{StateDone, RunStatusCompleted},
		{StateFailed, RunStatusFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			r := NewRun("run-1", "img.png", "safety")
			r.Start()
			r.TransitionTo(tt.state)
			if r.Status != tt.status {
				t.Errorf("Status = %q, want %q", r.Status, tt.status)
			}
			if !r.IsTerminal() {
				t.Error("IsTerminal() = false after terminal transition")
			}
			if r.EndTime.IsZero() {
				t.Error("EndTime not set on terminal transition")
			}
		})
	}
}

func TestRowFromRun(t *testing.T) {
	r := NewRun("run-1", "in.png", "safety")
	r.EditPlan = "repair the streetlight"
	r.TargetObject = "streetlight"
	r.EditedImagePath = "out.png"
	r.RecordCritique(Critique{IsRealistic: true, IsMinimalEdit: true, Notes: "clean"})

	row := RowFromRun(r)
	if row.InputImagePath != "in.png" || row.OutputImagePath != "out.png" {
		t.Errorf("paths = %q/%q, want in.png/out.png", row.InputImagePath, row.OutputImagePath)
	}
	if !row.CriticIsRealistic || !row.CriticIsMinimalEdit {
		t.Error("critique flags not carried into row")
	}
	if row.PlannerTargetObject != "streetlight" {
		t.Errorf("PlannerTargetObject = %q, want streetlight", row.PlannerTargetObject)
	}
}

func TestErrorRow(t *testing.T) {
	row := ErrorRow("in.png", errors.New("planner unavailable"))
	if row.InputImagePath != "in.png" {
		t.Errorf("InputImagePath = %q, want in.png", row.InputImagePath)
	}
	if row.OutputImagePath != "" || row.PlannerEditPlan != "" {
		t.Error("error row must leave edit fields empty")
	}
	if !strings.HasPrefix(row.CriticNotes, "ERROR: ") {
		t.Errorf("CriticNotes = %q, want ERROR: prefix", row.CriticNotes)
	}
}
