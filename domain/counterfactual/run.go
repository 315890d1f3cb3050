package counterfactual

import (
	"time"
)

// RunStatus represents the current status of a run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"   // Not yet started
	RunStatusRunning   RunStatus = "running"   // Currently executing
	RunStatusCompleted RunStatus = "completed" // Reached a critique verdict
	RunStatusFailed    RunStatus = "failed"    // Terminated with error
)

// Run is the per-image workflow state threaded through the loop.
// It is the aggregate root for the counterfactual domain; exactly one
// instance exists per input image and it is mutated only by the engine's
// sequential stage execution.
type Run struct {
	ID string `json:"id"`

	// Immutable for the lifetime of the run.
	ImagePath       string `json:"image_path"`
	TargetAttribute string `json:"target_attribute"`

	// Planner outputs, overwritten on each loop iteration.
	EditPlan     string `json:"edit_plan,omitempty"`
	TargetObject string `json:"target_object,omitempty"`

	// Editing stage outputs. The previous edited image is superseded,
	// not retained.
	MaskPath        string `json:"mask_path,omitempty"`
	EditedImagePath string `json:"edited_image_path,omitempty"`
	UsedMock        bool   `json:"used_mock"`

	// Loop control. Attempts increments exactly once per completed
	// Plan->Edit->Critique iteration, at critique.
	Attempts      int    `json:"attempts"`
	IsRealistic   bool   `json:"is_realistic"`
	IsMinimalEdit bool   `json:"is_minimal_edit"`
	CriticNotes   string `json:"critic_notes,omitempty"`

	CurrentState State     `json:"current_state"`
	Status       RunStatus `json:"status"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// NewRun creates a fresh run for one input image with all loop-control
// fields zeroed.
func NewRun(id, imagePath, targetAttribute string) *Run {
	return &Run{
		ID:              id,
		ImagePath:       imagePath,
		TargetAttribute: targetAttribute,
		CurrentState:    StatePlanning,
		Status:          RunStatusPending,
		StartTime:       time.Now(),
	}
}

// Start marks the run as running.
func (r *Run) Start() {
	r.Status = RunStatusRunning
	r.StartTime = time.Now()
}

// TransitionTo changes the current state.
func (r *Run) TransitionTo(state State) {
	r.CurrentState = state
	if state.IsTerminal() {
		r.EndTime = time.Now()
		if state == StateDone {
			r.Status = RunStatusCompleted
		} else {
			r.Status = RunStatusFailed
		}
	}
}

// Accepted reports whether the last critique accepted the edit.
func (r *Run) Accepted() bool {
	return r.IsRealistic && r.IsMinimalEdit
}

// RecordCritique stores a critique verdict and counts the completed
// iteration.
func (r *Run) RecordCritique(c Critique) {
	r.IsRealistic = c.IsRealistic
	r.IsMinimalEdit = c.IsMinimalEdit
	r.CriticNotes = c.Notes
	r.Attempts++
}

// Fail marks the run as failed with an error.
func (r *Run) Fail(err string) {
	r.Status = RunStatusFailed
	r.CurrentState = StateFailed
	r.EndTime = time.Now()
	r.Error = err
}

// IsTerminal returns true if the run has reached a terminal status.
func (r *Run) IsTerminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}

// Duration returns the duration of the run.
func (r *Run) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}
