// Package application orchestrates the counterfactual generation
// workflow: the bounded plan/edit/critique loop for a single image and
// concurrent batch execution over an input directory.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/urbanlens/counterfact/domain/counterfactual"
	"github.com/urbanlens/counterfact/infrastructure/logging"
	"github.com/urbanlens/counterfact/infrastructure/statemachine"
	"github.com/urbanlens/counterfact/infrastructure/telemetry"
)

// mockCritiqueNotes marks a verdict produced without consulting the
// critic because the edit was a mock passthrough.
const mockCritiqueNotes = "mock_output=true"

// EngineConfig wires the engine's collaborators.
type EngineConfig struct {
	Planner counterfactual.Planner

	// Editor serves the baseline variant; Segmenter and Inpainter serve
	// the masked variant.
	Editor    counterfactual.Editor
	Segmenter counterfactual.Segmenter
	Inpainter counterfactual.Inpainter

	// UseMasked selects the segment-then-inpaint variant.
	UseMasked bool

	// MaxAttempts bounds completed loop iterations. Values <= 0 still
	// run exactly one iteration.
	MaxAttempts int

	Metrics *telemetry.Metrics
}

// Engine drives the counterfactual loop for one image at a time. The
// loop is a statechart: planning, optional segmenting, editing and
// critiquing, looping back to planning until the critic accepts the
// edit or the attempt bound is reached.
type Engine struct {
	config EngineConfig
}

// NewEngine creates an engine after validating its dependencies.
func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Planner == nil {
		return nil, fmt.Errorf("planner is required")
	}
	if config.UseMasked {
		if config.Segmenter == nil || config.Inpainter == nil {
			return nil, fmt.Errorf("segmenter and inpainter are required for masked runs")
		}
	} else if config.Editor == nil {
		return nil, fmt.Errorf("editor is required for baseline runs")
	}
	return &Engine{config: config}, nil
}

// maxAttempts returns the effective iteration bound.
func (e *Engine) maxAttempts() int {
	if e.config.MaxAttempts <= 0 {
		return 1
	}
	return e.config.MaxAttempts
}

// Run executes the full loop for one input image. The returned run is
// never nil; on failure it carries the error and the row conversion
// still works.
func (e *Engine) Run(ctx context.Context, imagePath, targetAttribute string) (*counterfactual.Run, error) {
	run := counterfactual.NewRun(uuid.NewString(), imagePath, targetAttribute)

	machine, err := statemachine.NewLoopMachine()
	if err != nil {
		run.Fail(err.Error())
		return run, fmt.Errorf("failed to build loop machine: %w", err)
	}
	interp := statemachine.NewInterpreter(machine, statemachine.NewContext(run, e.maxAttempts()))
	interp.Start()
	defer interp.Stop()

	e.config.Metrics.RunStarted(ctx)
	defer e.config.Metrics.RunEnded(ctx)

	logging.Info().
		Add(logging.RunID(run.ID)).
		Add(logging.ImagePath(imagePath)).
		Add(logging.TargetAttribute(targetAttribute)).
		Add(logging.Str("variant", e.variant())).
		Msg("run started")

	for !interp.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return e.fail(interp, run, err), err
		}

		state := interp.State()
		started := time.Now()

		var stageErr error
		switch state {
		case counterfactual.StatePlanning:
			stageErr = e.plan(ctx, interp, run)
		case counterfactual.StateSegmenting:
			stageErr = e.segment(ctx, interp, run)
		case counterfactual.StateEditing:
			stageErr = e.edit(ctx, interp, run)
		case counterfactual.StateCritiquing:
			stageErr = e.critique(ctx, interp, run)
		default:
			stageErr = fmt.Errorf("unexpected loop state %q", state)
		}
		e.config.Metrics.RecordStage(ctx, string(state), time.Since(started))

		if stageErr != nil {
			return e.fail(interp, run, stageErr), stageErr
		}
	}

	logging.Info().
		Add(logging.RunID(run.ID)).
		Add(logging.Attempt(run.Attempts)).
		Add(logging.Bool("accepted", run.Accepted())).
		Add(logging.Duration(run.Duration())).
		Msg("run finished")
	return run, nil
}

func (e *Engine) variant() string {
	if e.config.UseMasked {
		return "masked"
	}
	return "baseline"
}

// fail drives the machine into the failed state and records the error.
func (e *Engine) fail(interp *statemachine.Interpreter, run *counterfactual.Run, err error) *counterfactual.Run {
	logging.Error().
		Add(logging.RunID(run.ID)).
		Add(logging.State(run.CurrentState)).
		Add(logging.ErrorField(err)).
		Msg("run failed")
	interp.Transition(counterfactual.StateFailed, err.Error())
	run.Fail(err.Error())
	return run
}

// plan asks the planner for an edit proposal, feeding back the prior
// plan and critic notes on loop iterations after the first.
func (e *Engine) plan(ctx context.Context, interp *statemachine.Interpreter, run *counterfactual.Run) error {
	proposal, err := e.config.Planner.ProposeEdit(ctx, run.ImagePath, run.TargetAttribute, run.EditPlan, run.CriticNotes)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	run.EditPlan = proposal.EditPlan
	run.TargetObject = counterfactual.SanitizeTargetObject(proposal.TargetObject)

	logging.Info().
		Add(logging.RunID(run.ID)).
		Add(logging.TargetObject(run.TargetObject)).
		Add(logging.Str("edit_plan", run.EditPlan)).
		Msg("edit planned")

	if e.config.UseMasked {
		interp.Transition(counterfactual.StateSegmenting, "plan accepted")
	} else {
		interp.Transition(counterfactual.StateEditing, "plan accepted")
	}
	return nil
}

func (e *Engine) segment(ctx context.Context, interp *statemachine.Interpreter, run *counterfactual.Run) error {
	maskPath, err := e.config.Segmenter.SegmentObject(ctx, run.ImagePath, run.TargetObject)
	if err != nil {
		return fmt.Errorf("segmentation failed: %w", err)
	}
	run.MaskPath = maskPath

	interp.Transition(counterfactual.StateEditing, "mask produced")
	return nil
}

func (e *Engine) edit(ctx context.Context, interp *statemachine.Interpreter, run *counterfactual.Run) error {
	var result counterfactual.EditResult
	var err error
	if e.config.UseMasked {
		if run.MaskPath == "" {
			return counterfactual.ErrMissingMask
		}
		result, err = e.config.Inpainter.Inpaint(ctx, run.ImagePath, run.MaskPath, run.EditPlan)
	} else {
		result, err = e.config.Editor.EditBaseline(ctx, run.ImagePath, run.EditPlan, run.TargetObject)
	}
	if err != nil {
		return fmt.Errorf("editing failed: %w", err)
	}
	if result.Path == "" {
		return counterfactual.ErrMissingEditedImage
	}

	run.EditedImagePath = result.Path
	run.UsedMock = result.UsedMock

	interp.Transition(counterfactual.StateCritiquing, "edit produced")
	return nil
}

// critique evaluates the edited image and decides whether to finish or
// loop back to planning. A mock edit is rejected without consulting the
// critic so mock artifacts can never be accepted.
func (e *Engine) critique(ctx context.Context, interp *statemachine.Interpreter, run *counterfactual.Run) error {
	if run.EditedImagePath == "" {
		return counterfactual.ErrMissingEditedImage
	}

	var verdict counterfactual.Critique
	if run.UsedMock {
		verdict = counterfactual.Critique{Notes: mockCritiqueNotes}
	} else {
		var err error
		verdict, err = e.config.Planner.Critique(ctx, run.ImagePath, run.EditedImagePath, run.EditPlan, run.TargetObject)
		if err != nil {
			return fmt.Errorf("critique failed: %w", err)
		}
	}
	run.RecordCritique(verdict)
	e.config.Metrics.RecordCritique(ctx, run.Accepted())

	logging.Info().
		Add(logging.RunID(run.ID)).
		Add(logging.Attempt(run.Attempts)).
		Add(logging.UsedMock(run.UsedMock)).
		Add(logging.Str("notes", verdict.Notes)).
		Msg("critique recorded")

	switch {
	case run.Accepted():
		interp.Transition(counterfactual.StateDone, "edit accepted")
	case run.Attempts >= e.maxAttempts():
		interp.Transition(counterfactual.StateDone, "attempt bound reached")
	default:
		interp.Transition(counterfactual.StatePlanning, "edit rejected")
	}
	return nil
}
