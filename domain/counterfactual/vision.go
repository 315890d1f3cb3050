package counterfactual

import "context"

// Proposal is a structured edit proposal from the planner.
type Proposal struct {
	// EditPlan is a free-text description of a single minimal edit.
	EditPlan string `json:"edit_plan"`

	// TargetObject is the canonical short noun phrase the edit is
	// scoped to, already sanitized.
	TargetObject string `json:"target_object"`
}

// Critique is the critic's verdict on an edited image.
type Critique struct {
	IsRealistic   bool   `json:"is_realistic"`
	IsMinimalEdit bool   `json:"is_minimal_edit"`
	Notes         string `json:"notes"`
}

// EditResult references an edited image artifact produced by an editing
// backend.
type EditResult struct {
	// Path is the location of the edited image on disk.
	Path string

	// UsedMock is true when the backend could not produce a genuine
	// edit and a passthrough copy of the input was substituted.
	UsedMock bool
}

// Planner proposes edits and critiques results. Implementations wrap a
// hosted multimodal LLM; a deterministic mock satisfies the same contract.
type Planner interface {
	// ProposeEdit proposes a minimal localized edit that would increase
	// the target attribute. priorPlan and criticNotes carry feedback
	// from earlier iterations and may be empty.
	ProposeEdit(ctx context.Context, imagePath, targetAttribute, priorPlan, criticNotes string) (Proposal, error)

	// Critique judges the edited image against the original for realism
	// and minimality.
	Critique(ctx context.Context, originalPath, editedPath, editPlan, targetObject string) (Critique, error)
}

// Editor applies a whole-image edit constrained by prompt. Implementations
// must resolve transient backend failure internally: retries exhaust into
// a mock passthrough result, never an error.
type Editor interface {
	EditBaseline(ctx context.Context, imagePath, editPlan, targetObject string) (EditResult, error)
}

// Segmenter produces a mask localizing an object in an image.
type Segmenter interface {
	SegmentObject(ctx context.Context, imagePath, objectPrompt string) (string, error)
}

// Inpainter applies an edit only within a masked region.
type Inpainter interface {
	Inpaint(ctx context.Context, imagePath, maskPath, prompt string) (EditResult, error)
}
