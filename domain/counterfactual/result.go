package counterfactual

import "fmt"

// ResultRow is the immutable per-image record produced by the workflow
// and consumed by reporting. One row exists per processed input image.
type ResultRow struct {
	InputImagePath      string `json:"input_image_path"`
	OutputImagePath     string `json:"output_image_path"`
	PlannerEditPlan     string `json:"planner_edit_plan"`
	PlannerTargetObject string `json:"planner_target_object"`
	CriticIsRealistic   bool   `json:"critic_is_realistic"`
	CriticIsMinimalEdit bool   `json:"critic_is_minimal_edit"`
	CriticNotes         string `json:"critic_notes"`
}

// RowFromRun converts a finished run into its result row.
func RowFromRun(r *Run) ResultRow {
	return ResultRow{
		InputImagePath:      r.ImagePath,
		OutputImagePath:     r.EditedImagePath,
		PlannerEditPlan:     r.EditPlan,
		PlannerTargetObject: r.TargetObject,
		CriticIsRealistic:   r.IsRealistic,
		CriticIsMinimalEdit: r.IsMinimalEdit,
		CriticNotes:         r.CriticNotes,
	}
}

// ErrorRow records a per-image failure without aborting the batch. Edit
// fields stay empty and the notes carry the failure description.
func ErrorRow(imagePath string, err error) ResultRow {
	return ResultRow{
		InputImagePath: imagePath,
		CriticNotes:    fmt.Sprintf("ERROR: %v", err),
	}
}
