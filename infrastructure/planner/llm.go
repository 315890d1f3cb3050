package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urbanlens/counterfact/domain/counterfactual"
	"github.com/urbanlens/counterfact/infrastructure/logging"
)

// DefaultPlannerPrompt instructs the model to propose a minimal localized
// edit for a perceptual attribute.
const DefaultPlannerPrompt = `You are an urban planner. Given a street-level image and a target
percept (e.g., "safety", "wealth", "greenery"), propose a visual edit
that would increase that percept. Identify a single, concrete object or
element to modify (e.g., "streetlight", "tree canopy", "crosswalk marking").
The target_object must be a short noun phrase (1-4 words), no verbs,
no parentheses, and no location descriptions. Example: "crosswalk marking".
The edit_plan must be a single, minimal, localized change to that object.
Do NOT add other objects, signage, or global scene changes.
Avoid embellishments; specify only the exact change needed.
Return two fields in JSON:
{
  "edit_plan": "<what to add/change>",
  "target_object": "<specific object to localize>"
}`

// DefaultCriticPrompt instructs the model to judge realism and minimality
// of an edit.
const DefaultCriticPrompt = `You are an image edit critic. Evaluate whether the GENERATED image meets the
requirements relative to the ORIGINAL image and the requested plan:
(a) faithful to image evidence, (b) minimal + plausible, and (c) no drift of
target_object or surrounding context.
CRITIC RESPONSIBILITIES:
1) Enforce plausibility + minimality: No global restyles, relighting,
   camera changes, or broad scene edits. Prefer the smallest number of steps
   and minimal edit magnitude localized to target_object.
2) Return pass/fail for BOTH realism and minimality.
Return valid JSON:
{
  "is_realistic": true|false,
  "is_minimal_edit": true|false,
  "notes": "<brief reason and repair guidance for the planner>"
}`

// fallbackPlan is stored when the model returns no usable edit plan.
const fallbackPlan = "No plan generated"

// LLMPlanner implements counterfactual.Planner on top of a multimodal
// chat completion provider.
type LLMPlanner struct {
	provider      Provider
	model         string
	plannerPrompt string
	criticPrompt  string
	maxTokens     int
}

// LLMPlannerConfig configures the LLM planner.
type LLMPlannerConfig struct {
	Provider      Provider
	Model         string
	PlannerPrompt string
	CriticPrompt  string
	MaxTokens     int
}

// NewLLMPlanner creates a new LLM-based planner.
func NewLLMPlanner(config LLMPlannerConfig) *LLMPlanner {
	plannerPrompt := strings.TrimSpace(config.PlannerPrompt)
	if plannerPrompt == "" {
		plannerPrompt = DefaultPlannerPrompt
	}
	criticPrompt := strings.TrimSpace(config.CriticPrompt)
	if criticPrompt == "" {
		criticPrompt = DefaultCriticPrompt
	}
	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &LLMPlanner{
		provider:      config.Provider,
		model:         config.Model,
		plannerPrompt: plannerPrompt,
		criticPrompt:  criticPrompt,
		maxTokens:     maxTokens,
	}
}

// ProposeEdit implements counterfactual.Planner.
func (p *LLMPlanner) ProposeEdit(ctx context.Context, imagePath, targetAttribute, priorPlan, criticNotes string) (counterfactual.Proposal, error) {
	priorText := "No prior attempts."
	if priorPlan != "" {
		priorText = "Prior attempt: " + priorPlan
	}
	criticText := "No critic notes."
	if criticNotes != "" {
		criticText = "Critic notes: " + criticNotes
	}

	userPrompt := fmt.Sprintf(
		"Image path: %s\nTarget percept: %s\n%s\n%s\nRespond with JSON containing edit_plan and target_object.",
		imagePath, targetAttribute, priorText, criticText,
	)

	imageURL, err := ImageDataURL(imagePath)
	if err != nil {
		return counterfactual.Proposal{}, err
	}

	resp, err := p.provider.Complete(ctx, CompletionRequest{
		Model: p.model,
		Messages: []Message{
			SystemMessage(p.plannerPrompt),
			{Role: "user", Parts: []ContentPart{TextPart(userPrompt), ImagePart(imageURL)}},
		},
		JSONResponse: true,
		MaxTokens:    p.maxTokens,
	})
	if err != nil {
		return counterfactual.Proposal{}, fmt.Errorf("planner completion failed: %w", err)
	}

	return parseProposal(resp.Content), nil
}

// Critique implements counterfactual.Planner.
func (p *LLMPlanner) Critique(ctx context.Context, originalPath, editedPath, editPlan, targetObject string) (counterfactual.Critique, error) {
	userPrompt := fmt.Sprintf(
		"Original image path: %s\nEdited image path: %s\nTarget object (do not change): %s\nEdit plan: %s\nRespond with JSON containing is_realistic, is_minimal_edit and notes.",
		originalPath, editedPath, targetObject, editPlan,
	)

	originalURL, err := ImageDataURL(originalPath)
	if err != nil {
		return counterfactual.Critique{}, err
	}
	editedURL, err := ImageDataURL(editedPath)
	if err != nil {
		return counterfactual.Critique{}, err
	}

	resp, err := p.provider.Complete(ctx, CompletionRequest{
		Model: p.model,
		Messages: []Message{
			SystemMessage(p.criticPrompt),
			{Role: "user", Parts: []ContentPart{
				TextPart(userPrompt),
				ImagePart(originalURL),
				ImagePart(editedURL),
			}},
		},
		JSONResponse: true,
		MaxTokens:    p.maxTokens,
	})
	if err != nil {
		return counterfactual.Critique{}, fmt.Errorf("critic completion failed: %w", err)
	}

	return parseCritique(resp.Content), nil
}

type proposalResponse struct {
	EditPlan     string `json:"edit_plan"`
	TargetObject string `json:"target_object"`
}

type critiqueResponse struct {
	IsRealistic   bool   `json:"is_realistic"`
	IsMinimalEdit bool   `json:"is_minimal_edit"`
	Notes         string `json:"notes"`
}

// parseProposal parses the model's JSON with safe defaults. A malformed
// response yields a placeholder plan and target so the loop can still
// terminate deterministically.
func parseProposal(content string) counterfactual.Proposal {
	var resp proposalResponse
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &resp); err != nil {
		logging.Warn().
			Add(logging.ErrorField(err)).
			Msg("malformed planner response, using defaults")
	}

	plan := strings.TrimSpace(resp.EditPlan)
	if plan == "" {
		plan = fallbackPlan
	}

	return counterfactual.Proposal{
		EditPlan:     plan,
		TargetObject: counterfactual.SanitizeTargetObject(resp.TargetObject),
	}
}

// parseCritique parses the critic's JSON; malformed output fails the
// critique rather than the run.
func parseCritique(content string) counterfactual.Critique {
	var resp critiqueResponse
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &resp); err != nil {
		logging.Warn().
			Add(logging.ErrorField(err)).
			Msg("malformed critic response, recording failed critique")
		return counterfactual.Critique{Notes: "unparseable critic response"}
	}

	return counterfactual.Critique{
		IsRealistic:   resp.IsRealistic,
		IsMinimalEdit: resp.IsMinimalEdit,
		Notes:         resp.Notes,
	}
}

// stripCodeFence removes a surrounding markdown code block if present.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	} else {
		return content
	}
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
