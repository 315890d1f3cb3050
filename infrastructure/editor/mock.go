package editor

import (
	"context"

	"github.com/urbanlens/counterfact/domain/counterfactual"
	"github.com/urbanlens/counterfact/infrastructure/imaging"
	"github.com/urbanlens/counterfact/infrastructure/storage/filesystem"
)

// MockClient produces passthrough edits and full-coverage masks without
// calling any backend. It implements counterfactual.Editor,
// counterfactual.Segmenter and counterfactual.Inpainter for offline runs
// and tests.
type MockClient struct {
	OutputStore *filesystem.Store
	MaskStore   *filesystem.Store

	EditCalls    int
	SegmentCalls int
	InpaintCalls int
}

// NewMockClient creates a mock backend writing artifacts to the given stores.
func NewMockClient(outputStore, maskStore *filesystem.Store) *MockClient {
	return &MockClient{OutputStore: outputStore, MaskStore: maskStore}
}

// EditBaseline copies the input image unchanged and marks the result as mock.
func (m *MockClient) EditBaseline(ctx context.Context, imagePath, editPlan, targetObject string) (counterfactual.EditResult, error) {
	m.EditCalls++
	return m.copyInput(imagePath)
}

// SegmentObject writes a full-coverage mask matching the input dimensions.
func (m *MockClient) SegmentObject(ctx context.Context, imagePath, objectPrompt string) (string, error) {
	m.SegmentCalls++
	maskPath, err := m.MaskStore.TimestampedPath(filesystem.Stem(imagePath), ".png")
	if err != nil {
		return "", err
	}
	if err := imaging.WriteMockMask(imagePath, maskPath); err != nil {
		return "", err
	}
	return maskPath, nil
}

// Inpaint copies the input image unchanged and marks the result as mock.
func (m *MockClient) Inpaint(ctx context.Context, imagePath, maskPath, prompt string) (counterfactual.EditResult, error) {
	m.InpaintCalls++
	return m.copyInput(imagePath)
}

func (m *MockClient) copyInput(imagePath string) (counterfactual.EditResult, error) {
	outputPath, err := m.OutputStore.TimestampedPath(filesystem.Stem(imagePath), ".png")
	if err != nil {
		return counterfactual.EditResult{}, err
	}
	if err := imaging.Copy(imagePath, outputPath); err != nil {
		return counterfactual.EditResult{}, err
	}
	return counterfactual.EditResult{Path: outputPath, UsedMock: true}, nil
}
