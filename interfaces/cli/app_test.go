package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urbanlens/counterfact/interfaces/report"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)
	err := app.ExecuteWithArgs(context.Background(), args)
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runApp(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(out, "counterfact version") {
		t.Errorf("output = %q, want version banner", out)
	}
}

func TestGenerateMockEndToEnd(t *testing.T) {
	root := t.TempDir()
	inputDir := filepath.Join(root, "raw")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("failed to create input dir: %v", err)
	}
	writeTestPNG(t, filepath.Join(inputDir, "street_a.png"), 32, 24)
	writeTestPNG(t, filepath.Join(inputDir, "street_b.png"), 24, 32)

	configPath := filepath.Join(root, "config.yaml")
	content := "project:\n  data_root: " + filepath.Join(root, "data") + "\nworkflow:\n  max_attempts: 1\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	csvPath := filepath.Join(root, "results.csv")
	out, err := runApp(t,
		"generate",
		"--config", configPath,
		"--input-dir", inputDir,
		"--target-attribute", "safety",
		"--csv-path", csvPath,
		"--mock",
	)
	if err != nil {
		t.Fatalf("generate error = %v", err)
	}
	if !strings.Contains(out, "Processed 2 images") {
		t.Errorf("output = %q, want batch summary", out)
	}

	rows, err := report.ReadCSV(csvPath)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, row := range rows {
		// Mock edits are passthrough copies; the critic short-circuit
		// marks them rejected.
		if row.CriticNotes != "mock_output=true" {
			t.Errorf("notes = %q, want mock marker", row.CriticNotes)
		}
		if row.CriticIsRealistic || row.CriticIsMinimalEdit {
			t.Errorf("mock row was accepted: %+v", row)
		}
		if row.OutputImagePath == "" {
			t.Error("mock row missing output path")
		} else if _, err := os.Stat(row.OutputImagePath); err != nil {
			t.Errorf("mock output missing on disk: %v", err)
		}
		if row.PlannerTargetObject == "" {
			t.Error("mock row missing target object")
		}
	}
}

func TestGenerateRejectsUnknownModel(t *testing.T) {
	inputDir := t.TempDir()
	writeTestPNG(t, filepath.Join(inputDir, "street.png"), 8, 8)

	_, err := runApp(t,
		"generate",
		"--input-dir", inputDir,
		"--model", "unknown/model",
	)
	if err == nil {
		t.Fatal("generate accepted an unknown baseline model")
	}
}

func TestEvidenceCommand(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "street.png")
	writeTestPNG(t, input, 8, 8)

	csvPath := filepath.Join(root, "counterfactual_results_safety.csv")
	csv := "input_image_path,output_image_path,planner_edit_plan,planner_target_object,critic_is_realistic,critic_is_minimal_edit,critic_notes\n" +
		input + "," + input + ",Brighten the streetlight,streetlight,true,true,clean edit\n"
	if err := os.WriteFile(csvPath, []byte(csv), 0o644); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}

	outputDir := filepath.Join(root, "packs")
	out, err := runApp(t,
		"evidence",
		"--csv", csvPath,
		"--project-root", root,
		"--output-dir", outputDir,
	)
	if err != nil {
		t.Fatalf("evidence error = %v", err)
	}
	if !strings.Contains(out, "Wrote evidence pack") {
		t.Errorf("output = %q, want pack confirmation", out)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "counterfactual_results_safety", "index.html")); err != nil {
		t.Errorf("pack index missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "index.html")); err != nil {
		t.Errorf("top-level index missing: %v", err)
	}
}

func TestEvidenceRequiresInput(t *testing.T) {
	if _, err := runApp(t, "evidence"); err == nil {
		t.Error("evidence without CSVs did not error")
	}
}
