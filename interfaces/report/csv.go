// Package report renders workflow results: the canonical CSV output and
// HTML evidence packs pairing input and edited images.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urbanlens/counterfact/domain/counterfactual"
)

// csvColumns is the canonical column order. Consumers join on it; do
// not reorder.
var csvColumns = []string{
	"input_image_path",
	"output_image_path",
	"planner_edit_plan",
	"planner_target_object",
	"critic_is_realistic",
	"critic_is_minimal_edit",
	"critic_notes",
}

// WriteCSV writes one row per processed image to path, creating parent
// directories as needed.
func WriteCSV(path string, rows []counterfactual.ResultRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create csv dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.InputImagePath,
			row.OutputImagePath,
			row.PlannerEditPlan,
			row.PlannerTargetObject,
			strconv.FormatBool(row.CriticIsRealistic),
			strconv.FormatBool(row.CriticIsMinimalEdit),
			row.CriticNotes,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// ReadCSV loads result rows from a CSV produced by WriteCSV. Unknown
// extra columns are ignored; missing optional columns yield zero values.
func ReadCSV(path string) ([]counterfactual.ResultRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]counterfactual.ResultRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, counterfactual.ResultRow{
			InputImagePath:      field(record, "input_image_path"),
			OutputImagePath:     field(record, "output_image_path"),
			PlannerEditPlan:     field(record, "planner_edit_plan"),
			PlannerTargetObject: field(record, "planner_target_object"),
			CriticIsRealistic:   parseBool(field(record, "critic_is_realistic")),
			CriticIsMinimalEdit: parseBool(field(record, "critic_is_minimal_edit")),
			CriticNotes:         field(record, "critic_notes"),
		})
	}
	return rows, nil
}

// parseBool accepts the spellings seen in result CSVs across tool
// versions.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
