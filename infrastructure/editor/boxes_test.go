package editor

import (
	"encoding/json"
	"testing"
)

func TestNormalizeBoxes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want [][4]float64
	}{
		{
			name: "single box",
			raw:  `[10, 20, 30, 40]`,
			want: [][4]float64{{10, 20, 30, 40}},
		},
		{
			name: "list of boxes",
			raw:  `[[1, 2, 3, 4], [5, 6, 7, 8]]`,
			want: [][4]float64{{1, 2, 3, 4}, {5, 6, 7, 8}},
		},
		{
			name: "wrapper with boxes key",
			raw:  `{"boxes": [[1, 2, 3, 4]]}`,
			want: [][4]float64{{1, 2, 3, 4}},
		},
		{
			name: "wrapper with box key",
			raw:  `{"box": [5, 5, 9, 9]}`,
			want: [][4]float64{{5, 5, 9, 9}},
		},
		{
			name: "embedded json string",
			raw:  `"[[1, 1, 2, 2]]"`,
			want: [][4]float64{{1, 1, 2, 2}},
		},
		{
			name: "skips malformed entries",
			raw:  `[[1, 2, 3, 4], [1, 2]]`,
			want: [][4]float64{{1, 2, 3, 4}},
		},
		{
			name: "empty",
			raw:  ``,
			want: nil,
		},
		{
			name: "wrapper without known key",
			raw:  `{"detections": 3}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeBoxes(json.RawMessage(tt.raw))
			if len(got) != len(tt.want) {
				t.Fatalf("normalizeBoxes() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("box %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMergeBoxes(t *testing.T) {
	tests := []struct {
		name  string
		boxes [][4]float64
		want  [4]float64
	}{
		{
			name:  "single box unchanged",
			boxes: [][4]float64{{10, 20, 30, 40}},
			want:  [4]float64{10, 20, 30, 40},
		},
		{
			name:  "covering box of two",
			boxes: [][4]float64{{10, 10, 20, 20}, {5, 15, 30, 18}},
			want:  [4]float64{5, 10, 30, 20},
		},
		{
			name:  "nested boxes",
			boxes: [][4]float64{{0, 0, 100, 100}, {10, 10, 20, 20}},
			want:  [4]float64{0, 0, 100, 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergeBoxes(tt.boxes); got != tt.want {
				t.Errorf("mergeBoxes() = %v, want %v", got, tt.want)
			}
		})
	}
}
