package editor

import "encoding/json"

// normalizeBoxes coerces a grounding model's output into a list of
// [x1,y1,x2,y2] boxes. Backends return a bare box, a list of boxes, a
// wrapper object, or a JSON string of any of those.
func normalizeBoxes(raw json.RawMessage) [][4]float64 {
	if len(raw) == 0 {
		return nil
	}

	var single [4]float64
	if err := json.Unmarshal(raw, &single); err == nil {
		return [][4]float64{single}
	}

	var list [][]float64
	if err := json.Unmarshal(raw, &list); err == nil {
		var boxes [][4]float64
		for _, b := range list {
			if len(b) == 4 {
				boxes = append(boxes, [4]float64{b[0], b[1], b[2], b[3]})
			}
		}
		return boxes
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		for _, key := range []string{"boxes", "box", "bboxes"} {
			if inner, ok := wrapper[key]; ok {
				return normalizeBoxes(inner)
			}
		}
		return nil
	}

	var embedded string
	if err := json.Unmarshal(raw, &embedded); err == nil {
		return normalizeBoxes(json.RawMessage(embedded))
	}

	return nil
}

// mergeBoxes returns the bounding box covering all boxes.
func mergeBoxes(boxes [][4]float64) [4]float64 {
	merged := boxes[0]
	for _, b := range boxes[1:] {
		if b[0] < merged[0] {
			merged[0] = b[0]
		}
		if b[1] < merged[1] {
			merged[1] = b[1]
		}
		if b[2] > merged[2] {
			merged[2] = b[2]
		}
		if b[3] > merged[3] {
			merged[3] = b[3]
		}
	}
	return merged
}
