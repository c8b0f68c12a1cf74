package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseRecommendations turns the loosely structured analysis text into an
// ordered sequence of recommendations. The text may wrap a JSON-like
// array in prose and may use single quotes instead of double quotes.
//
// It never fails: unparseable input yields an empty sequence and
// degraded=true so the rest of the artifact stays usable. Output is
// deterministic for any input.
func ParseRecommendations(raw string) ([]Recommendation, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return []Recommendation{}, true
	}
	candidate := raw[start : end+1]

	elements, ok := decodeArray(candidate)
	if !ok {
		return []Recommendation{}, true
	}

	recs := make([]Recommendation, 0, len(elements))
	seen := make(map[string]bool, len(elements))
	for i, el := range elements {
		var obj map[string]any
		if err := json.Unmarshal(el, &obj); err != nil {
			// element is not an object, skip it
			continue
		}
		recs = append(recs, coerceRecommendation(obj, i, seen))
	}
	return recs, false
}

// decodeArray parses the bracketed candidate, retrying once after a
// best-effort single-to-double quote normalization. This is deliberately
// not a quoting-aware tokenizer; if normalization breaks the structure
// the parse fails closed.
func decodeArray(candidate string) ([]json.RawMessage, bool) {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &elements); err == nil {
		return elements, true
	}

	normalized := strings.ReplaceAll(candidate, "'", `"`)
	if err := json.Unmarshal([]byte(normalized), &elements); err == nil {
		return elements, true
	}
	return nil, false
}

func coerceRecommendation(obj map[string]any, index int, seen map[string]bool) Recommendation {
	rec := Recommendation{
		ID:          stringField(obj, "id"),
		Type:        strings.ToLower(stringField(obj, "type")),
		Title:       stringField(obj, "title"),
		Description: stringField(obj, "description"),
		Priority:    strings.ToLower(stringField(obj, "priority")),
	}

	if !recTypes[rec.Type] {
		rec.Type = RecTypeGeneral
	}
	if !priorities[rec.Priority] {
		rec.Priority = PriorityMedium
	}

	if ts, ok := obj["timestamp"].(float64); ok && ts >= 0 {
		rec.Timestamp = &ts
	}

	if rec.ID == "" {
		rec.ID = fmt.Sprintf("rec-%d", index+1)
	}
	for seen[rec.ID] {
		rec.ID = fmt.Sprintf("%s-%d", rec.ID, index+1)
	}
	seen[rec.ID] = true

	return rec
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
