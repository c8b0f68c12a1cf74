package analysis

import (
	"reflect"
	"testing"
)

func TestParseRecommendationsSingleQuoted(t *testing.T) {
	raw := "Here is the review: [{'id': 'r1', 'type': 'Hook', 'title': 'Weak opener', 'description': 'Starts too slow.', 'priority': 'HIGH', 'timestamp': 3}] hope it helps"

	recs, degraded := ParseRecommendations(raw)
	if degraded {
		t.Fatal("expected degraded=false for a recoverable payload")
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}

	rec := recs[0]
	if rec.ID != "r1" {
		t.Errorf("expected id r1, got %s", rec.ID)
	}
	if rec.Type != RecTypeHook {
		t.Errorf("expected type hook, got %s", rec.Type)
	}
	if rec.Priority != PriorityHigh {
		t.Errorf("expected priority high, got %s", rec.Priority)
	}
	if rec.Timestamp == nil || *rec.Timestamp != 3 {
		t.Errorf("expected timestamp 3, got %v", rec.Timestamp)
	}
}

func TestParseRecommendationsPlainJSON(t *testing.T) {
	raw := `[{"id":"a","type":"lighting","title":"t","description":"d","priority":"medium"},{"id":"b","type":"cta","title":"t2","description":"d2","priority":"low","timestamp":12.5}]`

	recs, degraded := ParseRecommendations(raw)
	if degraded {
		t.Fatal("expected degraded=false")
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].Type != RecTypeLighting || recs[1].Type != RecTypeCTA {
		t.Errorf("unexpected types: %s, %s", recs[0].Type, recs[1].Type)
	}
	if recs[1].Timestamp == nil || *recs[1].Timestamp != 12.5 {
		t.Errorf("expected timestamp 12.5, got %v", recs[1].Timestamp)
	}
}

func TestParseRecommendationsDegradedInputs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "The video looks fine overall, nothing to add."},
		{"unclosed bracket", "[{'id': 'x', 'type': 'hook'"},
		{"malformed after normalization", "[{'title': 'has \"mixed\" quoting', broken}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, degraded := ParseRecommendations(tt.raw)
			if !degraded {
				t.Error("expected degraded=true")
			}
			if recs == nil {
				t.Error("expected empty slice, got nil")
			}
			if len(recs) != 0 {
				t.Errorf("expected no recommendations, got %d", len(recs))
			}
		})
	}
}

func TestParseRecommendationsCoercion(t *testing.T) {
	raw := `[{"type":"VERTICAL_VIDEO","title":"t","description":"d","priority":"urgent","timestamp":-4}]`

	recs, degraded := ParseRecommendations(raw)
	if degraded {
		t.Fatal("expected degraded=false")
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}

	rec := recs[0]
	if rec.Type != RecTypeGeneral {
		t.Errorf("expected unknown type coerced to general, got %s", rec.Type)
	}
	if rec.Priority != PriorityMedium {
		t.Errorf("expected unknown priority coerced to medium, got %s", rec.Priority)
	}
	if rec.Timestamp != nil {
		t.Errorf("expected negative timestamp dropped, got %v", rec.Timestamp)
	}
	if rec.ID != "rec-1" {
		t.Errorf("expected generated id rec-1, got %s", rec.ID)
	}
}

func TestParseRecommendationsSkipsNonObjects(t *testing.T) {
	raw := `[{"id":"a","type":"hook","title":"t","description":"d","priority":"high"}, "just a string", 42]`

	recs, degraded := ParseRecommendations(raw)
	if degraded {
		t.Fatal("expected degraded=false")
	}
	if len(recs) != 1 {
		t.Fatalf("expected non-object elements skipped, got %d recommendations", len(recs))
	}
}

func TestParseRecommendationsDuplicateIDs(t *testing.T) {
	raw := `[{"id":"dup","type":"hook","title":"a","description":"x","priority":"high"},{"id":"dup","type":"audio","title":"b","description":"y","priority":"low"}]`

	recs, _ := ParseRecommendations(raw)
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	if recs[0].ID == recs[1].ID {
		t.Errorf("expected distinct ids, both are %s", recs[0].ID)
	}
	if recs[0].ID != "dup" {
		t.Errorf("expected first occurrence to keep its id, got %s", recs[0].ID)
	}
}

func TestParseRecommendationsDeterministic(t *testing.T) {
	raw := "noise [{'id': 'r1', 'type': 'audio', 'title': 'a', 'description': 'd', 'priority': 'low', 'timestamp': 7}, {'type': 'cta', 'title': 'b', 'description': 'e', 'priority': 'high'}] noise"

	first, firstDegraded := ParseRecommendations(raw)
	for i := 0; i < 10; i++ {
		again, againDegraded := ParseRecommendations(raw)
		if againDegraded != firstDegraded || !reflect.DeepEqual(first, again) {
			t.Fatalf("parse is not deterministic: %+v vs %+v", first, again)
		}
	}
}
