package api

import (
	"encoding/json"
	"testing"
)

func TestParseMatchType(t *testing.T) {
	for name, want := range map[string]MatchType{
		"Exact":       Exact,
		"contains":    Contains,
		"PREFIX":      Prefix,
		"suffix":      Suffix,
		"regex":       Regex,
		"containsany": ContainsAny,
	} {
		got, err := ParseMatchType(name)
		if err != nil {
			t.Fatalf("ParseMatchType(%q): %v", name, err)
		}
		if got != want {
			t.Errorf("ParseMatchType(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := ParseMatchType("fuzzy"); err == nil {
		t.Error("unknown match type should error")
	}
}

func TestMatchTypeJSONRoundTrip(t *testing.T) {
	for _, mt := range []MatchType{Exact, Contains, Prefix, Suffix, Regex, ContainsAny} {
		data, err := json.Marshal(mt)
		if err != nil {
			t.Fatalf("marshal %v: %v", mt, err)
		}
		var back MatchType
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != mt {
			t.Errorf("round trip %v -> %s -> %v", mt, data, back)
		}
	}
}

func TestPathStepUnmarshalDefaults(t *testing.T) {
	var step PathStep
	if err := json.Unmarshal([]byte(`{"criteria":[{"attribute":"role","expected":"AXButton"}]}`), &step); err != nil {
		t.Fatal(err)
	}
	if !step.MatchAll {
		t.Error("MatchAll should default to true")
	}
	if step.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", step.MaxDepth, DefaultMaxDepth)
	}
	if step.MatchType != Exact {
		t.Errorf("MatchType = %v, want Exact", step.MatchType)
	}

	if err := json.Unmarshal([]byte(`{"match_all": false, "max_depth": 5}`), &step); err != nil {
		t.Fatal(err)
	}
	if step.MatchAll {
		t.Error("explicit match_all=false should stick")
	}
	if step.MaxDepth != 5 {
		t.Errorf("MaxDepth = %d, want 5", step.MaxDepth)
	}
}

func TestStepDefaults(t *testing.T) {
	step := Step(Criterion{Attribute: "role", Expected: "AXButton"})
	if !step.MatchAll || step.MatchType != Exact || step.MaxDepth != DefaultMaxDepth {
		t.Errorf("Step() defaults wrong: %+v", step)
	}
}
