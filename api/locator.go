// Package api defines the value types shared between the matching engine and
// its callers: match types, criteria, path steps, and locators. All types are
// immutable value objects from the engine's point of view; navigation never
// mutates a Locator.
package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MatchType selects the comparison algorithm applied to a criterion.
type MatchType int

const (
	// Exact requires full equality.
	Exact MatchType = iota
	// Contains requires the actual value to contain the expected substring.
	Contains
	// Prefix requires the actual value to start with the expected string.
	Prefix
	// Suffix requires the actual value to end with the expected string.
	Suffix
	// Regex treats the expected string as a regular expression pattern.
	Regex
	// ContainsAny splits the expected string on commas and matches if the
	// actual value contains any listed token. Vacuously true when both the
	// token list and the actual value are empty.
	ContainsAny
)

var matchTypeNames = map[MatchType]string{
	Exact:       "Exact",
	Contains:    "Contains",
	Prefix:      "Prefix",
	Suffix:      "Suffix",
	Regex:       "Regex",
	ContainsAny: "ContainsAny",
}

func (m MatchType) String() string {
	if s, ok := matchTypeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("MatchType(%d)", int(m))
}

// ParseMatchType resolves a match-type name case-insensitively.
func ParseMatchType(s string) (MatchType, error) {
	for mt, name := range matchTypeNames {
		if strings.EqualFold(name, s) {
			return mt, nil
		}
	}
	return Exact, fmt.Errorf("unknown match type %q", s)
}

// MarshalJSON encodes the match type by name.
func (m MatchType) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a match-type name; an empty string means Exact.
func (m *MatchType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*m = Exact
		return nil
	}
	mt, err := ParseMatchType(s)
	if err != nil {
		return err
	}
	*m = mt
	return nil
}

// Criterion is a single attribute test: attribute key, expected value, and an
// optional match-type override. Keys resolve case-insensitively; unknown keys
// fall through to the element's raw named-attribute accessor.
type Criterion struct {
	// Attribute is the key under test (e.g. "role", "title", "domclasslist").
	Attribute string `json:"attribute"`
	// Expected is the value to compare against. An empty string paired with
	// an Exact match encodes "I expect this attribute absent".
	Expected string `json:"expected"`
	// MatchType overrides the step-level match type when non-nil.
	MatchType *MatchType `json:"match_type,omitempty"`
}

// DefaultMaxDepth is the descent bound applied when a step does not set one:
// match only among the immediate children of the current node, or the current
// node itself if no child matches.
const DefaultMaxDepth = 1

// PathStep is one hop of a Locator: a criteria set plus step-level matching
// options.
type PathStep struct {
	// Criteria to evaluate against each candidate node. A step with zero
	// criteria trivially matches every node (vacuous-match policy, used for
	// "descend one level unconditionally" steps).
	Criteria []Criterion `json:"criteria"`
	// MatchAll selects ALL semantics when true (the default) and ANY
	// semantics when false.
	MatchAll bool `json:"match_all"`
	// MatchType is the shared default for criteria without an override.
	MatchType MatchType `json:"match_type"`
	// MaxDepth bounds the descent for this step. Values above 1 switch the
	// step to bounded breadth-first search from the current node inclusive.
	// Zero means DefaultMaxDepth.
	MaxDepth int `json:"max_depth"`
}

// UnmarshalJSON applies the documented defaults (MatchAll=true,
// MaxDepth=DefaultMaxDepth) when the fields are omitted.
func (p *PathStep) UnmarshalJSON(data []byte) error {
	var raw struct {
		Criteria  []Criterion `json:"criteria"`
		MatchAll  *bool       `json:"match_all"`
		MatchType MatchType   `json:"match_type"`
		MaxDepth  *int        `json:"max_depth"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Criteria = raw.Criteria
	p.MatchType = raw.MatchType
	p.MatchAll = true
	if raw.MatchAll != nil {
		p.MatchAll = *raw.MatchAll
	}
	p.MaxDepth = DefaultMaxDepth
	if raw.MaxDepth != nil {
		p.MaxDepth = *raw.MaxDepth
	}
	return nil
}

// Step builds a PathStep with the default ALL/Exact/depth-1 semantics.
func Step(criteria ...Criterion) PathStep {
	return PathStep{Criteria: criteria, MatchAll: true, MatchType: Exact, MaxDepth: DefaultMaxDepth}
}

// Locator is an ordered sequence of path steps describing how to walk from a
// root node to a target node. Locators are stateless and reusable.
type Locator []PathStep

// ApplicationAttribute is the sentinel pseudo-criterion attribute. A step
// whose first criterion resolves to it marks root context and is skipped
// without consuming a tree level.
const ApplicationAttribute = "application"
