package match

import (
	"testing"

	"github.com/agentic-research/perch/api"
	"github.com/agentic-research/perch/internal/element"
	"github.com/agentic-research/perch/internal/element/elementtest"
	"github.com/stretchr/testify/assert"
)

func TestMatchesAll_EmptyIsVacuouslyTrue(t *testing.T) {
	m := &Matcher{}
	el := elementtest.New("any", "AXGroup")

	assert.True(t, m.MatchesAll(el, nil, api.Exact))
	assert.True(t, m.MatchesAll(el, []api.Criterion{}, api.Exact))
}

func TestMatchesAny_EmptyIsFalse(t *testing.T) {
	m := &Matcher{}
	el := elementtest.New("any", "AXGroup")

	// Deliberately asymmetric with MatchesAll.
	assert.False(t, m.MatchesAny(el, nil, api.Exact))
	assert.False(t, m.MatchesAny(el, []api.Criterion{}, api.Exact))
}

func TestMatchesAll_AllMustPass(t *testing.T) {
	m := &Matcher{}
	el := elementtest.New("b1", "AXButton").Set(element.AttrTitle, "Cancel")

	both := []api.Criterion{
		{Attribute: "role", Expected: "AXButton"},
		{Attribute: "title", Expected: "Cancel"},
	}
	assert.True(t, m.MatchesAll(el, both, api.Exact))

	oneWrong := []api.Criterion{
		{Attribute: "role", Expected: "AXButton"},
		{Attribute: "title", Expected: "Save"},
	}
	assert.False(t, m.MatchesAll(el, oneWrong, api.Exact))
	assert.True(t, m.MatchesAny(el, oneWrong, api.Exact))
}

func TestCriterionMatchTypeOverride(t *testing.T) {
	m := &Matcher{}
	el := elementtest.New("b1", "AXButton").Set(element.AttrTitle, "Save document")

	contains := api.Contains
	criteria := []api.Criterion{
		{Attribute: "role", Expected: "AXButton"},
		{Attribute: "title", Expected: "docu", MatchType: &contains},
	}
	// The shared Exact default applies to role; the override to title.
	assert.True(t, m.MatchesAll(el, criteria, api.Exact))
}
