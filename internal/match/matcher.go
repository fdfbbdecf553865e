package match

import (
	"github.com/agentic-research/perch/api"
	"github.com/agentic-research/perch/internal/element"
)

// MatchesAll reports whether every criterion matches the element. An empty
// criteria list is vacuously true: locator steps with no criteria match any
// node. Each criterion may override the shared match type.
func (m *Matcher) MatchesAll(el element.Element, criteria []api.Criterion, mt api.MatchType) bool {
	for _, c := range criteria {
		if !m.MatchSingle(el, c.Attribute, c.Expected, effectiveType(c, mt)) {
			return false
		}
	}
	return true
}

// MatchesAny reports whether at least one criterion matches the element. An
// empty criteria list is false: "any of zero conditions" is defined as
// impossible, not trivially true. The asymmetry with MatchesAll is a fixed
// contract relied on by existing locators.
func (m *Matcher) MatchesAny(el element.Element, criteria []api.Criterion, mt api.MatchType) bool {
	for _, c := range criteria {
		if m.MatchSingle(el, c.Attribute, c.Expected, effectiveType(c, mt)) {
			return true
		}
	}
	return false
}

func effectiveType(c api.Criterion, fallback api.MatchType) api.MatchType {
	if c.MatchType != nil {
		return *c.MatchType
	}
	return fallback
}
