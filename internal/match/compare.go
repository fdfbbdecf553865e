// Package match implements the comparison semantics of the engine: the pure
// string/boolean/set comparators, the per-attribute dispatch, and the
// ALL/ANY criteria evaluators.
package match

import (
	"regexp"
	"strings"

	"github.com/agentic-research/perch/api"
)

// CompareString tests an attribute value against an expected string under the
// given match type. present=false encodes an absent or unreadable attribute.
//
// Absence policy: an absent or empty actual matches only "expect it absent"
// forms: Exact with an empty expected, or ContainsAny with an empty token
// list. Many attributes are legitimately absent, and callers encode "I expect
// it absent" as an empty expected string.
func CompareString(actual string, present bool, expected string, mt api.MatchType, caseSensitive bool) bool {
	if !present || actual == "" {
		switch mt {
		case api.Exact:
			return expected == ""
		case api.ContainsAny:
			return len(splitTokens(expected)) == 0
		default:
			return false
		}
	}

	if !caseSensitive {
		actual = strings.ToLower(actual)
		expected = strings.ToLower(expected)
	}

	switch mt {
	case api.Exact:
		return actual == expected
	case api.Contains:
		return strings.Contains(actual, expected)
	case api.Prefix:
		return strings.HasPrefix(actual, expected)
	case api.Suffix:
		return strings.HasSuffix(actual, expected)
	case api.Regex:
		matched, err := regexp.MatchString(expected, actual)
		if err != nil {
			return false
		}
		return matched
	case api.ContainsAny:
		tokens := splitTokens(expected)
		if len(tokens) == 0 {
			// Vacuous only when the actual side is empty too, and the
			// empty-actual case was handled above.
			return false
		}
		for _, tok := range tokens {
			if strings.Contains(actual, tok) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// CompareBool tests a boolean attribute against "true"/anything-else
// expectations. Unlike the string comparator this one is absence-intolerant:
// an absent actual never matches. The asymmetry is a fixed contract;
// unifying it would change matching behavior for existing locators.
func CompareBool(actual, present bool, expected string) bool {
	if !present {
		return false
	}
	return actual == strings.EqualFold(strings.TrimSpace(expected), "true")
}

// CompareStringSet compares actual and expected as sets: order-irrelevant,
// duplicates collapsed. An absent actual matches only the empty expected set.
func CompareStringSet(actual []string, present bool, expected []string) bool {
	if !present {
		return len(toSet(expected)) == 0
	}
	a := toSet(actual)
	e := toSet(expected)
	if len(a) != len(e) {
		return false
	}
	for k := range e {
		if _, ok := a[k]; !ok {
			return false
		}
	}
	return true
}

// splitTokens splits a comma-separated expected list, trimming whitespace and
// dropping empty entries.
func splitTokens(expected string) []string {
	if expected == "" {
		return nil
	}
	parts := strings.Split(expected, ",")
	tokens := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
