package match

import (
	"errors"
	"strconv"
	"strings"

	"github.com/agentic-research/perch/api"
	"github.com/agentic-research/perch/internal/derive"
	"github.com/agentic-research/perch/internal/element"
	"github.com/agentic-research/perch/internal/trace"
)

// Matcher evaluates criteria against elements. The zero Matcher is usable;
// Trace, when set, receives per-criterion pass/fail events.
type Matcher struct {
	Trace trace.Sink
}

// MatchSingle tests one criterion against an element. Key resolution is
// case-insensitive with synonyms; unknown keys fall through to a generic
// case-sensitive comparison against the element's raw named-attribute
// accessor. Routing is decided purely by key identity, never by inspecting
// the runtime value.
func (m *Matcher) MatchSingle(el element.Element, key, expected string, mt api.MatchType) bool {
	matched := m.matchResolved(el, strings.ToLower(strings.TrimSpace(key)), key, expected, mt)
	trace.Emit(m.Trace, trace.Debug, "criterion", "criterion evaluated", map[string]any{
		"attribute": key,
		"expected":  expected,
		"matchType": mt.String(),
		"matched":   matched,
	})
	return matched
}

func (m *Matcher) matchResolved(el element.Element, key, rawKey, expected string, mt api.MatchType) bool {
	switch key {
	case api.ApplicationAttribute:
		// Root-context marker; the navigator skips these steps, so an
		// element asked directly always satisfies it.
		return true

	case "role":
		actual, ok := m.readString(el, element.AttrRole)
		return CompareString(actual, ok, expected, mt, false)

	case "subrole":
		actual, ok := m.readString(el, element.AttrSubrole)
		return CompareString(actual, ok, expected, mt, false)

	case "id", "identifier":
		actual, ok := m.readString(el, element.AttrIdentifier)
		return CompareString(actual, ok, expected, mt, true)

	case "pid":
		pid, err := el.PID()
		if err != nil {
			m.warnRead(el, "pid", err)
			return false
		}
		return CompareString(strconv.FormatInt(int64(pid), 10), true, expected, mt, true)

	case "domclasslist", "classlist", "dom":
		return m.matchClassList(el, expected, mt)

	case "isignored", "ignored":
		// Ignored has a computed default of false, so the attribute is
		// never absent.
		actual, ok := m.readBool(el, element.AttrIgnored)
		if !ok {
			actual = false
		}
		return CompareBool(actual, true, expected)

	case "name", "computedname":
		name := derive.ComputedName(el)
		return CompareString(name, name != "", expected, mt, false)

	case "namewithvalue", "computednamewithvalue":
		name := derive.ComputedNameWithValue(el)
		return CompareString(name, name != "", expected, mt, false)

	case "enabled":
		actual, ok := m.readBool(el, element.AttrEnabled)
		return CompareBool(actual, ok, expected)

	case "focused":
		actual, ok := m.readBool(el, element.AttrFocused)
		return CompareBool(actual, ok, expected)

	case "hidden":
		actual, ok := m.readBool(el, element.AttrHidden)
		return CompareBool(actual, ok, expected)

	case "busy":
		actual, ok := m.readBool(el, element.AttrBusy)
		return CompareBool(actual, ok, expected)

	case "main":
		actual, ok := m.readBool(el, element.AttrMain)
		return CompareBool(actual, ok, expected)

	case "actions", "actionnames":
		actions, err := el.ActionNames()
		if err != nil {
			m.warnRead(el, "actionNames", err)
			return CompareStringSet(nil, false, splitTokens(expected))
		}
		return CompareStringSet(actions, true, splitTokens(expected))

	case "allowedvalues":
		items, ok := m.readStrings(el, element.AttrAllowedValues)
		return CompareStringSet(items, ok, splitTokens(expected))

	case "children":
		roles, ok := m.childRoles(el)
		return CompareStringSet(roles, ok, splitTokens(expected))

	default:
		return m.matchGeneric(el, rawKey, expected, mt)
	}
}

// matchClassList implements the DOM-class-list family. The raw attribute may
// be an array of class tokens or a single space-separated string; both
// support all six match types against individual tokens, with Contains and
// ContainsAny additionally tried against the whole joined string. When the
// class list yields no match the key falls back to the DOM identifier, then
// to the legacy identifier, since not every host UI framework exposes DOM
// metadata consistently. The first successful fallback match wins.
func (m *Matcher) matchClassList(el element.Element, expected string, mt api.MatchType) bool {
	if tokens, joined, ok := m.readClassList(el); ok {
		for _, tok := range tokens {
			if CompareString(tok, true, expected, mt, false) {
				return true
			}
		}
		if mt == api.Contains || mt == api.ContainsAny {
			if CompareString(joined, joined != "", expected, mt, false) {
				return true
			}
		}
	}
	if actual, ok := m.readString(el, element.AttrDOMIdentifier); ok {
		if CompareString(actual, true, expected, mt, true) {
			return true
		}
	}
	if actual, ok := m.readString(el, element.AttrIdentifier); ok {
		if CompareString(actual, true, expected, mt, true) {
			return true
		}
	}
	return false
}

// readClassList normalizes the two class-list representations into tokens
// plus the space-joined whole.
func (m *Matcher) readClassList(el element.Element) (tokens []string, joined string, ok bool) {
	v, err := el.Attribute(element.AttrDOMClassList)
	if err != nil {
		m.warnAbsent(el, element.AttrDOMClassList, err)
		return nil, "", false
	}
	switch v.Kind() {
	case element.KindString:
		s, _ := v.Str()
		return strings.Fields(s), s, true
	case element.KindArray:
		items, _ := v.Strings()
		return items, strings.Join(items, " "), true
	default:
		return nil, "", false
	}
}

// matchGeneric is the open-ended fallback: read the raw attribute, render
// non-string values through their generic textual representation, and compare
// case-sensitively. Keys without the AX prefix are retried with the
// AX-prefixed spelling so that "title" reaches AXTitle.
func (m *Matcher) matchGeneric(el element.Element, key, expected string, mt api.MatchType) bool {
	v, err := el.Attribute(key)
	if err != nil && !strings.HasPrefix(key, "AX") {
		v, err = el.Attribute(axSpelling(key))
	}
	if err != nil {
		m.warnAbsent(el, key, err)
		return CompareString("", false, expected, mt, true)
	}
	text := v.Text()
	return CompareString(text, v.Kind() != element.KindAbsent, expected, mt, true)
}

// axSpelling maps a bare key to its AX attribute name: "title" → "AXTitle".
func axSpelling(key string) string {
	if key == "" {
		return key
	}
	return "AX" + strings.ToUpper(key[:1]) + key[1:]
}

func (m *Matcher) childRoles(el element.Element) ([]string, bool) {
	children, err := el.Children()
	if err != nil {
		m.warnRead(el, "children", err)
		return nil, false
	}
	roles := make([]string, 0, len(children))
	for _, c := range children {
		roles = append(roles, element.Role(c))
	}
	return roles, true
}

func (m *Matcher) readString(el element.Element, name string) (string, bool) {
	v, err := el.Attribute(name)
	if err != nil {
		m.warnAbsent(el, name, err)
		return "", false
	}
	if v.Kind() == element.KindAbsent {
		return "", false
	}
	return v.Text(), true
}

func (m *Matcher) readBool(el element.Element, name string) (value, ok bool) {
	v, err := el.Attribute(name)
	if err != nil {
		m.warnAbsent(el, name, err)
		return false, false
	}
	return v.Bool()
}

func (m *Matcher) readStrings(el element.Element, name string) ([]string, bool) {
	v, err := el.Attribute(name)
	if err != nil {
		m.warnAbsent(el, name, err)
		return nil, false
	}
	return v.Strings()
}

// warnAbsent traces unreadable-node errors without aborting the match; a
// stale handle degrades to "attribute absent" so that one bad node does not
// sink an entire search. Plain absence stays silent.
func (m *Matcher) warnAbsent(el element.Element, attr string, err error) {
	if errors.Is(err, element.ErrAttributeAbsent) {
		return
	}
	m.warnRead(el, attr, err)
}

func (m *Matcher) warnRead(el element.Element, attr string, err error) {
	trace.Emit(m.Trace, trace.Warn, "attribute.read", "attribute read failed", map[string]any{
		"element":   el.ID(),
		"attribute": attr,
		"error":     err.Error(),
	})
}
