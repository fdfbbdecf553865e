// Package derive computes element attributes that are not stored on the node:
// the human-readable display name, the generated path string, and
// clickability. Derivations run fresh on every call; the underlying fields
// can change between reads, so nothing here is memoized.
package derive

import (
	"strings"

	"github.com/agentic-research/perch/internal/element"
)

// ComputedName picks the most human-meaningful label for an element: the
// first non-empty of title, description, identifier. The current value is
// deliberately excluded here; callers that need it for disambiguating
// otherwise-identical siblings use ComputedNameWithValue.
func ComputedName(el element.Element) string {
	if t := element.Title(el); t != "" {
		return t
	}
	if d := element.Description(el); d != "" {
		return d
	}
	return element.Identifier(el)
}

// ComputedNameWithValue appends the element's current string value to the
// computed name, space-separated, so that e.g. labeled radio buttons sharing
// a group name stay distinguishable.
func ComputedNameWithValue(el element.Element) string {
	name := ComputedName(el)
	val, ok := element.StringAttr(el, element.AttrValue)
	if !ok || val == "" {
		return name
	}
	if name == "" {
		return val
	}
	return name + " " + val
}

// Clickable reports whether an element looks actionable: a button role, or a
// press action among its supported actions.
func Clickable(el element.Element) bool {
	if strings.EqualFold(element.Role(el), element.RoleButton) {
		return true
	}
	actions, err := el.ActionNames()
	if err != nil {
		return false
	}
	for _, a := range actions {
		if a == element.ActionPress {
			return true
		}
	}
	return false
}

// PathString generates a debuggable path from the root down to el, one
// segment per ancestor: the role, plus the computed name in brackets when one
// exists, e.g. "AXWindow[Untitled]/AXGroup/AXButton[Save]".
func PathString(el element.Element) string {
	var segments []string
	for cur := el; cur != nil; {
		segments = append(segments, segmentFor(cur))
		parent, err := cur.Parent()
		if err != nil {
			break
		}
		cur = parent
	}
	// Reverse into root-first order.
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

func segmentFor(el element.Element) string {
	role := element.Role(el)
	if role == "" {
		role = "?"
	}
	if name := ComputedName(el); name != "" {
		return role + "[" + name + "]"
	}
	return role
}
