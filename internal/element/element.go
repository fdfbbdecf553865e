// Package element models handles into a live accessibility tree. An Element
// is lookup-only: parent and children are relations resolved per call, never
// owned pointers, and two reads of the same element may observe different
// attribute snapshots because the underlying tree can mutate between reads.
package element

import "errors"

// ErrAttributeAbsent is returned by Attribute when the element does not carry
// the named attribute. Callers that treat absence as an ordinary non-match
// should test for it with errors.Is.
var ErrAttributeAbsent = errors.New("attribute absent")

// Well-known attribute names, following the AX vocabulary the host trees use.
const (
	AttrRole          = "AXRole"
	AttrSubrole       = "AXSubrole"
	AttrTitle         = "AXTitle"
	AttrDescription   = "AXDescription"
	AttrIdentifier    = "AXIdentifier"
	AttrValue         = "AXValue"
	AttrEnabled       = "AXEnabled"
	AttrFocused       = "AXFocused"
	AttrHidden        = "AXHidden"
	AttrBusy          = "AXElementBusy"
	AttrMain          = "AXMain"
	AttrIgnored       = "AXIgnored"
	AttrDOMClassList  = "AXDOMClassList"
	AttrDOMIdentifier = "AXDOMIdentifier"
	AttrAllowedValues = "AXAllowedValues"
)

// RoleButton and ActionPress feed the clickability inference.
const (
	RoleButton  = "AXButton"
	ActionPress = "AXPress"
)

// Element is a handle to one node of a live tree session. Reads are
// synchronous round-trips to the owning session; a failed read (stale handle,
// subsystem error) surfaces as an error, which the match layer recovers to
// "attribute absent" rather than propagating.
type Element interface {
	// ID is a session-scoped identity used to key visited sets during
	// traversal. It carries no cross-session stability guarantee.
	ID() string

	// PID is the owning process id.
	PID() (int32, error)

	// Attribute reads the named attribute via the open-ended accessor.
	// Absence is reported as ErrAttributeAbsent.
	Attribute(name string) (Value, error)

	// ActionNames lists the supported action names. Order is irrelevant.
	ActionNames() ([]string, error)

	// Parent resolves the weak back-reference. A root returns nil, nil.
	Parent() (Element, error)

	// Children resolves the ordered child sequence. The result is never
	// cached by the engine; each call re-queries the live tree.
	Children() ([]Element, error)
}

// StringAttr reads an attribute and renders it as text. ok is false when the
// attribute is absent or unreadable.
func StringAttr(el Element, name string) (s string, ok bool) {
	v, err := el.Attribute(name)
	if err != nil || v.Kind() == KindAbsent {
		return "", false
	}
	return v.Text(), true
}

// BoolAttr reads a boolean attribute. ok is false when the attribute is
// absent, unreadable, or not a boolean.
func BoolAttr(el Element, name string) (b, ok bool) {
	v, err := el.Attribute(name)
	if err != nil {
		return false, false
	}
	return v.Bool()
}

// Role reads the element's role, or "" when unreadable.
func Role(el Element) string {
	s, _ := StringAttr(el, AttrRole)
	return s
}

// Subrole reads the element's subrole, or "" when unreadable.
func Subrole(el Element) string {
	s, _ := StringAttr(el, AttrSubrole)
	return s
}

// Title reads the element's title, or "" when unreadable.
func Title(el Element) string {
	s, _ := StringAttr(el, AttrTitle)
	return s
}

// Description reads the element's description, or "" when unreadable.
func Description(el Element) string {
	s, _ := StringAttr(el, AttrDescription)
	return s
}

// Identifier reads the element's identifier, or "" when unreadable.
func Identifier(el Element) string {
	s, _ := StringAttr(el, AttrIdentifier)
	return s
}
