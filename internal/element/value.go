package element

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the loosely typed attribute values a tree can return.
type Kind int

const (
	KindAbsent Kind = iota
	KindString
	KindBool
	KindNumber
	KindArray
)

// Value is a tagged union over the attribute representations the host tree
// exposes: string | bool | number | array-of-Value | absent. The zero Value
// is absent.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
	arr  []Value
}

// Absent returns the absent value.
func Absent() Value { return Value{} }

// String wraps a string attribute value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool wraps a boolean attribute value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a numeric attribute value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Array wraps an array attribute value.
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string variant. ok is false for any other kind.
func (v Value) Str() (s string, ok bool) {
	return v.str, v.kind == KindString
}

// Bool returns the boolean variant. ok is false for any other kind.
func (v Value) Bool() (b, ok bool) {
	return v.b, v.kind == KindBool
}

// Float returns the numeric variant. ok is false for any other kind.
func (v Value) Float() (f float64, ok bool) {
	return v.num, v.kind == KindNumber
}

// Items returns the array variant. ok is false for any other kind.
func (v Value) Items() (items []Value, ok bool) {
	return v.arr, v.kind == KindArray
}

// Strings flattens an array value into its textual items. A string value
// yields a single-item slice. ok is false for other kinds.
func (v Value) Strings() (items []string, ok bool) {
	switch v.kind {
	case KindString:
		return []string{v.str}, true
	case KindArray:
		out := make([]string, 0, len(v.arr))
		for _, item := range v.arr {
			out = append(out, item.Text())
		}
		return out, true
	default:
		return nil, false
	}
}

// Text renders the generic textual representation used by the dispatcher's
// fallback path when a raw value is not already a string.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		// Integral numbers render without a fractional part so that pid
		// and index attributes compare as plain decimal strings.
		if v.num == float64(int64(v.num)) {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.Text()
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// FromAny converts a loosely typed decoded value (as produced by a JSON
// parser) into a Value. Unsupported shapes render through their string form.
func FromAny(raw any) Value {
	switch t := raw.(type) {
	case nil:
		return Absent()
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case int64:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			items[i] = FromAny(e)
		}
		return Array(items...)
	default:
		return String(fmt.Sprint(raw))
	}
}
