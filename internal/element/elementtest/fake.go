// Package elementtest provides an in-memory Element fake for engine tests.
// Unlike the snapshot session it allows arbitrary tree shapes, including
// cyclic child links, and per-attribute read errors.
package elementtest

import "github.com/agentic-research/perch/internal/element"

// Fake implements element.Element from plain struct fields.
type Fake struct {
	Name     string
	Pid      int32
	Attrs    map[string]element.Value
	Actions  []string
	ReadErrs map[string]error
	Kids     []*Fake
	Up       *Fake

	PidErr     error
	KidsErr    error
	ActionsErr error
}

// New builds a fake with the given id and role.
func New(name, role string) *Fake {
	f := &Fake{Name: name, Attrs: map[string]element.Value{}}
	if role != "" {
		f.Attrs[element.AttrRole] = element.String(role)
	}
	return f
}

// Set assigns a string attribute and returns the fake for chaining.
func (f *Fake) Set(attr, value string) *Fake {
	f.Attrs[attr] = element.String(value)
	return f
}

// SetValue assigns an arbitrary attribute value.
func (f *Fake) SetValue(attr string, v element.Value) *Fake {
	f.Attrs[attr] = v
	return f
}

// Add appends children and wires their parent links.
func (f *Fake) Add(children ...*Fake) *Fake {
	for _, c := range children {
		c.Up = f
		f.Kids = append(f.Kids, c)
	}
	return f
}

func (f *Fake) ID() string { return f.Name }

func (f *Fake) PID() (int32, error) {
	if f.PidErr != nil {
		return 0, f.PidErr
	}
	return f.Pid, nil
}

func (f *Fake) Attribute(name string) (element.Value, error) {
	if err, ok := f.ReadErrs[name]; ok {
		return element.Absent(), err
	}
	if v, ok := f.Attrs[name]; ok {
		return v, nil
	}
	return element.Absent(), element.ErrAttributeAbsent
}

func (f *Fake) ActionNames() ([]string, error) {
	if f.ActionsErr != nil {
		return nil, f.ActionsErr
	}
	return f.Actions, nil
}

func (f *Fake) Parent() (element.Element, error) {
	if f.Up == nil {
		return nil, nil
	}
	return f.Up, nil
}

func (f *Fake) Children() ([]element.Element, error) {
	if f.KidsErr != nil {
		return nil, f.KidsErr
	}
	out := make([]element.Element, len(f.Kids))
	for i, c := range f.Kids {
		out[i] = c
	}
	return out, nil
}
