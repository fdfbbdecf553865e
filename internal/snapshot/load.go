package snapshot

import (
	"fmt"

	"github.com/agentic-research/perch/internal/element"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/oj"
)

// Load reads a snapshot dump from fsys and builds a session around it.
func Load(fsys billy.Filesystem, path string) (*Session, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes builds a session from a raw dump. The expected shape is
//
//	{"app_name": "...", "pid": 1234, "element": {
//	    "attributes": {"AXRole": "AXWindow", ...},
//	    "actions": ["AXPress"],
//	    "children": [ ...same shape... ]}}
//
// Attribute values keep their loose typing (string, bool, number, array).
func LoadBytes(data []byte) (*Session, error) {
	raw, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	top, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse snapshot: top level is not an object")
	}
	rootNode, ok := top["element"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse snapshot: missing element tree")
	}

	s := newSession(stringField(top, "app_name"), int32(intField(top, "pid")))
	s.raw = raw
	if err := s.build(rootNode, noParent); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// build appends a record for node and recurses into its children. The arena
// grows in document order, so element ids are stable within one session.
func (s *Session) build(node map[string]any, parent int32) error {
	id := uint32(len(s.records))
	rec := record{parent: parent, attrs: map[string]element.Value{}}

	if attrs, ok := node["attributes"].(map[string]any); ok {
		for name, raw := range attrs {
			rec.attrs[name] = element.FromAny(raw)
		}
	}
	if actions, ok := node["actions"].([]any); ok {
		for _, a := range actions {
			if name, ok := a.(string); ok {
				rec.actions = append(rec.actions, name)
			}
		}
	}
	s.records = append(s.records, rec)
	if role, ok := rec.attrs[element.AttrRole]; ok {
		if text, isStr := role.Str(); isStr {
			s.indexRole(text, id)
		}
	}

	children, _ := node["children"].([]any)
	for i, raw := range children {
		childNode, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("parse snapshot: child %d of element %d is not an object", i, id)
		}
		childID := uint32(len(s.records))
		s.records[id].children = append(s.records[id].children, childID)
		if err := s.build(childNode, int32(id)); err != nil {
			return err
		}
	}
	return nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func intField(obj map[string]any, key string) int64 {
	switch v := obj[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
