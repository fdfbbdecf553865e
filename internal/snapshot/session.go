// Package snapshot loads a JSON dump of a UI element tree into an in-process
// session implementing the element interfaces. The dump shape is an
// application header plus a nested element tree of attributes, actions, and
// children, as produced by the common accessibility exporters.
//
// The underlying tree model is not safe for concurrent access, so every read
// against a session funnels onto one dedicated worker goroutine. The engine
// never introduces parallelism of its own; the worker only serializes.
package snapshot

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/perch/internal/element"
)

var (
	// ErrStaleElement is returned for reads against an invalidated element
	// handle. The match layer recovers it to "attribute absent".
	ErrStaleElement = errors.New("stale element handle")
	// ErrSessionClosed is returned for reads after Close.
	ErrSessionClosed = errors.New("session closed")
)

// noParent marks the root record.
const noParent = -1

// record is one element of the arena. Parent/child links are id references,
// never owned pointers, so the tree carries no cyclic ownership.
type record struct {
	attrs    map[string]element.Value
	actions  []string
	parent   int32
	children []uint32
	stale    bool
}

// Session owns a loaded tree and the single serialized execution context all
// reads dispatch through.
type Session struct {
	appName string
	pid     int32
	records []record
	// roleIndex maps a lowercased role to the set of element ids carrying
	// it, for FindByRole.
	roleIndex map[string]*roaring.Bitmap
	// raw keeps the decoded dump for JSONPath queries over the snapshot.
	raw any

	calls     chan func()
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(appName string, pid int32) *Session {
	s := &Session{
		appName:   appName,
		pid:       pid,
		roleIndex: make(map[string]*roaring.Bitmap),
		calls:     make(chan func()),
		done:      make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Session) loop() {
	for {
		select {
		case fn := <-s.calls:
			fn()
		case <-s.done:
			return
		}
	}
}

// do runs fn on the session worker and waits for it. All tree state is only
// ever touched from inside fn.
func (s *Session) do(fn func()) error {
	ran := make(chan struct{})
	select {
	case s.calls <- func() { fn(); close(ran) }:
		<-ran
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// AppName reports the application the snapshot was taken from.
func (s *Session) AppName() string { return s.appName }

// PID reports the owning process id of the snapshot.
func (s *Session) PID() int32 { return s.pid }

// Raw exposes the decoded dump for read-only queries.
func (s *Session) Raw() any { return s.raw }

// Root returns the application root element.
func (s *Session) Root() element.Element {
	return &sessionElement{s: s, id: 0}
}

// FindByRole returns every element whose role equals role, case-insensitively,
// in arena (document) order.
func (s *Session) FindByRole(role string) []element.Element {
	var out []element.Element
	_ = s.do(func() {
		bm, ok := s.roleIndex[strings.ToLower(role)]
		if !ok {
			return
		}
		it := bm.Iterator()
		for it.HasNext() {
			out = append(out, &sessionElement{s: s, id: it.Next()})
		}
	})
	return out
}

// Len reports the number of elements in the snapshot.
func (s *Session) Len() int { return len(s.records) }

// Invalidate marks an element handle stale, simulating the live tree dropping
// the node between reads. Returns false for handles from other sessions.
func (s *Session) Invalidate(el element.Element) bool {
	se, ok := el.(*sessionElement)
	if !ok || se.s != s {
		return false
	}
	invalidated := false
	_ = s.do(func() {
		if int(se.id) < len(s.records) {
			s.records[se.id].stale = true
			invalidated = true
		}
	})
	return invalidated
}

// Close stops the worker. In-flight reads finish; later reads fail with
// ErrSessionClosed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// indexRole registers an element id under its lowercased role.
func (s *Session) indexRole(role string, id uint32) {
	if role == "" {
		return
	}
	key := strings.ToLower(role)
	bm, ok := s.roleIndex[key]
	if !ok {
		bm = roaring.New()
		s.roleIndex[key] = bm
	}
	bm.Add(id)
}

// sessionElement is the Element handle over one arena record.
type sessionElement struct {
	s  *Session
	id uint32
}

func (e *sessionElement) ID() string {
	return "el-" + strconv.FormatUint(uint64(e.id), 10)
}

func (e *sessionElement) PID() (int32, error) {
	var pid int32
	var err error
	if derr := e.s.do(func() {
		if e.s.records[e.id].stale {
			err = ErrStaleElement
			return
		}
		pid = e.s.pid
	}); derr != nil {
		return 0, derr
	}
	return pid, err
}

func (e *sessionElement) Attribute(name string) (element.Value, error) {
	var v element.Value
	var err error
	if derr := e.s.do(func() {
		rec := &e.s.records[e.id]
		if rec.stale {
			err = ErrStaleElement
			return
		}
		val, ok := rec.attrs[name]
		if !ok {
			err = element.ErrAttributeAbsent
			return
		}
		v = val
	}); derr != nil {
		return element.Absent(), derr
	}
	return v, err
}

func (e *sessionElement) ActionNames() ([]string, error) {
	var actions []string
	var err error
	if derr := e.s.do(func() {
		rec := &e.s.records[e.id]
		if rec.stale {
			err = ErrStaleElement
			return
		}
		actions = append([]string(nil), rec.actions...)
	}); derr != nil {
		return nil, derr
	}
	return actions, err
}

func (e *sessionElement) Parent() (element.Element, error) {
	var parent element.Element
	var err error
	if derr := e.s.do(func() {
		rec := &e.s.records[e.id]
		if rec.stale {
			err = ErrStaleElement
			return
		}
		if rec.parent != noParent {
			parent = &sessionElement{s: e.s, id: uint32(rec.parent)}
		}
	}); derr != nil {
		return nil, derr
	}
	return parent, err
}

func (e *sessionElement) Children() ([]element.Element, error) {
	var children []element.Element
	var err error
	if derr := e.s.do(func() {
		rec := &e.s.records[e.id]
		if rec.stale {
			err = ErrStaleElement
			return
		}
		children = make([]element.Element, len(rec.children))
		for i, id := range rec.children {
			children[i] = &sessionElement{s: e.s, id: id}
		}
	}); derr != nil {
		return nil, derr
	}
	return children, err
}
