// Package navigate walks a live element tree from a root through an ordered
// sequence of path steps. The walk is greedy and non-backtracking: once a
// step commits to a node, earlier steps are never revisited, and any step
// with no match fails the whole navigation.
package navigate

import (
	"strings"

	"github.com/agentic-research/perch/api"
	"github.com/agentic-research/perch/internal/element"
	"github.com/agentic-research/perch/internal/locator"
	"github.com/agentic-research/perch/internal/match"
	"github.com/agentic-research/perch/internal/trace"
)

// ErrMalformedLocator is returned when locator input cannot be parsed into
// any criteria. It is the only caller-visible failure distinct from ordinary
// absence.
var ErrMalformedLocator = locator.ErrMalformed

// Navigator resolves locators against a tree session. The engine performs no
// internal parallelism: a navigation is a strictly sequential walk whose
// element reads funnel through the session's serialized execution context.
type Navigator struct {
	Matcher *match.Matcher
	Trace   trace.Sink
}

// New builds a Navigator emitting trace events into sink (nil for none).
func New(sink trace.Sink) *Navigator {
	return &Navigator{Matcher: &match.Matcher{Trace: sink}, Trace: sink}
}

// Navigate walks from root through every step of the locator and returns the
// final node. Absence (no matching node) is (nil, nil), never an error.
// maxDepth is the shared descent bound for steps that do not set their own.
func (n *Navigator) Navigate(root element.Element, loc api.Locator, maxDepth int) (element.Element, error) {
	if maxDepth <= 0 {
		maxDepth = api.DefaultMaxDepth
	}
	cur := root
	for i, step := range loc {
		if isApplicationStep(step) {
			// Root-context marker: does not consume a tree level.
			trace.Emit(n.Trace, trace.Debug, "step.skip", "application pseudo-step skipped", map[string]any{"step": i})
			continue
		}
		depth := step.MaxDepth
		if depth == 0 {
			depth = maxDepth
		}
		trace.Emit(n.Trace, trace.Debug, "step.start", "resolving step", map[string]any{
			"step":     i,
			"criteria": len(step.Criteria),
			"maxDepth": depth,
		})

		var next element.Element
		if depth <= 1 {
			next = n.matchChildrenOrSelf(cur, step)
		} else {
			next = n.searchBreadthFirst(cur, step, depth)
		}
		if next == nil {
			trace.Emit(n.Trace, trace.Info, "step.fail", "no node satisfied step", map[string]any{"step": i})
			trace.Emit(n.Trace, trace.Info, "navigate.done", "navigation failed", map[string]any{"steps": len(loc), "matched": false})
			return nil, nil
		}
		trace.Emit(n.Trace, trace.Debug, "step.match", "step resolved", map[string]any{
			"step":    i,
			"element": next.ID(),
		})
		cur = next
	}
	trace.Emit(n.Trace, trace.Info, "navigate.done", "navigation succeeded", map[string]any{"steps": len(loc), "matched": true})
	return cur, nil
}

// NavigateSegments resolves the legacy raw-string locator form, e.g.
// ["application", "role=AXWindow", "identifier=main-window"], with implicit
// Exact matching and the shared maxDepth. Unparseable segments abort with
// ErrMalformedLocator: a caller bug, not a tree-shape mismatch.
func (n *Navigator) NavigateSegments(root element.Element, segments []string, maxDepth int) (element.Element, error) {
	loc, err := locator.ParseSegments(segments)
	if err != nil {
		trace.Emit(n.Trace, trace.Error, "locator.parse", "malformed locator", map[string]any{"error": err.Error()})
		return nil, err
	}
	return n.Navigate(root, loc, maxDepth)
}

// matchChildrenOrSelf implements depth<=1 steps: search the current node's
// direct children in natural order, then fall back to the current node
// itself. The self-match fallback lets one locator target either "a
// descendant of X" or "X itself" uniformly.
func (n *Navigator) matchChildrenOrSelf(cur element.Element, step api.PathStep) element.Element {
	children, err := cur.Children()
	if err != nil {
		trace.Emit(n.Trace, trace.Warn, "children.read", "children read failed", map[string]any{
			"element": cur.ID(),
			"error":   err.Error(),
		})
		children = nil
	}
	for _, child := range children {
		if n.stepMatches(child, step) {
			return child
		}
	}
	if n.stepMatches(cur, step) {
		return cur
	}
	return nil
}

// searchBreadthFirst performs bounded BFS from cur (depth 0, inclusive), so
// shallower matches always win over deeper ones. The visited set is keyed by
// element identity to guard against cyclic or duplicate tree links.
func (n *Navigator) searchBreadthFirst(cur element.Element, step api.PathStep, maxDepth int) element.Element {
	type item struct {
		el    element.Element
		depth int
	}
	visited := map[string]struct{}{cur.ID(): {}}
	queue := []item{{el: cur, depth: 0}}
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		if n.stepMatches(head.el, step) {
			return head.el
		}
		if head.depth >= maxDepth {
			continue
		}
		children, err := head.el.Children()
		if err != nil {
			trace.Emit(n.Trace, trace.Warn, "children.read", "children read failed", map[string]any{
				"element": head.el.ID(),
				"error":   err.Error(),
			})
			continue
		}
		for _, child := range children {
			if _, seen := visited[child.ID()]; seen {
				continue
			}
			visited[child.ID()] = struct{}{}
			queue = append(queue, item{el: child, depth: head.depth + 1})
		}
	}
	return nil
}

func (n *Navigator) stepMatches(el element.Element, step api.PathStep) bool {
	if step.MatchAll {
		return n.Matcher.MatchesAll(el, step.Criteria, step.MatchType)
	}
	return n.Matcher.MatchesAny(el, step.Criteria, step.MatchType)
}

// isApplicationStep reports whether every criterion of the step resolves to
// the "application" sentinel.
func isApplicationStep(step api.PathStep) bool {
	if len(step.Criteria) == 0 {
		return false
	}
	for _, c := range step.Criteria {
		if !strings.EqualFold(strings.TrimSpace(c.Attribute), api.ApplicationAttribute) {
			return false
		}
	}
	return true
}
