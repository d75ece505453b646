package interact

import "github.com/matzehuels/sitegraph/pkg/graph"

// Listener receives the selected node, or nil when the selection clears.
type Listener func(*graph.Node)

// Selection holds at most one selected node.
type Selection struct {
	current   *graph.Node
	listeners []Listener
}

// OnChange registers l to be called after every change.
func (s *Selection) OnChange(l Listener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// Current returns the selected node, or nil.
func (s *Selection) Current() *graph.Node { return s.current }

// Select makes n the selection. Selecting nil clears. Listeners are
// notified only if the selection changed.
func (s *Selection) Select(n *graph.Node) bool {
	if n == s.current {
		return false
	}
	s.current = n
	s.notify()
	return true
}

// Toggle selects n, or clears if n is already selected.
func (s *Selection) Toggle(n *graph.Node) bool {
	if n != nil && n == s.current {
		return s.Clear()
	}
	return s.Select(n)
}

// Clear drops the selection.
func (s *Selection) Clear() bool { return s.Select(nil) }

func (s *Selection) notify() {
	for _, l := range s.listeners {
		l(s.current)
	}
}
