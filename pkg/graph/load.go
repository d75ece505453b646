package graph

import (
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/sitegraph/pkg/errors"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Loaded is the validated working copy of a snapshot. Nodes are pointers into
// a private slice so selection and rendering can share identity.
type Loaded struct {
	Nodes []*Node
	Links []Link

	index map[string]int
}

// Load validates s and returns working copies of its nodes and links.
// The caller's snapshot is never aliased: nodes and payload maps are cloned.
func Load(s Snapshot) (*Loaded, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}

	nodes := make([]Node, len(s.Nodes))
	l := &Loaded{
		Nodes: make([]*Node, len(s.Nodes)),
		Links: make([]Link, len(s.Links)),
		index: make(map[string]int, len(s.Nodes)),
	}
	for i := range s.Nodes {
		nodes[i] = s.Nodes[i].Clone()
		l.Nodes[i] = &nodes[i]
		l.index[nodes[i].ID] = i
	}
	copy(l.Links, s.Links)
	return l, nil
}

// Node returns the node with the given id, or nil.
func (l *Loaded) Node(id string) *Node {
	if l == nil {
		return nil
	}
	i, ok := l.index[id]
	if !ok {
		return nil
	}
	return l.Nodes[i]
}

// Index returns the position of id in Nodes.
func (l *Loaded) Index(id string) (int, bool) {
	if l == nil {
		return 0, false
	}
	i, ok := l.index[id]
	return i, ok
}

// IDs returns node ids in snapshot order.
func (l *Loaded) IDs() []string {
	ids := make([]string, len(l.Nodes))
	for i, n := range l.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Snapshot converts the working copy back into a wire snapshot.
func (l *Loaded) Snapshot() Snapshot {
	s := Snapshot{
		Nodes: make([]Node, len(l.Nodes)),
		Links: make([]Link, len(l.Links)),
	}
	for i, n := range l.Nodes {
		s.Nodes[i] = n.Clone()
	}
	copy(s.Links, l.Links)
	return s
}

// Validate checks the structural rules of a snapshot: every node has a
// unique non-empty id and every link endpoint names a node of s.
func Validate(s Snapshot) error {
	ids := make(map[string]int, len(s.Nodes))
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.ID == "" {
			return errors.New(errors.ErrCodeMissingID, "node %d has no id", i)
		}
		if err := validate.Struct(n); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "node %q", n.ID)
		}
		if prev, dup := ids[n.ID]; dup {
			return errors.New(errors.ErrCodeDuplicateNode, "node %d duplicates id %q of node %d", i, n.ID, prev)
		}
		ids[n.ID] = i
	}

	for i := range s.Links {
		lk := &s.Links[i]
		if lk.Source == "" || lk.Target == "" {
			return errors.New(errors.ErrCodeDanglingLink, "link %d has an empty endpoint", i)
		}
		if err := validate.Struct(lk); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "link %d", i)
		}
		if _, ok := ids[lk.Source]; !ok {
			return errors.New(errors.ErrCodeDanglingLink, "link %d: unknown source %q", i, lk.Source)
		}
		if _, ok := ids[lk.Target]; !ok {
			return errors.New(errors.ErrCodeDanglingLink, "link %d: unknown target %q", i, lk.Target)
		}
	}
	return nil
}
