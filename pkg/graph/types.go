package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
)

// =============================================================================
// Constants
// =============================================================================

// Node types recognized by the color policy. Any other value (or none) falls
// back to the categorical group palette.
const (
	TypePage        = "page"
	TypeAPI         = "api"
	TypeInteraction = "interaction"
)

// Reserved JSON keys; everything else on a node lands in Payload.
const (
	keyID    = "id"
	keyLabel = "label"
	keyType  = "type"
	keyGroup = "group"
)

// DefaultLinkValue is used when a link carries no value.
const DefaultLinkValue = 1.0

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is one immutable graph as delivered by a data source. It is
// consumed once per load; replacing it rebuilds the engine.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a graph vertex. Simulation state (position, velocity, pin) is not
// stored here; it belongs to the force simulation.
type Node struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label,omitempty"`
	Type  string `json:"type,omitempty"`
	Group int    `json:"group,omitempty"`

	// Payload holds every other field of the node record as decoded JSON.
	Payload map[string]any `json:"-"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Clone returns a shallow copy of n; the payload map is copied one level.
func (n Node) Clone() Node {
	n.Payload = copyPayload(n.Payload)
	return n
}

// MarshalJSON flattens Payload next to the reserved fields.
func (n Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Payload)+4)
	for k, v := range n.Payload {
		out[k] = v
	}
	out[keyID] = n.ID
	if n.Label != "" {
		out[keyLabel] = n.Label
	} else {
		delete(out, keyLabel)
	}
	if n.Type != "" {
		out[keyType] = n.Type
	} else {
		delete(out, keyType)
	}
	if n.Group != 0 {
		out[keyGroup] = n.Group
	} else {
		delete(out, keyGroup)
	}
	return json.Marshal(out)
}

// UnmarshalJSON extracts the reserved fields and keeps the rest in Payload.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node{}
	if v, ok := raw[keyID]; ok {
		if err := json.Unmarshal(v, &n.ID); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		delete(raw, keyID)
	}
	if v, ok := raw[keyLabel]; ok {
		if err := json.Unmarshal(v, &n.Label); err != nil {
			return fmt.Errorf("label: %w", err)
		}
		delete(raw, keyLabel)
	}
	if v, ok := raw[keyType]; ok {
		// Backends emit null for untyped nodes.
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		if s != nil {
			n.Type = *s
		}
		delete(raw, keyType)
	}
	if v, ok := raw[keyGroup]; ok {
		var g *float64
		if err := json.Unmarshal(v, &g); err != nil {
			return fmt.Errorf("group: %w", err)
		}
		if g != nil {
			if *g != math.Trunc(*g) {
				return fmt.Errorf("group: %v is not an integer", *g)
			}
			if *g < math.MinInt32 || *g > math.MaxInt32 {
				return fmt.Errorf("group: %v out of range", *g)
			}
			n.Group = int(*g)
		}
		delete(raw, keyGroup)
	}
	if len(raw) == 0 {
		return nil
	}
	n.Payload = make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		n.Payload[k] = val
	}
	return nil
}

// =============================================================================
// Link
// =============================================================================

// Link relates two nodes by id. Value affects only the rendered stroke width.
type Link struct {
	ID     string  `json:"id,omitempty"`
	Source string  `json:"source" validate:"required"`
	Target string  `json:"target" validate:"required"`
	Value  float64 `json:"value" validate:"gte=0"`
}

// StrokeWidth returns sqrt(value), the rendered line width.
func (l Link) StrokeWidth() float64 {
	return math.Sqrt(l.Value)
}

// UnmarshalJSON decodes a link, defaulting a missing value to DefaultLinkValue.
func (l *Link) UnmarshalJSON(data []byte) error {
	type plain Link
	p := plain{Value: DefaultLinkValue}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Link(p)
	return nil
}

// copyPayload creates a shallow copy of the payload to avoid mutation.
func copyPayload(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
