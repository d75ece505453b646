package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// Layout is the serialized result of a headless layout run: final node
// positions in world coordinates plus the canvas they were computed for.
type Layout struct {
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Ticks     int        `json:"ticks"`
	Alpha     float64    `json:"alpha"`
	Settled   bool       `json:"settled"`
	Positions []Position `json:"positions"`
}

// Position is one node's world coordinate.
type Position struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Pinned bool    `json:"pinned,omitempty"`
}

// MarshalLayout converts a layout to indented JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// WriteLayoutFile writes a layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// UnmarshalLayout deserializes JSON bytes to a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode: %w", err)
	}
	return l, nil
}
