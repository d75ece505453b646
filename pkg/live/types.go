package live

import (
	"github.com/matzehuels/sitegraph/pkg/graph"
	"github.com/matzehuels/sitegraph/pkg/render"
)

// Server → client message types.
const (
	TypeHello     = "hello"
	TypeFrame     = "frame"
	TypeSelection = "selection"
	TypeError     = "error"
)

// Client → server message types.
const (
	TypePointerDown = "pointerdown"
	TypePointerMove = "pointermove"
	TypePointerUp   = "pointerup"
	TypeWheel       = "wheel"
	TypeTheme       = "theme"
	TypeClear       = "clear"
	TypeSelect      = "select"
	TypeReset       = "reset"
)

var clientTypes = map[string]bool{
	TypePointerDown: true,
	TypePointerMove: true,
	TypePointerUp:   true,
	TypeWheel:       true,
	TypeTheme:       true,
	TypeClear:       true,
	TypeSelect:      true,
	TypeReset:       true,
}

// ServerMessage is pushed to every session. Exactly one payload field is set
// for each type; a selection message with a nil Node is a clear.
type ServerMessage struct {
	Type    string        `json:"type"`
	Session string        `json:"session,omitempty"`
	Version uint64        `json:"version,omitempty"`
	Frame   *render.Frame `json:"frame,omitempty"`
	Node    *graph.Node   `json:"node,omitempty"`
	Error   *ErrorBody    `json:"error,omitempty"`
}

// ErrorBody is the payload of an error message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ClientMessage is an input event from a session. Coordinates are view
// coordinates with the origin at the canvas center.
type ClientMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`

	// Factor is the wheel zoom multiplier. When zero, DeltaY (browser
	// wheel delta) is converted the way d3-zoom does: 2^(-deltaY*0.002).
	Factor float64 `json:"factor,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`

	Theme string `json:"theme,omitempty"`
	ID    string `json:"id,omitempty"`
}
