package canvas

import (
	"errors"
	"fmt"
	"math"
)

const (
	// GridPitch is the default snapping grid, in design units.
	GridPitch = 10
	// MinSize is the smallest width/height a resize may produce.
	MinSize = 20
)

var (
	ErrSessionActive = errors.New("pointer session already active")
	ErrSessionIdle   = errors.New("no pointer session active")
)

// Point: pointer coordinates in screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Placement: an element's position and size in design units.
type Placement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Handle names one of the four corner resize handles.
type Handle string

const (
	HandleTopLeft     Handle = "top-left"
	HandleTopRight    Handle = "top-right"
	HandleBottomLeft  Handle = "bottom-left"
	HandleBottomRight Handle = "bottom-right"
)

type state int

const (
	stateIdle state = iota
	stateDragging
	stateResizing
)

// Session is the per-pointer interaction state machine:
// idle -> dragging -> idle or idle -> resizing -> idle, mutually exclusive.
// Intermediate placements are optimistic visual state; only the terminal
// placement from End or Cancel should be persisted and broadcast.
type Session struct {
	state state
	zoom  float64
	snap  bool
	pitch float64

	start   Placement // element placement at press
	grab    Point     // drag: pointer offset; resize: pointer press position
	handle  Handle
	current Placement
}

// NewSession creates an idle session. Zoom values <= 0 are treated as 1.
func NewSession(zoom float64, snap bool) *Session {
	if zoom <= 0 {
		zoom = 1
	}
	return &Session{
		zoom:  zoom,
		snap:  snap,
		pitch: GridPitch,
	}
}

// Dragging reports whether a drag is in progress.
func (s *Session) Dragging() bool { return s.state == stateDragging }

// Resizing reports whether a resize is in progress.
func (s *Session) Resizing() bool { return s.state == stateResizing }

// Active reports whether any interaction is in progress.
func (s *Session) Active() bool { return s.state != stateIdle }

// StartDrag enters the dragging state, capturing the pointer offset relative
// to the element's rendered position so the element does not jump to the
// pointer.
func (s *Session) StartDrag(el Placement, pointer, origin Point) error {
	if s.state != stateIdle {
		return ErrSessionActive
	}
	s.state = stateDragging
	s.start = el
	s.current = el
	s.grab = Point{
		X: pointer.X - (origin.X + el.X*s.zoom),
		Y: pointer.Y - (origin.Y + el.Y*s.zoom),
	}
	return nil
}

// StartResize enters the resizing state from one of the four corner handles,
// capturing the element's starting placement and the pointer's press position.
func (s *Session) StartResize(el Placement, pointer Point, handle Handle) error {
	if s.state != stateIdle {
		return ErrSessionActive
	}
	switch handle {
	case HandleTopLeft, HandleTopRight, HandleBottomLeft, HandleBottomRight:
	default:
		return fmt.Errorf("unknown resize handle: %s", handle)
	}
	s.state = stateResizing
	s.start = el
	s.current = el
	s.grab = pointer
	s.handle = handle
	return nil
}

// Move advances the session with a new pointer position and returns the
// resulting optimistic placement. origin is the canvas's screen position;
// it is only meaningful while dragging.
func (s *Session) Move(pointer, origin Point) (Placement, error) {
	switch s.state {
	case stateDragging:
		x := (pointer.X - origin.X - s.grab.X) / s.zoom
		y := (pointer.Y - origin.Y - s.grab.Y) / s.zoom
		if s.snap {
			x = s.snapTo(x)
			y = s.snapTo(y)
		}
		s.current = Placement{X: x, Y: y, Width: s.start.Width, Height: s.start.Height}
		return s.current, nil

	case stateResizing:
		dx := (pointer.X - s.grab.X) / s.zoom
		dy := (pointer.Y - s.grab.Y) / s.zoom

		w := s.start.Width
		h := s.start.Height
		x := s.start.X
		y := s.start.Y

		switch s.handle {
		case HandleTopLeft:
			w = math.Max(MinSize, s.start.Width-dx)
			h = math.Max(MinSize, s.start.Height-dy)
			x = s.start.X + (s.start.Width - w)
			y = s.start.Y + (s.start.Height - h)
		case HandleTopRight:
			w = math.Max(MinSize, s.start.Width+dx)
			h = math.Max(MinSize, s.start.Height-dy)
			y = s.start.Y + (s.start.Height - h)
		case HandleBottomLeft:
			w = math.Max(MinSize, s.start.Width-dx)
			h = math.Max(MinSize, s.start.Height+dy)
			x = s.start.X + (s.start.Width - w)
		case HandleBottomRight:
			w = math.Max(MinSize, s.start.Width+dx)
			h = math.Max(MinSize, s.start.Height+dy)
		}

		if s.snap {
			w = s.snapTo(w)
			h = s.snapTo(h)
			x = s.snapTo(x)
			y = s.snapTo(y)
		}
		s.current = Placement{X: x, Y: y, Width: w, Height: h}
		return s.current, nil

	default:
		return Placement{}, ErrSessionIdle
	}
}

// End finalizes the interaction and returns the terminal placement. The
// second return is false when no session was active.
func (s *Session) End() (Placement, bool) {
	if s.state == stateIdle {
		return Placement{}, false
	}
	final := s.current
	s.state = stateIdle
	return final, true
}

// Cancel handles the pointer leaving the canvas or releasing outside any
// tracked element: it finalizes exactly as a normal release would, so no
// operation is ever left half-applied.
func (s *Session) Cancel() (Placement, bool) {
	return s.End()
}

// snapTo rounds a coordinate to the nearest grid multiple, each axis
// independently.
func (s *Session) snapTo(v float64) float64 {
	return math.Round(v/s.pitch) * s.pitch
}
