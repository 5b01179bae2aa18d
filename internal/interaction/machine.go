// Package interaction turns pointer, wheel and touch events into edits of
// the element store and moves of the camera.
package interaction

import (
	"LiveBoard/internal/camera"
	"LiveBoard/internal/geom"
	"LiveBoard/internal/state"
)

// Mode is the active tool.
type Mode int

const (
	ModeNone Mode = iota
	ModeDraw
	ModeErase
	ModeMove
)

func (m Mode) String() string {
	switch m {
	case ModeDraw:
		return "draw"
	case ModeErase:
		return "erase"
	case ModeMove:
		return "move"
	default:
		return "none"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	for _, m := range []Mode{ModeNone, ModeDraw, ModeErase, ModeMove} {
		if m.String() == s {
			return m, true
		}
	}
	return ModeNone, false
}

// Touch is one contact point in surface coordinates. Stylus is false for
// a finger.
type Touch struct {
	X, Y   float64
	Stylus bool
}

func (t Touch) point() geom.Point { return geom.Pt(t.X, t.Y) }

// Machine holds the gesture state for one board view. Every handler
// reports whether the view needs to be redrawn.
type Machine struct {
	cam    *camera.Camera
	store  *state.Store
	outbox *state.Outbox

	mode    Mode
	style   state.Style
	down    bool
	pointer geom.Point
	pinch   camera.Pinch
}

// NewMachine binds a machine to the board's camera, store and outbox. It
// starts in draw mode.
func NewMachine(cam *camera.Camera, store *state.Store, outbox *state.Outbox, style state.Style) *Machine {
	return &Machine{cam: cam, store: store, outbox: outbox, mode: ModeDraw, style: style}
}

func (m *Machine) Mode() Mode          { return m.mode }
func (m *Machine) Style() state.Style  { return m.style }
func (m *Machine) Pointer() geom.Point { return m.pointer }
func (m *Machine) Down() bool          { return m.down }

// SetMode switches tools, finishing any gesture of the old tool first.
func (m *Machine) SetMode(mode Mode) bool {
	if mode == m.mode {
		return false
	}
	redraw := m.finish()
	m.mode = mode
	return redraw
}

// SetStyle changes the stroke style for strokes begun from now on.
func (m *Machine) SetStyle(style state.Style) { m.style = style }

// Cursor names the pointer shape for the current tool and gesture.
func (m *Machine) Cursor() string {
	switch m.mode {
	case ModeDraw:
		return "crosshair"
	case ModeErase:
		return "cell"
	case ModeMove:
		if m.down {
			return "grabbing"
		}
		return "grab"
	default:
		return "default"
	}
}

// PointerDown starts a gesture at a surface position.
func (m *Machine) PointerDown(screen geom.Point) bool {
	if !m.cam.Viewport().Valid() {
		return false
	}
	if m.down {
		m.finish()
	}
	m.down = true
	m.pointer = m.cam.ScreenToWorld(screen)
	switch m.mode {
	case ModeDraw:
		m.store.BeginElement(m.style)
	case ModeMove:
		m.cam.BeginPan(screen)
		return true
	case ModeErase:
		return m.erase()
	}
	return false
}

// PointerMove tracks the pointer and continues the gesture if one is
// active.
func (m *Machine) PointerMove(screen geom.Point) bool {
	if !m.cam.Viewport().Valid() {
		return false
	}
	m.pointer = m.cam.ScreenToWorld(screen)
	if !m.down {
		return false
	}
	switch m.mode {
	case ModeMove:
		before := m.cam.Offset()
		return !m.cam.PanTo(screen).Eq(before)
	case ModeDraw:
		return m.store.AppendPoint(m.pointer)
	case ModeErase:
		return m.erase()
	}
	return false
}

// PointerUp ends the gesture. Without a preceding PointerDown it does
// nothing.
func (m *Machine) PointerUp() bool {
	if !m.down {
		return false
	}
	return m.finish()
}

func (m *Machine) finish() bool {
	if !m.down {
		return false
	}
	m.down = false
	switch m.mode {
	case ModeDraw:
		if e, ok := m.store.FinalizeElement(); ok {
			m.outbox.QueueAddition(e)
		}
		return true
	case ModeErase:
		m.store.CommitErase()
		return true
	case ModeMove:
		m.pinch.End()
		return true
	}
	return false
}

func (m *Machine) erase() bool {
	e, ok := m.store.EraseAt(m.pointer)
	if !ok {
		return false
	}
	m.outbox.QueueErasure(e)
	return true
}

// Wheel zooms by a scroll delta. Scrolling down zooms out.
func (m *Machine) Wheel(deltaY float64) bool {
	if !m.cam.Viewport().Valid() {
		return false
	}
	before := m.cam.Zoom()
	return m.cam.ZoomBy(-deltaY*m.cam.Config().ScrollSensitivity) != before
}

// TouchStart handles new contacts. Two fingers in move mode start a pinch;
// in draw mode only a stylus draws.
func (m *Machine) TouchStart(touches []Touch) bool {
	if len(touches) == 0 {
		return false
	}
	if m.mode == ModeMove && len(touches) >= 2 {
		m.pinch.Start(touches[0].point(), touches[1].point(), m.cam.Zoom())
		return false
	}
	if m.mode == ModeDraw && !touches[0].Stylus {
		return false
	}
	return m.PointerDown(touches[0].point())
}

// TouchMove continues a pinch or a single-contact gesture.
func (m *Machine) TouchMove(touches []Touch) bool {
	if len(touches) == 0 {
		return false
	}
	if m.mode == ModeMove && len(touches) >= 2 {
		z, ok := m.pinch.Zoom(touches[0].point(), touches[1].point())
		if !ok {
			return false
		}
		before := m.cam.Zoom()
		return m.cam.SetZoom(z) != before
	}
	if m.pinch.Active() {
		return false
	}
	return m.PointerMove(touches[0].point())
}

// TouchEnd ends whatever the contacts were doing.
func (m *Machine) TouchEnd() bool {
	m.pinch.End()
	return m.PointerUp()
}
