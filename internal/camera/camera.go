// Package camera converts between screen and world coordinates and keeps
// the pan offset inside the drawable world.
//
// The transform applied when rendering is, in order: scale by the device
// pixel ratio, translate by half the canvas, scale by zoom, translate by
// the pan offset minus half the canvas. ScreenToWorld is its exact inverse.
package camera

import (
	"LiveBoard/internal/geom"
)

// Config sizes the world and bounds the zoom.
type Config struct {
	MinZoom           float64
	MaxZoom           float64
	WorldWidth        float64
	WorldHeight       float64
	ScrollSensitivity float64
}

// DefaultConfig matches a 2000x1000 board zoomable from 1x to 30x.
func DefaultConfig() Config {
	return Config{
		MinZoom:           1,
		MaxZoom:           30,
		WorldWidth:        2000,
		WorldHeight:       1000,
		ScrollSensitivity: 0.001,
	}
}

// Viewport is the logical size of the drawing surface and its device
// pixel ratio. The zero Viewport means no surface is mounted yet.
type Viewport struct {
	Width  float64
	Height float64
	DPR    float64
}

// Valid reports whether the viewport can be drawn to.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 && v.DPR > 0
}

// Half is the centre of the viewport in logical pixels.
func (v Viewport) Half() geom.Point {
	return geom.Pt(v.Width/2, v.Height/2)
}

// Camera holds the pan offset and zoom for one board view.
type Camera struct {
	cfg      Config
	viewport Viewport
	offset   geom.Point
	zoom     float64
	anchor   geom.Point
}

// New returns a camera centred on the world at minimum zoom.
func New(cfg Config) *Camera {
	if cfg.MinZoom <= 0 {
		cfg.MinZoom = 1
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = cfg.MinZoom
	}
	c := &Camera{cfg: cfg}
	c.Reset()
	return c
}

// Start is the offset a fresh or reset camera uses.
func (c *Camera) Start() geom.Point {
	return geom.Pt(c.cfg.WorldWidth/2, c.cfg.WorldHeight/2)
}

// Reset restores the start offset and the minimum zoom.
func (c *Camera) Reset() {
	c.offset = c.Start()
	c.zoom = c.cfg.MinZoom
}

// Moved reports whether the camera has left its start position.
func (c *Camera) Moved() bool {
	return !c.offset.Eq(c.Start()) || c.zoom != c.cfg.MinZoom
}

func (c *Camera) Config() Config     { return c.cfg }
func (c *Camera) Viewport() Viewport { return c.viewport }
func (c *Camera) Offset() geom.Point { return c.offset }
func (c *Camera) Zoom() float64      { return c.zoom }

// SetViewport records a new surface size. The stored offset is left as is;
// Correct brings it back inside the new bounds.
func (c *Camera) SetViewport(v Viewport) {
	c.viewport = v
}

// OffsetMax is the world extent in device pixels.
func (c *Camera) OffsetMax() geom.Point {
	return geom.Pt(c.cfg.WorldWidth*c.viewport.DPR, c.cfg.WorldHeight*c.viewport.DPR)
}

// Clamp limits off so the world stays reachable from the viewport at the
// current zoom. Without a viewport off is returned unchanged.
func (c *Camera) Clamp(off geom.Point) geom.Point {
	if !c.viewport.Valid() {
		return off
	}
	bound := c.OffsetMax()
	canvasW := c.viewport.Width * c.viewport.DPR
	canvasH := c.viewport.Height * c.viewport.DPR
	return geom.Pt(
		geom.Clamp(off.X, canvasW-bound.X*c.zoom, bound.X*c.zoom),
		geom.Clamp(off.Y, canvasH-bound.Y*c.zoom, bound.Y*c.zoom),
	)
}

// SetOffset stores off without clamping. Renderers call Correct before
// drawing.
func (c *Camera) SetOffset(off geom.Point) {
	c.offset = off
}

// Correct clamps the stored offset and reports whether it had to change.
func (c *Camera) Correct() bool {
	clamped := c.Clamp(c.offset)
	if clamped.Eq(c.offset) {
		return false
	}
	c.offset = clamped
	return true
}

// PanBy moves the offset by a screen-space delta and returns the clamped
// result, which is also stored.
func (c *Camera) PanBy(delta geom.Point) geom.Point {
	if !c.viewport.Valid() {
		return c.offset
	}
	c.offset = c.Clamp(c.offset.Add(delta.Div(c.zoom)))
	return c.offset
}

// BeginPan anchors a drag at the given screen position.
func (c *Camera) BeginPan(screen geom.Point) {
	c.anchor = screen.Div(c.zoom).Sub(c.offset)
}

// PanTo continues a drag begun with BeginPan.
func (c *Camera) PanTo(screen geom.Point) geom.Point {
	if !c.viewport.Valid() {
		return c.offset
	}
	c.offset = c.Clamp(screen.Div(c.zoom).Sub(c.anchor))
	return c.offset
}

// ZoomBy adds delta to the zoom and returns the clamped result.
func (c *Camera) ZoomBy(delta float64) float64 {
	return c.SetZoom(c.zoom + delta)
}

// SetZoom clamps z to the configured range and stores it.
func (c *Camera) SetZoom(z float64) float64 {
	c.zoom = geom.Clamp(z, c.cfg.MinZoom, c.cfg.MaxZoom)
	return c.zoom
}

// ScreenToWorld maps a position relative to the surface's top-left corner,
// in logical pixels, to world coordinates.
func (c *Camera) ScreenToWorld(s geom.Point) geom.Point {
	half := c.viewport.Half()
	return s.Sub(half).Div(c.zoom).Sub(c.offset.Sub(half))
}

// WorldToScreen is the inverse of ScreenToWorld.
func (c *Camera) WorldToScreen(w geom.Point) geom.Point {
	half := c.viewport.Half()
	return half.Add(w.Sub(half).Add(c.offset).Mul(c.zoom))
}
