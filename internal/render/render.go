// Package render draws the board: a pure function of the elements, the
// camera and the background colour onto a Surface.
package render

import (
	"log/slog"

	"LiveBoard/internal/camera"
	"LiveBoard/internal/geom"
	"LiveBoard/internal/state"
)

// Surface is the subset of a 2D canvas context the renderer needs.
// Transforms compose like a canvas: each call applies to everything drawn
// after it, and stroke widths are scaled by the current transform.
type Surface interface {
	ResetTransform()
	Clear(color string)
	Scale(sx, sy float64)
	Translate(dx, dy float64)
	SetStyle(width float64, color string, opacity float64)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	Stroke()
}

// Renderer draws frames.
type Renderer struct {
	log *slog.Logger
}

// NewRenderer returns a renderer logging to logger, or slog.Default.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{log: logger.With("component", "render")}
}

// Render clears s and draws elements through cam. If the camera's offset
// has drifted out of bounds (after a zoom or resize) it is corrected first
// and the frame is drawn with the corrected offset. It reports false when
// there is nothing to draw to.
func (r *Renderer) Render(s Surface, elements []state.Element, cam *camera.Camera, background string) bool {
	if s == nil || cam == nil || !cam.Viewport().Valid() {
		return false
	}
	if cam.Correct() {
		r.log.Debug("camera offset out of bounds, re-rendering", "offset", cam.Offset())
		return r.Render(s, elements, cam, background)
	}

	vp := cam.Viewport()
	half := vp.Half()
	zoom := cam.Zoom()
	off := cam.Offset()

	s.ResetTransform()
	s.Clear(background)
	s.Scale(vp.DPR, vp.DPR)
	s.Translate(half.X, half.Y)
	s.Scale(zoom, zoom)
	s.Translate(off.X-half.X, off.Y-half.Y)

	DrawElements(s, elements)
	return true
}

// DrawElements strokes each element in order with its own style.
func DrawElements(s Surface, elements []state.Element) {
	for _, e := range elements {
		DrawElement(s, e)
	}
}

// DrawElement strokes one element. Elements with fewer than two points
// draw nothing.
func DrawElement(s Surface, e state.Element) {
	if len(e.Points) < 2 {
		return
	}
	s.SetStyle(e.StrokeWidth, e.Color, e.Opacity)
	Path(s, e.Points)
	s.Stroke()
}

// Path traces a smoothed curve through points: quadratic segments using
// each point as the control and the midpoint to the next as the end, then
// a straight run to the last point.
func Path(s Surface, points []geom.Point) {
	if len(points) == 0 {
		return
	}
	s.MoveTo(points[0].X, points[0].Y)
	for i := 0; i < len(points)-1; i++ {
		mid := points[i].Mid(points[i+1])
		s.QuadraticTo(points[i].X, points[i].Y, mid.X, mid.Y)
	}
	last := points[len(points)-1]
	s.LineTo(last.X, last.Y)
}
