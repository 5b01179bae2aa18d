package export

import (
	"fmt"
	"io"
	"math"

	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
)

// MaxImageSide caps either dimension of a PNG export; larger boards are
// scaled down to fit.
const MaxImageSide = 8192

// WritePNG renders elements at world scale with margin pixels of
// background around them. An empty board yields a margin-sized image.
func WritePNG(w io.Writer, elements []state.Element, background string, margin int) error {
	margin = max(margin, 0)
	b := Bounds(elements)
	dx, dy := 0.0, 0.0
	if !b.Empty() {
		dx, dy = b.Dx(), b.Dy()
	}
	scale := 1.0
	if side := max(dx, dy) + 2*float64(margin); side > MaxImageSide {
		scale = MaxImageSide / side
	}
	width := int(math.Ceil((dx + 2*float64(margin)) * scale))
	height := int(math.Ceil((dy + 2*float64(margin)) * scale))

	r := render.NewRaster(width, height)
	r.ResetTransform()
	r.Clear(background)
	if !b.Empty() {
		r.Scale(scale, scale)
		r.Translate(float64(margin)-b.Min.X, float64(margin)-b.Min.Y)
		render.DrawElements(r, elements)
	}
	if err := r.EncodePNG(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
