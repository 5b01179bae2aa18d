package render

import (
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"
)

// Raster is a Surface backed by an in-memory image.
type Raster struct {
	dc    *gg.Context
	scale float64
}

var _ Surface = (*Raster)(nil)

// NewRaster allocates a width x height pixel surface.
func NewRaster(width, height int) *Raster {
	return &Raster{dc: gg.NewContext(max(width, 1), max(height, 1)), scale: 1}
}

func (r *Raster) Width() int  { return r.dc.Width() }
func (r *Raster) Height() int { return r.dc.Height() }

// Image returns the pixels drawn so far.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// EncodePNG writes the surface as a PNG.
func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

func (r *Raster) ResetTransform() {
	r.dc.Identity()
	r.scale = 1
}

func (r *Raster) Clear(c string) {
	r.dc.SetColor(ParseColor(c, 1))
	r.dc.Clear()
}

func (r *Raster) Scale(sx, sy float64) {
	r.dc.Scale(sx, sy)
	r.scale *= math.Sqrt(math.Abs(sx * sy))
}

func (r *Raster) Translate(dx, dy float64) {
	r.dc.Translate(dx, dy)
}

// SetStyle sets the pen. gg strokes in device pixels, so the width is
// scaled here to match canvas semantics.
func (r *Raster) SetStyle(width float64, c string, opacity float64) {
	r.dc.SetLineWidth(width * r.scale)
	r.dc.SetLineCapRound()
	r.dc.SetLineJoinRound()
	r.dc.SetColor(ParseColor(c, opacity))
}

func (r *Raster) MoveTo(x, y float64)              { r.dc.MoveTo(x, y) }
func (r *Raster) LineTo(x, y float64)              { r.dc.LineTo(x, y) }
func (r *Raster) QuadraticTo(cx, cy, x, y float64) { r.dc.QuadraticTo(cx, cy, x, y) }
func (r *Raster) Stroke()                          { r.dc.Stroke() }

// ParseColor reads "#rgb", "#rrggbb", "#rrggbbaa" or a CSS colour name and
// multiplies its alpha by opacity. Anything else is black.
func ParseColor(s string, opacity float64) color.NRGBA {
	var c color.NRGBA
	if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		// every named colour is opaque, so RGBA and NRGBA agree
		c = color.NRGBA(named)
	} else {
		c = parseHex(strings.TrimPrefix(s, "#"))
	}
	c.A = uint8(math.Round(float64(c.A) * math.Max(0, math.Min(opacity, 1))))
	return c
}

func parseHex(h string) color.NRGBA {
	black := color.NRGBA{A: 255}
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return black
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return black
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}
