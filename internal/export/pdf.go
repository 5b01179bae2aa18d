package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
)

// PageMargin is the blank border, in millimetres, around a PDF export.
const PageMargin = 10.0

// WritePDF draws elements on one landscape A4 page, scaled to fit inside
// the margins and centred.
func WritePDF(w io.Writer, elements []state.Element, background string) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCreator("LiveBoard", false)
	pdf.AddPage()
	pw, ph := pdf.GetPageSize()

	s := &pdfSurface{pdf: pdf, width: pw, height: ph}
	s.ResetTransform()
	s.Clear(background)

	if b := Bounds(elements); !b.Empty() && (b.Dx() > 0 || b.Dy() > 0) {
		scale := min((pw-2*PageMargin)/max(b.Dx(), 1e-9), (ph-2*PageMargin)/max(b.Dy(), 1e-9))
		s.Translate((pw-b.Dx()*scale)/2, (ph-b.Dy()*scale)/2)
		s.Scale(scale, scale)
		s.Translate(-b.Min.X, -b.Min.Y)
		render.DrawElements(s, elements)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// pdfSurface replays render calls onto a gofpdf page. gofpdf has no
// current transformation for paths, so the uniform scale and translation
// are applied to each coordinate here.
type pdfSurface struct {
	pdf           *gofpdf.Fpdf
	width, height float64
	scale         float64
	tx, ty        float64
}

var _ render.Surface = (*pdfSurface)(nil)

func (s *pdfSurface) ResetTransform() {
	s.scale, s.tx, s.ty = 1, 0, 0
}

func (s *pdfSurface) Clear(color string) {
	c := render.ParseColor(color, 1)
	s.pdf.SetAlpha(float64(c.A)/255, "Normal")
	s.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	s.pdf.Rect(0, 0, s.width, s.height, "F")
}

func (s *pdfSurface) Scale(sx, _ float64) {
	s.scale *= sx
}

func (s *pdfSurface) Translate(dx, dy float64) {
	s.tx += dx * s.scale
	s.ty += dy * s.scale
}

func (s *pdfSurface) SetStyle(width float64, color string, opacity float64) {
	c := render.ParseColor(color, opacity)
	s.pdf.SetAlpha(float64(c.A)/255, "Normal")
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetLineWidth(width * s.scale)
	s.pdf.SetLineCapStyle("round")
	s.pdf.SetLineJoinStyle("round")
}

func (s *pdfSurface) at(x, y float64) (float64, float64) {
	return s.tx + x*s.scale, s.ty + y*s.scale
}

func (s *pdfSurface) MoveTo(x, y float64) {
	s.pdf.MoveTo(s.at(x, y))
}

func (s *pdfSurface) LineTo(x, y float64) {
	s.pdf.LineTo(s.at(x, y))
}

func (s *pdfSurface) QuadraticTo(cx, cy, x, y float64) {
	px, py := s.at(cx, cy)
	ex, ey := s.at(x, y)
	s.pdf.CurveTo(px, py, ex, ey)
}

func (s *pdfSurface) Stroke() {
	s.pdf.DrawPath("D")
}
