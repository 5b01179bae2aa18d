package ui

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"LiveBoard/internal/board"
	"LiveBoard/internal/camera"
	"LiveBoard/internal/geom"
)

// wheelScale converts fyne scroll steps to browser-style wheel deltas.
const wheelScale = 10

// BoardWidget shows the board's latest frame and forwards pointer input
// to the board's event loop. It never touches board state directly.
type BoardWidget struct {
	widget.BaseWidget
	board  *board.Board
	raster *canvas.Raster

	mu     sync.Mutex
	frame  image.Image
	cursor string
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ desktop.Cursorable = (*BoardWidget)(nil)

// NewBoardWidget binds a widget to b. It must be created before b.Run.
func NewBoardWidget(b *board.Board) *BoardWidget {
	w := &BoardWidget{board: b, cursor: b.Cursor()}
	w.raster = canvas.NewRaster(w.image)
	b.OnFrame(w.showFrame)
	w.ExtendBaseWidget(w)
	return w
}

func (w *BoardWidget) image(width, height int) image.Image {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frame == nil {
		return image.NewUniform(color.White)
	}
	return w.frame
}

// showFrame runs on the board's loop.
func (w *BoardWidget) showFrame(f board.Frame) {
	w.mu.Lock()
	w.frame = f.Image
	w.cursor = f.Cursor
	w.mu.Unlock()
	fyne.Do(w.raster.Refresh)
}

func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(w.raster)
}

func (w *BoardWidget) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

// Resize tells the board the new surface size in logical pixels.
func (w *BoardWidget) Resize(size fyne.Size) {
	w.BaseWidget.Resize(size)
	dpr := float32(1)
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil {
		dpr = c.Scale()
	}
	vp := camera.Viewport{Width: float64(size.Width), Height: float64(size.Height), DPR: float64(dpr)}
	w.board.Post(func() bool { return w.board.SetViewport(vp) })
}

func pos(p fyne.Position) geom.Point {
	return geom.Pt(float64(p.X), float64(p.Y))
}

func (w *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p := pos(e.Position)
	w.board.Post(func() bool { return w.board.PointerDown(p) })
}

func (w *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.board.Post(w.board.PointerUp)
}

func (w *BoardWidget) Dragged(e *fyne.DragEvent) {
	p := pos(e.Position)
	w.board.Post(func() bool { return w.board.PointerMove(p) })
}

func (w *BoardWidget) DragEnd() {
	w.board.Post(w.board.PointerUp)
}

func (w *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	p := pos(e.Position)
	w.board.Post(func() bool { return w.board.PointerMove(p) })
}

func (w *BoardWidget) MouseIn(*desktop.MouseEvent) {}
func (w *BoardWidget) MouseOut()                   {}

func (w *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	delta := -float64(e.Scrolled.DY) * wheelScale
	w.board.Post(func() bool { return w.board.Wheel(delta) })
}

func (w *BoardWidget) Cursor() desktop.Cursor {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.cursor {
	case "crosshair", "cell":
		return desktop.CrosshairCursor
	case "grab", "grabbing":
		return desktop.PointerCursor
	default:
		return desktop.DefaultCursor
	}
}
