// Package board is one client's whiteboard session. It owns the camera,
// the element store, the outbound queues and the sync engine, and runs
// them all from a single event loop so none of them need locking.
package board

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"time"

	"LiveBoard/internal/camera"
	"LiveBoard/internal/export"
	"LiveBoard/internal/geom"
	"LiveBoard/internal/interaction"
	"LiveBoard/internal/protocol"
	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
	"LiveBoard/internal/syncer"
)

// Transport connects the board to a relay.
type Transport interface {
	Send(msg protocol.Message) error
	Inbound() <-chan protocol.Message
	Connectivity() <-chan bool
}

// Options configure a Board.
type Options struct {
	Camera        camera.Config
	EraseRadius   float64
	OutboxLimit   int
	FlushInterval time.Duration
	Style         state.Style
	Tool          interaction.Mode
	Background    string
	ExportMargin  int
	Logger        *slog.Logger
}

// DefaultOptions returns the stock board settings.
func DefaultOptions() Options {
	return Options{
		Camera:        camera.DefaultConfig(),
		EraseRadius:   state.DefaultEraseRadius,
		OutboxLimit:   state.DefaultOutboxLimit,
		FlushInterval: time.Second,
		Style:         state.Style{StrokeWidth: 3, Color: "#000000"},
		Tool:          interaction.ModeDraw,
		Background:    "#fcfcfc",
		ExportMargin:  20,
	}
}

// Frame is one rendered view of the board.
type Frame struct {
	Image  image.Image
	Cursor string
}

// Board is a whiteboard session. Apart from Post and Run, its methods must
// be called from the event loop (inside a function given to Post) or
// before Run starts.
type Board struct {
	opts Options
	log  *slog.Logger

	cam      *camera.Camera
	store    *state.Store
	outbox   *state.Outbox
	machine  *interaction.Machine
	renderer *render.Renderer
	engine   *syncer.Engine

	transport  Transport
	background string

	events   chan func() bool
	done     chan struct{}
	onFrame  func(Frame)
	onStatus func(string)
}

// New builds a board. transport may be nil for an offline board.
func New(opts Options, transport Transport) *Board {
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := &Board{
		opts:       opts,
		log:        logger.With("component", "board"),
		cam:        camera.New(opts.Camera),
		store:      state.NewStore(opts.EraseRadius),
		outbox:     state.NewOutbox(opts.OutboxLimit, logger),
		renderer:   render.NewRenderer(logger),
		transport:  transport,
		background: opts.Background,
		events:     make(chan func() bool, 256),
		done:       make(chan struct{}),
	}
	b.machine = interaction.NewMachine(b.cam, b.store, b.outbox, opts.Style)
	if opts.Tool != interaction.ModeNone {
		b.machine.SetMode(opts.Tool)
	}
	b.engine = syncer.New(b.store, b.outbox, transport, logger)
	return b
}

// OnFrame registers the callback receiving rendered frames. It is called
// from the event loop.
func (b *Board) OnFrame(fn func(Frame)) { b.onFrame = fn }

// OnStatus registers the callback receiving connection status text.
func (b *Board) OnStatus(fn func(string)) { b.onStatus = fn }

// Post schedules fn on the event loop. fn reports whether the view needs
// redrawing. Post blocks while the queue is full and returns false once
// the loop has stopped.
func (b *Board) Post(fn func() bool) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.events <- fn:
		return true
	case <-b.done:
		return false
	}
}

// Run is the event loop. It returns when ctx is cancelled, after a last
// attempt to flush queued edits.
func (b *Board) Run(ctx context.Context) error {
	defer close(b.done)

	ticker := time.NewTicker(b.opts.FlushInterval)
	defer ticker.Stop()

	var inbound <-chan protocol.Message
	var connectivity <-chan bool
	if b.transport != nil {
		inbound = b.transport.Inbound()
		connectivity = b.transport.Connectivity()
	}

	b.status()
	dirty := true
	for {
		select {
		case <-ctx.Done():
			b.engine.Flush()
			return nil
		case fn := <-b.events:
			if fn() {
				dirty = true
			}
		case <-ticker.C:
			b.engine.Flush()
		case msg, ok := <-inbound:
			if !ok {
				inbound = nil
				continue
			}
			if b.engine.Receive(msg) && b.engine.Drain() {
				dirty = true
			}
		case up, ok := <-connectivity:
			if !ok {
				connectivity = nil
				up = false
			}
			if b.engine.SetConnected(up) {
				b.status()
			}
		}
		if dirty && len(b.events) == 0 {
			b.Render()
			dirty = false
		}
	}
}

func (b *Board) status() {
	if b.onStatus == nil {
		return
	}
	if b.transport == nil {
		b.onStatus("offline")
		return
	}
	b.onStatus(b.engine.State().String())
}

// Render draws the current view and hands it to the frame callback. It
// reports false when the viewport is not known yet.
func (b *Board) Render() bool {
	vp := b.cam.Viewport()
	if !vp.Valid() {
		return false
	}
	surface := render.NewRaster(int(math.Ceil(vp.Width*vp.DPR)), int(math.Ceil(vp.Height*vp.DPR)))
	if !b.renderer.Render(surface, b.store.Snapshot(), b.cam, b.background) {
		return false
	}
	if b.onFrame != nil {
		b.onFrame(Frame{Image: surface.Image(), Cursor: b.machine.Cursor()})
	}
	return true
}

func (b *Board) Camera() *camera.Camera  { return b.cam }
func (b *Board) Store() *state.Store     { return b.store }
func (b *Board) Mode() interaction.Mode  { return b.machine.Mode() }
func (b *Board) Style() state.Style      { return b.machine.Style() }
func (b *Board) Background() string      { return b.background }
func (b *Board) Stats() syncer.Stats     { return b.engine.Stats() }
func (b *Board) ConnState() syncer.State { return b.engine.State() }
func (b *Board) Flush() int              { return b.engine.Flush() }
func (b *Board) Cursor() string          { return b.machine.Cursor() }

// Receive merges one message from the relay straight away.
func (b *Board) Receive(msg protocol.Message) bool {
	return b.engine.Receive(msg) && b.engine.Drain()
}

// SetMode switches tools. The cursor changes with it, so the view is
// always redrawn.
func (b *Board) SetMode(m interaction.Mode) bool {
	b.machine.SetMode(m)
	return true
}

func (b *Board) SetStyle(s state.Style) bool {
	b.machine.SetStyle(s)
	return false
}

func (b *Board) SetBackground(c string) bool {
	if c == b.background {
		return false
	}
	b.background = c
	return true
}

// SetViewport records the drawing surface's size in logical pixels and its
// device pixel ratio.
func (b *Board) SetViewport(v camera.Viewport) bool {
	if v == b.cam.Viewport() {
		return false
	}
	b.cam.SetViewport(v)
	return true
}

// ResetCamera recentres the view at minimum zoom.
func (b *Board) ResetCamera() bool {
	b.cam.Reset()
	return true
}

func (b *Board) PointerDown(p geom.Point) bool { return b.machine.PointerDown(p) }
func (b *Board) PointerMove(p geom.Point) bool { return b.machine.PointerMove(p) }
func (b *Board) PointerUp() bool               { return b.machine.PointerUp() }
func (b *Board) Wheel(deltaY float64) bool     { return b.machine.Wheel(deltaY) }

func (b *Board) TouchStart(t []interaction.Touch) bool { return b.machine.TouchStart(t) }
func (b *Board) TouchMove(t []interaction.Touch) bool  { return b.machine.TouchMove(t) }
func (b *Board) TouchEnd() bool                        { return b.machine.TouchEnd() }

// Import merges a JSON board document and queues the new elements for
// peers. With replace the local board is cleared first and its strokes are
// queued as erasures so peers drop them too. A document that does not
// parse changes nothing.
func (b *Board) Import(r io.Reader, replace bool) (int, error) {
	elements, err := export.ReadJSON(r)
	if err != nil {
		b.log.Warn("import dropped", "err", err)
		return 0, fmt.Errorf("import: %w", err)
	}
	if replace {
		kept := make(map[string]bool, len(elements))
		for _, e := range elements {
			if e.ID != "" {
				kept[e.ID] = true
			}
		}
		erased := 0
		for _, e := range b.finished() {
			// strokes the document brings back would otherwise be erased on
			// peers after their re-addition is skipped as a duplicate
			if kept[e.ID] {
				continue
			}
			b.outbox.QueueErasure(e)
			erased++
		}
		b.store.Reset()
		b.log.Info("cleared board for import", "erased", erased)
	}
	seen := make(map[string]bool, len(elements))
	fresh := elements[:0]
	for _, e := range elements {
		if e.ID == "" {
			e.ID = state.NewID()
		}
		if seen[e.ID] || b.store.Has(e.ID) {
			continue
		}
		seen[e.ID] = true
		fresh = append(fresh, e)
	}
	n := b.store.MergeRemoteAdditions(fresh)
	for _, e := range fresh {
		b.outbox.QueueAddition(e)
	}
	b.log.Info("imported board", "elements", n, "replace", replace)
	return n, nil
}

// Export writes the board as JSON.
func (b *Board) Export(w io.Writer) error {
	return export.WriteJSON(w, b.finished())
}

// ExportPDF writes the board as a one-page PDF.
func (b *Board) ExportPDF(w io.Writer) error {
	return export.WritePDF(w, b.finished(), b.background)
}

// ExportPNG writes the board as a PNG at world scale.
func (b *Board) ExportPNG(w io.Writer) error {
	return export.WritePNG(w, b.finished(), b.background, b.opts.ExportMargin)
}

// finished is every element except one still being drawn.
func (b *Board) finished() []state.Element {
	els := b.store.Elements()
	if b.store.Drawing() {
		els = els[:len(els)-1]
	}
	return els
}
