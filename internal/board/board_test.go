package board

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveBoard/internal/camera"
	"LiveBoard/internal/geom"
	"LiveBoard/internal/interaction"
	"LiveBoard/internal/protocol"
	"LiveBoard/internal/state"
)

type fakeTransport struct {
	mu   sync.Mutex
	sent []protocol.Message
	in   chan protocol.Message
	conn chan bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{in: make(chan protocol.Message, 8), conn: make(chan bool, 8)}
}

func (f *fakeTransport) Send(msg protocol.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) Sent() []protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]protocol.Message(nil), f.sent...)
}

func (f *fakeTransport) Inbound() <-chan protocol.Message { return f.in }
func (f *fakeTransport) Connectivity() <-chan bool        { return f.conn }

func testOptions() Options {
	opts := DefaultOptions()
	opts.FlushInterval = 10 * time.Millisecond
	return opts
}

// query runs fn on the loop and waits for its result.
func query[T any](b *Board, fn func() T) T {
	ch := make(chan T, 1)
	b.Post(func() bool {
		ch <- fn()
		return false
	})
	return <-ch
}

func TestRunSendsAndMerges(t *testing.T) {
	ft := newFakeTransport()
	b := New(testOptions(), ft)

	var statusMu sync.Mutex
	var statuses []string
	b.OnStatus(func(s string) {
		statusMu.Lock()
		statuses = append(statuses, s)
		statusMu.Unlock()
	})
	frames := make(chan Frame, 64)
	b.OnFrame(func(f Frame) {
		select {
		case frames <- f:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()

	ft.conn <- true
	b.Post(func() bool {
		b.SetViewport(camera.Viewport{Width: 200, Height: 100, DPR: 1})
		b.PointerDown(geom.Pt(10, 10))
		b.PointerMove(geom.Pt(20, 20))
		b.PointerMove(geom.Pt(30, 10))
		return b.PointerUp()
	})

	require.Eventually(t, func() bool { return len(ft.Sent()) == 1 }, 2*time.Second, 5*time.Millisecond)
	sent := ft.Sent()[0]
	assert.Equal(t, protocol.DrawData, sent.Type)
	require.Len(t, sent.Elements, 1)
	assert.Len(t, sent.Elements[0].Points, 2)

	ft.in <- protocol.Message{Type: protocol.DrawData, Elements: []state.Element{{
		ID: "remote", StrokeWidth: 2, Color: "#ff0000", Opacity: 1,
		Points: []geom.Point{{X: 0, Y: 0}, {X: 5, Y: 5}},
	}}}
	require.Eventually(t, func() bool {
		return query(b, func() int { return b.Store().Len() }) == 2
	}, 2*time.Second, 5*time.Millisecond)

	select {
	case f := <-frames:
		require.NotNil(t, f.Image)
		assert.Equal(t, 200, f.Image.Bounds().Dx())
		assert.Equal(t, "crosshair", f.Cursor)
	case <-time.After(2 * time.Second):
		t.Fatal("no frame rendered")
	}

	cancel()
	require.NoError(t, <-errc)
	assert.False(t, b.Post(func() bool { return false }), "loop has stopped")

	statusMu.Lock()
	defer statusMu.Unlock()
	assert.Equal(t, []string{"disconnected", "connected"}, statuses)
}

func TestOfflineBoard(t *testing.T) {
	b := New(testOptions(), nil)
	var status string
	b.OnStatus(func(s string) { status = s })

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()

	n := query(b, func() int {
		b.SetViewport(camera.Viewport{Width: 100, Height: 100, DPR: 1})
		b.PointerDown(geom.Pt(1, 1))
		b.PointerMove(geom.Pt(9, 9))
		b.PointerUp()
		return b.Flush()
	})
	assert.Equal(t, 0, n)
	cancel()
	require.NoError(t, <-errc)
	assert.Equal(t, "offline", status)
	assert.Equal(t, 1, b.Store().Len())
}

func TestImportMergesAndQueues(t *testing.T) {
	b := New(testOptions(), nil)
	doc := `[
		{"id":"x","strokeWidth":2,"color":"#000","opacity":1,"points":[{"x":0,"y":0},{"x":1,"y":1}]},
		{"id":"x","strokeWidth":2,"color":"#000","opacity":1,"points":[{"x":0,"y":0},{"x":1,"y":1}]},
		{"stroke":4,"color":"#f00","points":[{"x":5,"y":5},{"x":6,"y":6}]}
	]`
	n, err := b.Import(strings.NewReader(doc), false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, b.Store().Len())

	adds, _ := b.outbox.Len()
	assert.Equal(t, 2, adds)
	queued := b.outbox.TakeAdditions()
	stored := b.Store().Elements()
	for i := range queued {
		assert.NotEmpty(t, queued[i].ID)
		assert.Equal(t, stored[i].ID, queued[i].ID, "peers learn the same IDs")
	}

	n, err = b.Import(strings.NewReader(doc), false)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "known IDs are skipped, unnamed strokes get fresh IDs")
}

func TestImportReplaceErasesOnPeers(t *testing.T) {
	b := New(testOptions(), nil)
	b.Store().MergeRemoteAdditions([]state.Element{
		{ID: "old", StrokeWidth: 2, Color: "#000", Opacity: 1, Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}},
		{ID: "both", StrokeWidth: 2, Color: "#000", Opacity: 1, Points: []geom.Point{{X: 5, Y: 5}, {X: 6, Y: 6}}},
	})
	b.SetViewport(camera.Viewport{Width: 400, Height: 300, DPR: 1})
	b.PointerDown(geom.Pt(100, 100))
	b.PointerMove(geom.Pt(120, 120))
	b.PointerUp()
	unsent, _ := b.outbox.Len()
	require.Equal(t, 1, unsent)

	doc := `[
		{"id":"both","strokeWidth":2,"color":"#000","opacity":1,"points":[{"x":5,"y":5},{"x":6,"y":6}]},
		{"id":"new","strokeWidth":2,"color":"#000","opacity":1,"points":[{"x":9,"y":9},{"x":8,"y":8}]}
	]`
	n, err := b.Import(strings.NewReader(doc), true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, b.Store().Len())

	erasures := b.outbox.TakeErasures()
	require.Len(t, erasures, 1, "the never-sent local stroke cancels its addition")
	assert.Equal(t, "old", erasures[0].ID)

	var ids []string
	for _, e := range b.outbox.TakeAdditions() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"both", "new"}, ids)
}

func TestStartingTool(t *testing.T) {
	opts := testOptions()
	opts.Tool = interaction.ModeMove
	b := New(opts, nil)
	assert.Equal(t, interaction.ModeMove, b.Mode())
	assert.Equal(t, interaction.ModeDraw, New(testOptions(), nil).Mode())
}

func TestImportMalformedChangesNothing(t *testing.T) {
	b := New(testOptions(), nil)
	_, err := b.Import(strings.NewReader(`{"not":"an array"}`), true)
	require.Error(t, err)

	_, err = b.Import(strings.NewReader(`[{"points":`), false)
	require.Error(t, err)
	assert.Equal(t, 0, b.Store().Len())
	assert.True(t, b.outbox.Empty())
}

func TestExportImportBetweenBoards(t *testing.T) {
	a := New(testOptions(), nil)
	a.SetViewport(camera.Viewport{Width: 400, Height: 300, DPR: 1})
	a.PointerDown(geom.Pt(10, 10))
	a.PointerMove(geom.Pt(50, 50))
	a.PointerMove(geom.Pt(90, 10))
	a.PointerUp()
	a.PointerDown(geom.Pt(100, 100))
	a.PointerMove(geom.Pt(120, 120))

	var buf bytes.Buffer
	require.NoError(t, a.Export(&buf))

	b := New(testOptions(), nil)
	n, err := b.Import(&buf, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "the stroke still being drawn is not exported")
	assert.Equal(t, a.Store().Elements()[0], b.Store().Elements()[0])
}

func TestExportPDFAndPNG(t *testing.T) {
	b := New(testOptions(), nil)
	_, err := b.Import(strings.NewReader(`[{"strokeWidth":3,"color":"#000","points":[{"x":0,"y":0},{"x":40,"y":30}]}]`), false)
	require.NoError(t, err)

	var pdf, png bytes.Buffer
	require.NoError(t, b.ExportPDF(&pdf))
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")))
	require.NoError(t, b.ExportPNG(&png))
	assert.True(t, bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")))
}

func TestSettingsReportRedraw(t *testing.T) {
	b := New(testOptions(), nil)
	assert.True(t, b.SetBackground("#000000"))
	assert.False(t, b.SetBackground("#000000"))
	assert.True(t, b.SetViewport(camera.Viewport{Width: 10, Height: 10, DPR: 1}))
	assert.False(t, b.SetViewport(camera.Viewport{Width: 10, Height: 10, DPR: 1}))
	assert.True(t, b.SetMode(interaction.ModeMove))
	assert.Equal(t, "grab", b.Cursor())
	assert.False(t, b.SetStyle(state.Style{StrokeWidth: 12, Color: "#ff0000"}))
	assert.Equal(t, 12.0, b.Style().StrokeWidth)

	b.Camera().SetZoom(4)
	assert.True(t, b.ResetCamera())
	assert.False(t, b.Camera().Moved())
}
