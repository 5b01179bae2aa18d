package ui

import (
	"context"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveBoard/internal/board"
	"LiveBoard/internal/camera"
	"LiveBoard/internal/interaction"
)

func TestSwatchReportsItsColour(t *testing.T) {
	var got string
	s := newColorSwatch("#ff0000", func(c string) { got = c })
	s.Tapped(&fyne.PointEvent{})
	assert.Equal(t, "#ff0000", got)
}

func TestCursorFollowsTool(t *testing.T) {
	b := board.New(board.DefaultOptions(), nil)
	w := NewBoardWidget(b)
	assert.Equal(t, desktop.CrosshairCursor, w.Cursor())

	w.cursor = "grab"
	assert.Equal(t, desktop.PointerCursor, w.Cursor())
	w.cursor = ""
	assert.Equal(t, desktop.DefaultCursor, w.Cursor())
}

func TestWidgetForwardsPointerToLoop(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	b := board.New(board.DefaultOptions(), nil)
	b.SetViewport(camera.Viewport{Width: 200, Height: 100, DPR: 1})
	b.SetMode(interaction.ModeDraw)
	w := NewBoardWidget(b)
	win := test.NewWindow(w)
	defer win.Close()

	primary := func(x, y float32) *desktop.MouseEvent {
		return &desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: desktop.MouseButtonPrimary}
	}
	w.MouseDown(primary(10, 10))
	w.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(20, 20)}})
	w.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(30, 10)}})
	w.MouseUp(primary(30, 10))
	w.DragEnd()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- b.Run(ctx) }()

	require.Eventually(t, func() bool {
		n := make(chan int, 1)
		b.Post(func() bool {
			n <- b.Store().Len()
			return false
		})
		return <-n == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
}
