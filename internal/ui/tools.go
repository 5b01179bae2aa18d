package ui

import (
	"fmt"
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"LiveBoard/internal/board"
	"LiveBoard/internal/interaction"
	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
)

var (
	strokeOptions    = []string{"12", "6", "3"}
	penColors        = []string{"#000000", "#ff0000", "#00ff00", "#0000ff", "#ffff00"}
	backgroundColors = []string{"#fcfcfc", "#ffffff", "#1e1e1e"}
)

// colorSwatch is a tappable square of colour.
type colorSwatch struct {
	widget.BaseWidget
	Color    string
	OnTapped func(string)
}

func newColorSwatch(c string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ParseColor(s.Color, 1))
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// NewToolbar builds the tool, colour, size and background controls. The
// style lives here on the UI side and a copy is posted to the board on
// every change. It must be called before b.Run.
func NewToolbar(b *board.Board) fyne.CanvasObject {
	style := b.Style()
	setStyle := func() {
		s := style
		b.Post(func() bool { return b.SetStyle(s) })
	}
	setMode := func(m interaction.Mode) func() {
		return func() { b.Post(func() bool { return b.SetMode(m) }) }
	}

	tools := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), setMode(interaction.ModeDraw)),
		widget.NewToolbarAction(theme.ContentClearIcon(), setMode(interaction.ModeErase)),
		widget.NewToolbarAction(theme.ViewFullScreenIcon(), setMode(interaction.ModeMove)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRestoreIcon(), func() { b.Post(b.ResetCamera) }),
	)

	var swatches []fyne.CanvasObject
	for _, c := range penColors {
		swatches = append(swatches, newColorSwatch(c, func(c string) {
			style.Color = c
			setStyle()
		}))
	}

	size := widget.NewSelect(strokeOptions, func(v string) {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return
		}
		style.StrokeWidth = w
		setStyle()
	})
	size.SetSelected(strokeLabel(style))

	var backgrounds []fyne.CanvasObject
	for _, c := range backgroundColors {
		backgrounds = append(backgrounds, newColorSwatch(c, func(c string) {
			b.Post(func() bool { return b.SetBackground(c) })
		}))
	}

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tools,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		container.NewHBox(swatches...),
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		size,
		widget.NewSeparator(),
		widget.NewLabel("Background:"),
		container.NewHBox(backgrounds...),
		layout.NewSpacer(),
	)
}

func strokeLabel(s state.Style) string {
	return fmt.Sprintf("%g", s.StrokeWidth)
}
