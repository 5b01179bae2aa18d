// Package ui is the desktop shell around a board: the drawing surface,
// the toolbar, the File menu and a status line.
package ui

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"LiveBoard/internal/board"
)

// RunApp opens the board window, runs the board's event loop behind it and
// blocks until the window is closed or ctx is cancelled. shareLink, when
// set, is shown with a button copying it to the clipboard.
func RunApp(ctx context.Context, b *board.Board, shareLink string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	myApp := app.NewWithID("io.liveboard")
	myWindow := myApp.NewWindow("LiveBoard")
	myWindow.Resize(fyne.NewSize(1024, 768))

	surface := NewBoardWidget(b)
	toolbar := NewToolbar(b)

	status := widget.NewLabel("Starting…")
	b.OnStatus(func(s string) {
		fyne.Do(func() { status.SetText("Relay: " + s) })
	})
	footer := container.NewHBox(status)
	if shareLink != "" {
		footer.Add(widget.NewLabel(shareLink))
		footer.Add(widget.NewButton("Copy link", func() {
			myWindow.Clipboard().SetContent(shareLink)
		}))
	}

	files := &fileActions{board: b, win: myWindow, log: logger.With("component", "ui")}
	myWindow.SetMainMenu(fyne.NewMainMenu(files.menu()))
	myWindow.SetContent(container.NewBorder(toolbar, footer, nil, nil, surface))

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- b.Run(loopCtx) }()

	closed := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(myApp.Quit)
		case <-closed:
		}
	}()

	myWindow.ShowAndRun()
	close(closed)
	cancel()
	return <-errc
}
