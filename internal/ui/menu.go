package ui

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"LiveBoard/internal/board"
)

// fileActions wires the File menu to the board's import and export.
type fileActions struct {
	board *board.Board
	win   fyne.Window
	log   *slog.Logger
}

func (a *fileActions) menu() *fyne.Menu {
	return fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", func() { a.open(false) }),
		fyne.NewMenuItem("Open and Replace…", func() { a.open(true) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save…", func() { a.save("board.json", ".json", a.board.Export) }),
		fyne.NewMenuItem("Export PDF…", func() { a.save("board.pdf", ".pdf", a.board.ExportPDF) }),
		fyne.NewMenuItem("Export PNG…", func() { a.save("board.png", ".png", a.board.ExportPNG) }),
	)
}

// open reads a board document on the UI side and merges it on the loop.
func (a *fileActions) open(replace bool) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.win)
			return
		}
		if r == nil {
			return
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			a.log.Error("reading board file failed", "uri", r.URI(), "err", err)
			dialog.ShowError(err, a.win)
			return
		}
		a.board.Post(func() bool {
			n, err := a.board.Import(bytes.NewReader(data), replace)
			if err != nil {
				fyne.Do(func() { dialog.ShowError(err, a.win) })
				return false
			}
			a.log.Info("opened board file", "uri", r.URI().String(), "elements", n)
			return true
		})
	}, a.win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

// save writes an export on the loop, where the board state lives.
func (a *fileActions) save(name, ext string, write func(io.Writer) error) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.win)
			return
		}
		if w == nil {
			return
		}
		a.board.Post(func() bool {
			err := write(w)
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				a.log.Error("export failed", "uri", w.URI().String(), "err", err)
				fyne.Do(func() { dialog.ShowError(fmt.Errorf("saving %s: %w", w.URI().Name(), err), a.win) })
				return false
			}
			a.log.Info("board saved", "uri", w.URI().String())
			return false
		})
	}, a.win)
	d.SetFileName(name)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}
