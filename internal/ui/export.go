package ui

import (
	"fmt"
	"log"

	"annotator/internal/export"
	"annotator/internal/render"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// ShowExportDialog asks for a destination and writes the surface's
// document as a PDF. dir, when set, is the dialog's starting folder.
func ShowExportDialog(win fyne.Window, s *Surface, dir string) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if writer == nil {
			return // cancelled
		}
		if err := ExportTo(writer, s); err != nil {
			log.Printf("[EXPORT] %v", err)
			dialog.ShowError(err, win)
		}
	}, win)
	d.SetFileName("annotation.pdf")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	if dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			d.SetLocation(lister)
		} else {
			log.Printf("[EXPORT] Ignoring export dir %q: %v", dir, err)
		}
	}
	d.Show()
}

// ExportTo renders the surface's document and writes it as a PDF to
// writer, closing it afterwards.
func ExportTo(writer fyne.URIWriteCloser, s *Surface) error {
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("[EXPORT] Error closing writer: %v", err)
		}
	}()

	img := render.Document(s.Scene())
	if err := export.WritePDF(writer, img); err != nil {
		return fmt.Errorf("export %s: %w", writer.URI().Name(), err)
	}
	log.Printf("[EXPORT] Wrote %s (%dx%d)", writer.URI(), img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}
