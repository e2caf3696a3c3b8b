package ui

import (
	"annotator/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
)

// Annotator is the toolbar and surface wired to one controller.
type Annotator struct {
	Controller *state.Controller
	Surface    *Surface
	Toolbar    *Toolbar

	content fyne.CanvasObject
}

// NewAnnotator connects a surface and toolbar to ctrl. The surface
// reports edits to the controller and is re-applied after every
// controller change.
func NewAnnotator(ctrl *state.Controller, window fyne.Window, onExport func()) *Annotator {
	s := NewSurface(ctrl.SurfaceConfig())
	s.OnForegroundAnnotationChange = ctrl.ReceiveAnnotation
	s.OnViewChange = ctrl.ReceiveView
	ctrl.OnAny(func(c *state.Controller) {
		s.Apply(c.SurfaceConfig())
	})

	tb := NewToolbar(ctrl, window, onExport)
	return &Annotator{
		Controller: ctrl,
		Surface:    s,
		Toolbar:    tb,
		content:    container.NewBorder(tb.Object(), nil, nil, nil, s),
	}
}

// Content returns the canvas object to place in a window.
func (a *Annotator) Content() fyne.CanvasObject {
	return a.content
}

// AppConfig holds window settings for RunApp.
type AppConfig struct {
	Title     string
	Width     float32
	Height    float32
	ExportDir string
}

// RunApp opens the annotator window and blocks until it is closed.
func RunApp(ctrl *state.Controller, cfg AppConfig) {
	myApp := app.New()
	myWindow := myApp.NewWindow(cfg.Title)
	myWindow.Resize(fyne.NewSize(cfg.Width, cfg.Height))

	var annotator *Annotator
	annotator = NewAnnotator(ctrl, myWindow, func() {
		ShowExportDialog(myWindow, annotator.Surface, cfg.ExportDir)
	})

	myWindow.SetContent(annotator.Content())
	myWindow.ShowAndRun()
}
