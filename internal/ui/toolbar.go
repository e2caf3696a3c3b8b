package ui

import (
	"fmt"
	"image/color"
	"math"

	"annotator/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	Selected bool
	OnTapped func(color.Color)

	fill   *canvas.Rectangle
	border *canvas.Rectangle
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.fill = canvas.NewRectangle(c)
	s.fill.SetMinSize(fyne.NewSize(24, 24))
	s.border = canvas.NewRectangle(color.Transparent)
	s.updateBorder()
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewStack(s.fill, s.border))
}

func (s *colorSwatch) SetColor(c color.Color) {
	s.Color = c
	s.fill.FillColor = c
	s.fill.Refresh()
}

func (s *colorSwatch) SetSelected(sel bool) {
	if s.Selected == sel {
		return
	}
	s.Selected = sel
	s.updateBorder()
	s.border.Refresh()
}

func (s *colorSwatch) updateBorder() {
	if s.Selected {
		s.border.StrokeColor = theme.Color(theme.ColorNamePrimary)
		s.border.StrokeWidth = 3
	} else {
		s.border.StrokeColor = color.Gray{Y: 150}
		s.border.StrokeWidth = 1
	}
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Toolbar exposes the controller's mode, pen and view operations. Which
// group of controls is visible depends on the current mode.
type Toolbar struct {
	ctrl   *state.Controller
	window fyne.Window
	root   *fyne.Container

	modeButtons map[state.CanvasMode]*widget.Button
	modeGroup   *fyne.Container

	penGroup    *fyne.Container
	swatches    []*colorSwatch
	customColor *colorSwatch
	widthSlider *widget.Slider
	widthLabel  *widget.Label

	eraserGroup *fyne.Container
	clearAll    *widget.Button

	viewGroup *fyne.Container
	zoomOut   *widget.Button
	zoomIn    *widget.Button
	zoomLabel *widget.Label
	resetView *widget.Button

	export *widget.Button
}

// NewToolbar builds the toolbar for ctrl. window parents the colour
// picker dialog; onExport, when set, adds an export button.
func NewToolbar(ctrl *state.Controller, window fyne.Window, onExport func()) *Toolbar {
	t := &Toolbar{
		ctrl:        ctrl,
		window:      window,
		modeButtons: make(map[state.CanvasMode]*widget.Button),
	}

	// --- Mode toggle ---
	modeIcons := []struct {
		mode state.CanvasMode
		icon fyne.Resource
	}{
		{state.ModeView, theme.VisibilityIcon()},
		{state.ModePen, theme.DocumentCreateIcon()},
		{state.ModeEraser, theme.DeleteIcon()},
	}
	var modeObjects []fyne.CanvasObject
	for _, mi := range modeIcons {
		m := mi.mode
		b := widget.NewButtonWithIcon("", mi.icon, func() { ctrl.SelectMode(m) })
		t.modeButtons[m] = b
		modeObjects = append(modeObjects, b)
	}
	t.modeGroup = container.NewHBox(modeObjects...)
	if !ctrl.Options().Drawable {
		t.modeGroup.Hide()
	}

	// --- Pen: colour palette and width ---
	onColorTapped := func(c color.Color) {
		ctrl.SetPenColor(state.FormatColor(c))
	}
	var penObjects []fyne.CanvasObject
	for _, hex := range state.Palette {
		c, _ := state.ParseColor(hex)
		sw := newColorSwatch(c, onColorTapped)
		t.swatches = append(t.swatches, sw)
		penObjects = append(penObjects, sw)
	}
	current, _ := state.ParseColor(ctrl.PenColor())
	t.customColor = newColorSwatch(current, func(color.Color) { t.pickColor() })
	penObjects = append(penObjects, t.customColor)

	t.widthSlider = widget.NewSlider(state.MinPenWidth, state.MaxPenWidth)
	t.widthSlider.Step = 1
	t.widthSlider.SetValue(float64(ctrl.PenWidth()))
	t.widthSlider.OnChanged = func(v float64) {
		ctrl.SetPenWidth(int(math.Round(v)))
	}
	t.widthLabel = widget.NewLabel("")
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.widthSlider)
	penObjects = append(penObjects, widget.NewSeparator(), sliderContainer, t.widthLabel)
	t.penGroup = container.NewHBox(penObjects...)

	// --- Eraser ---
	t.clearAll = widget.NewButton("Clear All", ctrl.ClearAll)
	t.eraserGroup = container.NewHBox(t.clearAll)

	// --- View ---
	t.zoomOut = widget.NewButtonWithIcon("", theme.ZoomOutIcon(), ctrl.ZoomOut)
	t.zoomIn = widget.NewButtonWithIcon("", theme.ZoomInIcon(), ctrl.ZoomIn)
	t.zoomLabel = widget.NewLabel("")
	t.resetView = widget.NewButton("Reset View", ctrl.ResetView)
	t.viewGroup = container.NewHBox(t.zoomOut, t.zoomLabel, t.zoomIn, t.resetView)

	// --- Assemble everything ---
	row := []fyne.CanvasObject{t.modeGroup, t.penGroup, t.eraserGroup, t.viewGroup, layout.NewSpacer()}
	if onExport != nil {
		t.export = widget.NewButtonWithIcon("Export PDF", theme.DocumentSaveIcon(), onExport)
		row = append(row, t.export)
	}
	bar := container.NewHBox(row...)

	if ctrl.Options().TransparentToolbar {
		t.root = container.NewStack(bar)
	} else {
		bg := canvas.NewRectangle(theme.Color(theme.ColorNameHeaderBackground))
		t.root = container.NewStack(bg, container.NewPadded(bar))
	}

	ctrl.OnAny(func(*state.Controller) { t.Sync() })
	t.Sync()
	return t
}

// Object returns the toolbar's canvas object for embedding in layouts.
func (t *Toolbar) Object() fyne.CanvasObject {
	return t.root
}

// Sync updates every control from the controller state.
func (t *Toolbar) Sync() {
	mode := t.ctrl.Mode()
	for m, b := range t.modeButtons {
		if m == mode {
			b.Importance = widget.HighImportance
		} else {
			b.Importance = widget.MediumImportance
		}
		b.Refresh()
	}

	showIf(t.penGroup, mode == state.ModePen)
	showIf(t.eraserGroup, mode == state.ModeEraser)
	showIf(t.viewGroup, mode == state.ModeView)

	pen := t.ctrl.PenColor()
	matched := false
	for _, sw := range t.swatches {
		sel := state.FormatColor(sw.Color) == pen
		matched = matched || sel
		sw.SetSelected(sel)
	}
	if c, err := state.ParseColor(pen); err == nil {
		t.customColor.SetColor(c)
	}
	t.customColor.SetSelected(!matched)

	if w := float64(t.ctrl.PenWidth()); t.widthSlider.Value != w {
		t.widthSlider.SetValue(w)
	}
	t.widthLabel.SetText(fmt.Sprintf("%dpx", t.ctrl.PenWidth()))
	t.zoomLabel.SetText(fmt.Sprintf("%d%%", t.ctrl.ZoomPercent()))
}

func (t *Toolbar) pickColor() {
	if t.window == nil {
		return
	}
	picker := dialog.NewColorPicker("Pen Color", "Choose a pen color", func(c color.Color) {
		t.ctrl.SetPenColor(state.FormatColor(c))
	}, t.window)
	picker.Advanced = true
	picker.Show()
}

func showIf(o fyne.CanvasObject, visible bool) {
	if visible {
		o.Show()
	} else {
		o.Hide()
	}
}
