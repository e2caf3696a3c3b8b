package ui

import (
	"image"
	"log"
	"sync"

	"annotator/internal/render"
	"annotator/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// wheelZoomStep is the scale factor applied per wheel notch.
const wheelZoomStep = 1.1

// Surface renders the background image and annotation layers and turns
// pointer input into annotation and view updates. It never owns
// canonical state: every change is reported through the callbacks and
// comes back through Apply.
type Surface struct {
	widget.BaseWidget

	mu         sync.RWMutex
	cfg        state.SurfaceConfig
	foreground state.Annotation
	drawing    bool
	background image.Image
	bgSource   string

	raster *canvas.Raster

	// LoadImage resolves BackgroundImageSource. It runs off the UI
	// goroutine.
	LoadImage func(src string) (image.Image, error)

	OnForegroundAnnotationChange func(a state.Annotation)
	OnViewChange                 func(position state.Point, scale float64)
}

var _ fyne.Widget = (*Surface)(nil)
var _ fyne.Draggable = (*Surface)(nil)
var _ fyne.Scrollable = (*Surface)(nil)
var _ desktop.Mouseable = (*Surface)(nil)
var _ desktop.Cursorable = (*Surface)(nil)

// NewSurface creates a surface showing cfg.
func NewSurface(cfg state.SurfaceConfig) *Surface {
	s := &Surface{LoadImage: LoadImage}
	s.raster = canvas.NewRaster(s.draw)
	s.ExtendBaseWidget(s)
	s.Apply(cfg)
	return s
}

// Apply replaces the surface configuration and redraws.
func (s *Surface) Apply(cfg state.SurfaceConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.foreground = cfg.Foreground.Clone()
	if !cfg.Mode.CanDraw() {
		s.drawing = false
	}
	reload := cfg.BackgroundImageSource != s.bgSource
	s.bgSource = cfg.BackgroundImageSource
	if reload {
		s.background = nil
	}
	s.mu.Unlock()

	if reload && cfg.BackgroundImageSource != "" {
		go s.loadBackground(cfg.BackgroundImageSource)
	}
	s.Refresh()
}

func (s *Surface) loadBackground(src string) {
	img, err := s.LoadImage(src)
	if err != nil {
		log.Printf("[SURFACE] Failed to load background %q: %v", src, err)
		return
	}
	fyne.Do(func() {
		s.SetBackgroundImage(src, img)
	})
}

// SetBackgroundImage installs a decoded image for src. It is ignored when
// the configuration moved on to another source meanwhile.
func (s *Surface) SetBackgroundImage(src string, img image.Image) {
	s.mu.Lock()
	if src != s.bgSource {
		s.mu.Unlock()
		return
	}
	s.background = img
	s.mu.Unlock()
	s.Refresh()
}

// BackgroundImage returns the decoded background, or nil.
func (s *Surface) BackgroundImage() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

// Scene returns what the surface currently shows.
func (s *Surface) Scene() render.Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return render.Scene{
		Background: s.background,
		Layers:     s.cfg.BackgroundAnnotations,
		Foreground: s.foreground.Clone(),
		View:       s.cfg.View,
	}
}

// Drawing reports whether a stroke is in progress.
func (s *Surface) Drawing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drawing
}

func (s *Surface) toLocal(p fyne.Position) state.Point {
	return s.cfg.View.ToLocal(state.Point{X: float64(p.X), Y: float64(p.Y)})
}

// startLine begins a new stroke at p and returns the updated annotation.
// Caller holds mu.
func (s *Surface) startLine(p fyne.Position) state.Annotation {
	line := state.AnnotationLine{
		ID:    state.NewLineID(),
		Type:  state.LineDraw,
		Color: s.cfg.PenColor,
		Width: float64(s.cfg.PenWidth),
	}
	line.Append(s.toLocal(p))
	s.foreground = append(s.foreground, line)
	s.drawing = true
	return s.foreground.Clone()
}

func (s *Surface) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	s.mu.Lock()
	if s.cfg.Mode != state.ModePen {
		s.mu.Unlock()
		return
	}
	a := s.startLine(e.Position)
	s.mu.Unlock()

	s.Refresh()
	s.emitAnnotation(a)
}

func (s *Surface) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	s.endStroke()
}

func (s *Surface) Dragged(e *fyne.DragEvent) {
	s.mu.Lock()
	switch s.cfg.Mode {
	case state.ModeView:
		v := s.cfg.View
		v.Position.X += float64(e.Dragged.DX)
		v.Position.Y += float64(e.Dragged.DY)
		s.cfg.View = v
		s.mu.Unlock()
		s.Refresh()
		s.emitView(v)

	case state.ModePen:
		var a state.Annotation
		if !s.drawing || len(s.foreground) == 0 {
			a = s.startLine(e.Position)
		} else {
			last := &s.foreground[len(s.foreground)-1]
			last.Append(s.toLocal(e.Position))
			a = s.foreground.Clone()
		}
		s.mu.Unlock()
		s.Refresh()
		s.emitAnnotation(a)

	default:
		s.mu.Unlock()
	}
}

func (s *Surface) DragEnd() {
	s.endStroke()
}

func (s *Surface) endStroke() {
	s.mu.Lock()
	s.drawing = false
	s.mu.Unlock()
}

// Scrolled zooms around the pointer in view mode.
func (s *Surface) Scrolled(e *fyne.ScrollEvent) {
	s.mu.Lock()
	if s.cfg.Mode != state.ModeView || e.Scrolled.DY == 0 {
		s.mu.Unlock()
		return
	}
	v := s.cfg.View
	scale := v.Scale * wheelZoomStep
	if e.Scrolled.DY < 0 {
		scale = v.Scale / wheelZoomStep
	}
	v = v.ZoomAt(state.Point{X: float64(e.Position.X), Y: float64(e.Position.Y)}, scale)
	s.cfg.View = v
	s.mu.Unlock()

	s.Refresh()
	s.emitView(v)
}

func (s *Surface) Cursor() desktop.Cursor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cfg.Mode == state.ModePen {
		return desktop.CrosshairCursor
	}
	return desktop.DefaultCursor
}

func (s *Surface) MouseIn(*desktop.MouseEvent)    {}
func (s *Surface) MouseMoved(*desktop.MouseEvent) {}
func (s *Surface) MouseOut()                      {}

func (s *Surface) emitAnnotation(a state.Annotation) {
	if s.OnForegroundAnnotationChange != nil {
		s.OnForegroundAnnotationChange(a)
	}
}

func (s *Surface) emitView(v state.ViewTransform) {
	if s.OnViewChange != nil {
		s.OnViewChange(v.Position, v.Scale)
	}
}

// draw is the raster generator. w and h are in device pixels, which may
// differ from the widget size on scaled displays.
func (s *Surface) draw(w, h int) image.Image {
	scene := s.Scene()
	if size := s.Size(); size.Width > 0 {
		f := float64(w) / float64(size.Width)
		scene.View = state.ViewTransform{
			Position: state.Point{X: scene.View.Position.X * f, Y: scene.View.Position.Y * f},
			Scale:    scene.View.Scale * f,
		}
	}
	return render.Frame(w, h, scene)
}

func (s *Surface) CreateRenderer() fyne.WidgetRenderer {
	return &surfaceRenderer{surface: s}
}

type surfaceRenderer struct {
	surface *Surface
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.surface.raster}
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.surface.raster.Resize(size)
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *surfaceRenderer) Refresh() {
	canvas.Refresh(r.surface.raster)
}

func (r *surfaceRenderer) Destroy() {}
