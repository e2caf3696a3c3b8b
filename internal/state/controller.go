package state

import (
	"log"
	"math"
)

// Defaults applied when a Controller is created.
var (
	DefaultPosition = Point{X: 32, Y: 32}
)

const (
	DefaultScale    = 1.0
	DefaultPenWidth = 2

	zoomOutFactor = 0.9
	zoomInFactor  = 1.1
)

// Options configures an annotation widget. The zero value is usable;
// see NewController for the defaults applied to unset fields.
type Options struct {
	// BackgroundImageSource is a file path or URI of the image shown
	// underneath all annotations. Empty means no image.
	BackgroundImageSource string

	// BackgroundAnnotations are read-only layers drawn below the
	// foreground layer. nil means a single empty layer.
	BackgroundAnnotations []Annotation

	// ForegroundAnnotation is the initial content of the editable layer.
	ForegroundAnnotation Annotation

	// OnForegroundAnnotationChange receives every complete foreground
	// annotation after an edit or a clear.
	OnForegroundAnnotationChange func(Annotation)

	// TransparentToolbar draws the toolbar without a background.
	TransparentToolbar bool

	// Drawable enables the mode toggle. A widget that is not drawable
	// stays in ModeView.
	Drawable bool
}

func (o *Options) applyDefaults() {
	if o.BackgroundAnnotations == nil {
		o.BackgroundAnnotations = []Annotation{{}}
	}
	if o.ForegroundAnnotation == nil {
		o.ForegroundAnnotation = Annotation{}
	}
	if o.OnForegroundAnnotationChange == nil {
		o.OnForegroundAnnotationChange = func(Annotation) {}
	}
}

// EventType identifies a controller state change.
type EventType int

const (
	EventModeChanged EventType = iota
	EventPenChanged
	EventViewChanged
	EventAnnotationChanged
)

// Listener is notified after the controller state changed.
type Listener func(c *Controller)

// SurfaceConfig is everything a rendering surface needs for one frame.
type SurfaceConfig struct {
	BackgroundImageSource string
	BackgroundAnnotations []Annotation
	Foreground            Annotation
	Mode                  CanvasMode
	PenColor              string
	PenWidth              int
	View                  ViewTransform
}

// Controller is the single owner of the editing mode, pen style, view
// transform and foreground annotation. All methods must be called from
// the UI goroutine.
type Controller struct {
	opts Options

	mode       CanvasMode
	penWidth   int
	penColor   string
	view       ViewTransform
	foreground Annotation

	listeners map[EventType][]Listener
}

// NewController creates a controller in ModeView with the default view
// and pen.
func NewController(opts Options) *Controller {
	opts.applyDefaults()
	bg := make([]Annotation, len(opts.BackgroundAnnotations))
	for i, a := range opts.BackgroundAnnotations {
		bg[i] = a.Compact()
	}
	opts.BackgroundAnnotations = bg

	return &Controller{
		opts:       opts,
		mode:       ModeView,
		penWidth:   DefaultPenWidth,
		penColor:   DefaultPenColor,
		view:       ViewTransform{Position: DefaultPosition, Scale: DefaultScale},
		foreground: opts.ForegroundAnnotation.Compact(),
		listeners:  make(map[EventType][]Listener),
	}
}

// On registers a listener for the given event type.
func (c *Controller) On(event EventType, l Listener) {
	c.listeners[event] = append(c.listeners[event], l)
}

// OnAny registers l for every event type.
func (c *Controller) OnAny(l Listener) {
	for _, e := range []EventType{EventModeChanged, EventPenChanged, EventViewChanged, EventAnnotationChanged} {
		c.On(e, l)
	}
}

func (c *Controller) emit(event EventType) {
	for _, l := range c.listeners[event] {
		l(c)
	}
}

// Options returns the configuration the controller was built with.
func (c *Controller) Options() Options { return c.opts }

// Mode returns the active canvas mode.
func (c *Controller) Mode() CanvasMode { return c.mode }

// PenWidth returns the current stroke width.
func (c *Controller) PenWidth() int { return c.penWidth }

// PenColor returns the current stroke colour as #rrggbb.
func (c *Controller) PenColor() string { return c.penColor }

// View returns the current view transform.
func (c *Controller) View() ViewTransform { return c.view }

// Foreground returns a copy of the editable annotation.
func (c *Controller) Foreground() Annotation { return c.foreground.Clone() }

// SurfaceConfig returns the declarative input for the rendering surface.
func (c *Controller) SurfaceConfig() SurfaceConfig {
	return SurfaceConfig{
		BackgroundImageSource: c.opts.BackgroundImageSource,
		BackgroundAnnotations: c.opts.BackgroundAnnotations,
		Foreground:            c.Foreground(),
		Mode:                  c.mode,
		PenColor:              c.penColor,
		PenWidth:              c.penWidth,
		View:                  c.view,
	}
}

// SelectMode switches the canvas mode. It never touches the annotation.
func (c *Controller) SelectMode(m CanvasMode) {
	if !m.Valid() {
		log.Printf("[CONTROLLER] Ignoring unknown mode %v", m)
		return
	}
	if m != ModeView && !c.opts.Drawable {
		log.Printf("[CONTROLLER] Ignoring mode %v: widget is not drawable", m)
		return
	}
	if m == c.mode {
		return
	}
	c.mode = m
	c.emit(EventModeChanged)
}

// SetPenWidth sets the stroke width, clamped to [1, 10].
func (c *Controller) SetPenWidth(w int) {
	w = ClampPenWidth(w)
	if w == c.penWidth {
		return
	}
	c.penWidth = w
	c.emit(EventPenChanged)
}

// SetPenColor sets the stroke colour. Strings that are not colours are
// ignored.
func (c *Controller) SetPenColor(s string) {
	hex, ok := NormalizeColor(s)
	if !ok {
		log.Printf("[CONTROLLER] Ignoring invalid pen color %q", s)
		return
	}
	if hex == c.penColor {
		return
	}
	c.penColor = hex
	c.emit(EventPenChanged)
}

// ClearAll empties the foreground annotation. Only effective in
// ModeEraser.
func (c *Controller) ClearAll() {
	if c.mode != ModeEraser {
		return
	}
	c.foreground = Annotation{}
	c.emit(EventAnnotationChanged)
	c.opts.OnForegroundAnnotationChange(Annotation{})
}

// ZoomOut decreases the scale by about 10%, rounded down to one decimal.
func (c *Controller) ZoomOut() {
	c.setScale(math.Max(MinScale, math.Floor(snap(c.view.Scale*zoomOutFactor*10))/10))
}

// ZoomIn increases the scale by about 10%, rounded up to one decimal.
func (c *Controller) ZoomIn() {
	c.setScale(math.Min(MaxScale, math.Ceil(snap(c.view.Scale*zoomInFactor*10))/10))
}

// snap removes floating point noise so that values such as
// 11.000000000000002 do not round up past the intended tenth.
func snap(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func (c *Controller) setScale(s float64) {
	if s == c.view.Scale {
		return
	}
	c.view.Scale = s
	c.emit(EventViewChanged)
}

// ResetView restores the default position and scale.
func (c *Controller) ResetView() {
	c.view = ViewTransform{Position: DefaultPosition, Scale: DefaultScale}
	c.emit(EventViewChanged)
}

// ReceiveAnnotation stores an annotation reported by the surface and
// forwards it to the external callback. Updates arriving in ModeView are
// dropped.
func (c *Controller) ReceiveAnnotation(a Annotation) {
	if !c.mode.CanDraw() {
		log.Printf("[CONTROLLER] Dropping annotation update in %v mode", c.mode)
		return
	}
	c.foreground = a.Compact()
	c.emit(EventAnnotationChanged)
	c.opts.OnForegroundAnnotationChange(c.foreground.Clone())
}

// ReceiveView stores a pan/zoom reported by the surface. The scale is
// clamped again.
func (c *Controller) ReceiveView(p Point, scale float64) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		p = c.view.Position
	}
	c.view = ViewTransform{Position: p, Scale: ClampScale(scale)}
	c.emit(EventViewChanged)
}

// ZoomPercent is the scale as displayed by the toolbar.
func (c *Controller) ZoomPercent() int {
	return int(math.Round(c.view.Scale * 100))
}
