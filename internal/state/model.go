package state

import (
	"fmt"
	"math"
)

// Point is a coordinate in canvas-local space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LineType is the compositing operation used when a line is painted.
type LineType string

const (
	LineDraw  LineType = "source-over"     // paint pixels normally
	LineErase LineType = "destination-out" // remove pixels underneath, within the same layer
)

// AnnotationLine is one continuous stroke. Points holds x,y pairs in
// drawing order.
type AnnotationLine struct {
	ID     string    `json:"id,omitempty"`
	Points []float64 `json:"points"`
	Type   LineType  `json:"type"`
	Color  string    `json:"color"`
	Width  float64   `json:"width"`
}

// Len returns the number of complete points in the line.
func (l AnnotationLine) Len() int {
	return len(l.Points) / 2
}

// At returns the i-th point of the line.
func (l AnnotationLine) At(i int) Point {
	return Point{X: l.Points[2*i], Y: l.Points[2*i+1]}
}

// Append adds p to the end of the line.
func (l *AnnotationLine) Append(p Point) {
	l.Points = append(l.Points, p.X, p.Y)
}

// Annotation is an ordered list of lines; later lines are drawn on top.
type Annotation []AnnotationLine

// Clone returns a deep copy of a.
func (a Annotation) Clone() Annotation {
	out := make(Annotation, len(a))
	for i, l := range a {
		out[i] = l
		out[i].Points = append([]float64(nil), l.Points...)
	}
	return out
}

// Compact returns a copy of a with empty lines removed and any dangling
// odd coordinate trimmed. Unknown line types are treated as LineDraw and
// non-positive widths are raised to 1.
func (a Annotation) Compact() Annotation {
	out := make(Annotation, 0, len(a))
	for _, l := range a {
		n := len(l.Points) &^ 1
		if n == 0 {
			continue
		}
		l.Points = append([]float64(nil), l.Points[:n]...)
		if l.Type != LineErase {
			l.Type = LineDraw
		}
		if l.Width <= 0 || math.IsNaN(l.Width) {
			l.Width = 1
		}
		out = append(out, l)
	}
	return out
}

// CanvasMode selects how pointer input on the surface is interpreted.
type CanvasMode int

const (
	ModeView CanvasMode = iota
	ModePen
	ModeEraser
)

var modeNames = map[CanvasMode]string{
	ModeView:   "view",
	ModePen:    "pen",
	ModeEraser: "eraser",
}

func (m CanvasMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("CanvasMode(%d)", int(m))
}

// Valid reports whether m is one of the known modes.
func (m CanvasMode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// CanDraw reports whether the surface accepts annotation edits in m.
func (m CanvasMode) CanDraw() bool {
	return m == ModePen || m == ModeEraser
}

// ParseCanvasMode converts "view", "pen" or "eraser" to a CanvasMode.
func ParseCanvasMode(s string) (CanvasMode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeView, fmt.Errorf("unknown canvas mode %q", s)
}

const (
	MinScale = 0.1
	MaxScale = 10.0

	MinPenWidth = 1
	MaxPenWidth = 10
)

// ClampScale limits s to [MinScale, MaxScale]. NaN maps to 1.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	return math.Min(MaxScale, math.Max(MinScale, s))
}

// ClampPenWidth limits w to [MinPenWidth, MaxPenWidth].
func ClampPenWidth(w int) int {
	if w < MinPenWidth {
		return MinPenWidth
	}
	if w > MaxPenWidth {
		return MaxPenWidth
	}
	return w
}

// ViewTransform maps canvas-local coordinates to the screen:
// screen = Position + local*Scale.
type ViewTransform struct {
	Position Point   `json:"position"`
	Scale    float64 `json:"scale"`
}

// ToScreen converts a canvas-local point to screen space.
func (v ViewTransform) ToScreen(p Point) Point {
	return Point{X: v.Position.X + p.X*v.Scale, Y: v.Position.Y + p.Y*v.Scale}
}

// ToLocal converts a screen point to canvas-local space.
func (v ViewTransform) ToLocal(p Point) Point {
	s := v.Scale
	if s == 0 {
		s = 1
	}
	return Point{X: (p.X - v.Position.X) / s, Y: (p.Y - v.Position.Y) / s}
}

// ZoomAt returns the transform scaled to s while keeping the screen point
// anchor fixed. s is clamped.
func (v ViewTransform) ZoomAt(anchor Point, s float64) ViewTransform {
	s = ClampScale(s)
	local := v.ToLocal(anchor)
	return ViewTransform{
		Position: Point{X: anchor.X - local.X*s, Y: anchor.Y - local.Y*s},
		Scale:    s,
	}
}
