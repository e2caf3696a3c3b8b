package state

import "math"

// Rect is an axis-aligned rectangle in canvas-local space.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return !(r.X+r.Width < o.X || o.X+o.Width < r.X ||
		r.Y+r.Height < o.Y || o.Y+o.Height < r.Y)
}

// Union returns the smallest rectangle covering r and o. An empty
// operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Grow extends r by d on every side (shrinks for negative d).
func (r Rect) Grow(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Bounds returns the area painted by the line, including half the stroke
// width on each side.
func (l AnnotationLine) Bounds() Rect {
	n := l.Len()
	if n == 0 {
		return Rect{}
	}
	first := l.At(0)
	minX, minY := first.X, first.Y
	maxX, maxY := first.X, first.Y
	for i := 1; i < n; i++ {
		p := l.At(i)
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	pad := l.Width / 2
	if pad < 0.5 {
		pad = 0.5
	}
	return Rect{
		X:      minX - pad,
		Y:      minY - pad,
		Width:  maxX - minX + 2*pad,
		Height: maxY - minY + 2*pad,
	}
}

// Bounds returns the union of all line bounds.
func (a Annotation) Bounds() Rect {
	var r Rect
	for _, l := range a {
		r = r.Union(l.Bounds())
	}
	return r
}

// LayersBounds returns the union of the bounds of every layer.
func LayersBounds(layers ...Annotation) Rect {
	var r Rect
	for _, a := range layers {
		r = r.Union(a.Bounds())
	}
	return r
}
