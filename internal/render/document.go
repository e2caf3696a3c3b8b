package render

import (
	"image"
	"math"

	"annotator/internal/state"
)

// documentMargin is the blank border kept around annotations when there
// is no background image to size the document.
const documentMargin = 16

// maxDocumentSide bounds the size of a document render. Larger documents
// are scaled down to fit.
const maxDocumentSide = 8192

// Document renders the scene at scale 1 independent of the current view:
// the frame covers the background image, or the annotations plus a
// margin when there is no image. The View field of s is ignored.
func Document(s Scene) *image.RGBA {
	var w, h int
	view := state.ViewTransform{Scale: 1}

	if s.Background != nil {
		b := s.Background.Bounds()
		w, h = b.Dx(), b.Dy()
	} else {
		r := state.LayersBounds(append(append([]state.Annotation{}, s.Layers...), s.Foreground)...)
		if r.Empty() {
			r = state.Rect{Width: 1, Height: 1}
		}
		r = r.Grow(documentMargin)
		w, h = int(math.Ceil(r.Width)), int(math.Ceil(r.Height))
		view.Position = state.Point{X: -r.X, Y: -r.Y}
	}

	if side := max(w, h); side > maxDocumentSide {
		f := float64(maxDocumentSide) / float64(side)
		view.Scale *= f
		view.Position = state.Point{X: view.Position.X * f, Y: view.Position.Y * f}
		w = min(maxDocumentSide, max(1, int(math.Ceil(float64(w)*f))))
		h = min(maxDocumentSide, max(1, int(math.Ceil(float64(h)*f))))
	}
	s.View = view
	return Frame(w, h, s)
}
