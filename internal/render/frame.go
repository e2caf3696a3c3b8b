// Package render rasterises a background image and annotation layers
// into a single frame for a given view transform.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"annotator/internal/state"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Backdrop is painted where neither image nor strokes cover the frame.
var Backdrop = color.NRGBA{R: 245, G: 246, B: 248, A: 255}

// discSegments is the number of edges used to approximate round caps.
const discSegments = 16

// Scene is the content of one frame.
type Scene struct {
	Background image.Image
	Layers     []state.Annotation // read-only layers, bottom first
	Foreground state.Annotation
	View       state.ViewTransform
}

// Frame renders s into a w×h image. Each layer is composited separately,
// so erasing lines only remove pixels of their own layer.
func Frame(w, h int, s Scene) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(Backdrop), image.Point{}, draw.Src)

	if s.Background != nil {
		drawBackground(out, s.Background, s.View)
	}

	p := &painter{z: vector.NewRasterizer(0, 0)}
	layer := image.NewRGBA(out.Bounds())
	for _, a := range append(append([]state.Annotation{}, s.Layers...), s.Foreground) {
		if len(a) == 0 {
			continue
		}
		clear(layer.Pix)
		for _, l := range a {
			p.line(layer, l, s.View)
		}
		draw.Draw(out, out.Bounds(), layer, image.Point{}, draw.Over)
	}
	return out
}

func drawBackground(out *image.RGBA, bg image.Image, v state.ViewTransform) {
	b := bg.Bounds()
	lo := v.ToScreen(state.Point{X: 0, Y: 0})
	hi := v.ToScreen(state.Point{X: float64(b.Dx()), Y: float64(b.Dy())})
	dr := image.Rect(
		int(math.Round(lo.X)), int(math.Round(lo.Y)),
		int(math.Round(hi.X)), int(math.Round(hi.Y)),
	)
	if !dr.Overlaps(out.Bounds()) {
		return
	}
	scaler := xdraw.Interpolator(xdraw.ApproxBiLinear)
	if v.Scale >= 2 {
		scaler = xdraw.NearestNeighbor
	}
	scaler.Scale(out, dr, bg, b, xdraw.Over, nil)
}

type painter struct {
	z *vector.Rasterizer
}

// line paints one stroke onto layer.
func (p *painter) line(layer *image.RGBA, l state.AnnotationLine, v state.ViewTransform) {
	n := l.Len()
	if n == 0 {
		return
	}
	r := math.Max(l.Width*v.Scale/2, 0.5)

	sb := screenBounds(l, v, r)
	clip := sb.Intersect(layer.Bounds())
	if clip.Empty() {
		return
	}

	p.z.Reset(clip.Dx(), clip.Dy())
	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)
	prev := v.ToScreen(l.At(0))
	p.disc(prev.X-ox, prev.Y-oy, r)
	for i := 1; i < n; i++ {
		cur := v.ToScreen(l.At(i))
		p.segment(prev.X-ox, prev.Y-oy, cur.X-ox, cur.Y-oy, r)
		p.disc(cur.X-ox, cur.Y-oy, r)
		prev = cur
	}

	if l.Type == state.LineErase {
		mask := image.NewAlpha(image.Rect(0, 0, clip.Dx(), clip.Dy()))
		p.z.DrawOp = draw.Src
		p.z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
		erase(layer, clip, mask)
		return
	}

	c, err := state.ParseColor(l.Color)
	if err != nil {
		c = color.NRGBA{A: 0xff}
	}
	p.z.DrawOp = draw.Over
	p.z.Draw(layer, clip, image.NewUniform(c), image.Point{})
}

// screenBounds returns the pixel rectangle touched by l.
func screenBounds(l state.AnnotationLine, v state.ViewTransform, r float64) image.Rectangle {
	b := l.Bounds()
	lo := v.ToScreen(state.Point{X: b.X, Y: b.Y})
	hi := v.ToScreen(state.Point{X: b.X + b.Width, Y: b.Y + b.Height})
	return image.Rect(
		int(math.Floor(math.Min(lo.X, hi.X)-r-1)),
		int(math.Floor(math.Min(lo.Y, hi.Y)-r-1)),
		int(math.Ceil(math.Max(lo.X, hi.X)+r+1)),
		int(math.Ceil(math.Max(lo.Y, hi.Y)+r+1)),
	)
}

// segment adds the quad covering the stroke between two points. All
// shapes are wound the same way so overlapping coverage adds up instead
// of cancelling.
func (p *painter) segment(x1, y1, x2, y2, r float64) {
	dx, dy := x2-x1, y2-y1
	d := math.Hypot(dx, dy)
	if d == 0 {
		return
	}
	nx, ny := -dy/d*r, dx/d*r
	p.z.MoveTo(float32(x1+nx), float32(y1+ny))
	p.z.LineTo(float32(x2+nx), float32(y2+ny))
	p.z.LineTo(float32(x2-nx), float32(y2-ny))
	p.z.LineTo(float32(x1-nx), float32(y1-ny))
	p.z.ClosePath()
}

func (p *painter) disc(cx, cy, r float64) {
	p.z.MoveTo(float32(cx+r), float32(cy))
	for i := 1; i < discSegments; i++ {
		a := -2 * math.Pi * float64(i) / discSegments
		p.z.LineTo(float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a)))
	}
	p.z.ClosePath()
}

// erase applies destination-out: every layer pixel inside clip keeps
// (1 - mask) of its premultiplied value.
func erase(layer *image.RGBA, clip image.Rectangle, mask *image.Alpha) {
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			m := mask.AlphaAt(x-clip.Min.X, y-clip.Min.Y).A
			if m == 0 {
				continue
			}
			keep := uint32(255 - m)
			i := layer.PixOffset(x, y)
			px := layer.Pix[i : i+4 : i+4]
			for k := range px {
				px[k] = uint8(uint32(px[k]) * keep / 255)
			}
		}
	}
}
