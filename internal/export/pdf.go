// Package export writes rendered annotation frames to PDF.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"
)

const frameImageName = "frame"

func newDocument(img image.Image) (*gofpdf.Fpdf, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	orientation := "P"
	if b.Dx() > b.Dy() {
		orientation = "L"
	}
	p := gofpdf.New(orientation, "mm", "A4", "")
	p.SetTitle("Annotation", true)
	p.SetCreator("annotator", true)
	p.AddPage()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(frameImageName, opt, &buf)

	pageW, pageH := p.GetPageSize()
	left, top, right, bottom := p.GetMargins()
	availW, availH := pageW-left-right, pageH-top-bottom
	scale := math.Min(availW/float64(b.Dx()), availH/float64(b.Dy()))
	w, h := float64(b.Dx())*scale, float64(b.Dy())*scale
	x := left + (availW-w)/2
	y := top + (availH-h)/2

	p.ImageOptions(frameImageName, x, y, w, h, false, opt, 0, "")
	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	return p, nil
}

// WritePDF writes img, fitted to an A4 page, to w.
func WritePDF(w io.Writer, img image.Image) error {
	p, err := newDocument(img)
	if err != nil {
		return err
	}
	return p.Output(w)
}
