package state

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanvasMode(t *testing.T) {
	for _, m := range []CanvasMode{ModeView, ModePen, ModeEraser} {
		got, err := ParseCanvasMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseCanvasMode("lasso")
	assert.Error(t, err)
	assert.Equal(t, "CanvasMode(9)", CanvasMode(9).String())
}

func TestCompact(t *testing.T) {
	a := Annotation{
		{Points: []float64{}, Color: "#000000", Width: 2},
		{Points: []float64{1, 2, 3}, Type: "bogus", Color: "#000000", Width: 0},
		{Points: []float64{4, 5}, Type: LineErase, Color: "#000000", Width: 3},
	}
	got := a.Compact()
	require.Len(t, got, 2)
	assert.Equal(t, []float64{1, 2}, got[0].Points)
	assert.Equal(t, LineDraw, got[0].Type)
	assert.Equal(t, 1.0, got[0].Width)
	assert.Equal(t, LineErase, got[1].Type)

	// Input is left untouched.
	assert.Equal(t, []float64{1, 2, 3}, a[1].Points)
}

func TestCloneIsDeep(t *testing.T) {
	a := Annotation{{Points: []float64{1, 2}}}
	b := a.Clone()
	b[0].Points[0] = 42
	b[0].Append(Point{X: 3, Y: 4})
	assert.Equal(t, []float64{1, 2}, a[0].Points)
	assert.Equal(t, 2, b[0].Len())
	assert.Equal(t, Point{X: 3, Y: 4}, b[0].At(1))
}

func TestViewTransformRoundTrip(t *testing.T) {
	v := ViewTransform{Position: Point{X: 32, Y: 32}, Scale: 2}
	p := Point{X: 10, Y: -4}
	s := v.ToScreen(p)
	assert.Equal(t, Point{X: 52, Y: 24}, s)
	assert.Equal(t, p, v.ToLocal(s))
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	v := ViewTransform{Position: Point{X: 32, Y: 32}, Scale: 1}
	anchor := Point{X: 100, Y: 80}
	local := v.ToLocal(anchor)

	z := v.ZoomAt(anchor, 2)
	assert.Equal(t, 2.0, z.Scale)
	assert.InDelta(t, anchor.X, z.ToScreen(local).X, 1e-9)
	assert.InDelta(t, anchor.Y, z.ToScreen(local).Y, 1e-9)

	assert.Equal(t, MaxScale, v.ZoomAt(anchor, 100).Scale)
}

func TestBounds(t *testing.T) {
	l := AnnotationLine{Points: []float64{10, 20, 30, 5}, Width: 4}
	assert.Equal(t, Rect{X: 8, Y: 3, Width: 24, Height: 19}, l.Bounds())

	a := Annotation{l, {Points: []float64{100, 100}, Width: 2}}
	b := a.Bounds()
	assert.Equal(t, 8.0, b.X)
	assert.Equal(t, 101.0, b.X+b.Width)

	assert.True(t, Annotation{}.Bounds().Empty())
	assert.False(t, Rect{}.Overlaps(b))
	assert.True(t, b.Overlaps(Rect{X: 0, Y: 0, Width: 10, Height: 10}))
	assert.Equal(t, b, LayersBounds(Annotation{}, a))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#FF8000")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x80, A: 0xff}, c)

	c, err = ParseColor("green")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, c)

	_, err = ParseColor("#12")
	assert.Error(t, err)

	assert.Equal(t, "#ff0000", FormatColor(color.RGBA{R: 255, A: 255}))
}

func TestLoadAnnotationFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
		{"points":[1,2,3,4],"type":"source-over","color":"#ff0000","width":2},
		{"points":[],"type":"source-over","color":"#ff0000","width":2},
		{"points":[9,9],"type":"destination-out","color":"#000000","width":8}
	]`), 0o644))

	layers, err := LoadAnnotationFiles([]string{good})
	require.NoError(t, err)
	require.Len(t, layers, 1)
	require.Len(t, layers[0], 2)
	assert.Equal(t, LineErase, layers[0][1].Type)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"points":`), 0o644))
	_, err = LoadAnnotationFiles([]string{good, bad})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bad.json"))

	_, err = LoadAnnotationFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestNewLineIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewLineID()
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.NotEmpty(t, SessionID())
}
