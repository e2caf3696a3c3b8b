package ui

import (
	"image"
	"image/color"
	"testing"
	"time"

	"annotator/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnnotator(t *testing.T, opts state.Options) (*Annotator, *[]state.Annotation) {
	t.Helper()
	test.NewTempApp(t)
	var got []state.Annotation
	opts.OnForegroundAnnotationChange = func(a state.Annotation) { got = append(got, a) }
	ctrl := state.NewController(opts)
	return NewAnnotator(ctrl, nil, nil), &got
}

func press(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func drag(x, y, dx, dy float32) *fyne.DragEvent {
	return &fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Dragged:    fyne.NewDelta(dx, dy),
	}
}

func TestSurfacePenStroke(t *testing.T) {
	a, got := newTestAnnotator(t, state.Options{Drawable: true})
	a.Controller.SelectMode(state.ModePen)
	s := a.Surface

	// Default view is offset by 32,32 at scale 1.
	s.MouseDown(press(42, 52))
	assert.True(t, s.Drawing())
	s.Dragged(drag(52, 52, 10, 0))
	s.Dragged(drag(52, 62, 0, 10))
	s.DragEnd()
	s.MouseUp(press(52, 62))
	assert.False(t, s.Drawing())

	fg := a.Controller.Foreground()
	require.Len(t, fg, 1)
	assert.Equal(t, []float64{10, 20, 20, 20, 20, 30}, fg[0].Points)
	assert.Equal(t, state.LineDraw, fg[0].Type)
	assert.Equal(t, state.DefaultPenColor, fg[0].Color)
	assert.Equal(t, float64(state.DefaultPenWidth), fg[0].Width)
	assert.NotEmpty(t, fg[0].ID)

	require.Len(t, *got, 3, "every point reports the complete annotation")
	if diff := cmp.Diff(fg, (*got)[2]); diff != "" {
		t.Errorf("callback mismatch (-want +got):\n%s", diff)
	}

	s.MouseDown(press(0, 0))
	s.MouseUp(press(0, 0))
	fg = a.Controller.Foreground()
	require.Len(t, fg, 2)
	assert.Equal(t, []float64{-32, -32}, fg[1].Points)
	assert.NotEqual(t, fg[0].ID, fg[1].ID)
}

func TestSurfacePenUsesCurrentPen(t *testing.T) {
	a, _ := newTestAnnotator(t, state.Options{Drawable: true})
	a.Controller.SelectMode(state.ModePen)
	a.Controller.SetPenColor("#0000ff")
	a.Controller.SetPenWidth(7)

	a.Surface.MouseDown(press(32, 32))
	fg := a.Controller.Foreground()
	require.Len(t, fg, 1)
	assert.Equal(t, "#0000ff", fg[0].Color)
	assert.Equal(t, 7.0, fg[0].Width)
}

func TestSurfaceIgnoresSecondaryButton(t *testing.T) {
	a, got := newTestAnnotator(t, state.Options{Drawable: true})
	a.Controller.SelectMode(state.ModePen)

	e := press(40, 40)
	e.Button = desktop.MouseButtonSecondary
	a.Surface.MouseDown(e)
	assert.Empty(t, a.Controller.Foreground())
	assert.Empty(t, *got)
}

func TestSurfaceEraserDoesNotDraw(t *testing.T) {
	existing := state.Annotation{{ID: "a", Points: []float64{1, 1, 2, 2}, Type: state.LineDraw, Color: "#000000", Width: 2}}
	a, got := newTestAnnotator(t, state.Options{Drawable: true, ForegroundAnnotation: existing})
	a.Controller.SelectMode(state.ModeEraser)

	a.Surface.MouseDown(press(40, 40))
	a.Surface.Dragged(drag(50, 50, 10, 10))
	a.Surface.MouseUp(press(50, 50))

	assert.Equal(t, existing, a.Controller.Foreground())
	assert.Empty(t, *got)
	assert.Equal(t, state.DefaultPosition, a.Controller.View().Position)
}

func TestSurfaceViewDragPans(t *testing.T) {
	a, got := newTestAnnotator(t, state.Options{})

	a.Surface.Dragged(drag(100, 100, 5, -3))
	a.Surface.Dragged(drag(105, 97, 5, -3))
	a.Surface.DragEnd()

	assert.Equal(t, state.Point{X: 42, Y: 26}, a.Controller.View().Position)
	assert.Equal(t, 1.0, a.Controller.View().Scale)
	assert.Empty(t, a.Controller.Foreground())
	assert.Empty(t, *got, "panning never reports the annotation")
}

func TestSurfaceScrollZoomsAtPointer(t *testing.T) {
	a, _ := newTestAnnotator(t, state.Options{})
	s := a.Surface

	scroll := func(x, y, dy float32) {
		s.Scrolled(&fyne.ScrollEvent{
			PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
			Scrolled:   fyne.NewDelta(0, dy),
		})
	}

	// Local origin sits under 32,32 and must stay there.
	scroll(32, 32, 1)
	v := a.Controller.View()
	assert.InDelta(t, 1.1, v.Scale, 1e-9)
	assert.InDelta(t, 32, v.Position.X, 1e-9)
	assert.InDelta(t, 32, v.Position.Y, 1e-9)

	anchor := state.Point{X: 200, Y: 100}
	before := v.ToLocal(anchor)
	scroll(200, 100, -1)
	v = a.Controller.View()
	assert.InDelta(t, 1.0, v.Scale, 1e-9)
	after := v.ToLocal(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	for i := 0; i < 100; i++ {
		scroll(0, 0, 1)
	}
	assert.Equal(t, state.MaxScale, a.Controller.View().Scale)
}

func TestSurfaceScrollIgnoredWhileDrawing(t *testing.T) {
	a, _ := newTestAnnotator(t, state.Options{Drawable: true})
	a.Controller.SelectMode(state.ModePen)

	a.Surface.Scrolled(&fyne.ScrollEvent{Scrolled: fyne.NewDelta(0, 1)})
	assert.Equal(t, 1.0, a.Controller.View().Scale)
}

func TestSurfaceModeSwitchEndsStroke(t *testing.T) {
	a, _ := newTestAnnotator(t, state.Options{Drawable: true})
	a.Controller.SelectMode(state.ModePen)
	a.Surface.MouseDown(press(40, 40))
	require.True(t, a.Surface.Drawing())

	a.Controller.SelectMode(state.ModeView)
	assert.False(t, a.Surface.Drawing())
	assert.Len(t, a.Controller.Foreground(), 1)
}

func TestSurfaceCursor(t *testing.T) {
	a, _ := newTestAnnotator(t, state.Options{Drawable: true})
	assert.Equal(t, desktop.DefaultCursor, a.Surface.Cursor())
	a.Controller.SelectMode(state.ModePen)
	assert.Equal(t, desktop.CrosshairCursor, a.Surface.Cursor())
}

func TestSurfaceBackgroundImage(t *testing.T) {
	test.NewTempApp(t)
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)

	s := NewSurface(state.SurfaceConfig{View: state.ViewTransform{Scale: 1}})
	s.SetBackgroundImage("other.png", img)
	assert.Nil(t, s.BackgroundImage(), "images for another source are ignored")

	s.LoadImage = func(string) (image.Image, error) { return img, nil }
	s.Apply(state.SurfaceConfig{BackgroundImageSource: "scan.png", View: state.ViewTransform{Scale: 1}})
	assert.Eventually(t, func() bool { return s.BackgroundImage() != nil }, time.Second, 10*time.Millisecond)
	assert.Equal(t, img, s.Scene().Background)
}

func TestSurfaceRenders(t *testing.T) {
	a, _ := newTestAnnotator(t, state.Options{
		ForegroundAnnotation: state.Annotation{{Points: []float64{0, 0, 10, 0}, Type: state.LineDraw, Color: "#ff0000", Width: 4}},
	})
	a.Surface.Resize(fyne.NewSize(100, 80))

	frame := a.Surface.draw(100, 80)
	assert.Equal(t, image.Rect(0, 0, 100, 80), frame.Bounds())
	r, g, b, _ := frame.At(37, 32).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}
