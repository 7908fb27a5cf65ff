package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"artboard/pkg/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func newScene() *scene.Scene {
	return scene.NewScene("t", 100, 80, 0xFFFFFFFF)
}

func TestFillRectClipsToBounds(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	fb.FillRect(-2, -2, 4, 4, red)
	assert.Equal(t, red, fb.At(0, 0))
	assert.Equal(t, red, fb.At(1, 1))
	assert.Equal(t, color.RGBA{}, fb.At(2, 2))
	assert.Equal(t, color.RGBA{}, fb.At(9, 9))
}

func TestBlitClipsSource(t *testing.T) {
	src := NewFrameBuffer(3, 3)
	src.Clear(red)
	dst := NewFrameBuffer(4, 4)
	dst.Clear(white)
	dst.Blit(src, -1, 2)
	assert.Equal(t, red, dst.At(0, 2))
	assert.Equal(t, red, dst.At(1, 3))
	assert.Equal(t, white, dst.At(2, 2))
	assert.Equal(t, white, dst.At(0, 1))
}

func TestRectStrokeLeavesInteriorUntouched(t *testing.T) {
	s := newScene()
	s.Add(scene.Object{Kind: scene.ObjectKindRect, X: 10, Y: 10, W: 40, H: 30, StrokeRGBA: 0xFF0000FF, StrokeWidth: 2})
	fb := Scene(s, Options{})

	assert.Equal(t, red, fb.At(10, 20))
	assert.Equal(t, red, fb.At(30, 39))
	assert.Equal(t, white, fb.At(30, 25))
	assert.Equal(t, white, fb.At(5, 5))
}

func TestCircleFillAndStroke(t *testing.T) {
	s := newScene()
	s.Add(scene.Object{Kind: scene.ObjectKindCircle, X: 50, Y: 40, Radius: 20, StrokeRGBA: 0x0000FFFF, StrokeWidth: 2, FillRGBA: 0xFF0000FF})
	fb := Scene(s, Options{})

	assert.Equal(t, red, fb.At(50, 40))
	assert.Equal(t, blue, fb.At(69, 40))
	assert.Equal(t, white, fb.At(95, 75))
}

func TestPathCoversSegments(t *testing.T) {
	s := newScene()
	s.Add(scene.Object{Kind: scene.ObjectKindPath, Points: []scene.Point{{X: 10, Y: 10}, {X: 60, Y: 10}, {X: 60, Y: 50}}, StrokeRGBA: 0xFF0000FF, StrokeWidth: 4})
	fb := Scene(s, Options{})

	assert.Equal(t, red, fb.At(35, 10))
	assert.Equal(t, red, fb.At(60, 30))
	assert.Equal(t, white, fb.At(35, 30))
}

func TestDiagonalStrokeIsAntialiased(t *testing.T) {
	s := scene.NewScene("t", 64, 64, 0xFFFFFFFF)
	s.Add(scene.Object{Kind: scene.ObjectKindPath, Points: []scene.Point{{X: 2, Y: 5}, {X: 60, Y: 37}}, StrokeRGBA: 0x000000FF, StrokeWidth: 3})
	fb := Scene(s, Options{})

	partial := 0
	for y := 0; y < fb.H; y++ {
		for x := 0; x < fb.W; x++ {
			if c := fb.At(x, y); c.R > 0 && c.R < 255 {
				partial++
			}
		}
	}
	assert.Greater(t, partial, 20, "edge pixels blend with the background")
	assert.Equal(t, color.RGBA{A: 255}, fb.At(31, 21))
	assert.Equal(t, white, fb.At(31, 30))
}

func TestFillAlphaScalesWithLayerOpacity(t *testing.T) {
	s := newScene()
	s.Add(scene.Object{Kind: scene.ObjectKindRect, Layer: "l", X: 10, Y: 10, W: 20, H: 20, FillRGBA: 0xFF0000FF})
	fb := Scene(s, Options{Layers: map[string]LayerStyle{"l": {Visible: true, Opacity: 50}}})

	got := fb.At(20, 20)
	assert.Equal(t, uint8(255), got.R)
	assert.InDelta(t, 128, int(got.G), 2)
	assert.Equal(t, uint8(255), got.A)
}

func TestImageIsScaledIntoBounds(t *testing.T) {
	s := newScene()
	pix := []byte{255, 0, 0, 255, 255, 0, 0, 255, 255, 0, 0, 255, 255, 0, 0, 255}
	s.Add(scene.Object{Kind: scene.ObjectKindImage, X: 20, Y: 20, W: 10, H: 10, Bitmap: &scene.Bitmap{W: 2, H: 2, Pix: pix}})
	fb := Scene(s, Options{})

	assert.Equal(t, red, fb.At(25, 25))
	assert.Equal(t, white, fb.At(35, 25))
}

func TestLayerVisibilityOpacityAndOrder(t *testing.T) {
	s := newScene()
	s.Add(scene.Object{Kind: scene.ObjectKindRect, Layer: "top", X: 0, Y: 0, W: 20, H: 20, FillRGBA: 0xFF0000FF})
	s.Add(scene.Object{Kind: scene.ObjectKindRect, Layer: "bottom", X: 0, Y: 0, W: 20, H: 20, FillRGBA: 0x0000FFFF})
	s.Add(scene.Object{Kind: scene.ObjectKindRect, Layer: "hidden", X: 40, Y: 40, W: 20, H: 20, FillRGBA: 0x0000FFFF})

	fb := Scene(s, Options{Layers: map[string]LayerStyle{
		"top":    {Visible: true, Opacity: 100, Order: 0},
		"bottom": {Visible: true, Opacity: 100, Order: 1},
		"hidden": {Visible: false, Opacity: 100, Order: 2},
	}})
	assert.Equal(t, red, fb.At(10, 10), "top layer paints last")
	assert.Equal(t, white, fb.At(50, 50))

	fb = Scene(s, Options{Layers: map[string]LayerStyle{
		"top":    {Visible: true, Opacity: 0, Order: 0},
		"bottom": {Visible: true, Opacity: 100, Order: 1},
	}})
	assert.Equal(t, blue, fb.At(10, 10))
}

func TestExportFormats(t *testing.T) {
	fb := NewFrameBuffer(8, 6)
	fb.Clear(red)

	data, err := Export(fb, "png", 1)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())

	data, err = Export(fb, ".BMP", 2)
	require.NoError(t, err)
	img, err = bmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 12), img.Bounds())

	data, err = Export(fb, "tif", 0.5)
	require.NoError(t, err)
	img, err = tiff.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())

	_, err = Export(fb, "jpg", 1)
	require.NoError(t, err)
}

func TestExportRejectsBadInput(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	_, err := Export(fb, "gif", 1)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = Export(fb, "png", 0)
	assert.Error(t, err)
	_, err = Export(fb, "png", 100)
	assert.Error(t, err)
}

func TestSegmentDistance(t *testing.T) {
	a := scene.Point{X: 0, Y: 0}
	b := scene.Point{X: 10, Y: 0}
	assert.InDelta(t, 3, SegmentDistance(scene.Point{X: 5, Y: 3}, a, b), 1e-9)
	assert.InDelta(t, 5, SegmentDistance(scene.Point{X: -3, Y: 4}, a, b), 1e-9)
	assert.InDelta(t, 5, SegmentDistance(scene.Point{X: 3, Y: 4}, a, a), 1e-9)
}
