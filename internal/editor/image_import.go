package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageLoader fetches encoded image bytes. It runs off the event loop, so a
// host may block in it on a file dialog. Returning ErrImportCanceled ends the
// import quietly.
type ImageLoader func(ctx context.Context) ([]byte, error)

type importResult struct {
	at      *Point
	img     *image.RGBA
	format  string
	err     error
	elapsed time.Duration
}

// ImportImage starts loading and decoding an image in the background. The
// result is placed on the canvas by Poll or Flush, centred on at, or on the
// canvas centre when at is nil. In-flight imports are never canceled.
func (s *Session) ImportImage(ctx context.Context, at *Point, load ImageLoader) error {
	if s.renderer == nil {
		return ErrRendererUnavailable
	}
	if load == nil {
		return errors.New("editor: nil image loader")
	}
	if at != nil {
		p := *at
		at = &p
	}
	s.inflight++
	start := s.clock.Now()
	go func() {
		res := importResult{at: at}
		data, err := load(ctx)
		if err != nil && !errors.Is(err, ErrImportCanceled) {
			err = fmt.Errorf("%w: %w", ErrImageDecodeFailed, err)
		}
		if err == nil {
			res.img, res.format, err = DecodeImage(bytes.NewReader(data))
		}
		res.err = err
		res.elapsed = s.clock.Since(start)
		s.imports <- res
	}()
	return nil
}

// PendingImports reports how many imports have not been applied yet.
func (s *Session) PendingImports() int { return s.inflight }

// Poll applies every finished import without blocking and returns how many
// were applied. Hosts call it once per frame.
func (s *Session) Poll() int {
	n := 0
	for {
		select {
		case res := <-s.imports:
			s.finishImport(res)
			n++
		default:
			return n
		}
	}
}

// Flush waits until every in-flight import has been applied or ctx ends.
func (s *Session) Flush(ctx context.Context) error {
	for s.inflight > 0 {
		select {
		case res := <-s.imports:
			s.finishImport(res)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// finishImport runs the whole insert-and-commit step or nothing.
func (s *Session) finishImport(res importResult) {
	s.inflight--
	switch {
	case errors.Is(res.err, ErrImportCanceled):
		s.apply(Command{Kind: ImageImportCanceled, At: res.at})
		return
	case res.err != nil:
		s.apply(Command{Kind: ImageImportFailed, At: res.at, Err: res.err})
		return
	case s.renderer == nil:
		s.apply(Command{Kind: ImageImportFailed, At: res.at, Err: ErrRendererUnavailable})
		return
	}

	cw, ch := s.renderer.Size()
	d := PlaceImage(res.img, cw, ch, res.at)
	d.Layer = s.layers.ActiveID()
	h := s.renderer.InsertObject(d)
	s.renderer.SetActiveObject(h)
	s.logger.Debug("image decoded", "format", res.format, "width", res.img.Bounds().Dx(), "height", res.img.Bounds().Dy(), "elapsed", res.elapsed)
	s.apply(Command{Kind: ImageInserted, Shape: ShapeImage, Handle: h, Layer: d.Layer, At: res.at})
}

// PlaceImage scales img so it fits half the canvas in both dimensions and
// centres it on at, or on the canvas centre when at is nil.
func PlaceImage(img *image.RGBA, canvasW, canvasH int, at *Point) ShapeDescriptor {
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	scale := math.Min(float64(canvasW)/2/iw, float64(canvasH)/2/ih)
	center := Point{X: float64(canvasW) / 2, Y: float64(canvasH) / 2}
	if at != nil {
		center = *at
	}
	w, h := iw*scale, ih*scale
	return ShapeDescriptor{
		Kind:   ShapeImage,
		Left:   center.X - w/2,
		Top:    center.Y - h/2,
		Width:  w,
		Height: h,
		Image:  img,
	}
}

// DecodeImage decodes any registered format into RGBA.
func DecodeImage(r io.Reader) (*image.RGBA, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDecodeFailed, err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, format, fmt.Errorf("%w: empty %s image", ErrImageDecodeFailed, format)
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst, format, nil
}
