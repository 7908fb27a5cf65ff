package editor

import (
	"encoding/json"
	"errors"
	"image/color"

	"artboard/internal/history"
	"artboard/internal/input"
	"artboard/internal/layers"
)

type fakeEntry struct {
	H ObjectHandle
	D ShapeDescriptor
}

// fakeRenderer keeps objects in memory and serializes them as JSON.
type fakeRenderer struct {
	w, h     int
	viewport [2]int

	next    ObjectHandle
	objects []fakeEntry
	active  ObjectHandle
	cleared int

	brush     Brush
	drawing   bool
	path      []Point
	pathLayer string
	canceled  int

	pixel   color.RGBA
	pixelOK bool
	hit     Hit
	hitOK   bool

	layers       []layers.Layer
	activeLayer  string
	serializeErr error
	restoreErr   error
	serialized   int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{w: 800, h: 600}
}

func (f *fakeRenderer) MapPointer(ev input.Event) Point { return Point{X: ev.X, Y: ev.Y} }
func (f *fakeRenderer) Size() (int, int)                { return f.w, f.h }
func (f *fakeRenderer) SetViewportSize(w, h int)        { f.viewport = [2]int{w, h} }

func (f *fakeRenderer) InsertObject(d ShapeDescriptor) ObjectHandle {
	f.next++
	d.Image = nil
	f.objects = append(f.objects, fakeEntry{H: f.next, D: d})
	return f.next
}

func (f *fakeRenderer) UpdateObject(h ObjectHandle, d ShapeDescriptor) bool {
	for i := range f.objects {
		if f.objects[i].H == h {
			d.Image = nil
			f.objects[i].D = d
			return true
		}
	}
	return false
}

func (f *fakeRenderer) RemoveObject(h ObjectHandle) bool {
	for i := range f.objects {
		if f.objects[i].H == h {
			f.objects = append(f.objects[:i], f.objects[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeRenderer) object(h ObjectHandle) (ShapeDescriptor, bool) {
	for _, e := range f.objects {
		if e.H == h {
			return e.D, true
		}
	}
	return ShapeDescriptor{}, false
}

func (f *fakeRenderer) SetActiveObject(h ObjectHandle) { f.active = h }

func (f *fakeRenderer) ClearSelection() {
	f.active = 0
	f.cleared++
}

func (f *fakeRenderer) SetBrush(b Brush) { f.brush = b }

func (f *fakeRenderer) BeginPath(at Point, layer string) {
	f.drawing = true
	f.path = []Point{at}
	f.pathLayer = layer
}

func (f *fakeRenderer) ExtendPath(p Point) {
	if f.drawing {
		f.path = append(f.path, p)
	}
}

func (f *fakeRenderer) EndPath() (ObjectHandle, bool) {
	if !f.drawing {
		return 0, false
	}
	f.drawing = false
	h := f.InsertObject(ShapeDescriptor{Kind: ShapePath, Points: f.path, Stroke: f.brush.Color, StrokeWidth: f.brush.Width, Layer: f.pathLayer})
	f.path = nil
	return h, true
}

func (f *fakeRenderer) CancelPath() {
	f.drawing = false
	f.path = nil
	f.canceled++
}

func (f *fakeRenderer) HitTest(Point) (Hit, bool)        { return f.hit, f.hitOK }
func (f *fakeRenderer) PixelAt(Point) (color.RGBA, bool) { return f.pixel, f.pixelOK }
func (f *fakeRenderer) SetLayers(ls []layers.Layer, active string) {
	f.layers, f.activeLayer = ls, active
}

func (f *fakeRenderer) ExportRaster(format string, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errors.New("bad scale")
	}
	return []byte(format), nil
}

func (f *fakeRenderer) Serialize() (history.Snapshot, error) {
	if f.serializeErr != nil {
		return history.Snapshot{}, f.serializeErr
	}
	f.serialized++
	b, err := json.Marshal(f.objects)
	if err != nil {
		return history.Snapshot{}, err
	}
	return history.NewSnapshot(b), nil
}

func (f *fakeRenderer) Restore(s history.Snapshot) error {
	if f.restoreErr != nil {
		return f.restoreErr
	}
	var objs []fakeEntry
	if err := json.Unmarshal(s.Bytes(), &objs); err != nil {
		return err
	}
	f.objects = objs
	return nil
}
