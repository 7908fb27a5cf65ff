package editor

import (
	"image"
	"image/color"

	"artboard/internal/history"
	"artboard/internal/input"
	"artboard/internal/layers"
)

// Point is a location in scene coordinates.
type Point struct {
	X float64
	Y float64
}

type ShapeKind int

const (
	ShapeRect ShapeKind = iota + 1
	ShapeCircle
	ShapePath
	ShapeImage
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	case ShapePath:
		return "path"
	case ShapeImage:
		return "image"
	default:
		return "unknown"
	}
}

// ShapeDescriptor describes an object to insert or update. Rects and images
// use Left/Top/Width/Height, circles use Center/Radius.
type ShapeDescriptor struct {
	Kind        ShapeKind
	Left        float64
	Top         float64
	Width       float64
	Height      float64
	Center      Point
	Radius      float64
	Points      []Point
	Stroke      color.RGBA
	StrokeWidth float64
	Fill        color.RGBA
	Image       *image.RGBA
	Layer       string
}

// ObjectHandle identifies a live scene object. Zero means none.
type ObjectHandle uint64

type Brush struct {
	Color color.RGBA
	Width float64
}

// Hit is the topmost object under a point.
type Hit struct {
	Handle ObjectHandle
	Fill   color.RGBA
	Stroke color.RGBA
}

// SceneRenderer owns the live scene: object geometry, hit-testing, native
// path capture, rasterization and snapshot serialization. The session is its
// only high-level mutator.
type SceneRenderer interface {
	MapPointer(ev input.Event) Point
	Size() (width, height int)
	SetViewportSize(width, height int)

	InsertObject(d ShapeDescriptor) ObjectHandle
	UpdateObject(h ObjectHandle, d ShapeDescriptor) bool
	RemoveObject(h ObjectHandle) bool
	SetActiveObject(h ObjectHandle)
	ClearSelection()

	SetBrush(b Brush)
	BeginPath(at Point, layer string)
	ExtendPath(p Point)
	// EndPath finishes the capture and reports the created object, if any.
	EndPath() (ObjectHandle, bool)
	CancelPath()

	HitTest(p Point) (Hit, bool)
	PixelAt(p Point) (color.RGBA, bool)

	Serialize() (history.Snapshot, error)
	// Restore replaces the entire live scene with s.
	Restore(s history.Snapshot) error
	ExportRaster(format string, scale float64) ([]byte, error)
}

// LayerAware renderers composite objects by layer and are told about every
// change to the layer registry. Objects whose layer is not in ls belong to
// the active layer.
type LayerAware interface {
	SetLayers(ls []layers.Layer, active string)
}

// BackgroundSource renderers carry their own canvas background. Attaching
// one makes that color the eraser color.
type BackgroundSource interface {
	Background() color.RGBA
}
