package scene

import (
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

type ObjectKind uint8

const (
	ObjectKindMetadata ObjectKind = 0
	ObjectKindRect     ObjectKind = 1
	ObjectKindCircle   ObjectKind = 2
	ObjectKindPath     ObjectKind = 3
	ObjectKindImage    ObjectKind = 4
	// ObjectKindLayers tags the layer-stack section of a saved project.
	ObjectKindLayers ObjectKind = 5
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectKindMetadata:
		return "metadata"
	case ObjectKindRect:
		return "rect"
	case ObjectKindCircle:
		return "circle"
	case ObjectKindPath:
		return "path"
	case ObjectKindImage:
		return "image"
	case ObjectKindLayers:
		return "layers"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Scene is the live collection of drawable objects. Objects are kept in
// paint order: later objects are drawn over earlier ones. Layers is only
// filled for saved projects and lists the layer stack top first.
type Scene struct {
	Metadata Metadata
	Objects  []Object
	Layers   []Layer
}

// Layer is one saved entry of the layer stack. Opacity is a percentage.
type Layer struct {
	ID      string
	Name    string
	Visible bool
	Opacity uint8
	Active  bool
}

type Metadata struct {
	Title          string
	CreatedUnix    int64
	ModifiedUnix   int64
	Width          uint32
	Height         uint32
	BackgroundRGBA uint32
	NextID         uint64
}

type Point struct {
	X float64
	Y float64
}

// Object geometry depends on Kind: rects and images use X/Y as the top-left
// corner with W/H as the drawn size, circles use X/Y as the centre plus
// Radius, paths use Points.
type Object struct {
	ID          uint64
	Kind        ObjectKind
	Layer       string
	X           float64
	Y           float64
	W           float64
	H           float64
	Radius      float64
	StrokeRGBA  uint32
	StrokeWidth float64
	FillRGBA    uint32
	Points      []Point
	Bitmap      *Bitmap
}

// Bitmap holds premultiplied RGBA pixels in image.RGBA layout.
type Bitmap struct {
	W   int
	H   int
	Pix []byte
}

var (
	ErrInvalidMagic       = errors.New("scene: invalid magic")
	ErrUnsupportedVer     = errors.New("scene: unsupported version")
	ErrInvalidTOC         = errors.New("scene: invalid toc")
	ErrInvalidObjectRange = errors.New("scene: invalid object range")
	ErrOverlappingObjects = errors.New("scene: overlapping object ranges")
	ErrPasswordRequired   = errors.New("scene: password required")
	ErrInvalidPassword    = errors.New("scene: invalid password")
	ErrInvalidProjectFile = errors.New("scene: invalid project file")
	ErrHeaderMismatch     = errors.New("scene: project header does not match content")
)

func NewScene(title string, width, height int, background uint32) *Scene {
	now := time.Now().Unix()
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Scene{Metadata: Metadata{
		Title:          title,
		CreatedUnix:    now,
		ModifiedUnix:   now,
		Width:          uint32(width),
		Height:         uint32(height),
		BackgroundRGBA: background,
		NextID:         1,
	}}
}

func CloneScene(s *Scene) *Scene {
	if s == nil {
		return nil
	}
	out := &Scene{Metadata: s.Metadata, Objects: make([]Object, len(s.Objects))}
	for i, o := range s.Objects {
		out.Objects[i] = CloneObject(o)
	}
	if s.Layers != nil {
		out.Layers = append([]Layer(nil), s.Layers...)
	}
	return out
}

func CloneObject(o Object) Object {
	if o.Points != nil {
		o.Points = append([]Point(nil), o.Points...)
	}
	if o.Bitmap != nil {
		o.Bitmap = &Bitmap{W: o.Bitmap.W, H: o.Bitmap.H, Pix: append([]byte(nil), o.Bitmap.Pix...)}
	}
	return o
}

// Add assigns the next free id to o, appends it on top of the paint order
// and returns the id.
func (s *Scene) Add(o Object) uint64 {
	if s.Metadata.NextID == 0 {
		s.Metadata.NextID = 1
	}
	for s.indexOf(s.Metadata.NextID) >= 0 {
		s.Metadata.NextID++
	}
	o.ID = s.Metadata.NextID
	s.Metadata.NextID++
	s.Objects = append(s.Objects, o)
	return o.ID
}

func (s *Scene) Object(id uint64) (*Object, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return &s.Objects[i], true
}

func (s *Scene) Remove(id uint64) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.Objects = append(s.Objects[:i], s.Objects[i+1:]...)
	return true
}

func (s *Scene) indexOf(id uint64) int {
	for i := range s.Objects {
		if s.Objects[i].ID == id {
			return i
		}
	}
	return -1
}

func Validate(s *Scene) error {
	if s == nil {
		return errors.New("scene: scene is nil")
	}
	if !utf8.ValidString(s.Metadata.Title) {
		return errors.New("scene: title must be valid UTF-8")
	}
	if s.Metadata.Width == 0 || s.Metadata.Height == 0 {
		return errors.New("scene: canvas size must be non-zero")
	}

	seen := map[uint64]struct{}{}
	for i := range s.Objects {
		o := &s.Objects[i]
		if o.ID == metaObjectID {
			return fmt.Errorf("scene: object[%d] id is reserved", i)
		}
		if _, ok := seen[o.ID]; ok {
			return fmt.Errorf("scene: duplicate object id %d", o.ID)
		}
		seen[o.ID] = struct{}{}
		if err := validateObject(o); err != nil {
			return fmt.Errorf("scene: object %d: %w", o.ID, err)
		}
	}

	layerIDs := map[string]struct{}{}
	for i, l := range s.Layers {
		if l.ID == "" || !utf8.ValidString(l.ID) || !utf8.ValidString(l.Name) {
			return fmt.Errorf("scene: layer[%d] needs a valid id and name", i)
		}
		if _, ok := layerIDs[l.ID]; ok {
			return fmt.Errorf("scene: duplicate layer id %q", l.ID)
		}
		layerIDs[l.ID] = struct{}{}
		if l.Opacity > 100 {
			return fmt.Errorf("scene: layer %q opacity %d out of range", l.ID, l.Opacity)
		}
	}
	return nil
}

func validateObject(o *Object) error {
	for _, v := range []float64{o.X, o.Y, o.W, o.H, o.Radius, o.StrokeWidth} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("geometry must be finite")
		}
	}
	if o.W < 0 || o.H < 0 || o.Radius < 0 || o.StrokeWidth < 0 {
		return errors.New("geometry must be non-negative")
	}
	switch o.Kind {
	case ObjectKindRect, ObjectKindCircle:
	case ObjectKindPath:
		if len(o.Points) == 0 {
			return errors.New("path has no points")
		}
	case ObjectKindImage:
		if o.Bitmap == nil {
			return errors.New("image has no bitmap")
		}
		if o.Bitmap.W <= 0 || o.Bitmap.H <= 0 || len(o.Bitmap.Pix) != o.Bitmap.W*o.Bitmap.H*4 {
			return fmt.Errorf("bitmap %dx%d has %d bytes", o.Bitmap.W, o.Bitmap.H, len(o.Bitmap.Pix))
		}
	default:
		return fmt.Errorf("unsupported object kind %d", o.Kind)
	}
	return nil
}
