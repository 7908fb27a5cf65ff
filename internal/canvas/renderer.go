// Package canvas is the in-process scene renderer. It keeps the scene graph
// as a pkg/scene document, rasterizes it with internal/render and snapshots
// it with the scene codec.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"artboard/internal/editor"
	"artboard/internal/history"
	"artboard/internal/input"
	"artboard/internal/layers"
	"artboard/internal/render"
	"artboard/pkg/scene"
)

// MaxPathPoints ends native path capture on its own; the session is told
// through the path-completed callback.
const MaxPathPoints = 4096

var (
	_ editor.SceneRenderer    = (*Renderer)(nil)
	_ editor.LayerAware       = (*Renderer)(nil)
	_ editor.BackgroundSource = (*Renderer)(nil)
)

type Renderer struct {
	scene *scene.Scene

	viewW, viewH int
	offsetX      float64
	offsetY      float64
	zoom         float64

	active    uint64
	brush     editor.Brush
	capturing uint64
	onPath    func(editor.ObjectHandle)

	layers      []layers.Layer
	activeLayer string

	gen      uint64
	frameGen uint64
	frame    *render.FrameBuffer
}

func New(width, height int, background color.RGBA, title string) *Renderer {
	return FromScene(scene.NewScene(title, width, height, render.Uint32FromRGBA(background)))
}

func FromScene(s *scene.Scene) *Renderer {
	r := &Renderer{scene: s, zoom: 1, gen: 1}
	r.viewW, r.viewH = int(s.Metadata.Width), int(s.Metadata.Height)
	return r
}

// OnPathCompleted registers the callback fired when capture ends without a
// pointer-up.
func (r *Renderer) OnPathCompleted(fn func(editor.ObjectHandle)) { r.onPath = fn }

// SetView places the canvas origin at (x, y) in viewport pixels.
func (r *Renderer) SetView(x, y, zoom float64) {
	if zoom <= 0 {
		zoom = 1
	}
	r.offsetX, r.offsetY, r.zoom = x, y, zoom
}

func (r *Renderer) View() (x, y, zoom float64) { return r.offsetX, r.offsetY, r.zoom }

func (r *Renderer) MapPointer(ev input.Event) editor.Point {
	return editor.Point{X: (ev.X - r.offsetX) / r.zoom, Y: (ev.Y - r.offsetY) / r.zoom}
}

func (r *Renderer) Size() (int, int) {
	return int(r.scene.Metadata.Width), int(r.scene.Metadata.Height)
}

func (r *Renderer) SetViewportSize(w, h int) { r.viewW, r.viewH = w, h }

func (r *Renderer) ViewportSize() (int, int) { return r.viewW, r.viewH }

func (r *Renderer) InsertObject(d editor.ShapeDescriptor) editor.ObjectHandle {
	o := objectFrom(d)
	if !r.knownLayer(o.Layer) {
		o.Layer = r.activeLayer
	}
	id := r.scene.Add(o)
	r.touch()
	return editor.ObjectHandle(id)
}

func (r *Renderer) UpdateObject(h editor.ObjectHandle, d editor.ShapeDescriptor) bool {
	o, ok := r.scene.Object(uint64(h))
	if !ok {
		return false
	}
	next := objectFrom(d)
	next.ID = o.ID
	*o = next
	r.touch()
	return true
}

func (r *Renderer) RemoveObject(h editor.ObjectHandle) bool {
	if !r.scene.Remove(uint64(h)) {
		return false
	}
	if r.active == uint64(h) {
		r.active = 0
	}
	r.touch()
	return true
}

func (r *Renderer) SetActiveObject(h editor.ObjectHandle) {
	if _, ok := r.scene.Object(uint64(h)); ok {
		r.active = uint64(h)
	}
}

func (r *Renderer) ActiveObject() editor.ObjectHandle { return editor.ObjectHandle(r.active) }

func (r *Renderer) ClearSelection() { r.active = 0 }

func (r *Renderer) SetBrush(b editor.Brush) { r.brush = b }

func (r *Renderer) BeginPath(at editor.Point, layer string) {
	r.CancelPath()
	r.capturing = r.scene.Add(scene.Object{
		Kind:        scene.ObjectKindPath,
		Layer:       layer,
		StrokeRGBA:  render.Uint32FromRGBA(r.brush.Color),
		StrokeWidth: math.Max(1, r.brush.Width),
		Points:      []scene.Point{{X: at.X, Y: at.Y}},
	})
	r.touch()
}

func (r *Renderer) ExtendPath(p editor.Point) {
	o, ok := r.scene.Object(r.capturing)
	if !ok {
		return
	}
	last := o.Points[len(o.Points)-1]
	if last.X == p.X && last.Y == p.Y {
		return
	}
	o.Points = append(o.Points, scene.Point{X: p.X, Y: p.Y})
	r.touch()
	if len(o.Points) >= MaxPathPoints {
		h, _ := r.EndPath()
		if r.onPath != nil {
			r.onPath(h)
		}
	}
}

func (r *Renderer) EndPath() (editor.ObjectHandle, bool) {
	id := r.capturing
	r.capturing = 0
	if _, ok := r.scene.Object(id); !ok {
		return 0, false
	}
	return editor.ObjectHandle(id), true
}

func (r *Renderer) CancelPath() {
	if r.capturing == 0 {
		return
	}
	r.scene.Remove(r.capturing)
	r.capturing = 0
	r.touch()
}

// HitTest returns the topmost visible object under p.
func (r *Renderer) HitTest(p editor.Point) (editor.Hit, bool) {
	opts := r.renderOptions()
	order := render.PaintOrder(r.scene, opts)
	pt := scene.Point{X: p.X, Y: p.Y}
	for i := len(order) - 1; i >= 0; i-- {
		o := &r.scene.Objects[order[i]]
		if st, ok := opts.Layers[o.Layer]; ok && (!st.Visible || st.Opacity == 0) {
			continue
		}
		if contains(o, pt) {
			return editor.Hit{
				Handle: editor.ObjectHandle(o.ID),
				Fill:   render.RGBAFromUint32(o.FillRGBA),
				Stroke: render.RGBAFromUint32(o.StrokeRGBA),
			}, true
		}
	}
	return editor.Hit{}, false
}

// PixelAt reads the composited color at p, un-premultiplied.
func (r *Renderer) PixelAt(p editor.Point) (color.RGBA, bool) {
	x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
	w, h := r.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return color.RGBA{}, false
	}
	c := r.Frame().At(x, y)
	if c.A == 0 {
		return color.RGBA{}, true
	}
	if c.A < 0xFF {
		c.R = uint8(uint32(c.R) * 0xFF / uint32(c.A))
		c.G = uint8(uint32(c.G) * 0xFF / uint32(c.A))
		c.B = uint8(uint32(c.B) * 0xFF / uint32(c.A))
	}
	return c, true
}

func (r *Renderer) Serialize() (history.Snapshot, error) {
	b, err := scene.Encode(r.scene)
	if err != nil {
		return history.Snapshot{}, fmt.Errorf("canvas: serialize: %w", err)
	}
	return history.NewSnapshot(b), nil
}

func (r *Renderer) Restore(s history.Snapshot) error {
	sc, err := scene.Decode(s.Bytes())
	if err != nil {
		return fmt.Errorf("canvas: restore: %w", err)
	}
	r.replace(sc)
	r.adopt()
	return nil
}

func (r *Renderer) ExportRaster(format string, scale float64) ([]byte, error) {
	return render.Export(r.Frame(), format, scale)
}

// SetLayers installs the layer stack. Objects on layers that no longer
// exist move to the active layer.
func (r *Renderer) SetLayers(ls []layers.Layer, active string) {
	r.layers = append(r.layers[:0], ls...)
	r.activeLayer = active
	r.adopt()
	r.touch()
}

// Scene returns a deep copy of the live scene together with the current
// layer stack, ready to be saved.
func (r *Renderer) Scene() *scene.Scene {
	sc := scene.CloneScene(r.scene)
	sc.Layers = SceneLayers(r.layers, r.activeLayer)
	return sc
}

// Load replaces the live scene with a copy of s, as when opening a project.
// The layer stack saved with s is not applied here; see RegistryFrom. Layer
// ids are reconciled on the next SetLayers, which attaching a session does.
func (r *Renderer) Load(s *scene.Scene) error {
	if err := scene.Validate(s); err != nil {
		return err
	}
	sc := scene.CloneScene(s)
	sc.Layers = nil
	r.replace(sc)
	return nil
}

func (r *Renderer) Background() color.RGBA {
	return render.RGBAFromUint32(r.scene.Metadata.BackgroundRGBA)
}

// Frame returns the rasterized scene, re-rendered only after a change.
func (r *Renderer) Frame() *render.FrameBuffer {
	if r.frame == nil || r.frameGen != r.gen {
		r.frame = render.Scene(r.scene, r.renderOptions())
		r.frameGen = r.gen
	}
	return r.frame
}

// Generation changes whenever the rendered output may have changed.
func (r *Renderer) Generation() uint64 { return r.gen }

func (r *Renderer) replace(sc *scene.Scene) {
	r.scene = sc
	r.active = 0
	r.capturing = 0
	r.touch()
}

func (r *Renderer) knownLayer(id string) bool {
	if len(r.layers) == 0 {
		return true
	}
	for _, l := range r.layers {
		if l.ID == id {
			return true
		}
	}
	return false
}

// adopt moves objects whose layer is unknown onto the active layer.
func (r *Renderer) adopt() {
	if len(r.layers) == 0 || r.activeLayer == "" {
		return
	}
	for i := range r.scene.Objects {
		if o := &r.scene.Objects[i]; !r.knownLayer(o.Layer) {
			o.Layer = r.activeLayer
		}
	}
}

func (r *Renderer) touch() { r.gen++ }

func (r *Renderer) renderOptions() render.Options {
	if len(r.layers) == 0 {
		return render.Options{}
	}
	styles := make(map[string]render.LayerStyle, len(r.layers))
	for i, l := range r.layers {
		styles[l.ID] = render.LayerStyle{Visible: l.Visible, Opacity: l.Opacity, Order: i}
	}
	return render.Options{Layers: styles}
}

// SceneLayers converts a layer stack into its saved form.
func SceneLayers(ls []layers.Layer, active string) []scene.Layer {
	if len(ls) == 0 {
		return nil
	}
	out := make([]scene.Layer, len(ls))
	for i, l := range ls {
		out[i] = scene.Layer{
			ID:      l.ID,
			Name:    l.Name,
			Visible: l.Visible,
			Opacity: uint8(max(layers.MinOpacity, min(l.Opacity, layers.MaxOpacity))),
			Active:  l.ID == active,
		}
	}
	return out
}

// RegistryFrom rebuilds the layer registry saved with s. It returns nil
// when s carries no layers, as for scenes saved before layers were stored.
func RegistryFrom(s *scene.Scene, opts ...layers.Option) (*layers.Registry, error) {
	if len(s.Layers) == 0 {
		return nil, nil
	}
	ls := make([]layers.Layer, len(s.Layers))
	active := ""
	for i, l := range s.Layers {
		ls[i] = layers.Layer{ID: l.ID, Name: l.Name, Visible: l.Visible, Opacity: int(l.Opacity)}
		if l.Active {
			active = l.ID
		}
	}
	return layers.NewRegistryFrom(ls, active, opts...)
}

func objectFrom(d editor.ShapeDescriptor) scene.Object {
	o := scene.Object{
		Layer:       d.Layer,
		StrokeRGBA:  render.Uint32FromRGBA(d.Stroke),
		StrokeWidth: d.StrokeWidth,
		FillRGBA:    render.Uint32FromRGBA(d.Fill),
	}
	switch d.Kind {
	case editor.ShapeCircle:
		o.Kind = scene.ObjectKindCircle
		o.X, o.Y, o.Radius = d.Center.X, d.Center.Y, d.Radius
	case editor.ShapePath:
		o.Kind = scene.ObjectKindPath
		for _, p := range d.Points {
			o.Points = append(o.Points, scene.Point{X: p.X, Y: p.Y})
		}
	case editor.ShapeImage:
		o.Kind = scene.ObjectKindImage
		o.X, o.Y, o.W, o.H = d.Left, d.Top, d.Width, d.Height
		o.Bitmap = bitmapFrom(d.Image)
	default:
		o.Kind = scene.ObjectKindRect
		o.X, o.Y, o.W, o.H = d.Left, d.Top, d.Width, d.Height
	}
	return o
}

func bitmapFrom(img *image.RGBA) *scene.Bitmap {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	bm := &scene.Bitmap{W: b.Dx(), H: b.Dy(), Pix: make([]byte, 0, b.Dx()*b.Dy()*4)}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		bm.Pix = append(bm.Pix, img.Pix[i:i+b.Dx()*4]...)
	}
	return bm
}

func contains(o *scene.Object, p scene.Point) bool {
	half := o.StrokeWidth / 2
	switch o.Kind {
	case scene.ObjectKindRect, scene.ObjectKindImage:
		return p.X >= o.X-half && p.X <= o.X+o.W+half && p.Y >= o.Y-half && p.Y <= o.Y+o.H+half
	case scene.ObjectKindCircle:
		return math.Hypot(p.X-o.X, p.Y-o.Y) <= o.Radius+half
	case scene.ObjectKindPath:
		if len(o.Points) == 0 {
			return false
		}
		prev := o.Points[0]
		if render.SegmentDistance(p, prev, prev) <= half {
			return true
		}
		for _, q := range o.Points[1:] {
			if render.SegmentDistance(p, prev, q) <= half {
				return true
			}
			prev = q
		}
	}
	return false
}
