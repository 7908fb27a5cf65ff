package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"slices"
	"sort"

	"artboard/pkg/scene"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// LayerStyle is how one layer composites. Order 0 is the top of the stack.
type LayerStyle struct {
	Visible bool
	Opacity int
	Order   int
}

// Options controls compositing. Objects whose layer is missing from Layers
// are drawn fully opaque above every known layer.
type Options struct {
	Layers map[string]LayerStyle
}

// Scene rasterizes s at 1:1 scale into a framebuffer of the scene's size.
func Scene(s *scene.Scene, opts Options) *FrameBuffer {
	fb := NewFrameBuffer(int(s.Metadata.Width), int(s.Metadata.Height))
	DrawScene(fb, s, opts)
	return fb
}

func DrawScene(fb *FrameBuffer, s *scene.Scene, opts Options) {
	fb.Clear(RGBAFromUint32(s.Metadata.BackgroundRGBA))
	for _, i := range PaintOrder(s, opts) {
		o := &s.Objects[i]
		alpha := 1.0
		if st, ok := opts.Layers[o.Layer]; ok {
			if !st.Visible {
				continue
			}
			alpha = float64(st.Opacity) / 100
		}
		DrawObject(fb, o, alpha)
	}
}

// PaintOrder returns object indexes bottom-first: lower layers before upper
// ones, insertion order within a layer.
func PaintOrder(s *scene.Scene, opts Options) []int {
	order := make([]int, len(s.Objects))
	for i := range order {
		order[i] = i
	}
	rank := func(layer string) int {
		if st, ok := opts.Layers[layer]; ok {
			return st.Order
		}
		return -1
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rank(s.Objects[order[a]].Layer) > rank(s.Objects[order[b]].Layer)
	})
	return order
}

func DrawObject(fb *FrameBuffer, o *scene.Object, alpha float64) {
	if alpha <= 0 {
		return
	}
	stroke := RGBAFromUint32(o.StrokeRGBA)
	fill := RGBAFromUint32(o.FillRGBA)
	half := o.StrokeWidth / 2

	switch o.Kind {
	case scene.ObjectKindRect:
		x0, y0, x1, y1 := o.X, o.Y, o.X+o.W, o.Y+o.H
		if fill.A > 0 {
			if p, ok := newPen(fb, x0, y0, x1, y1); ok {
				p.rect(x0, y0, x1, y1, true)
				p.fill(fb, fill, alpha)
			}
		}
		if stroke.A > 0 && half > 0 {
			if p, ok := newPen(fb, x0-half, y0-half, x1+half, y1+half); ok {
				p.rect(x0-half, y0-half, x1+half, y1+half, true)
				if x1-x0 > 2*half && y1-y0 > 2*half {
					p.rect(x0+half, y0+half, x1-half, y1-half, false)
				}
				p.fill(fb, stroke, alpha)
			}
		}
	case scene.ObjectKindCircle:
		r := o.Radius
		if fill.A > 0 && r > 0 {
			if p, ok := newPen(fb, o.X-r, o.Y-r, o.X+r, o.Y+r); ok {
				p.circle(o.X, o.Y, r, true)
				p.fill(fb, fill, alpha)
			}
		}
		if stroke.A > 0 && half > 0 {
			outer := r + half
			if p, ok := newPen(fb, o.X-outer, o.Y-outer, o.X+outer, o.Y+outer); ok {
				p.circle(o.X, o.Y, outer, true)
				if inner := r - half; inner > 0 {
					p.circle(o.X, o.Y, inner, false)
				}
				p.fill(fb, stroke, alpha)
			}
		}
	case scene.ObjectKindPath:
		if len(o.Points) == 0 || stroke.A == 0 {
			return
		}
		if half < 0.5 {
			half = 0.5
		}
		minX, minY, maxX, maxY := pathBounds(o.Points)
		p, ok := newPen(fb, minX-half, minY-half, maxX+half, maxY+half)
		if !ok {
			return
		}
		prev := o.Points[0]
		p.circle(prev.X, prev.Y, half, true)
		for _, q := range o.Points[1:] {
			if q == prev {
				continue
			}
			p.segment(prev, q, half)
			p.circle(q.X, q.Y, half, true)
			prev = q
		}
		p.fill(fb, stroke, alpha)
	case scene.ObjectKindImage:
		drawBitmap(fb, o, alpha)
	}
}

func drawBitmap(fb *FrameBuffer, o *scene.Object, alpha float64) {
	if o.Bitmap == nil || o.W <= 0 || o.H <= 0 {
		return
	}
	src := &image.RGBA{Pix: o.Bitmap.Pix, Stride: o.Bitmap.W * 4, Rect: image.Rect(0, 0, o.Bitmap.W, o.Bitmap.H)}
	dr := image.Rect(
		int(math.Round(o.X)), int(math.Round(o.Y)),
		int(math.Round(o.X+o.W)), int(math.Round(o.Y+o.H)),
	)
	var opts *xdraw.Options
	if alpha < 1 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})}
	}
	xdraw.ApproxBiLinear.Scale(fb.Image(), dr, src, src.Bounds(), xdraw.Over, opts)
}

func pathBounds(pts []scene.Point) (minX, minY, maxX, maxY float64) {
	minX, minY = pts[0].X, pts[0].Y
	maxX, maxY = minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}

// pen collects the contours of one object in a rasterizer sized to the
// object's clipped bounds, so overlapping parts of the shape blend once.
// Contours added with positive=true wind one way and negative ones the
// other: overlapping positives merge, a negative inside a positive is a hole.
type pen struct {
	z      *vector.Rasterizer
	bounds image.Rectangle
}

func newPen(fb *FrameBuffer, minX, minY, maxX, maxY float64) (*pen, bool) {
	r := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(image.Rect(0, 0, fb.W, fb.H))
	if r.Empty() {
		return nil, false
	}
	return &pen{z: vector.NewRasterizer(r.Dx(), r.Dy()), bounds: r}, true
}

func (p *pen) moveTo(x, y float64) {
	p.z.MoveTo(float32(x-float64(p.bounds.Min.X)), float32(y-float64(p.bounds.Min.Y)))
}

func (p *pen) lineTo(x, y float64) {
	p.z.LineTo(float32(x-float64(p.bounds.Min.X)), float32(y-float64(p.bounds.Min.Y)))
}

func (p *pen) cubeTo(bx, by, cx, cy, dx, dy float64) {
	ox, oy := float64(p.bounds.Min.X), float64(p.bounds.Min.Y)
	p.z.CubeTo(float32(bx-ox), float32(by-oy), float32(cx-ox), float32(cy-oy), float32(dx-ox), float32(dy-oy))
}

func (p *pen) rect(x0, y0, x1, y1 float64, positive bool) {
	p.polygon([]scene.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}, positive)
}

// segment adds the quad covering a-b at the given half width.
func (p *pen) segment(a, b scene.Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	nx, ny := -dy/l*half, dx/l*half
	p.polygon([]scene.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}, true)
}

func (p *pen) polygon(pts []scene.Point, positive bool) {
	if (signedArea(pts) >= 0) != positive {
		slices.Reverse(pts)
	}
	p.moveTo(pts[0].X, pts[0].Y)
	for _, q := range pts[1:] {
		p.lineTo(q.X, q.Y)
	}
	p.z.ClosePath()
}

// circle approximates the circle with four cubic arcs.
func (p *pen) circle(cx, cy, r float64, positive bool) {
	const k = 0.5522847498
	s := 1.0
	if !positive {
		s = -1
	}
	p.moveTo(cx+r, cy)
	for i := 0; i < 4; i++ {
		a0 := float64(i) * math.Pi / 2 * s
		a1 := float64(i+1) * math.Pi / 2 * s
		c0x, c0y := math.Cos(a0), math.Sin(a0)
		c1x, c1y := math.Cos(a1), math.Sin(a1)
		p.cubeTo(
			cx+r*(c0x-s*k*c0y), cy+r*(c0y+s*k*c0x),
			cx+r*(c1x+s*k*c1y), cy+r*(c1y-s*k*c1x),
			cx+r*c1x, cy+r*c1y,
		)
	}
	p.z.ClosePath()
}

// fill composites c through the accumulated coverage, scaled by alpha.
func (p *pen) fill(fb *FrameBuffer, c color.RGBA, alpha float64) {
	src := image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A)*alpha + 0.5)})
	p.z.DrawOp = draw.Over
	p.z.Draw(fb.Image(), p.bounds, src, image.Point{})
}

func signedArea(pts []scene.Point) float64 {
	var sum float64
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// SegmentDistance is the distance from p to the segment a-b.
func SegmentDistance(p, a, b scene.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}
