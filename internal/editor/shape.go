package editor

import (
	"image/color"
	"math"
)

// PendingShape is the shape under construction during one drag gesture.
type PendingShape struct {
	Kind    ShapeKind
	Anchor  Point
	Current Point
	Handle  ObjectHandle
	Desc    ShapeDescriptor
}

// ShapeStyle is copied onto every descriptor the builder produces.
type ShapeStyle struct {
	Stroke      color.RGBA
	StrokeWidth float64
	Fill        color.RGBA
	Layer       string
}

// OutlineStyle derives a shape style from the active brush: the outline is
// half the brush width, never thinner than one pixel, and the fill is clear.
func OutlineStyle(c color.RGBA, brushSize int, layer string) ShapeStyle {
	return ShapeStyle{
		Stroke:      opaque(c),
		StrokeWidth: math.Max(1, float64(brushSize)/2),
		Layer:       layer,
	}
}

// ShapeBuilder turns a pointer drag into rectangle or circle geometry. The
// pointer-down location anchors the shape; circles grow outward from it.
type ShapeBuilder struct {
	pending *PendingShape
	style   ShapeStyle
}

func (b *ShapeBuilder) Begin(kind ShapeKind, anchor Point, style ShapeStyle) *PendingShape {
	b.style = style
	b.pending = &PendingShape{Kind: kind, Anchor: anchor, Current: anchor}
	b.pending.Desc = b.describe()
	return b.pending
}

// Update moves the live corner to p and returns the new geometry.
func (b *ShapeBuilder) Update(p Point) (ShapeDescriptor, bool) {
	if b.pending == nil {
		return ShapeDescriptor{}, false
	}
	b.pending.Current = p
	b.pending.Desc = b.describe()
	return b.pending.Desc, true
}

// Attach records the renderer handle of the inserted live object.
func (b *ShapeBuilder) Attach(h ObjectHandle) {
	if b.pending != nil {
		b.pending.Handle = h
	}
}

// Finish ends the gesture and hands back the final shape.
func (b *ShapeBuilder) Finish() (PendingShape, bool) {
	if b.pending == nil {
		return PendingShape{}, false
	}
	ps := *b.pending
	b.pending = nil
	return ps, true
}

func (b *ShapeBuilder) Cancel() (PendingShape, bool) { return b.Finish() }

func (b *ShapeBuilder) Pending() (PendingShape, bool) {
	if b.pending == nil {
		return PendingShape{}, false
	}
	return *b.pending, true
}

func (b *ShapeBuilder) Active() bool { return b.pending != nil }

func (b *ShapeBuilder) describe() ShapeDescriptor {
	ps := b.pending
	d := ShapeDescriptor{
		Kind:        ps.Kind,
		Stroke:      b.style.Stroke,
		StrokeWidth: b.style.StrokeWidth,
		Fill:        b.style.Fill,
		Layer:       b.style.Layer,
	}
	switch ps.Kind {
	case ShapeCircle:
		d.Center = ps.Anchor
		d.Radius = CircleRadius(ps.Anchor, ps.Current)
	default:
		d.Left, d.Top, d.Width, d.Height = RectBounds(ps.Anchor, ps.Current)
	}
	return d
}

func RectBounds(anchor, cur Point) (left, top, width, height float64) {
	return math.Min(anchor.X, cur.X), math.Min(anchor.Y, cur.Y),
		math.Abs(cur.X - anchor.X), math.Abs(cur.Y - anchor.Y)
}

func CircleRadius(anchor, cur Point) float64 {
	return math.Max(0, math.Hypot(cur.X-anchor.X, cur.Y-anchor.Y))
}

// Degenerate reports shapes that would draw nothing: a rectangle with zero
// width and height, or a circle with zero radius.
func Degenerate(d ShapeDescriptor) bool {
	switch d.Kind {
	case ShapeRect:
		return d.Width == 0 && d.Height == 0
	case ShapeCircle:
		return d.Radius == 0
	default:
		return false
	}
}
