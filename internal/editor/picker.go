package editor

import "image/color"

// pick samples a color at p and makes it the active color. Picking never
// changes the scene and never commits.
func (s *Session) pick(p Point) {
	var (
		c  color.RGBA
		ok bool
	)
	switch s.pickerMode {
	case PickFill:
		var hit Hit
		hit, ok = s.renderer.HitTest(p)
		c = hit.Fill
		if c.A == 0 {
			// unfilled shapes answer with their outline
			c = hit.Stroke
		}
		ok = ok && c.A > 0
	default:
		c, ok = s.renderer.PixelAt(p)
	}
	if !ok {
		s.logger.Debug("nothing to pick", "x", p.X, "y", p.Y, "mode", s.pickerMode.String())
		return
	}
	s.color = opaque(c)
	s.configureBrush()
	s.apply(Command{Kind: ColorPicked, Color: s.color, At: &p})
}
