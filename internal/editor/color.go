package editor

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

var (
	DefaultColor      = color.RGBA{R: 0x6A, G: 0x5A, B: 0xCD, A: 0xFF}
	DefaultBackground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// ParseHexColor accepts #RGB and #RRGGBB, with or without the leading '#'.
// The result is always opaque.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("editor: invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("editor: invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 0xFF
	return c
}
