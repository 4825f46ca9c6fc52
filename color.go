package easel

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Hex returns the color as "#RRGGBB" when fully opaque, or "#AARRGGBB"
// otherwise. Components are clamped to [0, 255].
func (c Color) Hex() string {
	r := clampByte(c.R)
	g := clampByte(c.G)
	b := clampByte(c.B)
	a := clampByte(c.A)
	if a == 255 {
		return fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", a, r, g, b)
}

// NRGBA converts the color to 8-bit straight-alpha form.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: clampByte(c.R), G: clampByte(c.G), B: clampByte(c.B), A: clampByte(c.A)}
}

// WithAlpha returns the color with its alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	return Color{c.R, c.G, c.B, c.A * a}
}

func clampByte(v float64) uint8 {
	n := int(v*255 + 0.5)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

// ParseColor parses "#RRGGBB" or "#AARRGGBB" (leading '#' optional,
// case-insensitive). It reports ok=false on malformed input so callers can
// fall back to a field default instead of aborting reconstruction.
func ParseColor(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var a, r, g, b uint64
	var err error
	switch len(s) {
	case 6:
		a = 0xFF
		r, g, b, err = parseHexTriplet(s)
	case 8:
		a, err = strconv.ParseUint(s[0:2], 16, 8)
		if err == nil {
			r, g, b, err = parseHexTriplet(s[2:])
		}
	default:
		return Color{}, false
	}
	if err != nil {
		return Color{}, false
	}
	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}, true
}

// parseColorOr parses s, returning def when s is empty or malformed.
func parseColorOr(s string, def Color) Color {
	if s == "" {
		return def
	}
	c, ok := ParseColor(s)
	if !ok {
		return def
	}
	return c
}

func parseHexTriplet(s string) (r, g, b uint64, err error) {
	r, err = strconv.ParseUint(s[0:2], 16, 8)
	if err != nil {
		return 0, 0, 0, err
	}
	g, err = strconv.ParseUint(s[2:4], 16, 8)
	if err != nil {
		return 0, 0, 0, err
	}
	b, err = strconv.ParseUint(s[4:6], 16, 8)
	return r, g, b, err
}
