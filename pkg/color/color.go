// Package color parses and formats the CSS colors used by figures and
// themes.
package color

import (
	"errors"
	"fmt"
	stdcolor "image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned for strings that are not a supported CSS
// color.
var ErrInvalidColor = errors.New("color: invalid CSS color")

// Color is an 8-bit sRGB color with straight (not premultiplied) alpha.
type Color struct {
	R, G, B, A uint8
}

// FromCSSColor parses #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(r, g, b) and
// rgba(r, g, b, a). Channels in rgb() may be 0..255 or percentages; the
// alpha in rgba() may be 0..1 or a percentage.
func FromCSSColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return fromHex(s)
	case strings.HasPrefix(s, "rgba(") || strings.HasPrefix(s, "rgb("):
		return fromFunc(s)
	}
	return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// MustCSSColor is FromCSSColor for constant strings; it panics on error.
func MustCSSColor(s string) Color {
	c, err := FromCSSColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func fromHex(s string) (Color, error) {
	var alpha string
	switch len(s) {
	case 4, 7:
	case 5:
		s, alpha = s[:4], s[4:]+s[4:]
	case 9:
		s, alpha = s[:7], s[7:]
	default:
		return Color{}, fmt.Errorf("%w: %q has %d hex digits", ErrInvalidColor, s, len(s)-1)
	}
	rgb, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	c := FromColorful(rgb)
	if alpha != "" {
		a, err := strconv.ParseUint(alpha, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: alpha %q: %v", ErrInvalidColor, alpha, err)
		}
		c.A = uint8(a)
	}
	return c, nil
}

func fromFunc(s string) (Color, error) {
	name, args, ok := strings.Cut(s, "(")
	if !ok || !strings.HasSuffix(args, ")") {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	parts := strings.Split(strings.TrimSuffix(args, ")"), ",")
	want := 3
	if name == "rgba" {
		want = 4
	}
	if len(parts) != want {
		return Color{}, fmt.Errorf("%w: %s() takes %d arguments, got %d", ErrInvalidColor, name, want, len(parts))
	}
	var ch [4]float64
	ch[3] = 1
	for i, p := range parts {
		v, err := channel(strings.TrimSpace(p), i == 3)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
		}
		ch[i] = v
	}
	return Color{R: to8(ch[0]), G: to8(ch[1]), B: to8(ch[2]), A: to8(ch[3])}, nil
}

// channel returns a component scaled to [0, 1].
func channel(s string, alpha bool) (float64, error) {
	scale := 255.0
	if alpha {
		scale = 1
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		s, scale = pct, 100
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > scale {
		return 0, fmt.Errorf("component %s out of range", s)
	}
	return v / scale, nil
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// FromColorful converts an opaque go-colorful color, clamping it to the
// sRGB gamut.
func FromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return Color{R: r, G: g, B: b, A: 255}
}

// Colorful returns the color channels as a go-colorful color; alpha is
// dropped.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// RGBA converts to the standard library's color type.
func (c Color) RGBA() stdcolor.RGBA {
	return stdcolor.RGBA{
		R: uint8(uint16(c.R) * uint16(c.A) / 255),
		G: uint8(uint16(c.G) * uint16(c.A) / 255),
		B: uint8(uint16(c.B) * uint16(c.A) / 255),
		A: c.A,
	}
}

// Opacity is the alpha channel in [0, 1].
func (c Color) Opacity() float64 { return float64(c.A) / 255 }

// ToCSSHex formats the color as #rrggbb, or #rrggbbaa when it is not
// opaque.
func (c Color) ToCSSHex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) String() string { return c.ToCSSHex() }

// Blend mixes c toward o by t in CIE L*a*b*, interpolating alpha linearly.
func (c Color) Blend(o Color, t float64) Color {
	out := FromColorful(c.Colorful().BlendLab(o.Colorful(), t))
	out.A = to8((1-t)*c.Opacity() + t*o.Opacity())
	return out
}

// Inverted keeps hue and chroma but mirrors lightness, turning a color
// picked for a light background into one for a dark background.
func (c Color) Inverted() Color {
	h, ch, l := c.Colorful().Hcl()
	out := FromColorful(colorful.Hcl(h, ch, 1-l))
	out.A = c.A
	return out
}

// MarshalText writes the CSS hex form.
func (c Color) MarshalText() ([]byte, error) { return []byte(c.ToCSSHex()), nil }

// UnmarshalText accepts any form FromCSSColor does.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := FromCSSColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
