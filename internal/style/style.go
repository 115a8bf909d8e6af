// Package style defines highlight attribute values and the registry that
// interns them by the numeric ids assigned by the remote editor.
package style

import (
	"github.com/lucasb-eyer/go-colorful"
)

// ID is a highlight attribute id assigned by the remote editor.
// ID 0 always means "default colors with no attributes".
type ID int64

// RGBA is a straight-alpha color with components in [0, 1].
type RGBA struct {
	R, G, B, A float32
}

// FromPacked converts a packed 24-bit RGB value (0xRRGGBB) into a fully
// opaque RGBA color.
func FromPacked(packed uint32) RGBA {
	return RGBA{
		R: float32((packed>>16)&0xFF) / 255.0,
		G: float32((packed>>8)&0xFF) / 255.0,
		B: float32(packed&0xFF) / 255.0,
		A: 1.0,
	}
}

// Packed returns the 24-bit RGB representation of the color, dropping alpha.
// Opacity bookkeeping in the registry matches colors strictly by this value.
func (c RGBA) Packed() uint32 {
	return uint32(c.R*255.0+0.5)<<16 | uint32(c.G*255.0+0.5)<<8 | uint32(c.B*255.0+0.5)
}

// WithAlpha returns a copy of the color with the given alpha.
func (c RGBA) WithAlpha(a float32) RGBA {
	c.A = a
	return c
}

// FromColorful converts a go-colorful value into a fully opaque RGBA color.
func FromColorful(c colorful.Color) RGBA {
	return RGBA{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1}
}

// Colors holds the optional color overrides of a style. A nil entry falls
// back to the corresponding default color.
type Colors struct {
	Foreground *RGBA
	Background *RGBA
	Special    *RGBA
}

// UnderlineStyle enumerates the underline decorations a style can carry.
type UnderlineStyle uint8

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurl
	UnderlineDash
	UnderlineDot
)

// Opacity describes how a color's alpha is derived when a transparency
// setting is associated with it.
type Opacity struct {
	// Disable forces the color fully opaque regardless of settings.
	Disable bool
	// Base is the base opacity of the color.
	Base float32
	// Multiplier scales the globally configured opacity before it is added
	// to Base.
	Multiplier float32
	// AppliesToForeground extends the setting to foreground colors, which
	// are otherwise always opaque.
	AppliesToForeground bool
}

// BackgroundAlpha computes the effective background alpha under the given
// global opacity.
func (o Opacity) BackgroundAlpha(opacity float32) float32 {
	if o.Disable {
		return 1.0
	}
	return clamp01(o.Base + o.Multiplier*opacity)
}

// ForegroundAlpha computes the effective foreground alpha under the given
// global opacity.
func (o Opacity) ForegroundAlpha(opacity float32) float32 {
	if !o.Disable && o.AppliesToForeground {
		return clamp01(o.Base + o.Multiplier*opacity)
	}
	return 1.0
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Style is an immutable-by-convention highlight attribute value. Mutation
// always constructs a new value; shared *Style handles are never written
// through.
type Style struct {
	Colors        Colors
	Reverse       bool
	Italic        bool
	Bold          bool
	Strikethrough bool
	Underline     UnderlineStyle
	// Blend is the style's transparency percentage, 0 (opaque) to 100
	// (fully transparent).
	Blend uint8

	// Opacity overrides recorded by the registry for the style's exact
	// background/foreground colors.
	BackgroundOpacity *Opacity
	ForegroundOpacity *Opacity
}

// PackedBackground returns the packed background color, if one is set.
func (s *Style) PackedBackground() (uint32, bool) {
	if s.Colors.Background == nil {
		return 0, false
	}
	return s.Colors.Background.Packed(), true
}

// PackedForeground returns the packed foreground color, if one is set.
func (s *Style) PackedForeground() (uint32, bool) {
	if s.Colors.Foreground == nil {
		return 0, false
	}
	return s.Colors.Foreground.Packed(), true
}

// Foreground resolves the style's effective foreground color, honoring the
// reverse attribute and opacity overrides.
func (s *Style) Foreground(defaults *Colors, opacity float32) RGBA {
	if s.Reverse {
		return s.backgroundWithOpacity(defaults, opacity)
	}
	return s.foregroundWithOpacity(defaults, opacity)
}

// Background resolves the style's effective background color, honoring the
// reverse attribute and opacity overrides.
func (s *Style) Background(defaults *Colors, opacity float32) RGBA {
	if s.Reverse {
		return s.foregroundWithOpacity(defaults, opacity)
	}
	return s.backgroundWithOpacity(defaults, opacity)
}

// Special resolves the color used for underline decorations, falling back to
// the effective foreground.
func (s *Style) Special(defaults *Colors, opacity float32) RGBA {
	if s.Colors.Special != nil {
		return *s.Colors.Special
	}
	if defaults.Special != nil && s.Colors.Foreground == nil {
		return *defaults.Special
	}
	return s.Foreground(defaults, opacity)
}

func (s *Style) backgroundWithOpacity(defaults *Colors, opacity float32) RGBA {
	if s.Colors.Background == nil {
		if defaults.Background != nil {
			return *defaults.Background
		}
		return RGBA{A: 1}
	}
	color := *s.Colors.Background
	if s.BackgroundOpacity != nil {
		color.A = s.BackgroundOpacity.BackgroundAlpha(opacity)
	} else if defaults.Background != nil {
		color.A = defaults.Background.A
	}
	return color
}

func (s *Style) foregroundWithOpacity(defaults *Colors, opacity float32) RGBA {
	if s.Colors.Foreground == nil {
		if defaults.Foreground != nil {
			return *defaults.Foreground
		}
		return RGBA{R: 1, G: 1, B: 1, A: 1}
	}
	color := *s.Colors.Foreground
	if s.ForegroundOpacity != nil {
		color.A = s.ForegroundOpacity.ForegroundAlpha(opacity)
	} else if defaults.Foreground != nil {
		color.A = defaults.Foreground.A
	}
	return color
}
