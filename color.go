package nv12

import (
	"image/color"
	"strings"
)

// YUV is a color in the native space of an NV12 surface: luma followed by the
// two chroma channels (U/Cb, V/Cr), one byte each.
//
// YUV is a plain value. Copies are independent and all arithmetic on it is
// per channel.
type YUV [3]uint8

// ChannelCount is the number of channels stored in a YUV value.
const ChannelCount = 3

const defaultMaxValue uint8 = 255

// Named colors. The values are the native-space encoding of the canonical RGB
// colors and are kept as byte literals so they never drift from the encoding
// existing frames were drawn with.
var (
	Black  = YUV{0x00, 0x80, 0x80}
	White  = YUV{0xff, 0x80, 0x80}
	Red    = YUV{0x4c, 0x55, 0xff}
	Green  = YUV{0x00, 0x00, 0x00}
	Cyan   = YUV{0xb3, 0xab, 0x00}
	Blue   = YUV{0x1d, 0xff, 0x6b}
	Yellow = YUV{0xe2, 0x00, 0x95}
)

var namedColors = map[string]YUV{
	"black":  Black,
	"white":  White,
	"red":    Red,
	"green":  Green,
	"cyan":   Cyan,
	"blue":   Blue,
	"yellow": Yellow,
}

// ColorByName returns the named color matching name, ignoring case.
func ColorByName(name string) (YUV, bool) {
	c, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// FromChannels builds a YUV from four channel values. The fourth value is
// ignored since YUV carries no alpha.
func FromChannels(a, b, c, _ uint8) YUV { return YUV{a, b, c} }

// FromSlice builds a YUV from exactly ChannelCount values. It panics on any
// other length.
func FromSlice(s []uint8) YUV {
	if len(s) != ChannelCount {
		panic("nv12: YUV requires exactly 3 channels")
	}
	return YUV{s[0], s[1], s[2]}
}

// Channels returns a mutable view of the three channels.
func (c *YUV) Channels() []uint8 { return c[:] }

// Channels4 returns the three channels plus an implied fully opaque fourth
// channel.
func (c YUV) Channels4() (uint8, uint8, uint8, uint8) {
	return c[0], c[1], c[2], defaultMaxValue
}

// RGB converts the color to RGB.
//
// Each channel is computed in floating point and truncated toward zero. No
// clamping is applied: results outside [0, 255] wrap around, so out-of-gamut
// colors produce meaningless values.
func (c YUV) RGB() [3]uint8 {
	y := float32(c[0])
	u := float32(c[1])
	v := float32(c[2])
	r := y + (140*(v-128))/100
	g := y - (34*(u-128))/100 - (71*(v-128))/100
	b := y + (177*(u-128))/100
	return [3]uint8{truncate(r), truncate(g), truncate(b)}
}

// truncate drops the fraction and keeps the low 8 bits.
func truncate(f float32) uint8 { return uint8(int32(f)) }

// ToRGBA converts the color to an opaque color.RGBA.
func (c YUV) ToRGBA() color.RGBA {
	rgb := c.RGB()
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: defaultMaxValue}
}

// ToLuma returns the converted red channel as a gray value. This is not a
// weighted luma.
func (c YUV) ToLuma() color.Gray { return color.Gray{Y: c.RGB()[0]} }

// ToLumaAlpha is ToLuma with a fully opaque alpha channel appended.
func (c YUV) ToLumaAlpha() [2]uint8 { return [2]uint8{c.RGB()[0], defaultMaxValue} }

// RGBA implements color.Color.
func (c YUV) RGBA() (r, g, b, a uint32) { return c.ToRGBA().RGBA() }

// Map returns a copy with f applied to every channel.
func (c YUV) Map(f func(uint8) uint8) YUV {
	c.Apply(f)
	return c
}

// Apply applies f to every channel in place.
func (c *YUV) Apply(f func(uint8) uint8) {
	for i := range c {
		c[i] = f(c[i])
	}
}

// MapWithAlpha is Map; g would apply to alpha, which YUV does not have.
func (c YUV) MapWithAlpha(f, g func(uint8) uint8) YUV {
	c.ApplyWithAlpha(f, g)
	return c
}

// ApplyWithAlpha is Apply; g is never called.
func (c *YUV) ApplyWithAlpha(f, _ func(uint8) uint8) { c.Apply(f) }

// Map2 returns a copy where each channel is f(c[i], other[i]).
func (c YUV) Map2(other YUV, f func(uint8, uint8) uint8) YUV {
	c.Apply2(other, f)
	return c
}

// Apply2 sets each channel to f(c[i], other[i]) in place.
func (c *YUV) Apply2(other YUV, f func(uint8, uint8) uint8) {
	for i := range c {
		c[i] = f(c[i], other[i])
	}
}

// Invert replaces every channel with its 255 complement. Chroma is inverted
// too, so this is not a perceptual inversion.
func (c *YUV) Invert() {
	for i := range c {
		c[i] = defaultMaxValue - c[i]
	}
}

// Blend overwrites c with other. There is no alpha weighting.
func (c *YUV) Blend(other YUV) { *c = other }

// YUVModel converts arbitrary colors to YUV using full-range BT.601
// coefficients. Conversions are rounded, so they may differ by one from the
// named color literals.
var YUVModel color.Model = color.ModelFunc(yuvModel)

func yuvModel(c color.Color) color.Color {
	if y, ok := c.(YUV); ok {
		return y
	}
	r, g, b, _ := c.RGBA()
	y, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	return YUV{y, cb, cr}
}
