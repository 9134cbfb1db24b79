package drawing

import (
	"image"

	"github.com/GreatValueCreamSoda/gonv12"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DrawText renders text with face so that its top-left corner sits at
// (x, y). Glyph coverage is applied per channel: each covered pixel becomes
// the weighted sum of its current color and c, then is written with
// BlendPixel. It returns the dot after the last glyph.
func DrawText[I nv12.GenericImage](img I, c nv12.YUV, x, y int,
	face font.Face, text string) image.Point {
	bounds := img.Bounds()
	dot := fixed.P(x, y)
	dot.Y += face.Metrics().Ascent

	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 {
			dot.X += face.Kern(prev, r)
		}
		prev = r

		dr, mask, maskp, advance, ok := face.Glyph(dot, r)
		if !ok {
			dot.X += advance
			continue
		}

		for py := dr.Min.Y; py < dr.Max.Y; py++ {
			for px := dr.Min.X; px < dr.Max.X; px++ {
				if !(image.Pt(px, py).In(bounds)) {
					continue
				}
				_, _, _, a := mask.At(maskp.X+px-dr.Min.X,
					maskp.Y+py-dr.Min.Y).RGBA()
				if a == 0 {
					continue
				}
				img.BlendPixel(px, py, weightedSum(img.GetPixel(px, py), c,
					float32(a)/0xffff))
			}
		}
		dot.X += advance
	}

	return image.Pt(dot.X.Round(), dot.Y.Round())
}

// TextSize returns the width and height in pixels text occupies when drawn
// with face.
func TextSize(face font.Face, text string) (int, int) {
	m := face.Metrics()
	return font.MeasureString(face, text).Ceil(), (m.Ascent + m.Descent).Ceil()
}

func weightedSum(dst, src nv12.YUV, w float32) nv12.YUV {
	return dst.Map2(src, func(d, s uint8) uint8 {
		v := float32(d)*(1-w) + float32(s)*w + 0.5
		if v >= 255 {
			return 255
		}
		if v <= 0 {
			return 0
		}
		return uint8(v)
	})
}
