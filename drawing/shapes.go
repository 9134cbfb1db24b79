// Package drawing implements drawing algorithms over nv12.GenericImage.
//
// Every function is generic over the pixel access contract, so it draws the
// same way on a full resolution NV12Image as on a HalfImage. On a full
// resolution surface each write covers a 2x2 block, which widens thin lines
// to two pixels; draw through a HalfImage to stay block aligned.
package drawing

import (
	"image"

	"github.com/GreatValueCreamSoda/gonv12"
)

// DrawLineSegment draws the line from start to end, both inclusive. Points
// outside the image are skipped.
func DrawLineSegment[I nv12.GenericImage](img I, start, end image.Point,
	c nv12.YUV) {
	bounds := img.Bounds()

	dx := abs(end.X - start.X)
	dy := -abs(end.Y - start.Y)
	sx, sy := 1, 1
	if start.X > end.X {
		sx = -1
	}
	if start.Y > end.Y {
		sy = -1
	}

	err := dx + dy
	p := start
	for {
		if p.In(bounds) {
			img.BlendPixel(p.X, p.Y, c)
		}
		if p == end {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p.X += sx
		}
		if e2 <= dx {
			err += dx
			p.Y += sy
		}
	}
}

// DrawHollowRect draws the outline of r. The outline runs along the first and
// last row and column inside r.
func DrawHollowRect[I nv12.GenericImage](img I, r image.Rectangle,
	c nv12.YUV) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	left, top := r.Min.X, r.Min.Y
	right, bottom := r.Max.X-1, r.Max.Y-1

	DrawLineSegment(img, image.Pt(left, top), image.Pt(right, top), c)
	DrawLineSegment(img, image.Pt(left, bottom), image.Pt(right, bottom), c)
	DrawLineSegment(img, image.Pt(left, top), image.Pt(left, bottom), c)
	DrawLineSegment(img, image.Pt(right, top), image.Pt(right, bottom), c)
}

// DrawFilledRect fills the part of r that lies inside the image.
func DrawFilledRect[I nv12.GenericImage](img I, r image.Rectangle,
	c nv12.YUV) {
	r = r.Canon().Intersect(img.Bounds())
	step := blockStep(img)
	for y := snap(r.Min.Y, step); y < r.Max.Y; y += step {
		for x := snap(r.Min.X, step); x < r.Max.X; x += step {
			img.BlendPixel(x, y, c)
		}
	}
}

// MapRect replaces every block inside r with f applied to its current color.
// Each block is visited once, so f is never applied to its own output.
func MapRect[I nv12.GenericImage](img I, r image.Rectangle,
	f func(nv12.YUV) nv12.YUV) {
	r = r.Canon().Intersect(img.Bounds())
	step := blockStep(img)
	for y := snap(r.Min.Y, step); y < r.Max.Y; y += step {
		for x := snap(r.Min.X, step); x < r.Max.X; x += step {
			img.PutPixel(x, y, f(img.GetPixel(x, y)))
		}
	}
}

// InvertRect inverts every channel of the blocks inside r.
func InvertRect[I nv12.GenericImage](img I, r image.Rectangle) {
	MapRect(img, r, func(c nv12.YUV) nv12.YUV {
		c.Invert()
		return c
	})
}

type blockSizer interface {
	BlockSize() int
}

// blockStep is the distance between independently writable pixels.
func blockStep(img nv12.GenericImage) int {
	if b, ok := img.(blockSizer); ok && b.BlockSize() > 0 {
		return b.BlockSize()
	}
	return 1
}

func snap(n, step int) int { return n - n%step }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
