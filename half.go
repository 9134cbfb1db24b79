package nv12

import (
	"image"
	"image/color"
)

// HalfImage views an NV12Image at half resolution: pixel (x, y) of the view
// is pixel (2x, 2y) of the surface, so every view pixel maps to exactly one
// 2x2 block. Drawing through a HalfImage stays block aligned.
//
// The view has no storage of its own. Bounds checks and block writes are the
// wrapped surface's.
type HalfImage[S Storage] struct {
	img *NV12Image[S]
}

// NewHalfImage wraps img.
func NewHalfImage[S Storage](img *NV12Image[S]) *HalfImage[S] {
	return &HalfImage[S]{img: img}
}

// Unwrap returns the full resolution surface.
func (h *HalfImage[S]) Unwrap() *NV12Image[S] { return h.img }

func (h *HalfImage[S]) Dimensions() (int, int) {
	return h.img.width / 2, h.img.height / 2
}

func (h *HalfImage[S]) Bounds() image.Rectangle {
	return image.Rect(0, 0, h.img.width/2, h.img.height/2)
}

// BlockSize is 1: every view pixel is written independently.
func (h *HalfImage[S]) BlockSize() int { return 1 }

func (h *HalfImage[S]) GetPixel(x, y int) YUV { return h.img.GetPixel(x*2, y*2) }

func (h *HalfImage[S]) PutPixel(x, y int, c YUV) { h.img.PutPixel(x*2, y*2, c) }

func (h *HalfImage[S]) BlendPixel(x, y int, c YUV) { h.PutPixel(x, y, c) }

func (h *HalfImage[S]) ColorModel() color.Model { return YUVModel }

func (h *HalfImage[S]) At(x, y int) color.Color { return h.img.At(x*2, y*2) }

func (h *HalfImage[S]) Set(x, y int, c color.Color) { h.img.Set(x*2, y*2, c) }
