package nv12

import (
	"image"
	"image/draw"
)

// GenericImage is the pixel access contract drawing algorithms are written
// against. NV12Image and HalfImage both implement it, so any function generic
// over GenericImage works on either.
//
// GetPixel, PutPixel and BlendPixel panic with a *BoundsError when (x, y)
// lies outside Bounds.
type GenericImage interface {
	Dimensions() (int, int)
	Bounds() image.Rectangle
	GetPixel(x, y int) YUV
	PutPixel(x, y int, c YUV)
	BlendPixel(x, y int, c YUV)
}

// Image is a GenericImage that can also be handed to image/draw and any
// other code consuming draw.Image.
type Image interface {
	GenericImage
	draw.Image
}

// Storage is an indexable byte container backing an NV12Image. It lets the
// same addressing logic run over owned slices, borrowed slices or memory
// managed elsewhere (a mapped device buffer, a pooled frame).
type Storage interface {
	Len() int
	ByteAt(i int) byte
	SetByteAt(i int, v byte)
}

// Bytes is Storage over a plain byte slice.
type Bytes []byte

func (b Bytes) Len() int                { return len(b) }
func (b Bytes) ByteAt(i int) byte       { return b[i] }
func (b Bytes) SetByteAt(i int, v byte) { b[i] = v }

var (
	_ Image = (*NV12Image[Bytes])(nil)
	_ Image = (*HalfImage[Bytes])(nil)
)
