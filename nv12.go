package nv12

import (
	"image"
	"image/color"
)

// NV12Image exposes a semi-planar 4:2:0 buffer as a full resolution image.
//
// The buffer holds width*height luma bytes followed by width*height/2 bytes
// of interleaved U/V pairs, one pair per 2x2 block of luma samples. Because
// four pixels share one chroma pair, every write covers the whole 2x2 block:
// all four luma samples take the written luma and the shared pair takes the
// written chroma. Reads snap to the top-left sample of the block.
//
// An NV12Image has a single writer. It performs no locking.
type NV12Image[S Storage] struct {
	data     S
	width    int
	height   int
	graySize int
}

// NewNV12Image wraps data as a width x height NV12 image without copying.
//
// Both dimensions must be positive and even, and data must hold at least
// FrameSize(width, height) bytes.
func NewNV12Image[S Storage](data S, width, height int) (*NV12Image[S],
	ExceptionCode) {
	if code := checkDimensions(width, height); !code.IsNone() {
		return nil, code
	}
	if data.Len() < FrameSize(width, height) {
		return nil, ExceptionCodeBufferTooShort
	}

	return &NV12Image[S]{
		data:     data,
		width:    width,
		height:   height,
		graySize: width * height,
	}, ExceptionCodeNoError
}

// FromBytes is NewNV12Image over a byte slice.
func FromBytes(data []byte, width, height int) (*NV12Image[Bytes],
	ExceptionCode) {
	return NewNV12Image(Bytes(data), width, height)
}

func (img *NV12Image[S]) checkBounds(x, y int) {
	if x < 0 || y < 0 || x >= img.width || y >= img.height {
		panic(&BoundsError{X: x, Y: y, Width: img.width, Height: img.height})
	}
}

// pixelIndices returns the luma offset and the offsets of the U and V bytes
// for an already snapped coordinate.
func (img *NV12Image[S]) pixelIndices(x, y int) (int, int, int) {
	offset := y * img.width
	yIndex := offset + x
	uvIndex := img.graySize + offset/2 + x
	return yIndex, uvIndex, uvIndex + 1
}

// Dimensions returns the width and height in pixels.
func (img *NV12Image[S]) Dimensions() (int, int) { return img.width, img.height }

// Bounds returns the rectangle (0, 0, width, height).
func (img *NV12Image[S]) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.width, img.height)
}

// Colorspace describes the buffer layout.
func (img *NV12Image[S]) Colorspace() Colorspace {
	var c Colorspace
	c.SetDefaults(img.width, img.height)
	return c
}

// GetPixel returns the color of the 2x2 block containing (x, y). Luma is
// read from the block's top-left sample, not from (x, y) itself; use RawLuma
// for the pixel's own byte.
func (img *NV12Image[S]) GetPixel(x, y int) YUV {
	img.checkBounds(x, y)
	yi, ui, vi := img.pixelIndices(toZeroOrEven(x), toZeroOrEven(y))
	return YUV{img.data.ByteAt(yi), img.data.ByteAt(ui), img.data.ByteAt(vi)}
}

// PutPixel writes c to the 2x2 block containing (x, y): all four luma
// samples and the shared chroma pair.
func (img *NV12Image[S]) PutPixel(x, y int, c YUV) {
	img.checkBounds(x, y)
	yi, ui, vi := img.pixelIndices(toZeroOrEven(x), toZeroOrEven(y))
	img.data.SetByteAt(yi, c[0])
	img.data.SetByteAt(yi+1, c[0])
	img.data.SetByteAt(yi+img.width, c[0])
	img.data.SetByteAt(yi+img.width+1, c[0])
	img.data.SetByteAt(ui, c[1])
	img.data.SetByteAt(vi, c[2])
}

// BlendPixel is PutPixel. YUV blending is a plain overwrite.
func (img *NV12Image[S]) BlendPixel(x, y int, c YUV) { img.PutPixel(x, y, c) }

// BlockSize is the side length of the pixel block a single write covers.
func (img *NV12Image[S]) BlockSize() int { return 2 }

// RawLuma returns the luma byte stored for (x, y) itself.
func (img *NV12Image[S]) RawLuma(x, y int) uint8 {
	img.checkBounds(x, y)
	return img.data.ByteAt(y*img.width + x)
}

// ColorModel returns YUVModel.
func (img *NV12Image[S]) ColorModel() color.Model { return YUVModel }

// At implements image.Image. Out of bounds coordinates return the zero YUV
// instead of panicking, as image.Image implementations conventionally do.
func (img *NV12Image[S]) At(x, y int) color.Color {
	if !(image.Pt(x, y).In(img.Bounds())) {
		return YUV{}
	}
	return img.GetPixel(x, y)
}

// Set implements draw.Image. Out of bounds writes are ignored.
func (img *NV12Image[S]) Set(x, y int, c color.Color) {
	if !(image.Pt(x, y).In(img.Bounds())) {
		return
	}
	img.PutPixel(x, y, YUVModel.Convert(c).(YUV))
}

// Data lends the backing storage without copying.
func (img *NV12Image[S]) Data() S { return img.data }

// TakeData hands the backing storage back to the caller. The image is left
// empty and must not be used afterwards.
func (img *NV12Image[S]) TakeData() S {
	var zero S
	data := img.data
	img.data = zero
	img.width, img.height, img.graySize = 0, 0, 0
	return data
}
