package nv12

// toZeroOrEven snaps n down to the even coordinate of its 2x2 block.
func toZeroOrEven(n int) int { return n - n%2 }

// PackNV12 copies strided decoder planes into dst using the tight NV12
// layout. luma holds height rows of lumaStride bytes, chroma holds height/2
// rows of chromaStride bytes with interleaved U/V pairs. Decoders commonly pad
// rows, which is why strides are passed separately from width.
func PackNV12(dst, luma, chroma []byte, lumaStride, chromaStride, width,
	height int) ExceptionCode {
	if code := checkDimensions(width, height); !code.IsNone() {
		return code
	}
	if lumaStride < width || chromaStride < width {
		return ExceptionCodeBadStride
	}
	if len(dst) < FrameSize(width, height) ||
		len(luma) < lumaStride*(height-1)+width ||
		len(chroma) < chromaStride*(height/2-1)+width {
		return ExceptionCodeBufferTooShort
	}

	for row := 0; row < height; row++ {
		copy(dst[row*width:(row+1)*width], luma[row*lumaStride:])
	}

	graySize := width * height
	for row := 0; row < height/2; row++ {
		off := graySize + row*width
		copy(dst[off:off+width], chroma[row*chromaStride:])
	}
	return ExceptionCodeNoError
}
