package nv12

// ColorRange indicates whether the image uses limited (TV) or full (PC) range.
//
// Limited range typically maps black/white to 16–235; full range uses 0–255
// for 8bit images. The named colors in this package are full range.
type ColorRange int

const (
	ColorRangeLimited ColorRange = iota
	ColorRangeFull
)

// ChromaLocation specifies the relative position of chroma (U/V) samples
// within a 2x2 block. It does not change addressing; it is carried so frames
// can be described to tools that care.
type ChromaLocation int

const (
	ChromaLocationLeft ChromaLocation = iota
	ChromaLocationCenter
	ChromaLocationTopLeft
	ChromaLocationTop
)

// ColorFamily identifies whether an image uses RGB or YUV color channels.
type ColorFamily int

const (
	ColorFamilyYUV ColorFamily = iota
	ColorFamilyRGB
)

// Colorspace describes the geometry and sampling of a frame buffer.
//
// ChromaSubsamplingWidth and ChromaSubsamplingHeight are log2 factors, so
// NV12 uses 1 for both. Only that layout can be addressed by NV12Image;
// Validate reports anything else.
type Colorspace struct {
	Width, Height           int
	ColorRange              ColorRange
	ChromaSubsamplingWidth  int
	ChromaSubsamplingHeight int
	ChromaLocation          ChromaLocation
	ColorFamily             ColorFamily
}

// SetDefaults fills the Colorspace with the NV12 layout for the given
// resolution: full range YUV, 4:2:0 subsampling and left-sited chroma.
func (c *Colorspace) SetDefaults(width, height int) {
	c.Width = width
	c.Height = height
	c.ColorRange = ColorRangeFull
	c.ChromaSubsamplingWidth = 1
	c.ChromaSubsamplingHeight = 1
	c.ChromaLocation = ChromaLocationLeft
	c.ColorFamily = ColorFamilyYUV
}

// Validate reports whether the Colorspace describes a layout NV12Image can
// address.
func (c *Colorspace) Validate() ExceptionCode {
	if c.ColorFamily != ColorFamilyYUV || c.ChromaSubsamplingWidth != 1 ||
		c.ChromaSubsamplingHeight != 1 {
		return ExceptionCodeUnsupportedLayout
	}
	return checkDimensions(c.Width, c.Height)
}

// LumaSize is the byte length of the luma plane, which is also the offset of
// the interleaved chroma plane.
func (c *Colorspace) LumaSize() int { return c.Width * c.Height }

// ChromaSize is the byte length of the interleaved chroma plane.
func (c *Colorspace) ChromaSize() int { return c.Width * c.Height / 2 }

// FrameSize is the byte length of one complete frame.
func (c *Colorspace) FrameSize() int { return FrameSize(c.Width, c.Height) }

// FrameSize returns width*height*3/2, the byte length of an NV12 frame.
func FrameSize(width, height int) int {
	return width*height + width*height/2
}

func checkDimensions(width, height int) ExceptionCode {
	if width <= 0 || height <= 0 {
		return ExceptionCodeBadDimensions
	}
	if width%2 != 0 || height%2 != 0 {
		return ExceptionCodeOddDimensions
	}
	return ExceptionCodeNoError
}
