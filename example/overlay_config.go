package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/GreatValueCreamSoda/gonv12"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"
)

type OverlayConfig struct {
	InputPath, VideoPath, OutputPath string
	Width, Height                    int
	StartIdx                         int
	MaxFrames                        int
	WorkerCount                      int
	Overlays                         []string
	Rect                             image.Rectangle
	Text                             string
	Color                            nv12.YUV
	LabelBackground                  *nv12.YUV
	Half                             bool
	Stats                            bool

	// Used when OutputPath names a container ffmpeg encodes into.
	FrameRate   float64
	FFmpegFlags []string
}

func (c *OverlayConfig) Validate() error {
	logf(LogInfo, "Validating overlay configuration")

	if c.WorkerCount <= 0 {
		logf(LogInfo, "WorkerCount <= 0, defaulting to 1")
		c.WorkerCount = 1
	}
	if (c.InputPath == "") == (c.VideoPath == "") {
		err := fmt.Errorf("exactly one of --input and --video is required")
		logf(LogError, "Validation failed: %v", err)
		return err
	}
	if c.OutputPath == "" {
		err := fmt.Errorf("--output is required")
		logf(LogError, "Validation failed: %v", err)
		return err
	}
	if c.InputPath != "" {
		var cs nv12.Colorspace
		cs.SetDefaults(c.Width, c.Height)
		if exception := cs.Validate(); !exception.IsNone() {
			err := fmt.Errorf("frame size %dx%d: %w", c.Width, c.Height,
				exception.GetError())
			logf(LogError, "Validation failed: %v", err)
			return err
		}
	}
	if isEncodedOutput(c.OutputPath) && c.FrameRate <= 0 {
		err := fmt.Errorf("--fps must be positive")
		logf(LogError, "Validation failed: %v", err)
		return err
	}
	if c.StartIdx < 0 || c.MaxFrames < 0 {
		err := fmt.Errorf("--start and --frames must not be negative")
		logf(LogError, "Validation failed: %v", err)
		return err
	}
	if len(c.Overlays) == 0 {
		err := fmt.Errorf("at least one overlay must be specified")
		logf(LogError, "Validation failed: %v", err)
		return err
	}

	logf(LogInfo, "Configuration validated successfully: WorkerCount=%d, "+
		"Overlays=%v, Half=%t", c.WorkerCount, c.Overlays, c.Half)
	return nil
}

// OpenSource opens the configured frame source.
func (c *OverlayConfig) OpenSource() (frameSource, error) {
	if c.VideoPath != "" {
		logf(LogInfo, "Opening video '%s'", c.VideoPath)
		return openVideoSource(c.VideoPath, c.StartIdx)
	}
	logf(LogInfo, "Opening raw NV12 input '%s' (%dx%d)", c.InputPath, c.Width,
		c.Height)
	return openRawSource(c.InputPath, c.Width, c.Height, c.StartIdx)
}

// OpenSink creates the output. Video containers are encoded by ffmpeg,
// anything else receives raw frames.
func (c *OverlayConfig) OpenSink(cs nv12.Colorspace) (frameSink, error) {
	if isEncodedOutput(c.OutputPath) {
		logf(LogInfo, "Encoding output '%s' with ffmpeg %v", c.OutputPath,
			c.FFmpegFlags)
		return newFFmpegSink(cs.Width, cs.Height, c.FrameRate, c.FFmpegFlags,
			c.OutputPath)
	}
	logf(LogInfo, "Creating output '%s'", c.OutputPath)
	return createRawSink(c.OutputPath)
}

// FrameCount limits the number of frames the source reports by MaxFrames.
// It returns -1 when the source length is unknown and unlimited.
func (c *OverlayConfig) FrameCount(src frameSource) (int, error) {
	n := src.NumFrames()
	logf(LogDebug, "Source reports %d frames", n)

	if c.MaxFrames > 0 && (n < 0 || c.MaxFrames < n) {
		n = c.MaxFrames
		logf(LogDebug, "Limited by MaxFrames config to %d frames", n)
	}
	if n == 0 {
		err := fmt.Errorf("no frames to process")
		logf(LogError, "Frame count calculation resulted in zero frames: "+
			"StartIdx=%d, MaxFrames=%d", c.StartIdx, c.MaxFrames)
		return 0, err
	}
	return n, nil
}

// BuildOverlays turns the configured overlay names into handlers. With Half
// set, geometry is converted to half resolution coordinates.
func (c *OverlayConfig) BuildOverlays() ([]OverlayHandler, error) {
	logf(LogInfo, "Building %d overlays: %v", len(c.Overlays), c.Overlays)

	rect := c.Rect
	if c.Half {
		rect = image.Rect(rect.Min.X/2, rect.Min.Y/2, rect.Max.X/2,
			rect.Max.Y/2)
		logf(LogDebug, "Half resolution rectangle: %v", rect)
	}

	var overlays []OverlayHandler
	for _, name := range c.Overlays {
		var o OverlayHandler
		switch name {
		case "box":
			o = &boxOverlay{rect: rect, color: c.Color}
		case "fill":
			o = &fillOverlay{rect: rect, color: c.Color}
		case "invert":
			o = &invertOverlay{rect: rect}
		case "label":
			o = &labelOverlay{
				origin:     rect.Min.Add(image.Pt(2, 2)),
				text:       c.Text,
				color:      c.Color,
				background: c.LabelBackground,
				face:       basicfont.Face7x13,
			}
		default:
			err := fmt.Errorf("unknown overlay %s", name)
			logf(LogError, "Unknown overlay requested: %s", name)
			return nil, err
		}
		overlays = append(overlays, o)
		logf(LogDebug, "Built overlay '%s'", name)
	}

	return overlays, nil
}

// parseRect parses "x,y,w,h".
func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("invalid rectangle %q: want "+
			"x,y,w,h", s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid rectangle %q: %w",
				s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid rectangle %q: width "+
			"and height must be positive", s)
	}

	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}

// parseColor accepts a named color or a #rrggbb hex color.
func parseColor(s string) (nv12.YUV, error) {
	if c, ok := nv12.ColorByName(s); ok {
		return c, nil
	}

	hex, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return nv12.YUV{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return nv12.YUVModel.Convert(hex).(nv12.YUV), nil
}
