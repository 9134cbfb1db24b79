package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/GreatValueCreamSoda/gonv12"
	"golang.org/x/image/font/basicfont"
)

func TestMain(m *testing.M) {
	currentLogLevel = LogError
	os.Exit(m.Run())
}

// writeFrames writes count width x height frames whose luma is i*10+1 for
// frame i and whose chroma is neutral.
func writeFrames(t *testing.T, path string, width, height, count int) {
	t.Helper()
	sink, err := createRawSink(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := range count {
		buf := make([]byte, nv12.FrameSize(width, height))
		for j := range buf {
			if j < width*height {
				buf[j] = byte(i*10 + 1)
			} else {
				buf[j] = 0x80
			}
		}
		if err := sink.WriteFrame(buf); err != nil {
			t.Fatal(err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
}

func readAll(t *testing.T, src frameSource) [][]byte {
	t.Helper()
	var frames [][]byte
	for {
		buf := make([]byte, src.Colorspace().FrameSize())
		err := src.ReadFrame(buf)
		if errors.Is(err, io.EOF) {
			return frames
		}
		if err != nil {
			t.Fatal(err)
		}
		frames = append(frames, buf)
	}
}

func Test_parseRect(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    image.Rectangle
		wantErr bool
	}{
		{in: "101,100,201,100", want: image.Rect(101, 100, 302, 200)},
		{in: " 0, 0, 4, 2", want: image.Rect(0, 0, 4, 2)},
		{in: "-4,-4,8,8", want: image.Rect(-4, -4, 4, 4)},
		{in: "1,2,3", wantErr: true},
		{in: "1,2,3,x", wantErr: true},
		{in: "1,2,0,4", wantErr: true},
		{in: "1,2,4,-1", wantErr: true},
	} {
		got, err := parseRect(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseRect(%q): expected an error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseRect(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseRect(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func Test_parseColor(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want nv12.YUV
	}{
		{in: "green", want: nv12.Green},
		{in: "White", want: nv12.White},
		{in: "#ff0000", want: nv12.Red},
		{in: "#000000", want: nv12.YUV{0, 128, 128}},
	} {
		got, err := parseColor(tc.in)
		if err != nil {
			t.Errorf("parseColor(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := parseColor("magenta-ish"); err == nil {
		t.Error("expected an error for an unknown color")
	}
}

func Test_initCLI_Defaults(t *testing.T) {
	cfg, err := initCLI([]string{"-i", "in.yuv", "-w", "64", "-h", "32",
		"-o", "out.yuv"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { currentLogLevel = LogError }()

	if cfg.InputPath != "in.yuv" || cfg.OutputPath != "out.yuv" {
		t.Errorf("paths = %q, %q", cfg.InputPath, cfg.OutputPath)
	}
	if cfg.Width != 64 || cfg.Height != 32 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
	if !reflect.DeepEqual(cfg.Overlays, []string{"box", "label"}) {
		t.Errorf("overlays = %v", cfg.Overlays)
	}
	if cfg.Rect != image.Rect(101, 100, 302, 200) {
		t.Errorf("rect = %v", cfg.Rect)
	}
	if cfg.Color != nv12.Green {
		t.Errorf("color = %v", cfg.Color)
	}
	if cfg.LabelBackground != nil {
		t.Errorf("label background = %v, want none", *cfg.LabelBackground)
	}
	if !reflect.DeepEqual(cfg.FFmpegFlags, []string{"-pix_fmt", "yuv420p"}) {
		t.Errorf("ffmpeg flags = %v", cfg.FFmpegFlags)
	}
}

func Test_initCLI_Overrides(t *testing.T) {
	cfg, err := initCLI([]string{"--video", "in.mkv", "-o", "out.mkv",
		"--overlays", " Box, invert ,", "--color", "#0000ff",
		"--label-bg", "black", "--half", "--loglevel", "error"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { currentLogLevel = LogError }()

	if !reflect.DeepEqual(cfg.Overlays, []string{"box", "invert"}) {
		t.Errorf("overlays = %v", cfg.Overlays)
	}
	if cfg.Color != nv12.Blue {
		t.Errorf("color = %v", cfg.Color)
	}
	if cfg.LabelBackground == nil || *cfg.LabelBackground != nv12.Black {
		t.Errorf("label background = %v", cfg.LabelBackground)
	}
	if !cfg.Half {
		t.Error("expected --half to be set")
	}

	for _, args := range [][]string{
		{"--loglevel", "loud"},
		{"--rect", "1,2"},
		{"--color", "nope"},
		{"--label-bg", "nope"},
		{"--no-such-flag"},
	} {
		if _, err := initCLI(args); err == nil {
			t.Errorf("initCLI(%v): expected an error", args)
		}
	}
}

func Test_OverlayConfig_Validate(t *testing.T) {
	base := func() OverlayConfig {
		return OverlayConfig{
			InputPath: "in.yuv", OutputPath: "out.yuv", Width: 8, Height: 8,
			WorkerCount: 2, Overlays: []string{"box"},
		}
	}

	cfg := base()
	cfg.WorkerCount = 0
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.WorkerCount != 1 {
		t.Errorf("WorkerCount = %d, want 1", cfg.WorkerCount)
	}

	for name, mutate := range map[string]func(*OverlayConfig){
		"no_input":      func(c *OverlayConfig) { c.InputPath = "" },
		"two_inputs":    func(c *OverlayConfig) { c.VideoPath = "in.mkv" },
		"no_output":     func(c *OverlayConfig) { c.OutputPath = "" },
		"odd_width":     func(c *OverlayConfig) { c.Width = 7 },
		"zero_height":   func(c *OverlayConfig) { c.Height = 0 },
		"negative_skip": func(c *OverlayConfig) { c.StartIdx = -1 },
		"no_overlays":   func(c *OverlayConfig) { c.Overlays = nil },
		"encoded_no_fps": func(c *OverlayConfig) {
			c.OutputPath = "out.mp4"
		},
	} {
		cfg := base()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", name)
		}
	}
}

func Test_OverlayConfig_BuildOverlays(t *testing.T) {
	cfg := OverlayConfig{
		Overlays: []string{"box", "fill", "invert", "label"},
		Rect:     image.Rect(10, 20, 30, 40),
		Text:     "x",
		Color:    nv12.Red,
	}

	overlays, err := cfg.BuildOverlays()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, o := range overlays {
		names = append(names, o.Name())
	}
	if !reflect.DeepEqual(names, cfg.Overlays) {
		t.Errorf("names = %v, want %v", names, cfg.Overlays)
	}
	if got := overlays[3].(*labelOverlay).origin; got != image.Pt(12, 22) {
		t.Errorf("label origin = %v, want (12,22)", got)
	}

	cfg.Half = true
	overlays, err = cfg.BuildOverlays()
	if err != nil {
		t.Fatal(err)
	}
	if got := overlays[0].(*boxOverlay).rect; got != image.Rect(5, 10, 15, 20) {
		t.Errorf("half rect = %v", got)
	}

	cfg.Overlays = []string{"box", "sparkle"}
	if _, err := cfg.BuildOverlays(); err == nil {
		t.Error("expected an error for an unknown overlay")
	}
}

func Test_OverlayConfig_FrameCount(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.yuv")
	writeFrames(t, path, 4, 2, 5)

	src, err := openRawSource(path, 4, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	for _, tc := range []struct{ maxFrames, want int }{
		{0, 5}, {3, 3}, {9, 5},
	} {
		cfg := OverlayConfig{MaxFrames: tc.maxFrames}
		got, err := cfg.FrameCount(src)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("MaxFrames=%d: got %d frames, want %d", tc.maxFrames,
				got, tc.want)
		}
	}
}

func Test_labelOverlay(t *testing.T) {
	img, exception := nv12.FromBytes(make([]byte, nv12.FrameSize(64, 32)),
		64, 32)
	if !exception.IsNone() {
		t.Fatal(exception.GetError())
	}

	empty := &labelOverlay{text: "", color: nv12.White,
		face: basicfont.Face7x13}
	empty.Apply(img, 3)
	if bytes.Count(img.Data(), []byte{0}) != len(img.Data()) {
		t.Fatal("empty label modified the image")
	}

	bg := nv12.Blue
	label := &labelOverlay{origin: image.Pt(0, 0), text: "{frame}",
		color: nv12.White, background: &bg, face: basicfont.Face7x13}
	label.Apply(img, 7)

	// The background spans the 7x13 cell of the single digit, which rounds
	// out to whole blocks.
	if got := img.GetPixel(0, 12); got != nv12.Blue && got != nv12.White {
		t.Errorf("pixel inside the label = %v", got)
	}
	if got := img.GetPixel(8, 0); got != (nv12.YUV{}) {
		t.Errorf("pixel right of the label = %v, want untouched", got)
	}
	if got := img.GetPixel(0, 14); got != (nv12.YUV{}) {
		t.Errorf("pixel below the label = %v, want untouched", got)
	}

	var white int
	for y := 0; y < 13; y++ {
		for x := 0; x < 7; x++ {
			if img.GetPixel(x, y) == nv12.White {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("label drew no glyph pixels")
	}
}

func Test_RawSource_Plain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.yuv")
	writeFrames(t, path, 4, 2, 4)

	src, err := openRawSource(path, 4, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.NumFrames() != 3 {
		t.Errorf("NumFrames() = %d, want 3", src.NumFrames())
	}
	frames := readAll(t, src)
	if len(frames) != 3 {
		t.Fatalf("read %d frames, want 3", len(frames))
	}
	for i, f := range frames {
		if want := byte((i+1)*10 + 1); f[0] != want {
			t.Errorf("frame %d luma = %d, want %d", i, f[0], want)
		}
	}

	if err := src.ReadFrame(make([]byte, 3)); err == nil {
		t.Error("expected an error for a mis-sized buffer")
	}
}

func Test_RawSource_Zstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.yuv.zst")
	writeFrames(t, path, 4, 2, 3)

	src, err := openRawSource(path, 4, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.NumFrames() != -1 {
		t.Errorf("NumFrames() = %d, want -1 for compressed input",
			src.NumFrames())
	}
	frames := readAll(t, src)
	if len(frames) != 1 || frames[0][0] != 21 {
		t.Fatalf("frames = %v, want the single frame with luma 21", frames)
	}
}

func Test_RawSource_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.yuv")
	writeFrames(t, path, 4, 2, 1)

	if _, err := openRawSource(path, 5, 2, 0); err == nil {
		t.Error("expected an error for odd dimensions")
	}
	if _, err := openRawSource(path+".missing", 4, 2, 0); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := openRawSource(path, 4, 2, 3); err == nil {
		t.Error("expected an error when skipping past the end")
	}
}

func Test_ffmpegArgs(t *testing.T) {
	got := ffmpegArgs(1920, 1080, 23.976, []string{"-c:v", "libx264"},
		"out.mkv")
	want := []string{"-y", "-f", "rawvideo", "-pixel_format", "nv12", "-s",
		"1920x1080", "-r", "23.98", "-i", "-", "-c:v", "libx264", "out.mkv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ffmpegArgs() = %v, want %v", got, want)
	}

	for path, want := range map[string]bool{
		"out.mkv": true, "OUT.MP4": true, "out.yuv": false,
		"out.yuv.zst": false, "out": false,
	} {
		if got := isEncodedOutput(path); got != want {
			t.Errorf("isEncodedOutput(%q) = %t, want %t", path, got, want)
		}
	}
}

func Test_FrameOverlay_Run(t *testing.T) {
	for _, tc := range []struct {
		name   string
		output string
		half   bool
	}{
		{name: "raw", output: "out.yuv"},
		{name: "zstd", output: "out.yuv.zst"},
		{name: "half", output: "out.yuv", half: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			in := filepath.Join(dir, "in.yuv")
			out := filepath.Join(dir, tc.output)
			writeFrames(t, in, 8, 8, 6)

			fo, err := NewFrameOverlay(OverlayConfig{
				InputPath: in, OutputPath: out, Width: 8, Height: 8,
				StartIdx: 1, MaxFrames: 4, WorkerCount: 3,
				Overlays: []string{"fill"}, Rect: image.Rect(0, 0, 4, 4),
				Color: nv12.White, Half: tc.half,
			})
			if err != nil {
				t.Fatal(err)
			}
			runErr := fo.Run(t.Context())
			if err := fo.Close(); err != nil {
				t.Fatal(err)
			}
			if runErr != nil {
				t.Fatal(runErr)
			}

			if fo.FramesWritten() != 4 {
				t.Errorf("FramesWritten() = %d, want 4", fo.FramesWritten())
			}
			if got := len(fo.Timings()["draw_ms"]); got != 4 {
				t.Errorf("%d draw timings, want 4", got)
			}

			src, err := openRawSource(out, 8, 8, 0)
			if err != nil {
				t.Fatal(err)
			}
			defer src.Close()
			frames := readAll(t, src)
			if len(frames) != 4 {
				t.Fatalf("output has %d frames, want 4", len(frames))
			}

			for i, f := range frames {
				img, exception := nv12.FromBytes(f, 8, 8)
				if !exception.IsNone() {
					t.Fatal(exception.GetError())
				}
				want := byte((i+1)*10 + 1)
				for y := range 8 {
					for x := range 8 {
						got := img.RawLuma(x, y)
						if x < 4 && y < 4 {
							if got != 0xff {
								t.Fatalf("frame %d (%d,%d) = %d, want 255",
									i, x, y, got)
							}
						} else if got != want {
							t.Fatalf("frame %d (%d,%d) = %d, want %d", i,
								x, y, got, want)
						}
					}
				}
			}
		})
	}
}

func Test_FrameOverlay_Canceled(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.yuv")
	writeFrames(t, in, 8, 8, 4)

	fo, err := NewFrameOverlay(OverlayConfig{
		InputPath: in, OutputPath: filepath.Join(dir, "out.yuv"),
		Width: 8, Height: 8, WorkerCount: 2, Overlays: []string{"invert"},
		Rect: image.Rect(0, 0, 8, 8),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer fo.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := fo.Run(ctx); err == nil {
		t.Error("expected an error from a canceled run")
	}
}

func Test_summarize(t *testing.T) {
	s := summarize([]float64{4, 1, 3, 2})
	if s.min != 1 || s.max != 4 || s.avg != 2.5 || s.median != 2.5 {
		t.Errorf("summarize() = %+v", s)
	}
	if math.Abs(s.stddev-math.Sqrt(1.25)) > 1e-12 {
		t.Errorf("stddev = %f", s.stddev)
	}
}

func Test_pearsonCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	for _, tc := range []struct {
		y    []float64
		want float64
	}{
		{[]float64{2, 4, 6, 8}, 1},
		{[]float64{8, 6, 4, 2}, -1},
		{[]float64{5, 5, 5, 5}, 0},
		{[]float64{1, 2}, 0},
	} {
		if got := pearsonCorrelation(x, tc.y); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("pearsonCorrelation(%v) = %f, want %f", tc.y, got,
				tc.want)
		}
	}
}
