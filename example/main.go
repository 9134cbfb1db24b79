// Command nv12overlay draws a box and a label onto every frame of an NV12
// stream without converting the frames to RGB.
//
// Frames come either from a raw NV12 file (optionally zstd compressed) or
// from any video ffms2 can decode. They are written back as raw NV12, or
// piped into ffmpeg when the output names a video container.
//
// Usage:
//
//	nv12overlay -i in.yuv -w 1920 -h 1080 -o out.yuv --rect 100,100,200,100 --text "frame {frame}"
//	nv12overlay --video in.mkv -o out.yuv.zst --overlays box,label,invert --half
//	nv12overlay --video in.mkv -o out.mkv --ffmpeg-args "-c:v libx264 -crf 18 -pix_fmt yuv420p"
//
// Inspect the result with:
//
//	ffmpeg -s 1920x1080 -pix_fmt nv12 -i out.yuv out.png
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

type LoggingLevel int

const (
	LogError LoggingLevel = iota
	LogInfo
	LogDebug
)

var currentLogLevel = LogInfo

const logPrefixWidth = 9 // Fits "[DEBUG] "

func logf(level LoggingLevel, format string, args ...any) {
	if level > currentLogLevel {
		return
	}

	prefix := "[INFO] "
	switch level {
	case LogDebug:
		prefix = "[DEBUG]"
	case LogError:
		prefix = "[ERROR]"
	}

	padded := fmt.Sprintf("%-*s", logPrefixWidth, prefix)

	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	log.Printf("%s%s", padded, msg)
}

func parseLogLevel(s string) (LoggingLevel, error) {
	switch strings.ToLower(s) {
	case "error":
		return LogError, nil
	case "info":
		return LogInfo, nil
	case "debug":
		return LogDebug, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q", s)
	}
}

// initCLI parses all flags into an OverlayConfig.
func initCLI(args []string) (OverlayConfig, error) {
	var cfg OverlayConfig
	var rect, color, labelBg, overlays, ffmpegFlags, logLevelStr string

	fs := pflag.NewFlagSet("nv12overlay", pflag.ContinueOnError)

	fs.StringVarP(
		&cfg.InputPath, "input", "i", "", "raw NV12 input file (.zst for "+
			"zstd compressed)")

	fs.StringVar(
		&cfg.VideoPath, "video", "", "video file decoded through ffms2 "+
			"instead of --input")

	fs.StringVarP(
		&cfg.OutputPath, "output", "o", "", "output file: raw NV12, .zst "+
			"for zstd compressed NV12 or a video container (required)")

	fs.IntVarP(&cfg.Width, "width", "w", 0, "frame width for --input")

	fs.IntVarP(&cfg.Height, "height", "h", 0, "frame height for --input")

	fs.IntVar(&cfg.StartIdx, "start", 0, "index of the first frame to process")

	fs.IntVar(
		&cfg.MaxFrames, "frames", 0, "maximum number of frames to "+
			"process (0 = all)")

	fs.IntVar(&cfg.WorkerCount, "workers", 3, "number of drawing workers")

	fs.StringVar(
		&overlays, "overlays", "box,label", "comma-separated list of "+
			"overlays: box, fill, label, invert")

	fs.StringVar(&rect, "rect", "101,100,201,100", "overlay rectangle x,y,w,h "+
		"in full resolution pixels")

	fs.StringVar(
		&cfg.Text, "text", "frame {frame}", "label text, {frame} is "+
			"replaced by the frame index")

	fs.StringVar(
		&color, "color", "green", "overlay color: black, white, red, green, "+
			"cyan, blue, yellow or #rrggbb")

	fs.StringVar(
		&labelBg, "label-bg", "", "label background color (empty = none)")

	fs.BoolVar(
		&cfg.Half, "half", false, "draw through the half resolution view "+
			"so every stroke stays 2x2 block aligned")

	fs.Float64Var(
		&cfg.FrameRate, "fps", 24, "frame rate passed to ffmpeg for encoded "+
			"outputs")

	fs.StringVar(
		&ffmpegFlags, "ffmpeg-args", "-pix_fmt yuv420p", "extra ffmpeg "+
			"output arguments for .mp4, .mkv, .mov, .webm, .avi or .y4m "+
			"outputs")

	fs.BoolVar(
		&cfg.Stats, "stats", false, "print per-frame timing statistics")

	fs.StringVar(
		&logLevelStr, "loglevel", "info", "log level: error, info, debug")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return cfg, err
	}
	currentLogLevel = level

	if cfg.Rect, err = parseRect(rect); err != nil {
		return cfg, err
	}
	if cfg.Color, err = parseColor(color); err != nil {
		return cfg, err
	}
	if labelBg != "" {
		bg, err := parseColor(labelBg)
		if err != nil {
			return cfg, err
		}
		cfg.LabelBackground = &bg
	}

	cfg.FFmpegFlags = strings.Fields(ffmpegFlags)

	for _, o := range strings.Split(overlays, ",") {
		if o = strings.TrimSpace(strings.ToLower(o)); o != "" {
			cfg.Overlays = append(cfg.Overlays, o)
		}
	}

	return cfg, nil
}

func main() {
	log.SetFlags(log.LstdFlags)

	cfg, err := initCLI(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	fo, err := NewFrameOverlay(cfg)
	if err != nil {
		logf(LogError, "Failed to create overlay: %v", err)
		os.Exit(1)
	}

	logf(LogInfo, "Drawing %s on frames of %s with %d workers",
		strings.Join(cfg.Overlays, ","), fo.colorspaceString(),
		cfg.WorkerCount)

	runErr := fo.Run(context.Background())
	closeErr := fo.Close()
	if runErr != nil {
		logf(LogError, "Overlay failed: %v", runErr)
		os.Exit(1)
	}
	if closeErr != nil {
		logf(LogError, "Failed to finish output: %v", closeErr)
		os.Exit(1)
	}

	logf(LogInfo, "Wrote %d frames to %s", fo.FramesWritten(), cfg.OutputPath)

	if cfg.Stats {
		printSummary(fo.Timings())
	}
}

func prettyMap[K comparable, V any](m map[K]V) string {
	if len(m) == 0 {
		return "{}"
	}

	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v=%v", k, m[k])
	}
	sb.WriteString("}")
	return sb.String()
}
