package main

import (
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ffmpegSink pipes raw NV12 frames into an ffmpeg process which encodes
// them into outputPath.
type ffmpegSink struct {
	ffmpegCmd  *exec.Cmd
	ffmpegPipe io.WriteCloser
	videoPath  string
}

// encodedExtensions are output names handed to ffmpeg instead of being
// written as raw frames.
var encodedExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".webm": true, ".avi": true,
	".y4m": true,
}

func isEncodedOutput(path string) bool {
	return encodedExtensions[strings.ToLower(filepath.Ext(path))]
}

func ffmpegArgs(width, height int, frameRate float64, settings []string,
	outputPath string) []string {
	frameRateString := strconv.FormatFloat(frameRate, 'f', 2, 64)
	resolution := fmt.Sprintf("%dx%d", width, height)

	return append([]string{
		"-y", "-f", "rawvideo", "-pixel_format", "nv12", "-s", resolution,
		"-r", frameRateString, "-i", "-"}, append(settings, outputPath)...)
}

func newFFmpegSink(width, height int, frameRate float64, settings []string,
	outputPath string) (*ffmpegSink, error) {
	var sink ffmpegSink
	sink.videoPath = outputPath

	sink.ffmpegCmd = exec.Command("ffmpeg", ffmpegArgs(width, height,
		frameRate, settings, outputPath)...)

	var err error

	sink.ffmpegPipe, err = sink.ffmpegCmd.StdinPipe()

	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin pipe failed: %w", err)
	}

	if err = sink.ffmpegCmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start failed: %w", err)
	}

	logf(LogInfo, "Encoded video will be saved to %s", outputPath)

	return &sink, nil
}

func (s *ffmpegSink) WriteFrame(src []byte) error {
	_, err := s.ffmpegPipe.Write(src)
	if err != nil {
		logf(LogError, "Failed to write frame to ffmpeg: %v", err)
	}
	return err
}

func (s *ffmpegSink) Close() error {
	s.ffmpegPipe.Close()
	if err := s.ffmpegCmd.Wait(); err != nil {
		logf(LogError, "FFmpeg failed to save video (%s): %v", s.videoPath,
			err)
		return err
	}
	logf(LogInfo, "Video saved to path: \"%s\"", s.videoPath)
	return nil
}
