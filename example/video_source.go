package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GreatValueCreamSoda/gonv12"
	"github.com/klauspost/compress/zstd"
)

// frameSource yields tightly packed NV12 frames.
type frameSource interface {
	Colorspace() nv12.Colorspace
	// NumFrames returns the number of frames left, or -1 if unknown.
	NumFrames() int
	// ReadFrame fills dst with the next frame. It returns io.EOF after the
	// last frame.
	ReadFrame(dst []byte) error
	Close() error
}

// rawSource reads back-to-back NV12 frames from a file, decompressing it
// with zstd when the name ends in .zst.
type rawSource struct {
	file       *os.File
	decoder    *zstd.Decoder
	reader     io.Reader
	colorspace nv12.Colorspace
	numFrames  int
}

func openRawSource(path string, width, height, startIdx int) (*rawSource,
	error) {
	var cs nv12.Colorspace
	cs.SetDefaults(width, height)
	if exception := cs.Validate(); !exception.IsNone() {
		return nil, exception.GetError()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src := &rawSource{file: f, colorspace: cs, numFrames: -1}

	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		src.decoder = dec
		src.reader = dec
		logf(LogDebug, "Reading zstd compressed frames from %s", path)
	} else {
		src.reader = bufio.NewReaderSize(f, cs.FrameSize())
		if info, err := f.Stat(); err == nil {
			src.numFrames = int(info.Size())/cs.FrameSize() - startIdx
			if src.numFrames < 0 {
				src.numFrames = 0
			}
		}
	}

	if startIdx > 0 {
		skip := int64(startIdx) * int64(cs.FrameSize())
		if _, err := io.CopyN(io.Discard, src.reader, skip); err != nil {
			src.Close()
			return nil, fmt.Errorf("skip to frame %d: %w", startIdx, err)
		}
		logf(LogDebug, "Skipped %d frames", startIdx)
	}

	return src, nil
}

func (s *rawSource) Colorspace() nv12.Colorspace { return s.colorspace }

func (s *rawSource) NumFrames() int { return s.numFrames }

// ReadFrame fills the provided buffer with one frame. An incomplete trailing
// frame is treated as EOF.
func (s *rawSource) ReadFrame(dst []byte) error {
	if len(dst) != s.colorspace.FrameSize() {
		return fmt.Errorf("buffer size %d does not match frame size %d",
			len(dst), s.colorspace.FrameSize())
	}

	_, err := io.ReadFull(s.reader, dst)
	if err == io.ErrUnexpectedEOF {
		return io.EOF
	}
	return err
}

func (s *rawSource) Close() error {
	if s.decoder != nil {
		s.decoder.Close()
	}
	return s.file.Close()
}

// frameSink consumes NV12 frames in order.
type frameSink interface {
	WriteFrame(src []byte) error
	Close() error
}

// rawSink writes back-to-back NV12 frames to a file, compressing with zstd
// when the name ends in .zst.
type rawSink struct {
	file    *os.File
	encoder *zstd.Encoder
	writer  *bufio.Writer
}

func createRawSink(path string) (*rawSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	sink := &rawSink{file: f}
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		sink.encoder = enc
		sink.writer = bufio.NewWriter(enc)
		logf(LogDebug, "Writing zstd compressed frames to %s", path)
	} else {
		sink.writer = bufio.NewWriter(f)
	}
	return sink, nil
}

func (s *rawSink) WriteFrame(src []byte) error {
	_, err := s.writer.Write(src)
	return err
}

func (s *rawSink) Close() error {
	if err := s.writer.Flush(); err != nil {
		s.file.Close()
		return err
	}
	if s.encoder != nil {
		if err := s.encoder.Close(); err != nil {
			s.file.Close()
			return err
		}
	}
	return s.file.Close()
}
