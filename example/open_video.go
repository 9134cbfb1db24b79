package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/GreatValueCreamSoda/gonv12"
	ffms "github.com/GreatValueCreamSoda/goffms2"
)

// pixFmtNV12 is AV_PIX_FMT_NV12.
const pixFmtNV12 = 23

// videoSource decodes a video through ffms2 and converts every frame to
// NV12 at the encoded size.
type videoSource struct {
	video      *ffms.VideoSource
	props      *ffms.VideoProperties
	firstFrame *ffms.Frame
	colorspace nv12.Colorspace

	next, end int
}

func openVideoSource(path string, startIdx int) (*videoSource, error) {
	indexer, _, err := ffms.CreateIndexer(path)
	if err != nil {
		return nil, err
	}

	index, _, err := indexer.DoIndexing(ffms.IEHAbort)
	if err != nil {
		return nil, err
	}

	track, _, err := index.GetFirstTrackOfType(ffms.TypeVideo)
	if err != nil {
		return nil, err
	}

	video, _, err := ffms.CreateVideoSource(path, index, track,
		runtime.NumCPU()/2, ffms.SeekNormal)
	if err != nil {
		return nil, err
	}

	props, err := video.GetVideoProperties()
	if err != nil {
		return nil, err
	}

	firstFrame, _, err := video.GetFrame(0)
	if err != nil {
		return nil, err
	}

	video.SetOutputFormatV2([]int{pixFmtNV12}, firstFrame.EncodedWidth,
		firstFrame.EncodedHeight, ffms.ResizerBicubic)

	firstFrame, _, err = video.GetFrame(0)
	if err != nil {
		return nil, err
	}

	src := &videoSource{
		video:      video,
		props:      &props,
		firstFrame: &firstFrame,
		next:       startIdx,
		end:        props.NumFrames,
	}

	if src.colorspace, err = getVideoColorspace(src); err != nil {
		return nil, err
	}
	if startIdx > props.NumFrames {
		src.next = props.NumFrames
	}

	return src, nil
}

func (s *videoSource) Colorspace() nv12.Colorspace { return s.colorspace }

func (s *videoSource) NumFrames() int { return s.end - s.next }

// ReadFrame decodes the next frame and packs its padded planes into dst.
func (s *videoSource) ReadFrame(dst []byte) error {
	if s.next >= s.end {
		return io.EOF
	}

	src, _, err := s.video.GetFrame(s.next)
	if err != nil {
		return err
	}

	cs := &s.colorspace
	exception := nv12.PackNV12(dst, src.Data[0], src.Data[1],
		int(src.Linesize[0]), int(src.Linesize[1]), cs.Width, cs.Height)
	if !exception.IsNone() {
		return fmt.Errorf("frame %d: %w", s.next, exception.GetError())
	}

	s.next++
	return nil
}

// Close is a no-op; ffms2 sources are released with the process.
func (s *videoSource) Close() error { return nil }
