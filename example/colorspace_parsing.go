package main

import (
	"fmt"

	"github.com/GreatValueCreamSoda/gonv12"
	"github.com/GreatValueCreamSoda/gopixfmts"
)

// Does nothing but convert a ffms2 frame description into a nv12.Colorspace

func getVideoColorspace(video *videoSource) (nv12.Colorspace, error) {
	logf(LogInfo, "Determining colorspace from video properties")

	var colorspace nv12.Colorspace

	colorspace.Width = int(video.firstFrame.ScaledWidth)
	colorspace.Height = int(video.firstFrame.ScaledHeight)
	if colorspace.Width <= 0 || colorspace.Height <= 0 {
		colorspace.Width = int(video.firstFrame.EncodedWidth)
		colorspace.Height = int(video.firstFrame.EncodedHeight)
	}

	logf(LogDebug, "Video dimensions: %dx%d", colorspace.Width,
		colorspace.Height)

	videoPixelFormat, err := gopixfmts.PixFmtDescGet(gopixfmts.PixelFormat(
		video.firstFrame.ConvertedPixelFormat))
	if err != nil {
		logf(LogError, "Failed to get pixel format descriptor for Converted"+
			"PixelFormat=%d: %v", video.firstFrame.ConvertedPixelFormat, err)
		return colorspace, err
	}

	logf(LogDebug, "Pixel format: %s", videoPixelFormat.Name())

	if videoPixelFormat.Name() != "nv12" {
		logf(LogError, "Decoder produced %s instead of nv12",
			videoPixelFormat.Name())
		return colorspace, fmt.Errorf("pixel format %s: %w",
			videoPixelFormat.Name(),
			nv12.ExceptionCodeUnsupportedLayout.GetError())
	}

	comp, err := videoPixelFormat.Component(0)
	if err != nil {
		logf(LogError, "Failed to get component 0 from pixel format: %v", err)
		return colorspace, err
	}
	if comp.Depth != 8 {
		logf(LogError, "Unsupported bit depth %d in pixel format %s",
			comp.Depth, videoPixelFormat.Name())
		return colorspace, nv12.ExceptionCodeUnsupportedLayout.GetError()
	}
	logf(LogDebug, "Bit depth determined: %d-bit", comp.Depth)

	if video.firstFrame.ColorRange == int(gopixfmts.ColorRangeMPEG) ||
		video.firstFrame.ColorRange == 0 {
		colorspace.ColorRange = nv12.ColorRangeLimited
		logf(LogDebug, "Color range: Limited (MPEG/TV range)")
	} else {
		colorspace.ColorRange = nv12.ColorRangeFull
		logf(LogDebug, "Color range: Full (PC range)")
	}

	colorspace.ChromaSubsamplingHeight = videoPixelFormat.Log2ChromaH()
	colorspace.ChromaSubsamplingWidth = videoPixelFormat.Log2ChromaW()
	logf(LogDebug, "Chroma subsampling: log2 W/H = %d/%d",
		colorspace.ChromaSubsamplingWidth, colorspace.ChromaSubsamplingHeight)

	if video.firstFrame.ChromaLocation > 0 {
		// ffms2 counts from 1 = left, the same order as nv12.ChromaLocation.
		colorspace.ChromaLocation = nv12.ChromaLocation(
			video.firstFrame.ChromaLocation - 1)
		logf(LogDebug, "Chroma location: explicit value %d",
			video.firstFrame.ChromaLocation)
	} else {
		colorspace.ChromaLocation = nv12.ChromaLocationLeft
		logf(LogDebug, "Chroma location: defaulting to left")
	}

	if videoPixelFormat.Flags()&uint64(gopixfmts.PixFmtFlagRGB) == 0 {
		colorspace.ColorFamily = nv12.ColorFamilyYUV
		logf(LogDebug, "Color family: YUV")
	} else {
		colorspace.ColorFamily = nv12.ColorFamilyRGB
		logf(LogDebug, "Color family: RGB")
	}

	if exception := colorspace.Validate(); !exception.IsNone() {
		logf(LogError, "Colorspace rejected: %v", exception.GetError())
		return colorspace, exception.GetError()
	}

	logf(LogInfo, "Colorspace determined successfully: %dx%d %v-bit %s",
		colorspace.Width, colorspace.Height, comp.Depth,
		videoPixelFormat.Name())

	return colorspace, nil
}
