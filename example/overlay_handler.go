package main

import (
	"image"
	"strconv"
	"strings"

	"github.com/GreatValueCreamSoda/gonv12"
	"github.com/GreatValueCreamSoda/gonv12/drawing"
	"golang.org/x/image/font"
)

// OverlayHandler is the interface that every overlay must implement.
//
// Apply draws onto one frame. index is the frame's position in the source,
// which overlays may render. Handlers are shared by all workers, so Apply
// must not mutate the handler.
type OverlayHandler interface {
	Name() string
	Apply(img nv12.GenericImage, index int)
}

type boxOverlay struct {
	rect  image.Rectangle
	color nv12.YUV
}

func (o *boxOverlay) Name() string { return "box" }

func (o *boxOverlay) Apply(img nv12.GenericImage, _ int) {
	drawing.DrawHollowRect(img, o.rect, o.color)
}

type fillOverlay struct {
	rect  image.Rectangle
	color nv12.YUV
}

func (o *fillOverlay) Name() string { return "fill" }

func (o *fillOverlay) Apply(img nv12.GenericImage, _ int) {
	drawing.DrawFilledRect(img, o.rect, o.color)
}

type invertOverlay struct {
	rect image.Rectangle
}

func (o *invertOverlay) Name() string { return "invert" }

func (o *invertOverlay) Apply(img nv12.GenericImage, _ int) {
	drawing.InvertRect(img, o.rect)
}

type labelOverlay struct {
	origin     image.Point
	text       string
	color      nv12.YUV
	background *nv12.YUV
	face       font.Face
}

func (o *labelOverlay) Name() string { return "label" }

func (o *labelOverlay) Apply(img nv12.GenericImage, index int) {
	text := strings.ReplaceAll(o.text, "{frame}", strconv.Itoa(index))
	if text == "" {
		return
	}

	if o.background != nil {
		w, h := drawing.TextSize(o.face, text)
		drawing.DrawFilledRect(img, image.Rectangle{
			Min: o.origin,
			Max: o.origin.Add(image.Pt(w, h)),
		}, *o.background)
	}
	drawing.DrawText(img, o.color, o.origin.X, o.origin.Y, o.face, text)
}
