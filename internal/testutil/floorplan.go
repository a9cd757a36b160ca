// Package testutil generates synthetic floor plan images for tests: white
// canvases with black booth outlines and optional text labels, drawn the way
// venue maps are typically rendered.
package testutil

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FloorPlan is a synthetic floor plan under construction.
type FloorPlan struct {
	img *image.RGBA
	// OutlineThickness is the booth wall thickness in pixels.
	OutlineThickness int
	// Ink is the stroke and label color.
	Ink color.Color
}

// NewFloorPlan creates a white canvas of the given size.
func NewFloorPlan(width, height int) *FloorPlan {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &FloorPlan{
		img:              img,
		OutlineThickness: 2,
		Ink:              color.Black,
	}
}

// AddBooth draws a rectangular booth outline and, when label is non-empty,
// renders the label centered inside the booth.
func (f *FloorPlan) AddBooth(x, y, w, h int, label string) *FloorPlan {
	f.drawOutline(x, y, w, h)
	if label != "" {
		face := basicfont.Face7x13
		tw := font.MeasureString(face, label).Ceil()
		lx := x + (w-tw)/2
		ly := y + h/2 + face.Metrics().Ascent.Ceil()/2
		f.AddText(label, lx, ly)
	}
	return f
}

// AddText renders text with its baseline at the given position.
func (f *FloorPlan) AddText(text string, x, y int) *FloorPlan {
	d := &font.Drawer{
		Dst:  f.img,
		Src:  image.NewUniform(f.Ink),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
	return f
}

// FillRect draws a solid block, useful as a non-booth distractor.
func (f *FloorPlan) FillRect(x, y, w, h int) *FloorPlan {
	draw.Draw(f.img, image.Rect(x, y, x+w, y+h), image.NewUniform(f.Ink), image.Point{}, draw.Src)
	return f
}

// Image returns the rendered floor plan.
func (f *FloorPlan) Image() *image.RGBA {
	return f.img
}

func (f *FloorPlan) drawOutline(x, y, w, h int) {
	t := f.OutlineThickness
	if t < 1 {
		t = 1
	}
	ink := image.NewUniform(f.Ink)
	// Top, bottom, left, right walls.
	draw.Draw(f.img, image.Rect(x, y, x+w, y+t), ink, image.Point{}, draw.Src)
	draw.Draw(f.img, image.Rect(x, y+h-t, x+w, y+h), ink, image.Point{}, draw.Src)
	draw.Draw(f.img, image.Rect(x, y, x+t, y+h), ink, image.Point{}, draw.Src)
	draw.Draw(f.img, image.Rect(x+w-t, y, x+w, y+h), ink, image.Point{}, draw.Src)
}
