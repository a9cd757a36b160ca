package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"github.com/expomap/boothfinder/internal/geometry"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayOptions controls how booths are drawn onto the floor plan.
type OverlayOptions struct {
	BoxColor       color.Color
	HighlightColor color.Color
	Thickness      int
	DrawLabels     bool
}

// DefaultOverlayOptions mirrors the original annotated rendering: red boxes,
// yellow highlight, confidence and name labels.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		BoxColor:       color.RGBA{255, 0, 0, 255},
		HighlightColor: color.RGBA{255, 200, 0, 255},
		Thickness:      3,
		DrawLabels:     true,
	}
}

// RenderOverlay draws booth boxes and labels over the image and returns an
// RGBA copy. The highlighted booth, if any, is drawn last and thicker so it
// reads on top of neighbors.
func RenderOverlay(img image.Image, booths []Booth, opt OverlayOptions) *image.RGBA {
	if img == nil {
		return nil
	}
	if opt.BoxColor == nil {
		opt.BoxColor = color.RGBA{255, 0, 0, 255}
	}
	if opt.HighlightColor == nil {
		opt.HighlightColor = opt.BoxColor
	}
	if opt.Thickness < 1 {
		opt.Thickness = 1
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}

	var highlighted *Booth
	for i := range booths {
		if booths[i].Highlighted {
			highlighted = &booths[i]
			continue
		}
		drawBooth(dst, booths[i], opt.BoxColor, opt.Thickness, opt.DrawLabels)
	}
	if highlighted != nil {
		drawBooth(dst, *highlighted, opt.HighlightColor, opt.Thickness+1, opt.DrawLabels)
	}
	return dst
}

func drawBooth(dst *image.RGBA, b Booth, col color.Color, thickness int, labels bool) {
	rect := b.BoundingBox.ToRect(dst.Bounds())
	geometry.DrawRect(dst, rect, col, thickness)
	if !labels {
		return
	}
	label := fmt.Sprintf("%.1f", b.Confidence)
	if b.BoothName != "" {
		label = b.BoothName + " " + label
	}
	drawLabel(dst, label, rect.Min.X, rect.Min.Y-2, col)
}

// drawLabel renders small text just above the given position, clamped into
// the image.
func drawLabel(dst *image.RGBA, text string, x, y int, col color.Color) {
	face := basicfont.Face7x13
	if y < face.Metrics().Ascent.Ceil() {
		y = face.Metrics().Ascent.Ceil()
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
