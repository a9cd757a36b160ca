package vision

import (
	"container/list"
	"context"
	"errors"
	"image"
	"log/slog"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/expomap/boothfinder/internal/geometry"
)

// RectangleFinder is a classical rectangle proposer for raster floor plans.
// It binarizes dark ink on a light background, extracts connected components,
// and scores each component's bounding box by how much of the component mass
// traces that box's border.
type RectangleFinder struct {
	// BinarizeLevel is the cutoff applied to the inverted grayscale image;
	// 0 derives a level from the mean luminance.
	BinarizeLevel uint8
	// BlurSigma smooths the inverted image before thresholding to close
	// single-pixel gaps in drawn walls. <= 0 disables smoothing.
	BlurSigma float64
}

// NewRectangleFinder returns a finder with defaults suitable for scanned
// floor plans.
func NewRectangleFinder() *RectangleFinder {
	return &RectangleFinder{BlurSigma: 1.0}
}

// componentStats accumulates per-component pixel statistics.
type componentStats struct {
	count  int
	border int
	minX   int
	minY   int
	maxX   int
	maxY   int
}

// Detect implements Detector.
func (f *RectangleFinder) Detect(ctx context.Context, img image.Image, cfg Config) ([]RawObservation, error) {
	if img == nil {
		return nil, errors.New("nil input image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("empty input image")
	}

	mask := f.binarize(img)
	comps := connectedComponents(mask, w, h)
	slog.Debug("Rectangle proposal pass", "components", len(comps), "width", w, "height", h)

	minSide := float64(w)
	if float64(h) < minSide {
		minSide = float64(h)
	}
	minSizePx := cfg.MinSize * minSide

	obs := make([]RawObservation, 0, len(comps))
	for _, c := range comps {
		bw := float64(c.maxX - c.minX + 1)
		bh := float64(c.maxY - c.minY + 1)
		if bw < minSizePx || bh < minSizePx {
			continue
		}
		short, long := bw, bh
		if short > long {
			short, long = long, short
		}
		if long > 0 && short/long < cfg.MinAspectRatio {
			continue
		}
		conf := rectangularity(c, bw, bh)
		if conf < cfg.MinConfidence {
			continue
		}
		obs = append(obs, observationFromBounds(c, w, h, conf))
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Confidence > obs[j].Confidence })
	if cfg.MaxObservations > 0 && len(obs) > cfg.MaxObservations {
		obs = obs[:cfg.MaxObservations]
	}
	return obs, nil
}

// binarize produces a foreground mask where dark ink becomes true.
func (f *RectangleFinder) binarize(img image.Image) *image.Gray {
	inverted := imaging.Invert(imaging.Grayscale(img))
	var src image.Image = inverted
	if f.BlurSigma > 0 {
		src = blur.Gaussian(inverted, f.BlurSigma)
	}
	level := f.BinarizeLevel
	if level == 0 {
		level = meanLuminanceLevel(src)
	}
	return segment.Threshold(src, level)
}

// meanLuminanceLevel picks a binarization level above the mean brightness so
// that thin dark strokes survive on noisy scans.
func meanLuminanceLevel(img image.Image) uint8 {
	b := img.Bounds()
	var sum, n uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			sum += uint64((r + g + bl) / 3 >> 8)
			n++
		}
	}
	if n == 0 {
		return 128
	}
	level := sum/n + 32
	if level > 250 {
		level = 250
	}
	return uint8(level)
}

// connectedComponents finds 4-connected foreground components in the mask.
func connectedComponents(mask *image.Gray, w, h int) []componentStats {
	visited := make([]bool, w*h)
	var comps []componentStats
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.GrayAt(x, y).Y == 0 || visited[y*w+x] {
				continue
			}
			comps = append(comps, traceComponent(mask, visited, w, h, x, y))
		}
	}
	return comps
}

// traceComponent performs a BFS flood fill from a seed pixel.
func traceComponent(mask *image.Gray, visited []bool, w, h, startX, startY int) componentStats {
	st := componentStats{minX: startX, minY: startY, maxX: startX, maxY: startY}
	q := list.New()
	q.PushBack(startY*w + startX)
	visited[startY*w+startX] = true

	type pixel struct{ x, y int }
	var pixels []pixel

	dirs := [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, ok := e.Value.(int)
		if !ok {
			continue
		}
		cx, cy := ci%w, ci/w
		st.count++
		pixels = append(pixels, pixel{cx, cy})
		if cx < st.minX {
			st.minX = cx
		}
		if cy < st.minY {
			st.minY = cy
		}
		if cx > st.maxX {
			st.maxX = cx
		}
		if cy > st.maxY {
			st.maxY = cy
		}
		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			ni := ny*w + nx
			if visited[ni] || mask.GrayAt(nx, ny).Y == 0 {
				continue
			}
			visited[ni] = true
			q.PushBack(ni)
		}
	}

	// Count pixels tracing the bounding-box border (within 2px of an edge).
	const borderBand = 2
	for _, p := range pixels {
		if p.x-st.minX < borderBand || st.maxX-p.x < borderBand ||
			p.y-st.minY < borderBand || st.maxY-p.y < borderBand {
			st.border++
		}
	}
	return st
}

// rectangularity scores how well a component traces its bounding box outline:
// the product of border concentration (border pixels over component mass) and
// perimeter coverage (border pixels over the expected outline length).
func rectangularity(c componentStats, bw, bh float64) float64 {
	if c.count == 0 {
		return 0
	}
	perimeter := 2 * (bw + bh)
	if perimeter <= 0 {
		return 0
	}
	concentration := float64(c.border) / float64(c.count)
	coverage := math.Min(1, float64(c.border)/perimeter)
	return concentration * coverage
}

// observationFromBounds converts pixel-space component bounds into a
// normalized, bottom-left-origin observation.
func observationFromBounds(c componentStats, w, h int, conf float64) RawObservation {
	fw, fh := float64(w), float64(h)
	x1 := float64(c.minX) / fw
	x2 := float64(c.maxX+1) / fw
	// Flip vertically: normalized y grows upward.
	yTop := 1 - float64(c.minY)/fh
	yBot := 1 - float64(c.maxY+1)/fh
	return RawObservation{
		TopLeft:     geometry.Point{X: x1, Y: yTop},
		TopRight:    geometry.Point{X: x2, Y: yTop},
		BottomRight: geometry.Point{X: x2, Y: yBot},
		BottomLeft:  geometry.Point{X: x1, Y: yBot},
		BoundingBox: NormalizedRect{X: x1, Y: yBot, W: x2 - x1, H: yTop - yBot},
		Confidence:  conf,
	}
}
