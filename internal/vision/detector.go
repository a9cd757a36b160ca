package vision

import (
	"context"
	"image"

	"github.com/expomap/boothfinder/internal/geometry"
)

// NormalizedRect is an axis-aligned rectangle in normalized [0,1] coordinates
// with a bottom-left origin, matching the convention of common vision
// frameworks. Upstream code is responsible for mapping it into image space.
type NormalizedRect struct {
	X float64
	Y float64
	W float64
	H float64
}

// RawObservation is a single rectangle proposal from a detector pass.
// Corners and bounding box are normalized with a bottom-left origin.
type RawObservation struct {
	TopLeft     geometry.Point
	TopRight    geometry.Point
	BottomRight geometry.Point
	BottomLeft  geometry.Point
	BoundingBox NormalizedRect
	Confidence  float64
}

// Config holds the sensitivity knobs of a single detection pass.
type Config struct {
	// MinConfidence drops proposals below this score.
	MinConfidence float64
	// MinSize is the minimum side length of a proposal relative to the
	// shorter image dimension.
	MinSize float64
	// MinAspectRatio is the minimum short-side/long-side ratio. 1.0 accepts
	// only squares, values near 0 accept elongated rectangles.
	MinAspectRatio float64
	// MaxObservations caps the number of returned proposals (0 = no cap).
	MaxObservations int
}

// DefaultConfig returns the detection knobs of a standard pass.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.6,
		MinSize:         0.01,
		MinAspectRatio:  0.3,
		MaxObservations: 50,
	}
}

// Detector proposes rectangle observations for an image. Implementations may
// be remote services or local analyzers; callers treat failures as an empty
// contribution.
type Detector interface {
	Detect(ctx context.Context, img image.Image, cfg Config) ([]RawObservation, error)
}
