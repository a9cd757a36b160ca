package pipeline

import (
	"github.com/expomap/boothfinder/internal/geometry"
	"github.com/expomap/boothfinder/internal/vision"
	"github.com/gofrs/uuid"
)

// MapObservation converts a normalized, bottom-left-origin observation into
// a pixel-space Booth for an image of the given dimensions.
//
// The detector's y axis grows upward while image space grows downward, so
// every y coordinate is flipped. No validation happens here: malformed input
// maps to a malformed Booth and is weeded out by the candidate filter.
func MapObservation(obs vision.RawObservation, width, height int) Booth {
	fw, fh := float64(width), float64(height)
	corners := [4]geometry.Point{
		mapPoint(obs.TopLeft, fw, fh),
		mapPoint(obs.TopRight, fw, fh),
		mapPoint(obs.BottomRight, fw, fh),
		mapPoint(obs.BottomLeft, fw, fh),
	}
	box := MapNormalizedRect(obs.BoundingBox, width, height)
	return Booth{
		ID:          newBoothID(),
		Corners:     corners,
		BoundingBox: box,
		Confidence:  obs.Confidence,
		Area:        box.Area(),
	}
}

// MapObservations maps a full detection pass.
func MapObservations(obs []vision.RawObservation, width, height int) []Booth {
	booths := make([]Booth, 0, len(obs))
	for _, o := range obs {
		booths = append(booths, MapObservation(o, width, height))
	}
	return booths
}

// MapNormalizedRect converts a normalized bottom-left-origin rectangle into
// a pixel-space box. The rectangle's top edge sits at normalized y+h, which
// after flipping becomes the pixel-space minimum y.
func MapNormalizedRect(r vision.NormalizedRect, width, height int) geometry.Box {
	fw, fh := float64(width), float64(height)
	return geometry.RectBox(
		r.X*fw,
		(1-r.Y-r.H)*fh,
		r.W*fw,
		r.H*fh,
	)
}

func mapPoint(p geometry.Point, fw, fh float64) geometry.Point {
	return geometry.Point{X: p.X * fw, Y: (1 - p.Y) * fh}
}

func newBoothID() string {
	id, err := uuid.NewV4()
	if err != nil {
		// NewV4 only fails when the entropy source does, in which case the
		// zero UUID is still a usable (if non-unique) identifier.
		return uuid.Nil.String()
	}
	return id.String()
}
