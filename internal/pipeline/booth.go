package pipeline

import (
	"github.com/expomap/boothfinder/internal/geometry"
)

// Booth is a detected rectangular region of a floor plan with geometry,
// detection confidence, and an optional recognized label.
//
// ID is assigned once at mapping time and survives highlight updates, so a
// client can correlate a booth across re-renders. Geometry, Confidence, and
// Area never change after the merge stage; Highlighted is the only mutable
// presentation flag, and updates replace the Booth value rather than
// mutating it in place.
type Booth struct {
	ID string `json:"id"`

	// Corners holds the quadrilateral in pixel space, ordered top-left,
	// top-right, bottom-right, bottom-left. Not necessarily axis-aligned.
	Corners [4]geometry.Point `json:"corners"`

	// BoundingBox is the axis-aligned box enclosing Corners, in pixel space.
	BoundingBox geometry.Box `json:"bounding_box"`

	// Confidence is the detector score in [0,1].
	Confidence float64 `json:"confidence"`

	// Area caches BoundingBox.Area() at creation.
	Area float64 `json:"area"`

	// DetectedText is the space-joined recognized text intersecting the box.
	DetectedText string `json:"detected_text,omitempty"`

	// BoothName is a short display label derived from DetectedText.
	BoothName string `json:"booth_name,omitempty"`

	// Highlighted marks the current search match. Not identity-bearing.
	Highlighted bool `json:"highlighted"`
}

// RelativeArea returns the booth's area as a fraction of the image area.
func (b Booth) RelativeArea(imageArea float64) float64 {
	if imageArea <= 0 {
		return 0
	}
	return b.Area / imageArea
}
