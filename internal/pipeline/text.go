package pipeline

import (
	"strings"

	"github.com/expomap/boothfinder/internal/geometry"
	"github.com/expomap/boothfinder/internal/ocr"
)

// boothNameStopWords are venue vocabulary never useful as a display name.
var boothNameStopWords = map[string]struct{}{
	"booth":   {},
	"hall":    {},
	"floor":   {},
	"level":   {},
	"room":    {},
	"area":    {},
	"zone":    {},
	"stand":   {},
	"exhibit": {},
}

// maxNameWords caps the derived display name length.
const maxNameWords = 3

// AssociateText attaches recognized text fragments to the booths whose
// bounding boxes they intersect, preserving the order fragments were
// supplied, and derives each booth's display name. Returns a new slice;
// booths without any intersecting fragment keep empty text and name.
func AssociateText(booths []Booth, texts []ocr.TextObservation, width, height int) []Booth {
	out := make([]Booth, len(booths))
	for i, b := range booths {
		var fragments []string
		for _, t := range texts {
			textBox := MapNormalizedRect(t.BoundingBox, width, height)
			if geometry.Intersects(textBox, b.BoundingBox) {
				fragments = append(fragments, t.Text)
			}
		}
		b.DetectedText = strings.Join(fragments, " ")
		b.BoothName = DeriveBoothName(b.DetectedText)
		out[i] = b
	}
	return out
}

// DeriveBoothName extracts a short display label from recognized text:
// single characters and stop words are dropped, and the first three
// surviving words are joined with spaces.
func DeriveBoothName(detectedText string) string {
	var words []string
	for _, w := range strings.Fields(detectedText) {
		if len(w) <= 1 {
			continue
		}
		if _, stop := boothNameStopWords[strings.ToLower(w)]; stop {
			continue
		}
		words = append(words, w)
		if len(words) == maxNameWords {
			break
		}
	}
	return strings.Join(words, " ")
}
