// Package ocr provides the text-recognition collaborator used to label
// detected booths. The production implementation binds Tesseract through
// gosseract and is only available on Linux builds with CGO; other builds get
// a stub that reports ErrUnavailable, which callers treat as "no text".
package ocr

import (
	"context"
	"errors"
	"image"

	"github.com/expomap/boothfinder/internal/vision"
)

// ErrUnavailable is returned when no OCR engine is compiled into the binary.
var ErrUnavailable = errors.New("ocr engine unavailable in this build")

// TextObservation is a recognized text fragment with its normalized,
// bottom-left-origin bounding box (same convention as detector output).
type TextObservation struct {
	BoundingBox vision.NormalizedRect
	Text        string
}

// Recognizer extracts text fragments from an image.
type Recognizer interface {
	RecognizeText(ctx context.Context, img image.Image) ([]TextObservation, error)
}
