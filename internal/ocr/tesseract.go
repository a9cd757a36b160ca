//go:build cgo && linux

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/expomap/boothfinder/internal/vision"
	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer performs word-level OCR using the native Tesseract
// bindings. A fresh client is created per call; gosseract clients are not
// safe for concurrent use.
type TesseractRecognizer struct {
	Language string
}

// NewTesseractRecognizer returns a recognizer for the given language
// ("eng" if empty).
func NewTesseractRecognizer(language string) *TesseractRecognizer {
	if language == "" {
		language = "eng"
	}
	return &TesseractRecognizer{Language: language}
}

// RecognizeText implements Recognizer.
func (t *TesseractRecognizer) RecognizeText(ctx context.Context, img image.Image) ([]TextObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("nil input image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image for ocr: %w", err)
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(t.Language); err != nil {
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set ocr image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("ocr bounding boxes: %w", err)
	}

	bounds := img.Bounds()
	fw, fh := float64(bounds.Dx()), float64(bounds.Dy())
	out := make([]TextObservation, 0, len(boxes))
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		out = append(out, TextObservation{
			Text:        word,
			BoundingBox: normalizeRect(b.Box, fw, fh),
		})
	}
	return out, nil
}

// normalizeRect converts a top-left-origin pixel rectangle into the
// normalized bottom-left-origin convention shared with the detector.
func normalizeRect(r image.Rectangle, fw, fh float64) vision.NormalizedRect {
	return vision.NormalizedRect{
		X: float64(r.Min.X) / fw,
		Y: 1 - float64(r.Max.Y)/fh,
		W: float64(r.Dx()) / fw,
		H: float64(r.Dy()) / fh,
	}
}
