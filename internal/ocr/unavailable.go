//go:build !cgo || !linux

package ocr

import (
	"context"
	"image"
)

// TesseractRecognizer is a stub on platforms without native Tesseract
// bindings. Every call reports ErrUnavailable, which the pipeline degrades
// to empty text association.
type TesseractRecognizer struct {
	Language string
}

// NewTesseractRecognizer returns the stub recognizer.
func NewTesseractRecognizer(language string) *TesseractRecognizer {
	if language == "" {
		language = "eng"
	}
	return &TesseractRecognizer{Language: language}
}

// RecognizeText implements Recognizer.
func (t *TesseractRecognizer) RecognizeText(context.Context, image.Image) ([]TextObservation, error) {
	return nil, ErrUnavailable
}
