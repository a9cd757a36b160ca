// Package server exposes the booth detection pipeline over HTTP and
// WebSocket: clients upload a floor plan image, retrieve the detected booth
// set, search it, and fetch an annotated overlay rendering.
package server

import (
	"context"
	"image"
	"net/http"
	"sync"

	"github.com/expomap/boothfinder/internal/ocr"
	"github.com/expomap/boothfinder/internal/pipeline"
	"github.com/expomap/boothfinder/internal/vision"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// analyzerInterface defines the methods the server needs from the pipeline.
type analyzerInterface interface {
	Analyze(ctx context.Context, img image.Image) (*pipeline.AnalysisResult, error)
	Search(query string) pipeline.SearchResult
	Current() *pipeline.AnalysisResult
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	analyzer       analyzerInterface
	corsOrigin     string
	maxUploadMB    int64
	timeoutSec     int
	overlayEnabled bool

	// lastImage is the most recently analyzed floor plan, kept for overlay
	// rendering.
	mu        sync.Mutex
	lastImage image.Image
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	OverlayEnabled bool

	// Analyzer configures the detection pipeline behind the endpoints.
	Analyzer pipeline.Config
	// Detector overrides the default classical detector when non-nil.
	Detector vision.Detector
	// OCRLanguage selects the recognizer language (default "eng").
	OCRLanguage string
}

// Response types for API endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type AnalyzeResponse struct {
	Success bool                     `json:"success"`
	Result  *pipeline.AnalysisResult `json:"result,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

type SearchResponse struct {
	Success bool                   `json:"success"`
	Result  *pipeline.SearchResult `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// NewServer creates a new booth detection server instance.
func NewServer(config Config) (*Server, error) {
	det := config.Detector
	if det == nil {
		det = vision.NewRectangleFinder()
	}

	var rec ocr.Recognizer
	if config.Analyzer.OCREnabled {
		lang := config.OCRLanguage
		if lang == "" {
			lang = "eng"
		}
		rec = &ocr.TesseractRecognizer{Language: lang}
	}

	analyzer, err := pipeline.NewAnalyzer(det, rec, config.Analyzer)
	if err != nil {
		return nil, err
	}

	return &Server{
		analyzer:       analyzer,
		corsOrigin:     config.CORSOrigin,
		maxUploadMB:    config.MaxUploadMB,
		timeoutSec:     config.TimeoutSec,
		overlayEnabled: config.OverlayEnabled,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/analyze", s.corsMiddleware(s.analyzeHandler))
	mux.HandleFunc("/booths", s.corsMiddleware(s.boothsHandler))
	mux.HandleFunc("/search", s.corsMiddleware(s.searchHandler))
	mux.HandleFunc("/overlay.png", s.corsMiddleware(s.overlayHandler))
	mux.HandleFunc("/ws", s.boothWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// setLastImage remembers the floor plan behind the current booth snapshot.
func (s *Server) setLastImage(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastImage = img
}

func (s *Server) getLastImage() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastImage
}
