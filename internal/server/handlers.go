package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/expomap/boothfinder/internal/pipeline"
	"github.com/expomap/boothfinder/internal/version"
	_ "golang.org/x/image/bmp"
)

const formatText = "text"

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding health response: %v\n", err)
	}
}

// analyzeHandler runs booth detection on an uploaded floor plan.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(len(imageData)))

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	res, err := s.analyzer.Analyze(ctx, img)
	if err != nil {
		analyzeRequestsTotal.WithLabelValues("error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Analysis failed: %v", err), http.StatusInternalServerError)
		return
	}
	analyzeRequestsTotal.WithLabelValues("success").Inc()
	analyzeDuration.Observe(time.Since(start).Seconds())
	boothsDetected.Observe(float64(len(res.Booths)))

	s.setLastImage(img)

	// An initial query may ride along with the upload.
	if query := r.FormValue("query"); query != "" {
		s.analyzer.Search(query)
		if cur := s.analyzer.Current(); cur != nil {
			res = cur
		}
	}

	s.writeResultResponse(w, r, res)
}

// boothsHandler returns the current booth snapshot.
func (s *Server) boothsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res := s.analyzer.Current()
	if res == nil {
		s.writeErrorResponse(w, "No floor plan analyzed yet", http.StatusNotFound)
		return
	}
	s.writeResultResponse(w, r, res)
}

// searchHandler highlights the first booth matching the query.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.analyzer.Current() == nil {
		s.writeErrorResponse(w, "No floor plan analyzed yet", http.StatusNotFound)
		return
	}

	query := r.FormValue("query")
	if query == "" {
		query = r.URL.Query().Get("query")
	}

	sr := s.analyzer.Search(query)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SearchResponse{Success: true, Result: &sr}); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding search response: %v\n", err)
	}
}

// overlayHandler renders the current booth set over the analyzed floor plan.
func (s *Server) overlayHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.overlayEnabled {
		http.Error(w, "overlay output disabled", http.StatusForbidden)
		return
	}

	res := s.analyzer.Current()
	img := s.getLastImage()
	if res == nil || img == nil {
		s.writeErrorResponse(w, "No floor plan analyzed yet", http.StatusNotFound)
		return
	}

	ov := pipeline.RenderOverlay(img, res.Booths, pipeline.DefaultOverlayOptions())
	if ov == nil {
		http.Error(w, "overlay failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_ = png.Encode(w, ov)
}

// writeResultResponse writes an analysis result in the requested format:
// json (default), yaml, csv, or text.
func (s *Server) writeResultResponse(w http.ResponseWriter, r *http.Request, res *pipeline.AnalysisResult) {
	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}

	switch format {
	case "csv":
		out, err := pipeline.ToCSV(res)
		if err != nil {
			http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(out))
	case "yaml":
		out, err := pipeline.ToYAML(res)
		if err != nil {
			http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(out))
	case formatText:
		out, err := pipeline.ToPlainText(res)
		if err != nil {
			http.Error(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(out))
	default:
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(AnalyzeResponse{Success: true, Result: res}); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding analyze response: %v\n", err)
		}
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := AnalyzeResponse{
		Success: false,
		Error:   message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing error response: %v\n", err)
	}
}
