package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/expomap/boothfinder/internal/ocr"
	"github.com/expomap/boothfinder/internal/vision"
)

// AnalysisResult is the immutable outcome of one detection run. Search
// produces a new result sharing IDs and geometry; nothing mutates a
// published result in place.
type AnalysisResult struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Booths []Booth `json:"booths"`

	// Query and MatchedID reflect the most recent search applied to this
	// booth set ("" / "" right after analysis).
	Query     string `json:"query,omitempty"`
	MatchedID string `json:"matched_id,omitempty"`

	Processing struct {
		DetectionNs int64 `json:"detection_ns"`
		OCRNs       int64 `json:"ocr_ns"`
		TotalNs     int64 `json:"total_ns"`
	} `json:"processing"`
}

// Config holds analyzer configuration.
type Config struct {
	Strategies []Strategy
	// OCREnabled controls whether text association runs after merging.
	OCREnabled bool
}

// DefaultConfig returns an analyzer config with the standard strategy
// ensemble and OCR enabled.
func DefaultConfig() Config {
	return Config{
		Strategies: DefaultStrategies(),
		OCREnabled: true,
	}
}

// Analyzer owns detection runs and the published booth snapshot.
//
// When a new run starts while another is in flight, the older run's context
// is cancelled and its result is discarded at publication time via a
// generation check: only the newest generation may publish. Search operates
// on whatever snapshot is currently published.
type Analyzer struct {
	detector   vision.Detector
	recognizer ocr.Recognizer
	cfg        Config

	mu           sync.Mutex
	generation   uint64
	publishedGen uint64
	cancelRun    context.CancelFunc
	current      *AnalysisResult
}

// NewAnalyzer creates an analyzer over the given collaborators. recognizer
// may be nil; text association is then skipped.
func NewAnalyzer(detector vision.Detector, recognizer ocr.Recognizer, cfg Config) (*Analyzer, error) {
	if detector == nil {
		return nil, errors.New("nil detector")
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = DefaultStrategies()
	}
	return &Analyzer{detector: detector, recognizer: recognizer, cfg: cfg}, nil
}

// Analyze runs the full pipeline on the image and publishes the result if no
// newer run superseded this one in the meantime. The returned result is
// always this run's outcome, published or not.
func (a *Analyzer) Analyze(ctx context.Context, img image.Image) (*AnalysisResult, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, errors.New("input image is empty")
	}

	gen, runCtx := a.beginRun(ctx)
	totalStart := time.Now()

	slog.Debug("Starting floor plan analysis", "width", w, "height", h, "strategies", len(a.cfg.Strategies))

	detStart := time.Now()
	pool := RunStrategies(runCtx, a.detector, img, a.cfg.Strategies)
	booths := MergeCandidates(pool, w, h)
	detNs := time.Since(detStart).Nanoseconds()
	slog.Debug("Candidate merge completed", "pooled", len(pool), "merged", len(booths))

	var ocrNs int64
	if a.cfg.OCREnabled && a.recognizer != nil && len(booths) > 0 {
		ocrStart := time.Now()
		texts, err := a.recognizer.RecognizeText(runCtx, img)
		if err != nil {
			slog.Warn("Text recognition failed, booths keep empty labels", "error", err)
		} else {
			booths = AssociateText(booths, texts, w, h)
		}
		ocrNs = time.Since(ocrStart).Nanoseconds()
	}

	res := &AnalysisResult{Width: w, Height: h, Booths: booths}
	res.Processing.DetectionNs = detNs
	res.Processing.OCRNs = ocrNs
	res.Processing.TotalNs = time.Since(totalStart).Nanoseconds()

	if err := runCtx.Err(); err != nil {
		slog.Debug("Analysis run superseded before publication", "generation", gen)
		return res, nil
	}
	a.publish(gen, res)
	return res, nil
}

// Search recomputes the highlight state of the published snapshot and
// publishes the new snapshot. Returns the zero SearchResult when nothing has
// been analyzed yet.
func (a *Analyzer) Search(query string) SearchResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return SearchResult{Query: query}
	}
	sr := SearchBooths(a.current.Booths, query)

	next := *a.current
	next.Booths = sr.Booths
	next.Query = query
	next.MatchedID = sr.BoothID
	a.current = &next
	return sr
}

// Current returns the published snapshot, or nil before the first completed
// analysis.
func (a *Analyzer) Current() *AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// beginRun claims a new run generation and cancels any in-flight run.
func (a *Analyzer) beginRun(ctx context.Context) (uint64, context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancelRun != nil {
		a.cancelRun()
	}
	runCtx, cancel := context.WithCancel(ctx)
	a.cancelRun = cancel
	a.generation++
	return a.generation, runCtx
}

// publish installs the result unless a newer generation already published.
func (a *Analyzer) publish(gen uint64, res *AnalysisResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen < a.publishedGen {
		return
	}
	a.publishedGen = gen
	a.current = res
}
