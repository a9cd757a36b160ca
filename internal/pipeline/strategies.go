package pipeline

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/expomap/boothfinder/internal/vision"
)

// Strategy is a named detector configuration tuned for a sensitivity regime,
// paired with the candidate filter applied to its output.
type Strategy struct {
	Name     string
	Detector vision.Config
	Filter   FilterConfig
}

// DefaultStrategies returns the standard three-pass ensemble. The passes
// deliberately overlap; cross-strategy deduplication is the merge engine's
// job, not the aggregator's.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: "high-sensitivity",
			Detector: vision.Config{
				MinConfidence:   0.3,
				MinSize:         0.005,
				MinAspectRatio:  0.2,
				MaxObservations: 80,
			},
			Filter: PermissiveFilterConfig(),
		},
		{
			Name:     "standard",
			Detector: vision.DefaultConfig(),
			Filter:   StrictFilterConfig(),
		},
		{
			Name: "small-object",
			Detector: vision.Config{
				MinConfidence:   0.4,
				MinSize:         0.003,
				MinAspectRatio:  0.25,
				MaxObservations: 100,
			},
			Filter: FilterConfig{
				MinRelativeArea: 0.0003,
				MaxRelativeArea: 0.02,
				MinAspectRatio:  0.2,
				MaxAspectRatio:  5.0,
				MinConfidence:   0.4,
				EdgeMargin:      10,
			},
		},
	}
}

// RunStrategies executes all strategies against the same image and pools
// their filtered booths. Strategies run concurrently; the pool preserves
// strategy order, though downstream stages are invariant to it.
//
// A failing strategy contributes an empty list instead of failing the pool.
func RunStrategies(ctx context.Context, det vision.Detector, img image.Image, strategies []Strategy) []Booth {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	perStrategy := make([][]Booth, len(strategies))
	var wg sync.WaitGroup
	for i, st := range strategies {
		wg.Add(1)
		go func(i int, st Strategy) {
			defer wg.Done()
			obs, err := det.Detect(ctx, img, st.Detector)
			if err != nil {
				slog.Warn("Detection strategy failed, contributing no candidates",
					"strategy", st.Name, "error", err)
				return
			}
			mapped := MapObservations(obs, w, h)
			perStrategy[i] = FilterBooths(mapped, w, h, st.Filter)
			slog.Debug("Detection strategy completed",
				"strategy", st.Name, "raw", len(obs), "kept", len(perStrategy[i]))
		}(i, st)
	}
	wg.Wait()

	var pool []Booth
	for _, booths := range perStrategy {
		pool = append(pool, booths...)
	}
	return pool
}
