package vision

import (
	"context"
	"testing"

	"github.com/expomap/boothfinder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawnPlanConfig() Config {
	// Thresholds for crisp synthetic plans: the finder still has to reject
	// label glyphs and filled blocks on its own.
	return Config{
		MinConfidence:   0.5,
		MinSize:         0.05,
		MinAspectRatio:  0.3,
		MaxObservations: 10,
	}
}

func TestRectangleFinderDetectsDrawnBooths(t *testing.T) {
	plan := testutil.NewFloorPlan(400, 300).
		AddBooth(40, 40, 100, 80, "").
		AddBooth(200, 60, 120, 90, "")

	f := &RectangleFinder{}
	obs, err := f.Detect(context.Background(), plan.Image(), drawnPlanConfig())
	require.NoError(t, err)
	require.Len(t, obs, 2)

	for _, o := range obs {
		assert.GreaterOrEqual(t, o.Confidence, 0.5)
	}

	// One observation per drawn booth, located where it was drawn. The
	// normalized origin is bottom-left, so y flips.
	found := func(px, py, pw, ph float64) bool {
		const tol = 0.02
		want := NormalizedRect{
			X: px / 400,
			Y: 1 - (py+ph)/300,
			W: pw / 400,
			H: ph / 300,
		}
		for _, o := range obs {
			if abs(o.BoundingBox.X-want.X) < tol &&
				abs(o.BoundingBox.Y-want.Y) < tol &&
				abs(o.BoundingBox.W-want.W) < tol &&
				abs(o.BoundingBox.H-want.H) < tol {
				return true
			}
		}
		return false
	}
	assert.True(t, found(40, 40, 100, 80), "first booth not located")
	assert.True(t, found(200, 60, 120, 90), "second booth not located")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestRectangleFinderIgnoresLabelsAndFilledBlocks(t *testing.T) {
	plan := testutil.NewFloorPlan(400, 300).
		AddBooth(40, 40, 100, 80, "A1").
		FillRect(250, 150, 80, 80)

	f := &RectangleFinder{}
	obs, err := f.Detect(context.Background(), plan.Image(), drawnPlanConfig())
	require.NoError(t, err)
	// The glyphs are below the size floor and the solid block has no hollow
	// outline, so only the drawn booth remains.
	require.Len(t, obs, 1)
	assert.InDelta(t, 0.1, obs[0].BoundingBox.X, 0.02)
}

func TestRectangleFinderMinSizeFilter(t *testing.T) {
	plan := testutil.NewFloorPlan(400, 300).
		AddBooth(40, 40, 100, 80, "").
		AddBooth(250, 40, 12, 10, "")

	cfg := drawnPlanConfig() // min side 0.05*300 = 15px
	f := &RectangleFinder{}
	obs, err := f.Detect(context.Background(), plan.Image(), cfg)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.InDelta(t, 100.0/400, obs[0].BoundingBox.W, 0.02)
}

func TestRectangleFinderMaxObservationsCap(t *testing.T) {
	plan := testutil.NewFloorPlan(600, 300)
	for i := 0; i < 5; i++ {
		plan.AddBooth(20+i*110, 40, 90, 70, "")
	}

	cfg := drawnPlanConfig()
	cfg.MaxObservations = 3
	f := &RectangleFinder{}
	obs, err := f.Detect(context.Background(), plan.Image(), cfg)
	require.NoError(t, err)
	assert.Len(t, obs, 3)
}

func TestRectangleFinderAspectRatioFilter(t *testing.T) {
	plan := testutil.NewFloorPlan(600, 300).
		AddBooth(20, 40, 400, 30, "") // short/long ratio 0.075

	cfg := drawnPlanConfig()
	cfg.MinAspectRatio = 0.3
	f := &RectangleFinder{}
	obs, err := f.Detect(context.Background(), plan.Image(), cfg)
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestRectangleFinderBadInput(t *testing.T) {
	f := NewRectangleFinder()

	_, err := f.Detect(context.Background(), nil, DefaultConfig())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Detect(ctx, testutil.NewFloorPlan(10, 10).Image(), DefaultConfig())
	assert.Error(t, err)
}
