package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/expomap/boothfinder/internal/pipeline"
	"github.com/expomap/boothfinder/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPlan(t *testing.T) string {
	t.Helper()
	plan := testutil.NewFloorPlan(400, 300).
		AddBooth(40, 40, 120, 90, "").
		AddBooth(220, 60, 110, 80, "")
	path := filepath.Join(t.TempDir(), "plan.png")
	testutil.SavePNG(t, plan.Image(), path)
	return path
}

func TestAnalyzeCommandJSONOutput(t *testing.T) {
	planPath := writeTestPlan(t)
	outPath := filepath.Join(t.TempDir(), "result.json")

	root := GetRootCommand()
	root.SetArgs([]string{"analyze", planPath, "--format", "json", "--ocr=false", "--output", outPath})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(outPath) //nolint:gosec // test-controlled path
	require.NoError(t, err)

	var res pipeline.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 300, res.Height)
	assert.NotEmpty(t, res.Booths)
}

func TestAnalyzeCommandOverlayOutput(t *testing.T) {
	planPath := writeTestPlan(t)
	outPath := filepath.Join(t.TempDir(), "result.json")
	overlayPath := filepath.Join(t.TempDir(), "overlay.png")

	root := GetRootCommand()
	root.SetArgs([]string{
		"analyze", planPath, "--ocr=false",
		"--output", outPath, "--overlay", overlayPath,
	})
	require.NoError(t, root.Execute())

	img := testutil.LoadImage(t, overlayPath)
	assert.Equal(t, 400, img.Bounds().Dx())
}

func TestAnalyzeCommandMissingImage(t *testing.T) {
	root := GetRootCommand()
	root.SetArgs([]string{"analyze", filepath.Join(t.TempDir(), "nope.png"), "--ocr=false"})
	assert.Error(t, root.Execute())
}

func TestFormatResultUnknownFormat(t *testing.T) {
	_, err := formatResult(&pipeline.AnalysisResult{}, "xml")
	assert.Error(t, err)
}
