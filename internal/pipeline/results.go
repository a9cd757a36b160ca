package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Summary aggregates listing statistics for a booth set.
type Summary struct {
	BoothCount    int     `json:"booth_count" yaml:"booth_count"`
	NamedCount    int     `json:"named_count" yaml:"named_count"`
	AvgConfidence float64 `json:"avg_confidence" yaml:"avg_confidence"`
}

// Summarize computes listing statistics over a booth set.
func Summarize(booths []Booth) Summary {
	s := Summary{BoothCount: len(booths)}
	if len(booths) == 0 {
		return s
	}
	var confSum float64
	for _, b := range booths {
		confSum += b.Confidence
		if b.BoothName != "" {
			s.NamedCount++
		}
	}
	s.AvgConfidence = confSum / float64(len(booths))
	return s
}

// ToJSON serializes an analysis result to pretty JSON.
func ToJSON(res *AnalysisResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToYAML serializes an analysis result to YAML with a listing summary.
func ToYAML(res *AnalysisResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	out := struct {
		Width   int     `yaml:"width"`
		Height  int     `yaml:"height"`
		Summary Summary `yaml:"summary"`
		Booths  []Booth `yaml:"booths"`
	}{res.Width, res.Height, Summarize(res.Booths), res.Booths}
	b, err := yaml.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToCSV exports per-booth structured data as CSV with a header row.
func ToCSV(res *AnalysisResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "name", "text", "confidence", "x", "y", "width", "height", "highlighted"}
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, b := range res.Booths {
		rec := []string{
			b.ID,
			b.BoothName,
			b.DetectedText,
			strconv.FormatFloat(b.Confidence, 'f', 4, 64),
			strconv.FormatFloat(b.BoundingBox.MinX, 'f', 1, 64),
			strconv.FormatFloat(b.BoundingBox.MinY, 'f', 1, 64),
			strconv.FormatFloat(b.BoundingBox.Width(), 'f', 1, 64),
			strconv.FormatFloat(b.BoundingBox.Height(), 'f', 1, 64),
			strconv.FormatBool(b.Highlighted),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToPlainText renders a human-readable booth listing with summary, in the
// style of the interactive detail view.
func ToPlainText(res *AnalysisResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var sb strings.Builder
	s := Summarize(res.Booths)
	fmt.Fprintf(&sb, "Found %d potential booths\n", s.BoothCount)
	if s.NamedCount > 0 {
		fmt.Fprintf(&sb, "%d booths have readable text\n", s.NamedCount)
	}
	if s.BoothCount > 0 {
		fmt.Fprintf(&sb, "Average confidence: %.1f%%\n", s.AvgConfidence*100)
	}
	for i, b := range res.Booths {
		fmt.Fprintf(&sb, "\nBooth %d (%.1f%%)\n", i+1, b.Confidence*100)
		if b.BoothName != "" {
			fmt.Fprintf(&sb, "  Name: %s\n", b.BoothName)
		}
		if b.DetectedText != "" && b.DetectedText != b.BoothName {
			fmt.Fprintf(&sb, "  Text: %s\n", b.DetectedText)
		}
		fmt.Fprintf(&sb, "  Area: %.0f px²\n", b.Area)
		fmt.Fprintf(&sb, "  Size: %.0f × %.0f px\n", b.BoundingBox.Width(), b.BoundingBox.Height())
		fmt.Fprintf(&sb, "  Position: (%.0f, %.0f)\n", b.BoundingBox.MinX, b.BoundingBox.MinY)
		if b.Highlighted {
			sb.WriteString("  [highlighted]\n")
		}
	}
	return sb.String(), nil
}
