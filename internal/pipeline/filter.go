package pipeline

// FilterConfig holds the admissibility thresholds applied to mapped booths,
// all relative to the source image dimensions.
type FilterConfig struct {
	MinRelativeArea float64 `mapstructure:"min_relative_area" yaml:"min_relative_area" json:"min_relative_area"`
	MaxRelativeArea float64 `mapstructure:"max_relative_area" yaml:"max_relative_area" json:"max_relative_area"`
	MinAspectRatio  float64 `mapstructure:"min_aspect_ratio" yaml:"min_aspect_ratio" json:"min_aspect_ratio"`
	MaxAspectRatio  float64 `mapstructure:"max_aspect_ratio" yaml:"max_aspect_ratio" json:"max_aspect_ratio"`
	MinConfidence   float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	// EdgeMargin tolerates boxes poking out of the image by up to this many
	// pixels before rejecting them.
	EdgeMargin float64 `mapstructure:"edge_margin" yaml:"edge_margin" json:"edge_margin"`
}

// StrictFilterConfig returns the thresholds of the original standard pass:
// mid-sized, roughly square, confidently detected booths only.
func StrictFilterConfig() FilterConfig {
	return FilterConfig{
		MinRelativeArea: 0.001,
		MaxRelativeArea: 0.1,
		MinAspectRatio:  0.3,
		MaxAspectRatio:  3.0,
		MinConfidence:   0.7,
		EdgeMargin:      2,
	}
}

// PermissiveFilterConfig returns thresholds for high-sensitivity passes that
// keep small and near-edge candidates for the merge engine to sort out.
func PermissiveFilterConfig() FilterConfig {
	return FilterConfig{
		MinRelativeArea: 0.0003,
		MaxRelativeArea: 0.15,
		MinAspectRatio:  0.1,
		MaxAspectRatio:  10.0,
		MinConfidence:   0.3,
		EdgeMargin:      10,
	}
}

// FilterBooths returns the subset of booths admissible under cfg for an
// image of the given dimensions. The input slice is not modified.
func FilterBooths(booths []Booth, width, height int, cfg FilterConfig) []Booth {
	imageArea := float64(width) * float64(height)
	kept := make([]Booth, 0, len(booths))
	for _, b := range booths {
		if !admissible(b, imageArea, float64(width), float64(height), cfg) {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

func admissible(b Booth, imageArea, fw, fh float64, cfg FilterConfig) bool {
	if b.Area < cfg.MinRelativeArea*imageArea || b.Area > cfg.MaxRelativeArea*imageArea {
		return false
	}
	aspect := b.BoundingBox.AspectRatio()
	if aspect < cfg.MinAspectRatio || aspect > cfg.MaxAspectRatio {
		return false
	}
	if b.Confidence < cfg.MinConfidence {
		return false
	}
	return b.BoundingBox.WithinBounds(fw, fh, cfg.EdgeMargin)
}
