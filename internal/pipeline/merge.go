package pipeline

import (
	"sort"

	"github.com/expomap/boothfinder/internal/geometry"
)

const (
	// Score weights bias survival toward small, confidently detected boxes;
	// small booths are the ones detectors tend to miss.
	scoreConfidenceWeight  = 0.7
	scoreCompactnessWeight = 0.3

	// containTolerancePx loosens the containment test so boxes that poke out
	// by a few pixels still count as contained.
	containTolerancePx = 5.0

	// nearIdenticalAreaRatio separates composite boxes from near-duplicates:
	// an inner box occupying more than this fraction of the outer box is a
	// duplicate candidate, not a contained one, and is left for the overlap
	// pass to resolve.
	nearIdenticalAreaRatio = 0.8

	// duplicateOverlapRatio is the intersection-over-own-area fraction above
	// which two boxes are considered the same booth.
	duplicateOverlapRatio = 0.7
)

// Score ranks a candidate by confidence and compactness relative to the
// image: score = 0.7*confidence + 0.3*(1 - area/imageArea).
func Score(b Booth, imageArea float64) float64 {
	return scoreConfidenceWeight*b.Confidence +
		scoreCompactnessWeight*(1-b.RelativeArea(imageArea))
}

// MergeCandidates reduces a pooled candidate list to a non-composite,
// non-duplicate booth set. It is idempotent: running it on its own output
// changes nothing.
func MergeCandidates(booths []Booth, width, height int) []Booth {
	if len(booths) == 0 {
		return nil
	}
	imageArea := float64(width) * float64(height)

	ranked := rankByScore(booths, imageArea)
	admitted := adaptiveFilter(ranked, width, height)
	accepted := removeComposites(admitted)
	return removeDuplicates(accepted)
}

// rankByScore returns a copy sorted by descending score. The ordering only
// decides which of two equivalent candidates is met first in the
// order-sensitive passes below.
func rankByScore(booths []Booth, imageArea float64) []Booth {
	ranked := append([]Booth(nil), booths...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Score(ranked[i], imageArea) > Score(ranked[j], imageArea)
	})
	return ranked
}

// adaptiveFilter re-screens the pooled candidates with thresholds that give
// small candidates a lower confidence bar, compensating for detectors
// under-scoring small boxes.
func adaptiveFilter(booths []Booth, width, height int) []Booth {
	imageArea := float64(width) * float64(height)
	fw, fh := float64(width), float64(height)
	const boundsTolerance = 10.0

	kept := make([]Booth, 0, len(booths))
	for _, b := range booths {
		rel := b.RelativeArea(imageArea)
		if rel < 0.0003 || rel > 0.15 {
			continue
		}
		aspect := b.BoundingBox.AspectRatio()
		if aspect < 0.1 || aspect > 10.0 {
			continue
		}
		minConf := 0.2
		if rel < 0.001 {
			minConf = 0.1
		}
		if b.Confidence < minConf {
			continue
		}
		if !b.BoundingBox.WithinBounds(fw, fh, boundsTolerance) {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

// isCompositeOf reports whether outer geometrically contains inner AND the
// two are not near-identical. Near-identical pairs (inner covering more than
// 80% of outer) are handled by duplicate removal instead.
func isCompositeOf(outer, inner Booth) bool {
	if !geometry.ContainsBox(outer.BoundingBox, inner.BoundingBox, containTolerancePx) {
		return false
	}
	if outer.Area <= 0 {
		return false
	}
	return inner.Area/outer.Area <= nearIdenticalAreaRatio
}

// removeComposites discards boxes that contain an already-accepted smaller
// box (detector envelopes merging adjacent booths) and boxes contained by an
// accepted one. Candidates are processed smallest-first so every potential
// inner box is accepted before the outer box that might subsume it is
// examined; one pass suffices.
func removeComposites(booths []Booth) []Booth {
	byArea := append([]Booth(nil), booths...)
	sort.SliceStable(byArea, func(i, j int) bool {
		return byArea[i].Area < byArea[j].Area
	})

	accepted := make([]Booth, 0, len(byArea))
candidates:
	for _, cand := range byArea {
		for _, kept := range accepted {
			if isCompositeOf(cand, kept) {
				continue candidates
			}
			if isCompositeOf(kept, cand) {
				continue candidates
			}
		}
		accepted = append(accepted, cand)
	}
	return accepted
}

// removeDuplicates walks the candidates in order and drops any whose
// intersection covers more than 70% of either box in an already-kept pair.
// This catches the near-identical boxes the composite pass deliberately
// let through.
func removeDuplicates(booths []Booth) []Booth {
	kept := make([]Booth, 0, len(booths))
	for _, cand := range booths {
		if isDuplicateOfAny(cand, kept) {
			continue
		}
		kept = append(kept, cand)
	}
	return kept
}

func isDuplicateOfAny(cand Booth, kept []Booth) bool {
	for _, k := range kept {
		inter := geometry.IntersectionArea(cand.BoundingBox, k.BoundingBox)
		if inter <= 0 {
			continue
		}
		if cand.Area > 0 && inter/cand.Area > duplicateOverlapRatio {
			return true
		}
		if k.Area > 0 && inter/k.Area > duplicateOverlapRatio {
			return true
		}
	}
	return false
}
