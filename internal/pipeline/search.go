package pipeline

import "strings"

// SearchResult reports the outcome of a booth search together with the
// recomputed booth snapshot.
type SearchResult struct {
	// Query is the search string the result was computed for.
	Query string `json:"query"`
	// Found reports whether any booth matched.
	Found bool `json:"found"`
	// BoothID identifies the highlighted booth when Found is true.
	BoothID string `json:"booth_id,omitempty"`
	// Booths is a fresh snapshot: same booths, same order, same geometry and
	// IDs, with at most one Highlighted flag set.
	Booths []Booth `json:"booths"`
}

// SearchBooths finds the first booth (in list order) whose name or detected
// text contains the query as a case-insensitive substring, and returns a new
// snapshot with only that booth highlighted. An empty query clears all
// highlights. The input slice is never mutated; length, order, geometry,
// confidence, and text are preserved exactly.
func SearchBooths(booths []Booth, query string) SearchResult {
	res := SearchResult{Query: query, Booths: make([]Booth, len(booths))}
	for i, b := range booths {
		b.Highlighted = false
		res.Booths[i] = b
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return res
	}

	for i, b := range res.Booths {
		if strings.Contains(strings.ToLower(b.BoothName), q) ||
			strings.Contains(strings.ToLower(b.DetectedText), q) {
			res.Booths[i].Highlighted = true
			res.Found = true
			res.BoothID = b.ID
			break
		}
	}
	return res
}
