package model

import "time"

// Track represents a single source track for a mix.
type Track struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Genre     string    `json:"genre"`
	SourceURL string    `json:"sourceUrl"`
	LocalPath string    `json:"-"`        // Path to the downloaded audio file, not exposed in the API
	Duration  float64   `json:"duration"` // Duration in seconds, 0 until the track is downloaded
	Analysis  *Analysis `json:"analysis,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Analysis holds the result of the per-track energy analysis. A nil Analysis
// on a Track means the track was never analyzed; an Analysis with empty
// Highlights means analysis ran but found nothing usable. Consumers must
// handle both by falling back to a fixed excerpt.
type Analysis struct {
	Envelope   Envelope    `json:"envelope"`
	Highlights []Highlight `json:"highlights"`
}

// MeanHighlightIntensity returns the mean intensity over the track's
// highlights, or 0 for an unanalyzed or highlight-less track. Tracks are
// ordered in a mix by this value, descending.
func (t *Track) MeanHighlightIntensity() float64 {
	if t.Analysis == nil || len(t.Analysis.Highlights) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range t.Analysis.Highlights {
		sum += h.Intensity
	}
	return sum / float64(len(t.Analysis.Highlights))
}

// TopHighlight returns the highest-intensity highlight, or false if the
// track has none. Highlights are stored sorted by descending intensity.
func (t *Track) TopHighlight() (Highlight, bool) {
	if t.Analysis == nil || len(t.Analysis.Highlights) == 0 {
		return Highlight{}, false
	}
	return t.Analysis.Highlights[0], true
}
