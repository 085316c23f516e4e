package model

// Highlight marks the most energetic moments of a track. The window is
// centered on PeakTime with a nominal half-width of 10 seconds, clamped to
// the track bounds, so Start <= PeakTime <= End always holds.
type Highlight struct {
	Start     float64 `json:"start"`     // Window start in seconds
	End       float64 `json:"end"`       // Window end in seconds
	PeakTime  float64 `json:"peakTime"`  // Position of the energy peak in seconds
	Intensity float64 `json:"intensity"` // Smoothed envelope value at the peak
}

// Duration returns the highlight window length in seconds.
func (h Highlight) Duration() float64 {
	return h.End - h.Start
}
