package audio

import (
	"sort"

	"AutoDJ/model"
)

const (
	// smoothingWindow is the moving-average width (in frames) applied to the
	// envelope before peak picking, to suppress single-frame spikes.
	smoothingWindow = 10
	// peakThresholdRatio: a frame qualifies as a peak only if its smoothed
	// value exceeds this multiple of the smoothed mean.
	peakThresholdRatio = 1.5
	// minPeakSpacingSeconds is the minimum separation between accepted peaks.
	minPeakSpacingSeconds = 5.0
	// highlightHalfWidthSeconds is the nominal half-width of a highlight
	// window around its peak.
	highlightHalfWidthSeconds = 10.0
	// maxHighlights caps how many highlights a track keeps.
	maxHighlights = 3
)

// DetectHighlights finds the most energetic intervals of a track from its
// envelope. A degenerate envelope (empty, all-zero, or too short to smooth)
// yields an empty slice; that is a valid outcome, not an error, and callers
// fall back to a fixed excerpt.
func DetectHighlights(env model.Envelope, trackDuration float64) []model.Highlight {
	highlights := []model.Highlight{}
	if env.Empty() || trackDuration <= 0 {
		return highlights
	}

	smoothed := movingAverage(env.Values, smoothingWindow)

	mean := 0.0
	for _, v := range smoothed {
		mean += v
	}
	mean /= float64(len(smoothed))
	if mean <= 0 {
		// All-zero envelope: silence has no highlights.
		return highlights
	}
	threshold := mean * peakThresholdRatio

	minSpacing := int(env.FrameRate() * minPeakSpacingSeconds)
	if minSpacing < 1 {
		minSpacing = 1
	}

	for _, peak := range findPeaks(smoothed, threshold, minSpacing) {
		peakTime := env.TimeAt(peak)
		if peakTime > trackDuration {
			peakTime = trackDuration
		}
		start := peakTime - highlightHalfWidthSeconds
		if start < 0 {
			start = 0
		}
		end := peakTime + highlightHalfWidthSeconds
		if end > trackDuration {
			end = trackDuration
		}
		highlights = append(highlights, model.Highlight{
			Start:     start,
			End:       end,
			PeakTime:  peakTime,
			Intensity: smoothed[peak],
		})
	}

	sort.SliceStable(highlights, func(i, j int) bool {
		return highlights[i].Intensity > highlights[j].Intensity
	})
	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}
	return highlights
}

// movingAverage smooths values with a centered window, same-length output.
func movingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	half := window / 2
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + (window - half)
		if hi > len(values) {
			hi = len(values)
		}
		sum := 0.0
		for j := lo; j < hi; j++ {
			sum += values[j]
		}
		// Divide by the full window so edge frames are attenuated the same
		// way numpy's zero-padded "same" convolution attenuates them.
		out[i] = sum / float64(window)
	}
	return out
}

// findPeaks returns indices of local maxima above threshold, at least
// minSpacing frames apart. When two candidates are closer than minSpacing,
// the higher one wins.
func findPeaks(values []float64, threshold float64, minSpacing int) []int {
	var candidates []int
	for i := 1; i < len(values)-1; i++ {
		if values[i] > threshold && values[i] > values[i-1] && values[i] >= values[i+1] {
			candidates = append(candidates, i)
		}
	}

	// Accept highest candidates first, rejecting any within minSpacing of an
	// already accepted peak.
	sort.SliceStable(candidates, func(i, j int) bool {
		return values[candidates[i]] > values[candidates[j]]
	})
	var accepted []int
	for _, c := range candidates {
		ok := true
		for _, a := range accepted {
			d := c - a
			if d < 0 {
				d = -d
			}
			if d < minSpacing {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, c)
		}
	}
	sort.Ints(accepted)
	return accepted
}
