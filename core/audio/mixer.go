package audio

import (
	"context"
	"sort"

	"AutoDJ/logger"
	"AutoDJ/model"
)

const (
	// fadeSeconds is the fade-in/fade-out length applied to every excerpt.
	fadeSeconds = 2.0
	// crossfadeSeconds is how far each excerpt is pulled back over the
	// previous one, producing the overlap region.
	crossfadeSeconds = 2.0
	// fallbackExcerptSeconds is the excerpt length used for tracks without
	// any detected highlight, centered on the track midpoint.
	fallbackExcerptSeconds = 30.0
	// minExcerptSeconds keeps excerpts long enough that the fixed crossfade
	// back-shift can never overlap beyond the previous excerpt's start.
	minExcerptSeconds = 4.0
)

// SkippedTrack records why a track did not contribute to a mix. Skips are
// diagnostics, never a mix failure.
type SkippedTrack struct {
	TrackID string `json:"trackId"`
	Reason  string `json:"reason"`
}

// AssembleResult is the in-memory output of mix assembly, prior to encoding.
type AssembleResult struct {
	Buffer      []float64
	SampleRate  int
	Duration    float64
	Contributed []string
	Skipped     []SkippedTrack
}

// Assembler concatenates one excerpt per track into a single crossfaded
// buffer. The buffer and cursor are owned exclusively by Assemble; assembly
// is strictly sequential.
type Assembler struct {
	loader SignalLoader
}

// NewAssembler creates an Assembler that reads track audio via loader.
func NewAssembler(loader SignalLoader) *Assembler {
	return &Assembler{loader: loader}
}

// OrderByIntensity returns a new slice of tracks sorted by descending mean
// highlight intensity. Tracks without highlights sort last. The input slice
// is not modified.
func OrderByIntensity(tracks []*model.Track) []*model.Track {
	ordered := make([]*model.Track, len(tracks))
	copy(ordered, tracks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MeanHighlightIntensity() > ordered[j].MeanHighlightIntensity()
	})
	return ordered
}

// Assemble builds the mix buffer: tracks ordered by intensity, one excerpt
// each (top highlight, or the track midpoint as fallback), 2-second fades,
// every excerpt after the first overlaid starting 2 seconds before the
// cursor. A track whose audio is missing or unreadable is skipped and
// recorded; it never fails the mix. The only error returned is context
// cancellation.
func (a *Assembler) Assemble(ctx context.Context, tracks []*model.Track) (*AssembleResult, error) {
	result := &AssembleResult{
		SampleRate: AnalysisSampleRate,
		Skipped:    []SkippedTrack{},
	}

	cursor := 0
	for _, track := range OrderByIntensity(tracks) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if track.LocalPath == "" {
			result.Skipped = append(result.Skipped, SkippedTrack{TrackID: track.ID, Reason: "no local audio"})
			logger.Warn("Skipping track without local audio", logger.String("trackId", track.ID))
			continue
		}

		signal, err := a.loader.Load(ctx, track.LocalPath)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedTrack{TrackID: track.ID, Reason: err.Error()})
			logger.Warn("Skipping unreadable track",
				logger.String("trackId", track.ID), logger.ErrorField(err))
			continue
		}

		excerpt := extractExcerpt(track, signal)
		if len(excerpt) == 0 {
			result.Skipped = append(result.Skipped, SkippedTrack{TrackID: track.ID, Reason: "empty excerpt"})
			continue
		}
		result.SampleRate = signal.SampleRate
		applyFades(excerpt, signal.SampleRate)

		if len(result.Contributed) == 0 {
			result.Buffer = append(result.Buffer, excerpt...)
			cursor = len(excerpt)
		} else {
			overlayStart := cursor - int(crossfadeSeconds*float64(signal.SampleRate))
			if overlayStart < 0 {
				overlayStart = 0
			}
			if need := overlayStart + len(excerpt); need > len(result.Buffer) {
				result.Buffer = append(result.Buffer, make([]float64, need-len(result.Buffer))...)
			}
			for j, v := range excerpt {
				result.Buffer[overlayStart+j] += v
			}
			cursor = overlayStart + len(excerpt)
		}
		result.Contributed = append(result.Contributed, track.ID)
	}

	result.Duration = float64(len(result.Buffer)) / float64(result.SampleRate)
	logger.Info("Mix assembled",
		logger.Int("tracks", len(tracks)),
		logger.Int("contributed", len(result.Contributed)),
		logger.Int("skipped", len(result.Skipped)),
		logger.Float64("duration", result.Duration))
	return result, nil
}

// extractExcerpt copies the selected excerpt out of the decoded signal. The
// top highlight wins when the track has one; otherwise a fixed-length
// excerpt around the track midpoint is used. The end is clamped to the
// actual sample length, which guards against drift between the analyzed
// duration and the decoded audio.
func extractExcerpt(track *model.Track, signal *AudioSignal) []float64 {
	sr := float64(signal.SampleRate)
	n := len(signal.Samples)

	var start, end int
	if h, ok := track.TopHighlight(); ok {
		start = int(h.Start * sr)
		end = int(h.End * sr)
	} else {
		mid := n / 2
		half := int(fallbackExcerptSeconds / 2 * sr)
		start = mid - half
		end = mid + half
	}
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if end <= start {
		return nil
	}

	// Widen short excerpts to the minimum so the crossfade back-shift stays
	// inside the previous excerpt.
	if minLen := int(minExcerptSeconds * sr); end-start < minLen {
		end = start + minLen
		if end > n {
			end = n
			start = end - minLen
			if start < 0 {
				start = 0
			}
		}
	}

	excerpt := make([]float64, end-start)
	copy(excerpt, signal.Samples[start:end])
	return excerpt
}

// applyFades applies a linear fade-in and fade-out to the excerpt in place.
func applyFades(excerpt []float64, sampleRate int) {
	fade := int(fadeSeconds * float64(sampleRate))
	if fade > len(excerpt)/2 {
		fade = len(excerpt) / 2
	}
	if fade == 0 {
		return
	}
	for i := 0; i < fade; i++ {
		gain := float64(i) / float64(fade)
		excerpt[i] *= gain
		excerpt[len(excerpt)-1-i] *= gain
	}
}
