package audio

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"AutoDJ/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLoader serves pre-built signals by path and fails for paths it does
// not know, standing in for unreadable local audio.
type fakeLoader struct {
	signals map[string]*AudioSignal
}

func (l *fakeLoader) Load(_ context.Context, path string) (*AudioSignal, error) {
	signal, ok := l.signals[path]
	if !ok {
		return nil, errors.New("unreadable audio: " + path)
	}
	return signal, nil
}

func constantSignal(durationSec float64) *AudioSignal {
	n := int(durationSec * AnalysisSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5
	}
	return &AudioSignal{Samples: samples, SampleRate: AnalysisSampleRate}
}

// analyzedTrack builds a track with one highlight spanning [start, end].
func analyzedTrack(id string, start, end, intensity float64) *model.Track {
	return &model.Track{
		ID:        id,
		LocalPath: id + ".mp3",
		Analysis: &model.Analysis{
			Highlights: []model.Highlight{{
				Start:     start,
				End:       end,
				PeakTime:  (start + end) / 2,
				Intensity: intensity,
			}},
		},
	}
}

func TestAssembleThreeHighlightTracks(t *testing.T) {
	loader := &fakeLoader{signals: map[string]*AudioSignal{}}
	var tracks []*model.Track
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("t%d", i)
		tracks = append(tracks, analyzedTrack(id, 20, 40, 0.9-float64(i)*0.1))
		loader.signals[id+".mp3"] = constantSignal(60)
	}

	result, err := NewAssembler(loader).Assemble(context.Background(), tracks)
	require.NoError(t, err)
	require.Len(t, result.Contributed, 3)

	// Three 20-second excerpts overlapped by 2 seconds each:
	// 20 + 18 + 18 = 56 seconds.
	assert.InDelta(t, 56.0, result.Duration, 0.01)
	assert.Empty(t, result.Skipped)
}

func TestAssembleSingleTrackKeepsExcerptLength(t *testing.T) {
	loader := &fakeLoader{signals: map[string]*AudioSignal{
		"solo.mp3": constantSignal(60),
	}}
	tracks := []*model.Track{analyzedTrack("solo", 20, 40, 0.8)}

	result, err := NewAssembler(loader).Assemble(context.Background(), tracks)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, result.Duration, 0.01)
}

func TestAssembleCrossfadeShortensOutput(t *testing.T) {
	loader := &fakeLoader{signals: map[string]*AudioSignal{
		"a.mp3": constantSignal(60),
		"b.mp3": constantSignal(60),
	}}
	tracks := []*model.Track{
		analyzedTrack("a", 10, 30, 0.9),
		analyzedTrack("b", 5, 25, 0.7),
	}

	result, err := NewAssembler(loader).Assemble(context.Background(), tracks)
	require.NoError(t, err)

	sumExcerpts := 40.0
	assert.Less(t, result.Duration, sumExcerpts)
	assert.InDelta(t, 38.0, result.Duration, 0.01)
}

func TestAssembleFallbackExcerptForUnanalyzedTrack(t *testing.T) {
	loader := &fakeLoader{signals: map[string]*AudioSignal{
		"plain.mp3": constantSignal(120),
	}}
	// Analysis ran but found nothing: still contributes, from the midpoint.
	tracks := []*model.Track{{
		ID:        "plain",
		LocalPath: "plain.mp3",
		Analysis:  &model.Analysis{Highlights: []model.Highlight{}},
	}}

	result, err := NewAssembler(loader).Assemble(context.Background(), tracks)
	require.NoError(t, err)
	require.Len(t, result.Contributed, 1)
	assert.InDelta(t, 30.0, result.Duration, 0.01)
}

func TestAssembleFallbackClampedToShortTrack(t *testing.T) {
	loader := &fakeLoader{signals: map[string]*AudioSignal{
		"short.mp3": constantSignal(12),
	}}
	tracks := []*model.Track{{ID: "short", LocalPath: "short.mp3", Analysis: nil}}

	result, err := NewAssembler(loader).Assemble(context.Background(), tracks)
	require.NoError(t, err)
	require.Len(t, result.Contributed, 1)
	assert.InDelta(t, 12.0, result.Duration, 0.01)
}

func TestAssembleSkipsUnreadableTrack(t *testing.T) {
	loader := &fakeLoader{signals: map[string]*AudioSignal{
		"a.mp3": constantSignal(60),
		"c.mp3": constantSignal(60),
	}}
	tracks := []*model.Track{
		analyzedTrack("a", 20, 40, 0.9),
		analyzedTrack("b", 20, 40, 0.8), // no signal registered
		analyzedTrack("c", 20, 40, 0.7),
	}

	result, err := NewAssembler(loader).Assemble(context.Background(), tracks)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, result.Contributed)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "b", result.Skipped[0].TrackID)
	assert.InDelta(t, 38.0, result.Duration, 0.01)
}

func TestAssembleSkipsTrackWithoutLocalAudio(t *testing.T) {
	loader := &fakeLoader{signals: map[string]*AudioSignal{}}
	tracks := []*model.Track{{ID: "ghost"}}

	result, err := NewAssembler(loader).Assemble(context.Background(), tracks)
	require.NoError(t, err)
	assert.Empty(t, result.Contributed)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "no local audio", result.Skipped[0].Reason)
	assert.Zero(t, result.Duration)
}

func TestOrderByIntensity(t *testing.T) {
	low := analyzedTrack("low", 20, 40, 0.2)
	high := analyzedTrack("high", 20, 40, 0.9)
	none := &model.Track{ID: "none"}

	input := []*model.Track{low, none, high}
	ordered := OrderByIntensity(input)

	require.Len(t, ordered, 3)
	assert.Equal(t, "high", ordered[0].ID)
	assert.Equal(t, "low", ordered[1].ID)
	assert.Equal(t, "none", ordered[2].ID, "tracks without highlights sort last")

	// The caller's slice is untouched.
	assert.Equal(t, "low", input[0].ID)
}

func TestExtractExcerptEnforcesMinimumLength(t *testing.T) {
	signal := constantSignal(60)
	track := analyzedTrack("tiny", 10, 11, 0.9)

	excerpt := extractExcerpt(track, signal)
	assert.GreaterOrEqual(t, len(excerpt), int(minExcerptSeconds*AnalysisSampleRate))
}

func TestExtractExcerptClampsHighlightEnd(t *testing.T) {
	// Analysis thought the track was longer than the decoded audio.
	signal := constantSignal(30)
	track := analyzedTrack("drift", 20, 45, 0.9)

	excerpt := extractExcerpt(track, signal)
	assert.Len(t, excerpt, 10*AnalysisSampleRate)
}

func TestApplyFadesRampsEnds(t *testing.T) {
	excerpt := make([]float64, 10*AnalysisSampleRate)
	for i := range excerpt {
		excerpt[i] = 1.0
	}
	applyFades(excerpt, AnalysisSampleRate)

	assert.Zero(t, excerpt[0])
	assert.Zero(t, excerpt[len(excerpt)-1])
	// The middle is untouched.
	assert.Equal(t, 1.0, excerpt[len(excerpt)/2])
	// Halfway through the fade the gain is about 0.5.
	assert.InDelta(t, 0.5, excerpt[AnalysisSampleRate], 0.01)
}
