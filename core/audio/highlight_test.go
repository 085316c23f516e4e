package audio

import (
	"math"
	"testing"

	"AutoDJ/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spikeSignal builds a quiet tone with a triangular energy burst peaking at
// peakSec, the synthetic shape of a track with one loud moment.
func spikeSignal(durationSec, peakSec, burstHalfWidthSec float64) *AudioSignal {
	n := int(durationSec * AnalysisSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		tm := float64(i) / AnalysisSampleRate
		amp := 0.01
		if d := math.Abs(tm - peakSec); d < burstHalfWidthSec {
			amp = 0.01 + 0.9*(1-d/burstHalfWidthSec)
		}
		samples[i] = amp * math.Sin(2*math.Pi*220*tm)
	}
	return &AudioSignal{Samples: samples, SampleRate: AnalysisSampleRate}
}

func TestDetectHighlightsFindsInjectedSpike(t *testing.T) {
	signal := spikeSignal(60, 30, 2)

	env, err := ExtractEnvelope(signal, DefaultFrameLength, DefaultHopLength)
	require.NoError(t, err)

	highlights := DetectHighlights(env, 60)
	require.NotEmpty(t, highlights)

	top := highlights[0]
	assert.InDelta(t, 30.0, top.PeakTime, 1.0, "peak should sit near the injected spike")
	assert.InDelta(t, 20.0, top.Start, 1.5)
	assert.InDelta(t, 40.0, top.End, 1.5)
}

func TestDetectHighlightsBounds(t *testing.T) {
	// Spike close to the start: the window must clamp at 0.
	signal := spikeSignal(60, 3, 2)

	env, err := ExtractEnvelope(signal, DefaultFrameLength, DefaultHopLength)
	require.NoError(t, err)

	for _, h := range DetectHighlights(env, 60) {
		assert.GreaterOrEqual(t, h.Start, 0.0)
		assert.LessOrEqual(t, h.Start, h.PeakTime)
		assert.LessOrEqual(t, h.PeakTime, h.End)
		assert.LessOrEqual(t, h.End, 60.0)
		assert.LessOrEqual(t, h.End-h.Start, 20.0+1e-9)
	}
}

func TestDetectHighlightsRankingAndCap(t *testing.T) {
	// Many spikes, well separated; only the top 3 survive, sorted by
	// descending intensity.
	env := model.Envelope{
		FrameLength: DefaultFrameLength,
		HopLength:   DefaultHopLength,
		SampleRate:  AnalysisSampleRate,
	}
	frameRate := env.FrameRate()
	numFrames := int(frameRate * 300)
	env.Values = make([]float64, numFrames)
	for i := range env.Values {
		env.Values[i] = 0.05
	}
	// Five isolated spikes of distinct heights, 40s apart.
	heights := []float64{0.4, 0.9, 0.6, 1.0, 0.5}
	for k, h := range heights {
		center := int(frameRate * float64(40*(k+1)))
		for off := -2; off <= 2; off++ {
			env.Values[center+off] = h * (1 - 0.1*math.Abs(float64(off)))
		}
	}

	highlights := DetectHighlights(env, 300)
	require.Len(t, highlights, 3)
	for i := 1; i < len(highlights); i++ {
		assert.GreaterOrEqual(t, highlights[i-1].Intensity, highlights[i].Intensity)
	}
}

func TestDetectHighlightsPeakSpacing(t *testing.T) {
	// Two spikes 2 seconds apart collapse into one accepted peak, since the
	// minimum spacing is 5 seconds.
	env := model.Envelope{
		FrameLength: DefaultFrameLength,
		HopLength:   DefaultHopLength,
		SampleRate:  AnalysisSampleRate,
	}
	frameRate := env.FrameRate()
	env.Values = make([]float64, int(frameRate*60))
	for i := range env.Values {
		env.Values[i] = 0.05
	}
	for _, sec := range []float64{30, 32} {
		center := int(frameRate * sec)
		for off := -2; off <= 2; off++ {
			env.Values[center+off] = 1.0 - 0.1*math.Abs(float64(off))
		}
	}

	highlights := DetectHighlights(env, 60)
	assert.Len(t, highlights, 1)
}

func TestDetectHighlightsFlatSignal(t *testing.T) {
	signal := &AudioSignal{
		Samples:    make([]float64, 60*AnalysisSampleRate),
		SampleRate: AnalysisSampleRate,
	}
	env, err := ExtractEnvelope(signal, DefaultFrameLength, DefaultHopLength)
	require.NoError(t, err)

	highlights := DetectHighlights(env, 60)
	assert.NotNil(t, highlights)
	assert.Empty(t, highlights)
}

func TestDetectHighlightsDegenerateEnvelope(t *testing.T) {
	assert.Empty(t, DetectHighlights(model.Envelope{}, 60))
	assert.Empty(t, DetectHighlights(model.Envelope{Values: []float64{1}, HopLength: DefaultHopLength, SampleRate: AnalysisSampleRate}, 0))
}
