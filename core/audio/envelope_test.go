package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineSignal builds a constant-amplitude test tone.
func sineSignal(durationSec float64, amplitude float64) *AudioSignal {
	n := int(durationSec * AnalysisSampleRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2*math.Pi*220*float64(i)/AnalysisSampleRate)
	}
	return &AudioSignal{Samples: samples, SampleRate: AnalysisSampleRate}
}

func TestExtractEnvelopeNormalizesToOne(t *testing.T) {
	signal := sineSignal(10, 0.3)

	env, err := ExtractEnvelope(signal, DefaultFrameLength, DefaultHopLength)
	require.NoError(t, err)
	require.NotEmpty(t, env.Values)

	maxVal := 0.0
	for _, v := range env.Values {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
		if v > maxVal {
			maxVal = v
		}
	}
	assert.InDelta(t, 1.0, maxVal, 1e-9, "a non-silent signal must normalize to max 1.0")
}

func TestExtractEnvelopeSilenceIsAllZero(t *testing.T) {
	signal := &AudioSignal{
		Samples:    make([]float64, 5*AnalysisSampleRate),
		SampleRate: AnalysisSampleRate,
	}

	env, err := ExtractEnvelope(signal, DefaultFrameLength, DefaultHopLength)
	require.NoError(t, err)
	require.NotEmpty(t, env.Values)
	for _, v := range env.Values {
		assert.Zero(t, v)
	}
}

func TestExtractEnvelopeEmptySignal(t *testing.T) {
	_, err := ExtractEnvelope(&AudioSignal{SampleRate: AnalysisSampleRate}, DefaultFrameLength, DefaultHopLength)
	assert.ErrorIs(t, err, ErrEmptySignal)

	_, err = ExtractEnvelope(nil, DefaultFrameLength, DefaultHopLength)
	assert.ErrorIs(t, err, ErrEmptySignal)
}

func TestExtractEnvelopeMetadata(t *testing.T) {
	signal := sineSignal(10, 0.5)

	env, err := ExtractEnvelope(signal, DefaultFrameLength, DefaultHopLength)
	require.NoError(t, err)

	assert.Equal(t, DefaultFrameLength, env.FrameLength)
	assert.Equal(t, DefaultHopLength, env.HopLength)
	assert.Equal(t, AnalysisSampleRate, env.SampleRate)

	// One value per hop over the signal.
	expectedFrames := 1 + (len(signal.Samples)-DefaultFrameLength)/DefaultHopLength
	assert.Equal(t, expectedFrames, len(env.Values))

	// Frame index converts back to time via the hop length.
	assert.InDelta(t, float64(DefaultHopLength)/float64(AnalysisSampleRate), env.TimeAt(1), 1e-9)
}

func TestExtractEnvelopeShortSignal(t *testing.T) {
	// Shorter than one frame still yields a single-frame envelope.
	signal := sineSignal(0.01, 0.5)
	require.Less(t, len(signal.Samples), DefaultFrameLength)

	env, err := ExtractEnvelope(signal, DefaultFrameLength, DefaultHopLength)
	require.NoError(t, err)
	assert.Len(t, env.Values, 1)
	assert.InDelta(t, 1.0, env.Values[0], 1e-9)
}
