package audio

import (
	"errors"
	"math"

	"AutoDJ/model"
)

// Default analysis frame geometry.
const (
	DefaultFrameLength = 2048
	DefaultHopLength   = 1024
)

// ErrEmptySignal is returned when an envelope is requested for a signal
// with no samples.
var ErrEmptySignal = errors.New("audio signal is empty")

// ExtractEnvelope computes the short-term RMS energy envelope of a signal:
// overlapping frames of frameLength samples spaced hopLength apart, one RMS
// value per frame, normalized by the maximum observed value. A silent signal
// yields an all-zero envelope. The function is pure; its only failure mode
// is an empty signal.
func ExtractEnvelope(signal *AudioSignal, frameLength, hopLength int) (model.Envelope, error) {
	if signal == nil || len(signal.Samples) == 0 {
		return model.Envelope{}, ErrEmptySignal
	}
	if frameLength <= 0 {
		frameLength = DefaultFrameLength
	}
	if hopLength <= 0 {
		hopLength = DefaultHopLength
	}

	n := len(signal.Samples)
	numFrames := 1
	if n > frameLength {
		numFrames = 1 + (n-frameLength)/hopLength
	}

	values := make([]float64, numFrames)
	maxVal := 0.0
	for i := 0; i < numFrames; i++ {
		start := i * hopLength
		sum := 0.0
		count := 0
		for j := 0; j < frameLength && start+j < n; j++ {
			v := signal.Samples[start+j]
			sum += v * v
			count++
		}
		if count > 0 {
			values[i] = math.Sqrt(sum / float64(count))
		}
		if values[i] > maxVal {
			maxVal = values[i]
		}
	}

	if maxVal > 0 {
		for i := range values {
			values[i] /= maxVal
		}
	}

	return model.Envelope{
		Values:      values,
		FrameLength: frameLength,
		HopLength:   hopLength,
		SampleRate:  signal.SampleRate,
	}, nil
}
