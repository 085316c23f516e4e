package audio

import (
	"AutoDJ/logger"
	"AutoDJ/model"
)

// AnalyzeSignal runs envelope extraction and highlight detection over a
// decoded signal. Analysis degradation (an empty or silent signal) is not an
// error: it produces an Analysis with an empty envelope and no highlights,
// and the assembler's fallback excerpt handles the rest.
func AnalyzeSignal(signal *AudioSignal) *model.Analysis {
	env, err := ExtractEnvelope(signal, DefaultFrameLength, DefaultHopLength)
	if err != nil {
		logger.Warn("Envelope extraction degraded to empty result", logger.ErrorField(err))
		return &model.Analysis{
			Envelope: model.Envelope{
				Values:      []float64{},
				FrameLength: DefaultFrameLength,
				HopLength:   DefaultHopLength,
				SampleRate:  AnalysisSampleRate,
			},
			Highlights: []model.Highlight{},
		}
	}

	duration := 0.0
	if signal != nil {
		duration = signal.Duration()
	}
	return &model.Analysis{
		Envelope:   env,
		Highlights: DetectHighlights(env, duration),
	}
}
