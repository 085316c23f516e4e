package model

// Envelope is a normalized short-term energy curve: one RMS value per
// analysis frame, scaled into [0, 1] by the maximum observed value. A silent
// signal produces an all-zero envelope. The frame metadata is required to
// convert frame indices back to time.
type Envelope struct {
	Values      []float64 `json:"values"`
	FrameLength int       `json:"frameLength"`
	HopLength   int       `json:"hopLength"`
	SampleRate  int       `json:"sampleRate"`
}

// TimeAt converts a frame index to its time offset in seconds.
func (e Envelope) TimeAt(frame int) float64 {
	if e.SampleRate == 0 {
		return 0
	}
	return float64(frame) * float64(e.HopLength) / float64(e.SampleRate)
}

// FrameRate returns the number of analysis frames per second.
func (e Envelope) FrameRate() float64 {
	if e.HopLength == 0 {
		return 0
	}
	return float64(e.SampleRate) / float64(e.HopLength)
}

// Empty reports whether the envelope carries no frames.
func (e Envelope) Empty() bool {
	return len(e.Values) == 0
}
