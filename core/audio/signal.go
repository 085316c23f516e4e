package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"

	"AutoDJ/logger"
)

// AnalysisSampleRate is the fixed mono sample rate all signals are decoded
// to. Analysis and assembly both run at this rate, so excerpt boundaries
// computed from an envelope line up with the decoded samples.
const AnalysisSampleRate = 22050

// AudioSignal is a decoded mono audio signal. It is transient: produced by
// decoding a source file, consumed by analysis or assembly, then discarded.
type AudioSignal struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the signal length in seconds.
func (s *AudioSignal) Duration() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// SignalLoader decodes a local audio file into an AudioSignal.
type SignalLoader interface {
	Load(ctx context.Context, path string) (*AudioSignal, error)
}

// FFmpegDecoder implements SignalLoader by shelling out to ffmpeg and
// reading raw 32-bit float PCM from its stdout.
type FFmpegDecoder struct {
	ffmpegPath string
}

// NewFFmpegDecoder creates a new FFmpegDecoder.
func NewFFmpegDecoder(ffmpegPath string) *FFmpegDecoder {
	return &FFmpegDecoder{ffmpegPath: ffmpegPath}
}

// Load decodes an audio file to mono float PCM at AnalysisSampleRate.
func (d *FFmpegDecoder) Load(ctx context.Context, path string) (*AudioSignal, error) {
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-v", "error",
		"-i", path,
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", AnalysisSampleRate),
		"-",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	data, err := io.ReadAll(stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded audio: %w", err)
	}
	if waitErr := cmd.Wait(); waitErr != nil && len(data) == 0 {
		return nil, fmt.Errorf("ffmpeg decode failed for %s: %w (%s)", path, waitErr, stderr.String())
	}

	numSamples := len(data) / 4
	if numSamples == 0 {
		return nil, fmt.Errorf("no audio data decoded from %s (%s)", path, stderr.String())
	}
	if stderr.Len() > 0 {
		logger.Warn("ffmpeg reported errors during decode",
			logger.String("path", path), logger.String("stderr", stderr.String()))
	}

	samples := make([]float64, numSamples)
	for i := 0; i < numSamples; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		samples[i] = float64(math.Float32frombits(bits))
	}

	return &AudioSignal{Samples: samples, SampleRate: AnalysisSampleRate}, nil
}
