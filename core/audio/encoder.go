package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"AutoDJ/logger"
)

// Encoder writes an assembled mix buffer to a compressed audio file.
type Encoder interface {
	Encode(ctx context.Context, buffer []float64, sampleRate int, outPath string) error
}

// FFmpegEncoder implements Encoder by piping raw PCM into ffmpeg.
type FFmpegEncoder struct {
	ffmpegPath string
	bitrate    string // e.g. "192k"
}

// NewFFmpegEncoder creates a new FFmpegEncoder.
func NewFFmpegEncoder(ffmpegPath, bitrate string) *FFmpegEncoder {
	return &FFmpegEncoder{ffmpegPath: ffmpegPath, bitrate: bitrate}
}

// Encode writes the buffer to outPath as MP3 at the configured bitrate.
func (e *FFmpegEncoder) Encode(ctx context.Context, buffer []float64, sampleRate int, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", outPath, err)
	}

	pcm := make([]byte, len(buffer)*4)
	for i, v := range buffer {
		// Clip before the float32 narrowing so summed overlaps can't wrap.
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint32(pcm[i*4:], math.Float32bits(float32(v)))
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-y",
		"-f", "f32le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", "1",
		"-i", "-",
		"-b:a", e.bitrate,
		outPath,
	)
	cmd.Stdin = bytes.NewReader(pcm)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg encode failed for %s: %w (%s)", outPath, err, stderr.String())
	}

	logger.Info("Mix encoded",
		logger.String("outPath", outPath),
		logger.String("bitrate", e.bitrate),
		logger.Float64("duration", float64(len(buffer))/float64(sampleRate)))
	return nil
}
