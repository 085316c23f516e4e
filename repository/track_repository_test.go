package repository

import (
	"database/sql"
	"testing"
	"time"

	"AutoDJ/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalAnalysis(t *testing.T) {
	env, hl, err := marshalAnalysis(nil)
	require.NoError(t, err)
	assert.Nil(t, env, "unanalyzed tracks store NULL")
	assert.Nil(t, hl)

	analysis := &model.Analysis{
		Envelope: model.Envelope{
			Values:      []float64{0.1, 0.5, 1.0},
			FrameLength: 2048,
			HopLength:   1024,
			SampleRate:  22050,
		},
	}
	env, hl, err = marshalAnalysis(analysis)
	require.NoError(t, err)
	assert.Contains(t, env.(string), `"frameLength":2048`)
	// Nil highlights serialize as an empty list, not JSON null.
	assert.Equal(t, "[]", hl.(string))
}

// fakeRow plays the role of *sql.Row for scanTrack.
type fakeRow struct {
	values []interface{}
}

func (r *fakeRow) Scan(dest ...interface{}) error {
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *float64:
			*d = v.(float64)
		case *sql.NullString:
			if s, ok := v.(string); ok {
				*d = sql.NullString{String: s, Valid: true}
			} else {
				*d = sql.NullString{}
			}
		case *time.Time:
			*d = v.(time.Time)
		}
	}
	return nil
}

func trackRow(envelope, highlights interface{}) *fakeRow {
	now := time.Now()
	return &fakeRow{values: []interface{}{
		"track-1", "Title", "Artist", "house", "https://example.com/t", "/tmp/track-1.mp3",
		180.0, envelope, highlights, now, now,
	}}
}

func TestScanTrackWithAnalysis(t *testing.T) {
	envJSON := `{"values":[0.2,1.0],"frameLength":2048,"hopLength":1024,"sampleRate":22050}`
	hlJSON := `[{"start":20,"end":40,"peakTime":30,"intensity":0.9}]`

	track, err := scanTrack(trackRow(envJSON, hlJSON))
	require.NoError(t, err)
	require.NotNil(t, track.Analysis)
	assert.Equal(t, []float64{0.2, 1.0}, track.Analysis.Envelope.Values)
	require.Len(t, track.Analysis.Highlights, 1)
	assert.Equal(t, 30.0, track.Analysis.Highlights[0].PeakTime)
	assert.Equal(t, "/tmp/track-1.mp3", track.LocalPath)
}

func TestScanTrackWithoutAnalysis(t *testing.T) {
	track, err := scanTrack(trackRow(nil, nil))
	require.NoError(t, err)
	assert.Nil(t, track.Analysis, "NULL envelope means the track was never analyzed")
	assert.Equal(t, "track-1", track.ID)
	assert.Equal(t, 180.0, track.Duration)
}

func TestScanTrackEmptyHighlights(t *testing.T) {
	envJSON := `{"values":[1.0],"frameLength":2048,"hopLength":1024,"sampleRate":22050}`

	track, err := scanTrack(trackRow(envJSON, "[]"))
	require.NoError(t, err)
	require.NotNil(t, track.Analysis)
	assert.NotNil(t, track.Analysis.Highlights)
	assert.Empty(t, track.Analysis.Highlights)
}
