package finder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"AutoDJ/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchOutput(t *testing.T) {
	data := []byte(`{
		"entries": [
			{"id": "abc123", "title": "Deep House Mix", "uploader": "DJ Someone", "duration": 3600},
			{"id": "def456", "title": "", "uploader": "", "duration": 0},
			{"id": "", "title": "No ID Entry", "uploader": "Nobody"}
		]
	}`)

	tracks := parseSearchOutput(data, "house")
	require.Len(t, tracks, 2, "entries without an ID are dropped")

	assert.Equal(t, "Deep House Mix", tracks[0].Title)
	assert.Equal(t, "DJ Someone", tracks[0].Artist)
	assert.Equal(t, "house", tracks[0].Genre)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", tracks[0].SourceURL)
	assert.Equal(t, 3600.0, tracks[0].Duration)
	assert.NotEmpty(t, tracks[0].ID)

	assert.Equal(t, "Unknown Title", tracks[1].Title)
	assert.Equal(t, "Unknown Artist", tracks[1].Artist)

	assert.NotEqual(t, tracks[0].ID, tracks[1].ID)
}

func TestParseSearchOutputMalformed(t *testing.T) {
	tracks := parseSearchOutput([]byte("not json at all"), "techno")
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)
}

func TestParseSearchOutputEmpty(t *testing.T) {
	tracks := parseSearchOutput([]byte(`{"entries": []}`), "techno")
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)
}

func TestIsDirectAudioURL(t *testing.T) {
	cases := []struct {
		url    string
		direct bool
	}{
		{"https://cdn.example.com/song.mp3", true},
		{"http://cdn.example.com/song.WAV", true},
		{"https://cdn.example.com/audio/track.flac", true},
		{"https://cdn.example.com/song.m4a?sig=abc", true},
		{"https://www.youtube.com/watch?v=abc123", false},
		{"https://cdn.example.com/song.mp4", false},
		{"ftp://cdn.example.com/song.mp3", false},
		{"not a url", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.direct, isDirectAudioURL(c.url), "url %q", c.url)
	}
}

func TestFetchDirect(t *testing.T) {
	payload := []byte("fake mp3 bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	f := New(&config.Config{})
	outPath := filepath.Join(t.TempDir(), "track.mp3")
	require.NoError(t, f.fetchDirect(context.Background(), srv.URL+"/track.mp3", outPath))

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFetchDirectNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := New(&config.Config{})
	f.http.RetryMax = 0
	outPath := filepath.Join(t.TempDir(), "track.mp3")
	err := f.fetchDirect(context.Background(), srv.URL+"/missing.mp3", outPath)
	require.Error(t, err)
	assert.NoFileExists(t, outPath)
}
