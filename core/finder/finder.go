package finder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"AutoDJ/cache"
	"AutoDJ/config"
	"AutoDJ/logger"
	"AutoDJ/model"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Finder locates and retrieves source tracks. Search and download both go
// through a shared rate limiter (remote services throttle aggressively) and
// a circuit breaker so a dead remote trips fast instead of being hammered
// by every queued track.
type Finder struct {
	cfg     *config.Config
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	http    *retryablehttp.Client
}

// New creates a Finder.
func New(cfg *config.Config) *Finder {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil

	settings := gobreaker.Settings{
		Name:        "track-retrieval",
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}

	return &Finder{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
		breaker: gobreaker.NewCircuitBreaker(settings),
		http:    client,
	}
}

// SearchByGenre returns candidate track metadata for a genre search term.
// Results are cached in Redis; a cache failure degrades to a live search.
func (f *Finder) SearchByGenre(ctx context.Context, term string, maxResults int) ([]model.Track, error) {
	if maxResults <= 0 {
		maxResults = f.cfg.MaxSearchResults
	}

	if cached, err := cache.GetSearchResults(ctx, term); err != nil {
		logger.Warn("Search cache read failed", logger.String("term", term), logger.ErrorField(err))
	} else if cached != nil {
		logger.Debug("Search cache hit", logger.String("term", term), logger.Int("results", len(cached)))
		return cached, nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	out, err := f.breaker.Execute(func() (interface{}, error) {
		return f.runSearch(ctx, term, maxResults)
	})
	if err != nil {
		return nil, err
	}
	tracks := parseSearchOutput(out.([]byte), term)

	if err := cache.SetSearchResults(ctx, term, tracks, f.cfg.SearchCacheTTL); err != nil {
		logger.Warn("Search cache write failed", logger.String("term", term), logger.ErrorField(err))
	}
	return tracks, nil
}

func (f *Finder) runSearch(ctx context.Context, term string, maxResults int) ([]byte, error) {
	query := fmt.Sprintf("ytsearch%d:%s music mix", maxResults, term)
	cmd := exec.CommandContext(ctx, f.cfg.YtdlpPath,
		"-J",
		"--flat-playlist",
		"--no-warnings",
		"--ignore-errors",
		query,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("track search failed for %q: %w (%s)", term, err, stderr.String())
	}
	return out, nil
}

// searchResult mirrors the yt-dlp flat-playlist JSON output.
type searchResult struct {
	Entries []struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Uploader string  `json:"uploader"`
		Duration float64 `json:"duration"`
	} `json:"entries"`
}

// parseSearchOutput converts yt-dlp search JSON into track metadata. Entries
// without an ID are dropped; a duration is optional at this stage.
func parseSearchOutput(data []byte, genre string) []model.Track {
	var result searchResult
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warn("Failed to parse search output", logger.ErrorField(err))
		return []model.Track{}
	}

	tracks := make([]model.Track, 0, len(result.Entries))
	for _, entry := range result.Entries {
		if entry.ID == "" {
			continue
		}
		title := entry.Title
		if title == "" {
			title = "Unknown Title"
		}
		artist := entry.Uploader
		if artist == "" {
			artist = "Unknown Artist"
		}
		tracks = append(tracks, model.Track{
			ID:        uuid.NewString(),
			Title:     title,
			Artist:    artist,
			Genre:     genre,
			SourceURL: "https://www.youtube.com/watch?v=" + entry.ID,
			Duration:  entry.Duration,
		})
	}
	return tracks
}

// Download retrieves a track's audio to the local track directory and
// returns the file path. Direct http(s) audio URLs are fetched with the
// retrying HTTP client; everything else goes through yt-dlp.
func (f *Finder) Download(ctx context.Context, track *model.Track) (string, error) {
	if track.SourceURL == "" {
		return "", fmt.Errorf("track %s has no source URL", track.ID)
	}
	if err := os.MkdirAll(f.cfg.TrackDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create track directory: %w", err)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	outPath := filepath.Join(f.cfg.TrackDir, track.ID+".mp3")
	_, err := f.breaker.Execute(func() (interface{}, error) {
		if isDirectAudioURL(track.SourceURL) {
			return nil, f.fetchDirect(ctx, track.SourceURL, outPath)
		}
		return nil, f.fetchWithYtdlp(ctx, track.SourceURL, outPath)
	})
	if err != nil {
		return "", err
	}

	logger.Info("Track downloaded",
		logger.String("trackId", track.ID),
		logger.String("path", outPath))
	return outPath, nil
}

// isDirectAudioURL reports whether the locator points straight at an audio
// file rather than a page that needs an extractor.
func isDirectAudioURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	switch strings.ToLower(filepath.Ext(u.Path)) {
	case ".mp3", ".wav", ".ogg", ".flac", ".m4a", ".aac":
		return true
	}
	return false
}

func (f *Finder) fetchDirect(ctx context.Context, rawURL, outPath string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("direct download failed for %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("direct download failed for %s: status %d", rawURL, resp.StatusCode)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	return nil
}

func (f *Finder) fetchWithYtdlp(ctx context.Context, rawURL, outPath string) error {
	// yt-dlp appends the extension itself.
	template := strings.TrimSuffix(outPath, ".mp3") + ".%(ext)s"
	cmd := exec.CommandContext(ctx, f.cfg.YtdlpPath,
		rawURL,
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", strings.TrimSuffix(f.cfg.AudioBitrate, "k"),
		"--output", template,
		"--no-warnings",
		"--no-part",
		"--no-cache-dir",
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yt-dlp download failed for %s: %w (%s)", rawURL, err, stderr.String())
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("yt-dlp reported success but %s is missing: %w", outPath, err)
	}
	return nil
}
