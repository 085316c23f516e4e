package server

import (
	"encoding/json"
	"net/http"

	"AutoDJ/config"
	"AutoDJ/core/audio"
	"AutoDJ/core/finder"
	"AutoDJ/core/mixjob"
	"AutoDJ/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	trackRepo repository.TrackRepository
	mixRepo   repository.MixRepository
	finder    *finder.Finder
	loader    audio.SignalLoader
	runner    *mixjob.Runner
	cfg       *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	trackRepo repository.TrackRepository,
	mixRepo repository.MixRepository,
	trackFinder *finder.Finder,
	loader audio.SignalLoader,
	runner *mixjob.Runner,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		trackRepo: trackRepo,
		mixRepo:   mixRepo,
		finder:    trackFinder,
		loader:    loader,
		runner:    runner,
		cfg:       cfg,
	}
}

// supportedGenres is the fixed list offered to clients.
var supportedGenres = []string{
	"EDM", "House", "Techno", "Trance", "Dubstep", "Drum and Bass",
	"Hip Hop", "Pop", "Rock", "Jazz", "Classical", "Ambient", "Lofi",
}

// GetGenresHandler returns the list of supported music genres.
func (h *APIHandler) GetGenresHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"genres": supportedGenres})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
