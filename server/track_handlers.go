package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"AutoDJ/core/audio"
	"AutoDJ/logger"
	"AutoDJ/model"

	"github.com/google/uuid"
)

type genreSearchRequest struct {
	SearchTerm string `json:"searchTerm"`
}

// SearchByGenreHandler searches the remote source for candidate tracks by
// genre. Purely informational; nothing is persisted.
func (h *APIHandler) SearchByGenreHandler(w http.ResponseWriter, r *http.Request) {
	var req genreSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SearchTerm == "" {
		respondError(w, http.StatusBadRequest, "searchTerm is required")
		return
	}

	tracks, err := h.finder.SearchByGenre(r.Context(), req.SearchTerm, 0)
	if err != nil {
		logger.Error("Genre search failed",
			logger.String("term", req.SearchTerm), logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "track search failed")
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

type createTrackRequest struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Genre     string `json:"genre"`
	SourceURL string `json:"sourceUrl"`
}

// CreateTrackHandler adds a new track record from client-supplied metadata.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req createTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.SourceURL == "" {
		respondError(w, http.StatusBadRequest, "title and sourceUrl are required")
		return
	}

	track := &model.Track{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Artist:    req.Artist,
		Genre:     req.Genre,
		SourceURL: req.SourceURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.trackRepo.CreateTrack(track); err != nil {
		logger.Error("Failed to create track", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to create track")
		return
	}
	respondJSON(w, http.StatusCreated, track)
}

// GetTracksHandler lists tracks, optionally filtered by genre.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.trackRepo.GetTracks(r.URL.Query().Get("genre"))
	if err != nil {
		logger.Error("Failed to list tracks", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list tracks")
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

type downloadTrackRequest struct {
	ID string `json:"id"`
}

// DownloadTrackHandler retrieves and analyzes a single track synchronously,
// persisting its local path, duration, envelope and highlights.
func (h *APIHandler) DownloadTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req downloadTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	track, err := h.trackRepo.GetTrackByID(req.ID)
	if err != nil {
		logger.Error("Failed to load track", logger.String("trackId", req.ID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to load track")
		return
	}
	if track == nil {
		respondError(w, http.StatusNotFound, "track not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.TrackTimeout)
	defer cancel()

	localPath, err := h.finder.Download(ctx, track)
	if err != nil {
		logger.Error("Track download failed", logger.String("trackId", track.ID), logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "track download failed")
		return
	}
	track.LocalPath = localPath

	signal, err := h.loader.Load(ctx, localPath)
	if err != nil {
		logger.Warn("Track decode failed, storing empty analysis",
			logger.String("trackId", track.ID), logger.ErrorField(err))
		track.Analysis = audio.AnalyzeSignal(nil)
	} else {
		track.Duration = signal.Duration()
		track.Analysis = audio.AnalyzeSignal(signal)
	}

	if err := h.trackRepo.UpdateTrackMedia(track); err != nil {
		logger.Error("Failed to persist track analysis",
			logger.String("trackId", track.ID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to persist track")
		return
	}
	respondJSON(w, http.StatusOK, track)
}
