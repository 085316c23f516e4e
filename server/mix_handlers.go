package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"AutoDJ/logger"
	"AutoDJ/model"
	"AutoDJ/storage"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type createMixRequest struct {
	Genre     string `json:"genre"`
	Title     string `json:"title"`
	MaxTracks int    `json:"maxTracks"`
}

// defaultMixCandidates is how many candidates a mix request searches for
// when the client does not ask for a specific number. Wider than a plain
// genre search so sparse genres still yield enough downloadable tracks.
const defaultMixCandidates = 50

func mixCandidateLimit(requested int) int {
	if requested <= 0 {
		return defaultMixCandidates
	}
	return requested
}

// CreateMixHandler searches for candidate tracks, persists them, creates a
// Mix record and launches the background pipeline. The response carries the
// Mix already in processing state; the pipeline completes asynchronously.
func (h *APIHandler) CreateMixHandler(w http.ResponseWriter, r *http.Request) {
	var req createMixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Genre == "" {
		respondError(w, http.StatusBadRequest, "genre is required")
		return
	}
	if req.Title == "" {
		req.Title = "Automated DJ Mix"
	}

	candidates, err := h.finder.SearchByGenre(r.Context(), req.Genre, mixCandidateLimit(req.MaxTracks))
	if err != nil {
		logger.Error("Mix candidate search failed",
			logger.String("genre", req.Genre), logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "track search failed")
		return
	}
	if len(candidates) == 0 {
		respondError(w, http.StatusNotFound, "no tracks found for genre")
		return
	}

	tracks := make([]*model.Track, 0, len(candidates))
	trackIDs := make([]string, 0, len(candidates))
	for i := range candidates {
		track := candidates[i]
		track.CreatedAt = time.Now()
		track.UpdatedAt = time.Now()
		if err := h.trackRepo.CreateTrack(&track); err != nil {
			logger.Warn("Failed to persist candidate track, dropping it",
				logger.String("trackId", track.ID), logger.ErrorField(err))
			continue
		}
		tracks = append(tracks, &track)
		trackIDs = append(trackIDs, track.ID)
	}
	if len(tracks) == 0 {
		respondError(w, http.StatusInternalServerError, "failed to persist candidate tracks")
		return
	}

	mix := &model.Mix{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Genre:     req.Genre,
		TrackIDs:  trackIDs,
		Status:    model.MixPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := h.mixRepo.CreateMix(mix); err != nil {
		logger.Error("Failed to create mix record", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to create mix")
		return
	}

	if err := h.runner.Launch(mix, tracks); err != nil {
		logger.Error("Failed to launch mix job",
			logger.String("mixId", mix.ID), logger.ErrorField(err))
		respondError(w, http.StatusConflict, "failed to start mix job")
		return
	}

	respondJSON(w, http.StatusAccepted, mix)
}

// GetMixesHandler lists mixes, optionally filtered by genre.
func (h *APIHandler) GetMixesHandler(w http.ResponseWriter, r *http.Request) {
	mixes, err := h.mixRepo.GetMixes(r.URL.Query().Get("genre"))
	if err != nil {
		logger.Error("Failed to list mixes", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to list mixes")
		return
	}
	respondJSON(w, http.StatusOK, mixes)
}

// GetMixHandler returns a single mix. A mix is always queryable by identity
// and always has a current status.
func (h *APIHandler) GetMixHandler(w http.ResponseWriter, r *http.Request) {
	mix, err := h.mixRepo.GetMixByID(mux.Vars(r)["id"])
	if err != nil {
		logger.Error("Failed to load mix", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to load mix")
		return
	}
	if mix == nil {
		respondError(w, http.StatusNotFound, "mix not found")
		return
	}
	respondJSON(w, http.StatusOK, mix)
}

// StreamMixHandler streams a completed mix's audio from object storage.
func (h *APIHandler) StreamMixHandler(w http.ResponseWriter, r *http.Request) {
	mix, err := h.mixRepo.GetMixByID(mux.Vars(r)["id"])
	if err != nil {
		logger.Error("Failed to load mix", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to load mix")
		return
	}
	if mix == nil {
		respondError(w, http.StatusNotFound, "mix not found")
		return
	}
	if mix.Status != model.MixCompleted || mix.FilePath == "" {
		respondError(w, http.StatusConflict, "mix is not completed")
		return
	}

	object, err := storage.GetMixObject(r.Context(), h.cfg.MinioBucket, mix.FilePath)
	if err != nil {
		logger.Error("Failed to open mix object",
			logger.String("mixId", mix.ID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "failed to open mix file")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	if _, err := io.Copy(w, object); err != nil {
		logger.Error("Error streaming mix file",
			logger.String("mixId", mix.ID), logger.ErrorField(err))
	}
}
