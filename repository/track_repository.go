package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"AutoDJ/db"
	"AutoDJ/logger"
	"AutoDJ/model"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(track *model.Track) error
	GetTrackByID(id string) (*model.Track, error)
	GetTracks(genre string) ([]*model.Track, error)
	UpdateTrackMedia(track *model.Track) error
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	DB *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository() TrackRepository {
	return &mysqlTrackRepository{DB: db.DB}
}

// CreateTrack adds a new track to the database.
func (r *mysqlTrackRepository) CreateTrack(track *model.Track) error {
	query := `INSERT INTO tracks (id, title, artist, genre, source_url, local_path, duration, envelope, highlights, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for CreateTrack: %w", err)
	}
	defer stmt.Close()

	envelopeJSON, highlightsJSON, err := marshalAnalysis(track.Analysis)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = stmt.Exec(track.ID, track.Title, track.Artist, track.Genre, track.SourceURL,
		track.LocalPath, track.Duration, envelopeJSON, highlightsJSON, now, now)
	if err != nil {
		return fmt.Errorf("failed to execute CreateTrack: %w", err)
	}
	logger.Debug("Track created", logger.String("trackId", track.ID), logger.String("title", track.Title))
	return nil
}

// GetTrackByID retrieves a track by its ID. Returns (nil, nil) if not found.
func (r *mysqlTrackRepository) GetTrackByID(id string) (*model.Track, error) {
	query := `SELECT id, title, artist, genre, source_url, local_path, duration, envelope, highlights, created_at, updated_at
	           FROM tracks WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan track by ID %s: %w", id, err)
	}
	return track, nil
}

// GetTracks retrieves all tracks, optionally filtered by genre.
func (r *mysqlTrackRepository) GetTracks(genre string) ([]*model.Track, error) {
	query := `SELECT id, title, artist, genre, source_url, local_path, duration, envelope, highlights, created_at, updated_at
	           FROM tracks`
	args := []interface{}{}
	if genre != "" {
		query += ` WHERE genre = ?`
		args = append(args, genre)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in GetTracks: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetTracks: %w", err)
	}

	return tracks, nil
}

// UpdateTrackMedia persists the retrieval and analysis result of a track:
// local path, duration, envelope and highlights.
func (r *mysqlTrackRepository) UpdateTrackMedia(track *model.Track) error {
	query := `UPDATE tracks SET local_path = ?, duration = ?, envelope = ?, highlights = ?, updated_at = ? WHERE id = ?`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for UpdateTrackMedia: %w", err)
	}
	defer stmt.Close()

	envelopeJSON, highlightsJSON, err := marshalAnalysis(track.Analysis)
	if err != nil {
		return err
	}

	_, err = stmt.Exec(track.LocalPath, track.Duration, envelopeJSON, highlightsJSON, time.Now(), track.ID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateTrackMedia for track ID %s: %w", track.ID, err)
	}
	logger.Debug("Track media updated", logger.String("trackId", track.ID),
		logger.Float64("duration", track.Duration))
	return nil
}

// marshalAnalysis serializes an analysis into the envelope and highlights
// columns. A nil analysis is stored as NULL in both.
func marshalAnalysis(a *model.Analysis) (interface{}, interface{}, error) {
	if a == nil {
		return nil, nil, nil
	}
	envelopeJSON, err := json.Marshal(a.Envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	highlights := a.Highlights
	if highlights == nil {
		highlights = []model.Highlight{}
	}
	highlightsJSON, err := json.Marshal(highlights)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal highlights: %w", err)
	}
	return string(envelopeJSON), string(highlightsJSON), nil
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrack(row rowScanner) (*model.Track, error) {
	track := &model.Track{}
	var localPath, envelopeJSON, highlightsJSON sql.NullString
	err := row.Scan(&track.ID, &track.Title, &track.Artist, &track.Genre, &track.SourceURL,
		&localPath, &track.Duration, &envelopeJSON, &highlightsJSON, &track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return nil, err
	}
	track.LocalPath = localPath.String

	if envelopeJSON.Valid && envelopeJSON.String != "" {
		analysis := &model.Analysis{Highlights: []model.Highlight{}}
		if err := json.Unmarshal([]byte(envelopeJSON.String), &analysis.Envelope); err != nil {
			return nil, fmt.Errorf("failed to unmarshal envelope for track %s: %w", track.ID, err)
		}
		if highlightsJSON.Valid && highlightsJSON.String != "" {
			if err := json.Unmarshal([]byte(highlightsJSON.String), &analysis.Highlights); err != nil {
				return nil, fmt.Errorf("failed to unmarshal highlights for track %s: %w", track.ID, err)
			}
		}
		track.Analysis = analysis
	}
	return track, nil
}
