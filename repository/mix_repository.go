package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"AutoDJ/db"
	"AutoDJ/logger"
	"AutoDJ/model"
)

// ErrInvalidTransition is returned when a status update would move a mix
// backwards or out of a terminal state.
var ErrInvalidTransition = errors.New("invalid mix status transition")

// MixRepository defines the interface for mix data operations. Status
// updates are guarded so the pending -> processing -> completed|failed
// lifecycle is one-directional even with concurrent writers.
type MixRepository interface {
	CreateMix(mix *model.Mix) error
	GetMixByID(id string) (*model.Mix, error)
	GetMixes(genre string) ([]*model.Mix, error)
	MarkProcessing(id string) error
	CompleteMix(id string, duration float64, filePath string) error
	FailMix(id string) error
}

// mysqlMixRepository implements MixRepository for MySQL.
type mysqlMixRepository struct {
	DB *sql.DB
}

// NewMySQLMixRepository creates a new instance of mysqlMixRepository.
func NewMySQLMixRepository() MixRepository {
	return &mysqlMixRepository{DB: db.DB}
}

// CreateMix adds a new mix in pending state.
func (r *mysqlMixRepository) CreateMix(mix *model.Mix) error {
	trackIDsJSON, err := json.Marshal(mix.TrackIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal track IDs: %w", err)
	}

	query := `INSERT INTO mixes (id, title, genre, track_ids, duration, file_path, status, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for CreateMix: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	_, err = stmt.Exec(mix.ID, mix.Title, mix.Genre, string(trackIDsJSON),
		mix.Duration, mix.FilePath, string(mix.Status), now, now)
	if err != nil {
		return fmt.Errorf("failed to execute CreateMix: %w", err)
	}
	logger.Info("Mix created", logger.String("mixId", mix.ID), logger.String("title", mix.Title))
	return nil
}

// GetMixByID retrieves a mix by its ID. Returns (nil, nil) if not found.
func (r *mysqlMixRepository) GetMixByID(id string) (*model.Mix, error) {
	query := `SELECT id, title, genre, track_ids, duration, file_path, status, created_at, updated_at
	           FROM mixes WHERE id = ?`
	row := r.DB.QueryRow(query, id)

	mix, err := scanMix(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan mix by ID %s: %w", id, err)
	}
	return mix, nil
}

// GetMixes retrieves all mixes, optionally filtered by genre.
func (r *mysqlMixRepository) GetMixes(genre string) ([]*model.Mix, error) {
	query := `SELECT id, title, genre, track_ids, duration, file_path, status, created_at, updated_at
	           FROM mixes`
	args := []interface{}{}
	if genre != "" {
		query += ` WHERE genre = ?`
		args = append(args, genre)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mixes: %w", err)
	}
	defer rows.Close()

	mixes := make([]*model.Mix, 0)
	for rows.Next() {
		mix, err := scanMix(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mix in GetMixes: %w", err)
		}
		mixes = append(mixes, mix)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetMixes: %w", err)
	}

	return mixes, nil
}

// MarkProcessing moves a pending mix to processing.
func (r *mysqlMixRepository) MarkProcessing(id string) error {
	return r.transition(id, `UPDATE mixes SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		model.MixProcessing, model.MixPending)
}

// CompleteMix terminates a processing mix as completed, recording the final
// duration and the storage locator in the same statement. A mix to which no
// track contributed completes with zero duration and an empty locator.
func (r *mysqlMixRepository) CompleteMix(id string, duration float64, filePath string) error {
	query := `UPDATE mixes SET status = ?, duration = ?, file_path = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.DB.Exec(query, string(model.MixCompleted), duration, filePath, time.Now(), id, string(model.MixProcessing))
	if err != nil {
		return fmt.Errorf("failed to complete mix %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for mix %s: %w", id, err)
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	logger.Info("Mix completed", logger.String("mixId", id),
		logger.Float64("duration", duration), logger.String("filePath", filePath))
	return nil
}

// FailMix terminates a mix as failed. No file path is ever set on failure.
func (r *mysqlMixRepository) FailMix(id string) error {
	query := `UPDATE mixes SET status = ?, updated_at = ? WHERE id = ? AND status IN (?, ?)`
	res, err := r.DB.Exec(query, string(model.MixFailed), time.Now(), id,
		string(model.MixPending), string(model.MixProcessing))
	if err != nil {
		return fmt.Errorf("failed to mark mix %s as failed: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for mix %s: %w", id, err)
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	logger.Warn("Mix failed", logger.String("mixId", id))
	return nil
}

func (r *mysqlMixRepository) transition(id, query string, to, from model.MixStatus) error {
	res, err := r.DB.Exec(query, string(to), time.Now(), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to transition mix %s to %s: %w", id, to, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for mix %s: %w", id, err)
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func scanMix(row rowScanner) (*model.Mix, error) {
	mix := &model.Mix{}
	var trackIDsJSON, filePath sql.NullString
	var status string
	err := row.Scan(&mix.ID, &mix.Title, &mix.Genre, &trackIDsJSON, &mix.Duration,
		&filePath, &status, &mix.CreatedAt, &mix.UpdatedAt)
	if err != nil {
		return nil, err
	}
	mix.FilePath = filePath.String
	mix.Status = model.MixStatus(status)
	mix.TrackIDs = []string{}
	if trackIDsJSON.Valid && trackIDsJSON.String != "" {
		if err := json.Unmarshal([]byte(trackIDsJSON.String), &mix.TrackIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal track IDs for mix %s: %w", mix.ID, err)
		}
	}
	return mix, nil
}
