package model

import "time"

// MixStatus is the lifecycle state of a mix job.
type MixStatus string

const (
	MixPending    MixStatus = "pending"
	MixProcessing MixStatus = "processing"
	MixCompleted  MixStatus = "completed"
	MixFailed     MixStatus = "failed"
)

// Terminal reports whether the status is final. A terminal mix is immutable.
func (s MixStatus) Terminal() bool {
	return s == MixCompleted || s == MixFailed
}

// CanTransition reports whether moving from s to next is a legal, forward
// step of the pending -> processing -> completed|failed lifecycle.
func (s MixStatus) CanTransition(next MixStatus) bool {
	switch s {
	case MixPending:
		return next == MixProcessing || next == MixFailed
	case MixProcessing:
		return next == MixCompleted || next == MixFailed
	default:
		return false
	}
}

// Mix represents one assembled DJ mix and its constituent tracks.
type Mix struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Genre     string    `json:"genre"`
	TrackIDs  []string  `json:"tracks"`
	Duration  float64   `json:"duration"`           // Total duration in seconds, set on completion
	FilePath  string    `json:"filePath,omitempty"` // Object-storage locator of the exported audio
	Status    MixStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
