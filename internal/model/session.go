package model

import "time"

// SessionStatus is the lifecycle state of a research session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether no further transitions are allowed.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// CanTransition reports whether a status change from s to next is legal.
// Legal moves: active→paused, paused→active, active→completed,
// active|paused→abandoned. Nothing leaves a terminal state.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case SessionPaused:
		return s == SessionActive
	case SessionActive:
		return s == SessionPaused
	case SessionCompleted:
		return s == SessionActive
	case SessionAbandoned:
		return s == SessionActive || s == SessionPaused
	default:
		return false
	}
}

// BatchRecord captures the outcome of one processed batch.
type BatchRecord struct {
	Timestamp    time.Time         `json:"timestamp"`
	Instructions string            `json:"instructions,omitempty"`
	Results      map[string]string `json:"results"`
}

// FileMeta describes the uploaded file driving a batched session.
type FileMeta struct {
	Name      string `json:"name"`
	TotalRows int    `json:"total_rows"`
	BatchSize int    `json:"batch_size"`
}

// ResearchSession is the durable state of an incremental research job. One
// document per session; whole-document reads and writes only.
type ResearchSession struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Prompt            string        `json:"prompt"`
	CurrentBatchIndex int           `json:"current_batch_index"`
	ProcessedUpTo     int           `json:"processed_up_to"`
	PreviousResults   string        `json:"previous_results,omitempty"`
	File              FileMeta      `json:"file"`
	Status            SessionStatus `json:"status"`

	// Batches maps batch index -> record. Indices are monotonically
	// non-decreasing across updates.
	Batches map[int]BatchRecord `json:"batches"`
}
