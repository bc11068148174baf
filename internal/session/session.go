// Package session implements the durable state machine for incremental
// batch research jobs: create, read, per-batch merge and status transitions.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/research-engine/internal/model"
	"github.com/sells-group/research-engine/internal/provider"
	"github.com/sells-group/research-engine/internal/store"
)

// GuestOwner is recorded when a session is created without an owner id.
const GuestOwner = "guest"

// Manager owns all session mutations. Per-provider dispatch never touches
// session state directly.
type Manager struct {
	store store.SessionStore
	now   func() time.Time
}

// NewManager creates a Manager over the given store.
func NewManager(st store.SessionStore) *Manager {
	return &Manager{store: st, now: time.Now}
}

// Create initializes a new active session at batch index zero.
func (m *Manager) Create(ctx context.Context, ownerID, prompt string, file model.FileMeta) (*model.ResearchSession, error) {
	if prompt == "" {
		return nil, eris.New("session: prompt is required")
	}
	if ownerID == "" {
		ownerID = GuestOwner
	}

	sess := &model.ResearchSession{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Prompt:  prompt,
		File:    file,
		Status:  model.SessionActive,
		Batches: make(map[int]model.BatchRecord),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, eris.Wrap(err, "session: create")
	}

	zap.L().Info("session: created",
		zap.String("session_id", sess.ID),
		zap.String("owner_id", sess.OwnerID),
		zap.Int("total_rows", file.TotalRows),
		zap.Int("batch_size", file.BatchSize))
	return sess, nil
}

// Get returns the session by id, or store.ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*model.ResearchSession, error) {
	return m.store.Get(ctx, id)
}

// StoreBatch merges one batch outcome into the session document: records
// the batch, advances the cursor and snapshots the primary result for the
// next batch's context block. Batch indices never move backwards.
func (m *Manager) StoreBatch(ctx context.Context, id string, batchIndex int, results map[string]string, instructions string) (*model.ResearchSession, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status != model.SessionActive {
		return nil, eris.Errorf("session: cannot store batch while %s", sess.Status)
	}
	if batchIndex < sess.CurrentBatchIndex {
		return nil, eris.Errorf("session: batch index %d precedes current index %d", batchIndex, sess.CurrentBatchIndex)
	}

	sess.Batches[batchIndex] = model.BatchRecord{
		Timestamp:    m.now().UTC(),
		Instructions: instructions,
		Results:      results,
	}
	sess.CurrentBatchIndex = batchIndex
	sess.ProcessedUpTo = (batchIndex + 1) * sess.File.BatchSize
	if snapshot := primaryResult(results); snapshot != "" {
		sess.PreviousResults = snapshot
	}

	if err := m.store.Update(ctx, sess); err != nil {
		return nil, eris.Wrapf(err, "session: store batch %d", batchIndex)
	}

	zap.L().Info("session: batch stored",
		zap.String("session_id", sess.ID),
		zap.Int("batch_index", batchIndex),
		zap.Int("processed_up_to", sess.ProcessedUpTo))
	return sess, nil
}

// Pause suspends an active session.
func (m *Manager) Pause(ctx context.Context, id string) (*model.ResearchSession, error) {
	return m.transition(ctx, id, model.SessionPaused)
}

// Resume returns a paused session to active.
func (m *Manager) Resume(ctx context.Context, id string) (*model.ResearchSession, error) {
	return m.transition(ctx, id, model.SessionActive)
}

// Complete marks an active session finished. Terminal.
func (m *Manager) Complete(ctx context.Context, id string) (*model.ResearchSession, error) {
	return m.transition(ctx, id, model.SessionCompleted)
}

// Abandon marks a session abandoned. Terminal; the document is kept.
func (m *Manager) Abandon(ctx context.Context, id string) (*model.ResearchSession, error) {
	return m.transition(ctx, id, model.SessionAbandoned)
}

func (m *Manager) transition(ctx context.Context, id string, next model.SessionStatus) (*model.ResearchSession, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.Status.CanTransition(next) {
		return nil, eris.Errorf("session: illegal transition %s -> %s", sess.Status, next)
	}

	prev := sess.Status
	sess.Status = next
	if err := m.store.Update(ctx, sess); err != nil {
		return nil, eris.Wrapf(err, "session: transition to %s", next)
	}

	zap.L().Info("session: status changed",
		zap.String("session_id", sess.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)))
	return sess, nil
}

// primaryResult picks the snapshot carried into the next batch's context:
// the first non-empty result in canonical provider order.
func primaryResult(results map[string]string) string {
	for _, name := range provider.Names {
		if text := results[name]; text != "" {
			return text
		}
	}
	return ""
}
