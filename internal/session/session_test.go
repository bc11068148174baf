package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/research-engine/internal/model"
	"github.com/sells-group/research-engine/internal/store"
)

// memStore is an in-memory SessionStore for manager tests.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]model.ResearchSession
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]model.ResearchSession)}
}

func (m *memStore) Create(_ context.Context, s *model.ResearchSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*model.ResearchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := s
	cp.Batches = make(map[int]model.BatchRecord, len(s.Batches))
	for k, v := range s.Batches {
		cp.Batches[k] = v
	}
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, s *model.ResearchSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return store.ErrNotFound
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestManager() *Manager {
	return NewManager(newMemStore())
}

func create(t *testing.T, m *Manager) *model.ResearchSession {
	t.Helper()
	sess, err := m.Create(context.Background(), "owner-1", "pump manufacturers", model.FileMeta{
		Name:      "targets.xlsx",
		TotalRows: 50,
		BatchSize: 10,
	})
	require.NoError(t, err)
	return sess
}

func TestCreate_Defaults(t *testing.T) {
	m := newTestManager()
	sess := create(t, m)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, model.SessionActive, sess.Status)
	assert.Equal(t, 0, sess.CurrentBatchIndex)
	assert.Equal(t, 0, sess.ProcessedUpTo)
}

func TestCreate_EmptyOwnerIsGuest(t *testing.T) {
	m := newTestManager()
	sess, err := m.Create(context.Background(), "", "query", model.FileMeta{BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, GuestOwner, sess.OwnerID)
}

func TestCreate_RequiresPrompt(t *testing.T) {
	m := newTestManager()
	_, err := m.Create(context.Background(), "owner-1", "", model.FileMeta{})
	require.Error(t, err)
}

func TestStoreBatch_AdvancesCursor(t *testing.T) {
	m := newTestManager()
	sess := create(t, m)

	for i := 0; i <= 2; i++ {
		var err error
		sess, err = m.StoreBatch(context.Background(), sess.ID, i,
			map[string]string{"openai": "batch text"}, "")
		require.NoError(t, err)
	}

	assert.Equal(t, 2, sess.CurrentBatchIndex)
	assert.Equal(t, 3*sess.File.BatchSize, sess.ProcessedUpTo)
	assert.Len(t, sess.Batches, 3)
	assert.Contains(t, sess.Batches, 0)
	assert.Contains(t, sess.Batches, 1)
}

func TestStoreBatch_SnapshotsPrimaryResult(t *testing.T) {
	m := newTestManager()
	sess := create(t, m)

	_, err := m.StoreBatch(context.Background(), sess.ID, 0, map[string]string{
		"perplexity": "deep research text",
		"anthropic":  "anthropic text",
	}, "focus on Ohio")
	require.NoError(t, err)

	got, err := m.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	// Canonical provider order puts anthropic before perplexity.
	assert.Equal(t, "anthropic text", got.PreviousResults)
	assert.Equal(t, "focus on Ohio", got.Batches[0].Instructions)
}

func TestStoreBatch_RejectsBackwardIndex(t *testing.T) {
	m := newTestManager()
	sess := create(t, m)

	_, err := m.StoreBatch(context.Background(), sess.ID, 2, map[string]string{"openai": "x"}, "")
	require.NoError(t, err)

	_, err = m.StoreBatch(context.Background(), sess.ID, 1, map[string]string{"openai": "x"}, "")
	require.Error(t, err)
}

func TestStoreBatch_RejectedWhilePaused(t *testing.T) {
	m := newTestManager()
	sess := create(t, m)

	_, err := m.Pause(context.Background(), sess.ID)
	require.NoError(t, err)

	_, err = m.StoreBatch(context.Background(), sess.ID, 0, map[string]string{"openai": "x"}, "")
	require.Error(t, err)
}

func TestPauseResume_PreservesBatchIndex(t *testing.T) {
	m := newTestManager()
	sess := create(t, m)

	_, err := m.StoreBatch(context.Background(), sess.ID, 0, map[string]string{"openai": "x"}, "")
	require.NoError(t, err)
	_, err = m.StoreBatch(context.Background(), sess.ID, 1, map[string]string{"openai": "x"}, "")
	require.NoError(t, err)

	_, err = m.Pause(context.Background(), sess.ID)
	require.NoError(t, err)
	got, err := m.Resume(context.Background(), sess.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SessionActive, got.Status)
	assert.Equal(t, 1, got.CurrentBatchIndex)
}

func TestTransitions_TerminalStatesAreFinal(t *testing.T) {
	m := newTestManager()
	sess := create(t, m)

	_, err := m.Complete(context.Background(), sess.ID)
	require.NoError(t, err)

	_, err = m.Abandon(context.Background(), sess.ID)
	require.Error(t, err)
	_, err = m.Pause(context.Background(), sess.ID)
	require.Error(t, err)
	_, err = m.Resume(context.Background(), sess.ID)
	require.Error(t, err)
}

func TestAbandon_FromPaused(t *testing.T) {
	m := newTestManager()
	sess := create(t, m)

	_, err := m.Pause(context.Background(), sess.ID)
	require.NoError(t, err)
	got, err := m.Abandon(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAbandoned, got.Status)
}

func TestGet_Missing(t *testing.T) {
	m := newTestManager()
	_, err := m.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
