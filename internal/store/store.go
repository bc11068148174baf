// Package store persists research sessions as whole JSON documents keyed
// by session id. Reads and writes always cover the entire document.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/research-engine/internal/model"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = eris.New("store: session not found")

// SessionStore is the persistence contract of the session manager: create,
// point-read and whole-document update by session id. Concurrent writers to
// the same session are serialized by the store; last writer wins.
type SessionStore interface {
	Create(ctx context.Context, session *model.ResearchSession) error
	Get(ctx context.Context, id string) (*model.ResearchSession, error)
	Update(ctx context.Context, session *model.ResearchSession) error
	Close() error
}
