package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/research-engine/internal/model"
)

// SQLiteStore implements SessionStore using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	owner_id   TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'active',
	document   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sessions_owner_id ON sessions(owner_id);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, session *model.ResearchSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	doc, err := json.Marshal(session)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal session")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, owner_id, status, document, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID, session.OwnerID, string(session.Status), string(doc), now, now,
	)
	return eris.Wrap(err, "sqlite: insert session")
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.ResearchSession, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM sessions WHERE id = ?`, id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get session %s", id)
	}

	var session model.ResearchSession
	if err := json.Unmarshal([]byte(doc), &session); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal session %s", id)
	}
	return &session, nil
}

func (s *SQLiteStore) Update(ctx context.Context, session *model.ResearchSession) error {
	session.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(session)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal session")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET document = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(doc), string(session.Status), session.UpdatedAt, session.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update session %s", session.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
