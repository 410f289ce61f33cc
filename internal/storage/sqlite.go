package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/dealcraft/sales-engine/pkg/session"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	status     TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions (status);
`

// SQLiteStorage persists sessions as JSON documents in a local SQLite
// database. Unlike the Redis backend, sessions never expire.
type SQLiteStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ Storage = (*SQLiteStorage)(nil)

func NewSQLiteStorage(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStorage{db: db, logger: logger}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

// WaitForConnection is immediate for a local database; it just pings.
func (s *SQLiteStorage) WaitForConnection(ctx context.Context) error {
	return s.Ping(ctx)
}

func (s *SQLiteStorage) SaveSession(ctx context.Context, id uuid.UUID, sess *session.Session) error {
	if sess == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, document, status, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET document = excluded.document, status = excluded.status, updated_at = excluded.updated_at`,
		id.String(), string(data), string(sess.Status), time.Now().UTC())
	if err != nil {
		s.logger.Error("SQLite save failed", "session_id", id, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Debug("Session saved", "session_id", id, "bytes", len(data))
	return nil
}

func (s *SQLiteStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var document string
	err := s.db.GetContext(ctx, &document,
		`SELECT document FROM sessions WHERE id = ?`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // not found
		}
		s.logger.Error("SQLite load failed", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal([]byte(document), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *SQLiteStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`, id.String())
	if err != nil {
		s.logger.Error("SQLite delete failed", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", "error", err)
		return err
	}
	return nil
}
