// Package storage persists sessions between engine calls. Two
// backends are provided: Redis with a TTL for ordinary deployments,
// and SQLite for single-node durable setups.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/dealcraft/sales-engine/pkg/session"
)

// Storage persists full session documents keyed by session id.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	WaitForConnection(ctx context.Context) error
	Close() error

	// SaveSession writes the full session document.
	SaveSession(ctx context.Context, id uuid.UUID, s *session.Session) error

	// LoadSession returns the session, or (nil, nil) when the id is
	// unknown.
	LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error)

	// DeleteSession removes the session. Deleting an unknown id is
	// not an error.
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
