package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealcraft/sales-engine/pkg/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSession(id uuid.UUID) *session.Session {
	s := &session.Session{
		ID:                   id,
		Language:             "en",
		Mode:                 session.ModeQuick,
		DifficultyMultiplier: session.QuickMultiplier,
		Stage:                session.StageDiscovery,
		Round:                1,
		MaxRounds:            session.DefaultMaxRounds,
		ActionPoints:         session.QuickActionPoints,
		MaxActionPoints:      session.QuickActionPoints,
		Status:               session.StatusActive,
		Solution:             session.NewSolution(),
		CreatedAt:            time.Now().UTC(),
		UpdatedAt:            time.Now().UTC(),
	}
	s.NPCs.Add(session.NPC{
		ID:    "npc_1",
		Name:  "Diane Fletcher",
		Role:  session.RoleEconomicBuyer,
		Trust: 1,
		Tier:  session.TierHostile,
	})
	return s
}

func setupRedis(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rs := NewRedisStorage(mr.Addr(), time.Hour, testLogger())
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func TestRedisStorage_SaveLoadSession(t *testing.T) {
	rs, _ := setupRedis(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, rs.SaveSession(ctx, id, testSession(id)))

	loaded, err := rs.LoadSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, id, loaded.ID)
	assert.Equal(t, session.ModeQuick, loaded.Mode)
	assert.Equal(t, 1, loaded.NPCs.Len())

	npc, ok := loaded.NPCs.Get("npc_1")
	require.True(t, ok)
	assert.Equal(t, "Diane Fletcher", npc.Name)
}

func TestRedisStorage_LoadSession_NotFound(t *testing.T) {
	rs, _ := setupRedis(t)

	loaded, err := rs.LoadSession(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_SaveSession_Nil(t *testing.T) {
	rs, _ := setupRedis(t)

	err := rs.SaveSession(context.Background(), uuid.New(), nil)
	assert.Error(t, err)
}

func TestRedisStorage_SaveSession_TTL(t *testing.T) {
	rs, mr := setupRedis(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, rs.SaveSession(ctx, id, testSession(id)))

	mr.FastForward(2 * time.Hour)

	loaded, err := rs.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, loaded, "session should expire after TTL")
}

func TestRedisStorage_DeleteSession(t *testing.T) {
	rs, _ := setupRedis(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, rs.SaveSession(ctx, id, testSession(id)))
	require.NoError(t, rs.DeleteSession(ctx, id))

	loaded, err := rs.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting again is not an error.
	assert.NoError(t, rs.DeleteSession(ctx, id))
}

func TestRedisStorage_Ping(t *testing.T) {
	rs, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, rs.Ping(ctx))

	mr.Close()
	assert.Error(t, rs.Ping(ctx))
}
