package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealcraft/sales-engine/pkg/session"
)

func setupSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	st, err := NewSQLiteStorage(":memory:", testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteStorage_SaveLoadSession(t *testing.T) {
	st := setupSQLite(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, st.SaveSession(ctx, id, testSession(id)))

	loaded, err := st.LoadSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, id, loaded.ID)
	assert.Equal(t, session.StatusActive, loaded.Status)
	assert.Equal(t, 1, loaded.NPCs.Len())
}

func TestSQLiteStorage_SaveSession_Upsert(t *testing.T) {
	st := setupSQLite(t)
	ctx := context.Background()
	id := uuid.New()

	s := testSession(id)
	require.NoError(t, st.SaveSession(ctx, id, s))

	s.Round = 2
	s.Status = session.StatusWon
	require.NoError(t, st.SaveSession(ctx, id, s))

	loaded, err := st.LoadSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 2, loaded.Round)
	assert.Equal(t, session.StatusWon, loaded.Status)
}

func TestSQLiteStorage_LoadSession_NotFound(t *testing.T) {
	st := setupSQLite(t)

	loaded, err := st.LoadSession(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSQLiteStorage_DeleteSession(t *testing.T) {
	st := setupSQLite(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, st.SaveSession(ctx, id, testSession(id)))
	require.NoError(t, st.DeleteSession(ctx, id))

	loaded, err := st.LoadSession(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	assert.NoError(t, st.DeleteSession(ctx, id))
}

func TestSQLiteStorage_Ping(t *testing.T) {
	st := setupSQLite(t)
	assert.NoError(t, st.Ping(context.Background()))
	assert.NoError(t, st.WaitForConnection(context.Background()))
}
