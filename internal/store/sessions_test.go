package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readnestapp/readnest-server/internal/domain"
)

func newTestSession(t *testing.T, store *Store, id, userID, tokenHash string, expiresAt time.Time) *domain.Session {
	t.Helper()

	session := &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        expiresAt,
		CreatedAt:        time.Now(),
		LastSeenAt:       time.Now(),
	}

	require.NoError(t, store.CreateSession(context.Background(), session))
	return session
}

func TestGetSession_Expired(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	newTestSession(t, store, "session-stale", "user-alice", "hash-stale", time.Now().Add(-time.Hour))

	_, err := store.GetSession(context.Background(), "session-stale")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestGetSessionByRefreshToken(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	newTestSession(t, store, "session-1", "user-alice", "hash-1", time.Now().Add(time.Hour))

	session, err := store.GetSessionByRefreshToken(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", session.ID)

	_, err = store.GetSessionByRefreshToken(ctx, "hash-unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateSession_RotatesTokenIndex(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	session := newTestSession(t, store, "session-1", "user-alice", "hash-old", time.Now().Add(time.Hour))

	session.RefreshTokenHash = "hash-new"
	require.NoError(t, store.UpdateSession(ctx, session))

	rotated, err := store.GetSessionByRefreshToken(ctx, "hash-new")
	require.NoError(t, err)
	assert.Equal(t, "session-1", rotated.ID)

	_, err = store.GetSessionByRefreshToken(ctx, "hash-old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteExpiredSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	newTestSession(t, store, "session-live", "user-alice", "hash-live", time.Now().Add(time.Hour))
	newTestSession(t, store, "session-stale-1", "user-alice", "hash-stale-1", time.Now().Add(-time.Minute))
	newTestSession(t, store, "session-stale-2", "user-bob", "hash-stale-2", time.Now().Add(-time.Hour))

	deleted, err := store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	// The live session survives, with its token index intact.
	session, err := store.GetSessionByRefreshToken(ctx, "hash-live")
	require.NoError(t, err)
	assert.Equal(t, "session-live", session.ID)

	// Stale sessions and their indices are fully gone.
	_, err = store.GetSession(ctx, "session-stale-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.GetSessionByRefreshToken(ctx, "hash-stale-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sessions, err := store.ListUserSessions(ctx, "user-bob")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteExpiredSessions_NothingExpired(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	newTestSession(t, store, "session-live", "user-alice", "hash-live", time.Now().Add(time.Hour))

	deleted, err := store.DeleteExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestDeleteAllUserSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	newTestSession(t, store, "session-1", "user-alice", "hash-1", time.Now().Add(time.Hour))
	newTestSession(t, store, "session-2", "user-alice", "hash-2", time.Now().Add(time.Hour))
	newTestSession(t, store, "session-3", "user-bob", "hash-3", time.Now().Add(time.Hour))

	require.NoError(t, store.DeleteAllUserSessions(ctx, "user-alice"))

	sessions, err := store.ListUserSessions(ctx, "user-alice")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// Other users keep their sessions.
	session, err := store.GetSession(ctx, "session-3")
	require.NoError(t, err)
	assert.Equal(t, "user-bob", session.UserID)
}
