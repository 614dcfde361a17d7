package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionStore "clubhub/internal/adapters/storage/session"
	"clubhub/internal/adapters/storage/storagetest"
	domain "clubhub/internal/domain/session"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustSession(t *testing.T, uid string, at time.Time, lifetime time.Duration) domain.Session {
	t.Helper()
	s, err := domain.New(uid, at, lifetime)
	require.NoError(t, err)
	return s
}

func TestSQLiteStore_CreateGetDeactivate(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.InsertUser(t, db, "u1", "One", "player", "Active")
	store := sessionStore.NewSQLiteStore(db)
	ctx := context.Background()

	s := mustSession(t, "u1", base, domain.DefaultLifetime)
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.AccountID)
	assert.True(t, got.IsActive)
	assert.True(t, got.ExpiresAt.Equal(base.Add(domain.DefaultLifetime)))

	require.NoError(t, store.Deactivate(ctx, s.ID))
	assert.ErrorIs(t, store.Deactivate(ctx, s.ID), domain.ErrAlreadyEnded)

	got, err = store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_DeactivateAllForUser(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.InsertUser(t, db, "u1", "One", "player", "Active")
	storagetest.InsertUser(t, db, "u2", "Two", "player", "Active")
	store := sessionStore.NewSQLiteStore(db)
	ctx := context.Background()

	keep := mustSession(t, "u1", base, time.Hour)
	other := mustSession(t, "u1", base.Add(time.Minute), time.Hour)
	foreign := mustSession(t, "u2", base, time.Hour)
	for _, s := range []domain.Session{keep, other, foreign} {
		require.NoError(t, store.Create(ctx, s))
	}

	n, err := store.DeactivateAllForUser(ctx, "u1", keep.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := store.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, other.ID, list[0].ID, "newest first")
	assert.False(t, list[0].IsActive)
	assert.True(t, list[1].IsActive)

	f, err := store.Get(ctx, foreign.ID)
	require.NoError(t, err)
	assert.True(t, f.IsActive)
}

func TestSQLiteStore_PurgeExpired(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.InsertUser(t, db, "u1", "One", "player", "Active")
	store := sessionStore.NewSQLiteStore(db)
	ctx := context.Background()

	live := mustSession(t, "u1", base, 48*time.Hour)
	expired := mustSession(t, "u1", base, time.Hour)
	ended := mustSession(t, "u1", base, 48*time.Hour)
	for _, s := range []domain.Session{live, expired, ended} {
		require.NoError(t, store.Create(ctx, s))
	}
	require.NoError(t, store.Deactivate(ctx, ended.ID))

	n, err := store.PurgeExpired(ctx, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}
