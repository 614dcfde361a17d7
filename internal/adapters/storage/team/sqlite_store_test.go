package team_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub/internal/adapters/storage/storagetest"
	teamStore "clubhub/internal/adapters/storage/team"
	domain "clubhub/internal/domain/team"
)

func TestSQLiteStore_SaveGetList(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.InsertUser(t, db, "c1", "Coach", "coach", "Active")
	store := teamStore.NewSQLiteStore(db)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.Team{ID: "t2", Name: "Hoops", Sport: domain.SportBasketball, Rank: 3}))
	require.NoError(t, store.Save(ctx, domain.Team{ID: "t1", Name: "Firsts", Sport: domain.SportFootball, CoachID: "c1"}))

	got, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CoachID)

	teams, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Hoops", teams[0].Name)

	ok, err := store.Exists(ctx, "t2")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = store.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
