package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scheduleStore "clubhub/internal/adapters/storage/schedule"
	"clubhub/internal/adapters/storage/storagetest"
	domain "clubhub/internal/domain/schedule"
)

var now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newSchedule(id, date, start string) domain.Schedule {
	s := domain.Schedule{
		ID:        id,
		EventType: domain.EventTraining,
		Title:     "Session " + id,
		EventDate: date,
		StartTime: start,
		EndTime:   "23:00:00",
		DayOfWeek: domain.Monday,
		CreatedBy: "tm1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.ApplyDefaults()
	return s
}

func setup(t *testing.T) (*scheduleStore.SQLiteStore, context.Context) {
	t.Helper()
	db := storagetest.OpenDB(t)
	storagetest.InsertUser(t, db, "tm1", "Tess Manager", "trainingManagement", "Active")
	storagetest.InsertUser(t, db, "adm", "Ada Admin", "admin", "Active")
	_, err := db.Exec(`INSERT INTO teams (teamID, teamName, sport) VALUES ('home', 'Home FC', 'Football'), ('away', 'Away FC', 'Football')`)
	require.NoError(t, err)
	return scheduleStore.NewSQLiteStore(db), context.Background()
}

func TestSQLiteStore_CreateGetWithNames(t *testing.T) {
	store, ctx := setup(t)
	s := newSchedule("s1", "2026-04-06", "10:00:00")
	s.EventType = domain.EventMatch
	s.TeamID, s.OpponentTeamID = "home", "away"
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Tess Manager", got.CreatorName)
	assert.Equal(t, "Home FC", got.TeamName)
	assert.Equal(t, "Away FC", got.OpponentTeamName)
	assert.Empty(t, got.ApproverName)
	assert.Nil(t, got.ApprovedAt)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStore_ListFiltersAndOrder(t *testing.T) {
	store, ctx := setup(t)
	late := newSchedule("late", "2026-04-07", "18:00:00")
	early := newSchedule("early", "2026-04-07", "08:00:00")
	first := newSchedule("first", "2026-04-01", "12:00:00")
	match := newSchedule("match", "2026-04-10", "15:00:00")
	match.EventType = domain.EventMatch
	match.OpponentTeamID = "home"
	for _, s := range []domain.Schedule{late, early, first, match} {
		require.NoError(t, store.Create(ctx, s))
	}

	all, err := store.List(ctx, scheduleStore.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"first", "early", "late", "match"},
		[]string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	ranged, err := store.List(ctx, scheduleStore.Filter{DateFrom: "2026-04-02", DateTo: "2026-04-07"})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	byTeam, err := store.List(ctx, scheduleStore.Filter{TeamID: "home"})
	require.NoError(t, err)
	require.Len(t, byTeam, 1)
	assert.Equal(t, "match", byTeam[0].ID)

	byType, err := store.List(ctx, scheduleStore.Filter{EventType: domain.EventTraining})
	require.NoError(t, err)
	assert.Len(t, byType, 3)
}

func TestSQLiteStore_UpdateAndDelete(t *testing.T) {
	store, ctx := setup(t)
	s := newSchedule("s1", "2026-04-06", "10:00:00")
	require.NoError(t, store.Create(ctx, s))

	s.Title = "Renamed"
	s.UpdatedAt = now.Add(time.Hour)
	require.NoError(t, store.Update(ctx, s))
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.True(t, got.UpdatedAt.Equal(now.Add(time.Hour)))

	require.NoError(t, store.Delete(ctx, "s1"))
	assert.ErrorIs(t, store.Delete(ctx, "s1"), domain.ErrNotFound)
	assert.ErrorIs(t, store.Update(ctx, s), domain.ErrNotFound)
}

func TestSQLiteStore_ApproveOnce(t *testing.T) {
	store, ctx := setup(t)
	require.NoError(t, store.Create(ctx, newSchedule("s1", "2026-04-06", "10:00:00")))

	require.NoError(t, store.Approve(ctx, "s1", "adm", now))
	assert.ErrorIs(t, store.Approve(ctx, "s1", "adm", now), domain.ErrAlreadyApproved)
	assert.ErrorIs(t, store.Approve(ctx, "nope", "adm", now), domain.ErrNotFound)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Admin", got.ApproverName)
	require.NotNil(t, got.ApprovedAt)
}
