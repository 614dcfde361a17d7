package attendance_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attendanceStore "clubhub/internal/adapters/storage/attendance"
	scheduleStore "clubhub/internal/adapters/storage/schedule"
	"clubhub/internal/adapters/storage/storagetest"
	domain "clubhub/internal/domain/attendance"
)

var now = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func seed(t *testing.T) (*sql.DB, *attendanceStore.SQLiteStore) {
	t.Helper()
	db := storagetest.OpenDB(t)
	storagetest.InsertUser(t, db, "zoe", "Zoe Z", "player", "Active")
	storagetest.InsertUser(t, db, "abe", "Abe A", "player", "Active")
	storagetest.InsertUser(t, db, "coach", "Cole Coach", "coach", "Active")
	storagetest.InsertSchedule(t, db, "s1", "Monday training", "2026-05-04", "coach")
	storagetest.InsertSchedule(t, db, "s2", "Tuesday training", "2026-05-05", "coach")
	return db, attendanceStore.NewSQLiteStore(db)
}

func record(id, player, schedule, status, date string) domain.Attendance {
	return domain.Attendance{
		ID: id, PlayerID: player, ScheduleID: schedule, Status: status, AttendanceDate: date,
		RecordedBy: "coach", CreatedAt: now, UpdatedAt: now,
	}
}

func TestSQLiteStore_CreateDuplicate(t *testing.T) {
	_, store := seed(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, record("a1", "zoe", "s1", domain.StatusPresent, "2026-05-04")))
	err := store.Create(ctx, record("a2", "zoe", "s1", domain.StatusLate, "2026-05-04"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestSQLiteStore_ListingsAndStats(t *testing.T) {
	db, store := seed(t)
	ctx := context.Background()
	for _, a := range []domain.Attendance{
		record("a1", "zoe", "s1", domain.StatusPresent, "2026-05-04"),
		record("a2", "zoe", "s2", domain.StatusLate, "2026-05-05"),
		record("a3", "abe", "s1", domain.StatusAbsent, "2026-05-04"),
	} {
		require.NoError(t, store.Create(ctx, a))
	}

	zoe, err := store.ListByPlayer(ctx, attendanceStore.Filter{PlayerID: "zoe"})
	require.NoError(t, err)
	require.Len(t, zoe, 2)
	assert.Equal(t, "a2", zoe[0].ID)
	assert.Equal(t, "Zoe Z", zoe[0].PlayerName)
	assert.Equal(t, "Cole Coach", zoe[0].RecorderName)
	assert.Equal(t, "Tuesday training", zoe[0].ScheduleTitle)

	bySchedule, err := store.ListBySchedule(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, bySchedule, 2)
	assert.Equal(t, "Abe A", bySchedule[0].PlayerName)

	stats, err := store.Stats(ctx, attendanceStore.Filter{})
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Total: 3, Present: 1, Absent: 1, Late: 1, AttendanceRate: 33.33}, stats)

	ranged, err := store.Stats(ctx, attendanceStore.Filter{PlayerID: "zoe", DateFrom: "2026-05-05"})
	require.NoError(t, err)
	assert.Equal(t, 1, ranged.Total)
	assert.Equal(t, 0.0, ranged.AttendanceRate)

	has, err := scheduleStore.NewSQLiteStore(db).HasAttendance(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSQLiteStore_StatsEmpty(t *testing.T) {
	_, store := seed(t)
	stats, err := store.Stats(context.Background(), attendanceStore.Filter{PlayerID: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, stats)
}

func TestSQLiteStore_UpdateAndApprove(t *testing.T) {
	_, store := seed(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, record("a1", "zoe", "s1", domain.StatusPresent, "2026-05-04")))

	late, notes := domain.StatusLate, "traffic"
	require.NoError(t, store.Update(ctx, "a1", domain.Patch{Status: &late, Notes: &notes}, now.Add(time.Minute)))
	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLate, got.Status)
	assert.Equal(t, "traffic", got.Notes)
	assert.Equal(t, "2026-05-04", got.AttendanceDate)

	assert.ErrorIs(t, store.Update(ctx, "missing", domain.Patch{Status: &late}, now), domain.ErrNotFound)

	require.NoError(t, store.Approve(ctx, "a1", "coach", now))
	assert.ErrorIs(t, store.Approve(ctx, "a1", "coach", now), domain.ErrAlreadyApproved)
	assert.ErrorIs(t, store.Approve(ctx, "missing", "coach", now), domain.ErrNotFound)
}
