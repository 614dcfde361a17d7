package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditStore "clubhub/internal/adapters/storage/audit"
	"clubhub/internal/adapters/storage/storagetest"
	domain "clubhub/internal/domain/audit"
)

func TestSQLiteStore_SaveAndList(t *testing.T) {
	db := storagetest.OpenDB(t)
	storagetest.InsertUser(t, db, "adm", "Ada Admin", "admin", "Active")
	store := auditStore.NewSQLiteStore(db)
	ctx := context.Background()
	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, domain.NewAction("adm", domain.ActionDeleteSchedule, at).WithTarget("s1")))
	require.NoError(t, store.Save(ctx, domain.NewAction("adm", domain.ActionApproveSchedule, at.Add(time.Minute)).WithTarget("s2").WithDetails("approved")))
	require.NoError(t, store.Save(ctx, domain.NewAction("other", domain.ActionCreateTeam, at.Add(2*time.Minute))))

	all, err := store.List(ctx, auditStore.Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.ActionCreateTeam, all[0].ActionType)
	assert.Empty(t, all[0].ActorName)

	mine, err := store.List(ctx, auditStore.Filter{ActorID: "adm"}, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "s2", mine[0].TargetID)
	assert.Equal(t, "Ada Admin", mine[0].ActorName)
	assert.Equal(t, "approved", mine[0].Details)
}
