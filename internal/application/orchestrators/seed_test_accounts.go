package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubhub/internal/domain/account"
)

// AccountStoreForTestSeed defines the store interface needed by SeedTestAccounts.
type AccountStoreForTestSeed interface {
	AccountStoreForCreate
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// TestAccountSeedDeps holds dependencies for SeedTestAccounts.
type TestAccountSeedDeps struct {
	AccountStore AccountStoreForTestSeed
	GenerateID   func() string
	Now          func() time.Time
}

// testAccounts lists one development login per non-admin role.
func testAccounts() []CreateAccountInput {
	defs := []struct{ role, name string }{
		{account.RolePlayer, "Test Player"},
		{account.RoleCoach, "Test Coach"},
		{account.RoleMedicalStaff, "Test Medic"},
		{account.RoleTrainingManagement, "Test Training Manager"},
		{account.RoleManager, "Test Manager"},
	}
	out := make([]CreateAccountInput, len(defs))
	for i, d := range defs {
		out[i] = CreateAccountInput{
			FullName: d.name,
			Email:    d.role + "@clubhub.test",
			Password: "clubhub-" + d.role,
			Role:     d.role,
		}
	}
	return out
}

// ExecuteSeedTestAccounts creates the development accounts that do not exist yet.
// PRE: Database is migrated; only called outside production
// POST: One Active account per non-admin role exists; returns how many were created
func ExecuteSeedTestAccounts(ctx context.Context, deps TestAccountSeedDeps) (int, error) {
	created := 0
	for _, def := range testAccounts() {
		_, err := deps.AccountStore.GetByEmail(ctx, def.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, account.ErrNotFound) {
			return created, err
		}
		_, err = ExecuteCreateAccount(ctx, def, CreateAccountDeps{
			AccountStore: deps.AccountStore,
			GenerateID:   deps.GenerateID,
			Now:          deps.Now,
		})
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", def.Email, err)
		}
		created++
	}
	if created > 0 {
		slog.Info("seed_event", "event", "test_accounts_created", "count", created)
	}
	return created, nil
}
