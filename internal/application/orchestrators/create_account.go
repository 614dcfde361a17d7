package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clubhub/internal/domain/account"
	"clubhub/internal/domain/audit"
)

// AccountStoreForCreate defines the store interface needed by CreateAccount.
type AccountStoreForCreate interface {
	Create(ctx context.Context, a account.Account) error
}

// CreateAccountInput carries input for the create-account orchestrator.
// ActorID is empty for accounts created by the CLI or the startup seed.
type CreateAccountInput struct {
	ActorID     string
	ActorRole   string
	FullName    string
	Email       string
	Password    string
	Role        string
	Status      string
	PhoneNumber string
	Gender      string
	DOB         string
	Nationality string
	NationalID  string
}

// CreateAccountDeps holds dependencies for CreateAccount.
type CreateAccountDeps struct {
	AccountStore AccountStoreForCreate
	AuditStore   ActionRecorder
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateAccount creates a user and its empty role detail row.
// PRE: ActorRole is admin when ActorID is set
// POST: Account persisted with a bcrypt password hash
func ExecuteCreateAccount(ctx context.Context, input CreateAccountInput, deps CreateAccountDeps) (account.Account, error) {
	if input.ActorID != "" && input.ActorRole != account.RoleAdmin {
		return account.Account{}, ErrForbidden
	}
	status := input.Status
	if status == "" {
		status = account.StatusActive
	}
	acct := account.Account{
		ID:          deps.GenerateID(),
		FullName:    strings.TrimSpace(input.FullName),
		Email:       strings.TrimSpace(input.Email),
		PhoneNumber: input.PhoneNumber,
		Gender:      input.Gender,
		DOB:         input.DOB,
		Nationality: input.Nationality,
		NationalID:  input.NationalID,
		Role:        input.Role,
		Status:      status,
		CreatedAt:   deps.Now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}
	if err := deps.AccountStore.Create(ctx, acct); err != nil {
		return account.Account{}, err
	}

	if input.ActorID != "" {
		recordAction(ctx, deps.AuditStore, audit.NewAction(input.ActorID, audit.ActionCreateUser, acct.CreatedAt).
			WithTarget(acct.ID).
			WithDetails(fmt.Sprintf("created %s account %s", acct.Role, acct.Email)))
	}
	slog.Info("account_event", "event", "account_created", "uid", acct.ID, "role", acct.Role, "by", input.ActorID)
	return acct, nil
}

// AccountStoreForSeed defines the store interface needed by SeedAdmin.
type AccountStoreForSeed interface {
	AccountStoreForCreate
	Count(ctx context.Context) (int, error)
}

// SeedAdminInput carries the bootstrap admin credentials.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForSeed
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSeedAdmin creates the first admin when the users table is empty.
// POST: Returns true when an account was created
// INVARIANT: Never creates a second account on a populated database
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (bool, error) {
	if input.Email == "" || input.Password == "" {
		return false, nil
	}
	n, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	_, err = ExecuteCreateAccount(ctx, CreateAccountInput{
		FullName: "Administrator",
		Email:    input.Email,
		Password: input.Password,
		Role:     account.RoleAdmin,
	}, CreateAccountDeps{
		AccountStore: deps.AccountStore,
		GenerateID:   deps.GenerateID,
		Now:          deps.Now,
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
