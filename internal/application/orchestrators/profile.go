package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"clubhub/internal/domain/account"
	"clubhub/internal/domain/audit"
	"clubhub/internal/domain/profile"
)

// ProfileStoreForUpdate defines the store interface needed by UpdateProfile.
type ProfileStoreForUpdate interface {
	Get(ctx context.Context, uid string) (profile.Profile, error)
	Update(ctx context.Context, uid, role string, user, details map[string]any) error
}

// UpdateProfileInput carries input for the update-profile orchestrator.
// TargetID is empty when callers edit their own profile.
type UpdateProfileInput struct {
	ActorID   string
	ActorRole string
	TargetID  string
	Patch     profile.Patch
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	ProfileStore ProfileStoreForUpdate
	SessionStore SessionStoreForLogoutAll
	AuditStore   ActionRecorder
	TeamStore    TeamLookup
	Now          func() time.Time
}

// ExecuteUpdateProfile updates user columns and role details in one transaction.
// PRE: Admins may edit anyone, others only themselves; only admins change
// status, and never their own
// POST: Returns the profile as stored after the update
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) (profile.Profile, error) {
	target := input.TargetID
	if target == "" {
		target = input.ActorID
	}
	isAdmin := input.ActorRole == account.RoleAdmin
	if target != input.ActorID && !isAdmin {
		return profile.Profile{}, ErrForbidden
	}
	if input.Patch.User.Status != nil {
		if !isAdmin {
			return profile.Profile{}, ErrForbidden
		}
		if target == input.ActorID {
			return profile.Profile{}, ErrSelfStatusChange
		}
	}

	current, err := deps.ProfileStore.Get(ctx, target)
	if err != nil {
		return profile.Profile{}, err
	}
	patch := input.Patch
	if err := patch.Validate(current.Role); err != nil {
		return profile.Profile{}, err
	}
	if err := checkTeams(ctx, deps.TeamStore, patch.TeamID()); err != nil {
		return profile.Profile{}, err
	}

	user := map[string]any{}
	if patch.User.Email != nil {
		user["email"] = *patch.User.Email
	}
	if patch.User.PhoneNumber != nil {
		user["phoneNumber"] = *patch.User.PhoneNumber
	}
	if patch.User.Status != nil {
		user["status"] = *patch.User.Status
	}
	if patch.User.Password != nil {
		var tmp account.Account
		if err := tmp.SetPassword(*patch.User.Password); err != nil {
			return profile.Profile{}, err
		}
		user["pass"] = tmp.PasswordHash
	}

	if err := deps.ProfileStore.Update(ctx, target, current.Role, user, patch.Details); err != nil {
		return profile.Profile{}, err
	}

	if patch.User.Status != nil && *patch.User.Status == account.StatusNotActive && deps.SessionStore != nil {
		if _, err := deps.SessionStore.DeactivateAllForUser(ctx, target, ""); err != nil {
			slog.Error("session_deactivate_failed", "uid", target, "error", err)
		}
	}
	if target != input.ActorID {
		recordAction(ctx, deps.AuditStore, audit.NewAction(input.ActorID, audit.ActionUpdateProfile, deps.Now()).WithTarget(target))
	}
	slog.Info("profile_event", "event", "updated", "uid", target, "by", input.ActorID, "user_fields", len(user), "detail_fields", len(patch.Details))
	return deps.ProfileStore.Get(ctx, target)
}

// AccountStoreForDelete defines the store interface needed by DeleteAccount.
type AccountStoreForDelete interface {
	Delete(ctx context.Context, id string) error
}

// DeleteAccountInput carries input for the delete-account orchestrator.
type DeleteAccountInput struct {
	AccountID string
	Confirm   string
}

// DeleteAccountDeps holds dependencies for DeleteAccount.
type DeleteAccountDeps struct {
	AccountStore AccountStoreForDelete
	AuditStore   ActionRecorder
	Now          func() time.Time
}

// ExecuteDeleteAccount removes the caller's account; sessions and memberships cascade.
// PRE: Confirm equals profile.DeleteConfirmation
func ExecuteDeleteAccount(ctx context.Context, input DeleteAccountInput, deps DeleteAccountDeps) error {
	if input.Confirm != profile.DeleteConfirmation {
		return profile.ErrConfirmDelete
	}
	if err := deps.AccountStore.Delete(ctx, input.AccountID); err != nil {
		return err
	}
	recordAction(ctx, deps.AuditStore, audit.NewAction(input.AccountID, audit.ActionDeleteUser, deps.Now()).
		WithTarget(input.AccountID).WithDetails("self-service deletion"))
	slog.Info("account_event", "event", "account_deleted", "uid", input.AccountID)
	return nil
}
