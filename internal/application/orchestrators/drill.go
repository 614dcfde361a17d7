package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"clubhub/internal/domain/account"
	"clubhub/internal/domain/audit"
	"clubhub/internal/domain/drill"
)

// DrillStoreForSave defines the store interface needed by SaveDrill.
type DrillStoreForSave interface {
	Get(ctx context.Context, id string) (drill.Drill, error)
	Create(ctx context.Context, d drill.Drill) error
	Update(ctx context.Context, d drill.Drill) error
}

// SaveDrillInput carries input for the save-drill orchestrator.
// Drill.ID is empty to create.
type SaveDrillInput struct {
	ActorID   string
	ActorRole string
	Drill     drill.Drill
}

// SaveDrillDeps holds dependencies for SaveDrill.
type SaveDrillDeps struct {
	DrillStore DrillStoreForSave
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSaveDrill creates or replaces a drill.
// PRE: ActorRole is trainingManagement
// POST: createdBy and createdAt are preserved on update
func ExecuteSaveDrill(ctx context.Context, input SaveDrillInput, deps SaveDrillDeps) (drill.Drill, error) {
	if input.ActorRole != account.RoleTrainingManagement {
		return drill.Drill{}, ErrForbidden
	}
	d := input.Drill
	if err := d.Validate(); err != nil {
		return drill.Drill{}, err
	}
	now := deps.Now()
	d.UpdatedAt = now

	if d.ID == "" {
		d.ID = deps.GenerateID()
		d.CreatedBy = input.ActorID
		d.CreatedAt = now
		if err := deps.DrillStore.Create(ctx, d); err != nil {
			return drill.Drill{}, err
		}
		slog.Info("drill_event", "event", "created", "drill_id", d.ID, "by", input.ActorID)
		return d, nil
	}

	existing, err := deps.DrillStore.Get(ctx, d.ID)
	if err != nil {
		return drill.Drill{}, err
	}
	d.CreatedBy, d.CreatedAt = existing.CreatedBy, existing.CreatedAt
	if err := deps.DrillStore.Update(ctx, d); err != nil {
		return drill.Drill{}, err
	}
	slog.Info("drill_event", "event", "updated", "drill_id", d.ID, "by", input.ActorID)
	return d, nil
}

// DrillStoreForDelete defines the store interface needed by DeleteDrill.
type DrillStoreForDelete interface {
	Delete(ctx context.Context, id string) error
}

// DeleteDrillInput carries input for the delete-drill orchestrator.
type DeleteDrillInput struct {
	ActorID   string
	ActorRole string
	DrillID   string
}

// DeleteDrillDeps holds dependencies for DeleteDrill.
type DeleteDrillDeps struct {
	DrillStore DrillStoreForDelete
	AuditStore ActionRecorder
	Now        func() time.Time
}

// ExecuteDeleteDrill removes a drill.
// PRE: ActorRole is trainingManagement
func ExecuteDeleteDrill(ctx context.Context, input DeleteDrillInput, deps DeleteDrillDeps) error {
	if input.ActorRole != account.RoleTrainingManagement {
		return ErrForbidden
	}
	if input.DrillID == "" {
		return drill.ErrNotFound
	}
	if err := deps.DrillStore.Delete(ctx, input.DrillID); err != nil {
		return err
	}
	recordAction(ctx, deps.AuditStore, audit.NewAction(input.ActorID, audit.ActionDeleteDrill, deps.Now()).WithTarget(input.DrillID))
	return nil
}
