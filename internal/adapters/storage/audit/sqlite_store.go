package audit

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"clubhub/internal/adapters/storage"
	domain "clubhub/internal/domain/audit"
)

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new admin action store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an admin action.
// PRE: a.ID, a.ActorID and a.ActionType are set
// POST: Action is persisted
func (s *SQLiteStore) Save(ctx context.Context, a domain.Action) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO adminActions (actionID, actorID, actionType, targetID, details, createdAt) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.ActorID, string(a.ActionType), a.TargetID, a.Details, storage.FormatTime(a.CreatedAt))
	return err
}

// List returns actions with optional filtering, joined with the actor's name.
// PRE: limit > 0
// POST: Returns actions ordered by createdAt desc
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Action, error) {
	q := storage.Builder.
		Select("a.actionID", "a.actorID", "COALESCE(u.fullName, '')", "a.actionType", "a.targetID", "a.details", "a.createdAt").
		From("adminActions a").
		LeftJoin("users u ON u.uid = a.actorID")
	if filter.ActorID != "" {
		q = q.Where(sq.Eq{"a.actorID": filter.ActorID})
	}
	if filter.TargetID != "" {
		q = q.Where(sq.Eq{"a.targetID": filter.TargetID})
	}
	query, args, err := q.OrderBy("a.createdAt DESC").Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.Action
	for rows.Next() {
		var a domain.Action
		var actionType, createdAt string
		if err := rows.Scan(&a.ID, &a.ActorID, &a.ActorName, &actionType, &a.TargetID, &a.Details, &createdAt); err != nil {
			return nil, err
		}
		a.ActionType = domain.ActionType(actionType)
		a.CreatedAt, _ = storage.ParseTime(createdAt)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
