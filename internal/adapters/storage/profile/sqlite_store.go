package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"clubhub/internal/adapters/storage"
	accountStore "clubhub/internal/adapters/storage/account"
	"clubhub/internal/domain/account"
	domain "clubhub/internal/domain/profile"
)

// userColumns are the users columns a profile update may set.
var userColumns = map[string]bool{"email": true, "pass": true, "status": true, "phoneNumber": true}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db       storage.SQLDB
	accounts *accountStore.SQLiteStore
}

// NewSQLiteStore creates a new profile store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, accounts: accountStore.NewSQLiteStore(db)}
}

// Get loads the user row and merges the detail row for its role.
// PRE: uid is non-empty
// POST: Details is non-nil; it is empty when the role has no table or no row
func (s *SQLiteStore) Get(ctx context.Context, uid string) (domain.Profile, error) {
	a, err := s.accounts.GetByID(ctx, uid)
	if err != nil {
		return domain.Profile{}, err
	}
	p := domain.Profile{Account: a, Details: map[string]any{}}

	table := domain.RoleTable(a.Role)
	cols := domain.RoleColumns(a.Role)
	if table == "" || len(cols) == 0 {
		return p, nil
	}

	query, args, err := storage.Builder.Select(cols...).From(table).Where(sq.Eq{"uid": uid}).ToSql()
	if err != nil {
		return domain.Profile{}, err
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	err = s.db.QueryRowContext(ctx, query, args...).Scan(ptrs...)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return domain.Profile{}, err
	}
	for i, c := range cols {
		if b, ok := values[i].([]byte); ok {
			values[i] = string(b)
		}
		p.Details[c] = values[i]
	}
	return p, nil
}

// Update applies user column changes and upserts role detail values in one transaction.
// PRE: details holds only columns of role's table, already normalised
// POST: Both tables change or neither does; duplicate email yields account.ErrEmailTaken
func (s *SQLiteStore) Update(ctx context.Context, uid, role string, user, details map[string]any) error {
	for k := range user {
		if !userColumns[k] {
			return fmt.Errorf("column %q is not updatable", k)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE uid = ?", uid).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return account.ErrNotFound
	}

	if len(user) > 0 {
		query, args, err := storage.Builder.Update("users").SetMap(user).Where(sq.Eq{"uid": uid}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if storage.IsUniqueViolation(err) {
				return account.ErrEmailTaken
			}
			return fmt.Errorf("update users: %w", err)
		}
	}

	if len(details) > 0 {
		table := domain.RoleTable(role)
		if table == "" {
			return domain.ErrUnknownField
		}
		cols := make([]string, 0, len(details))
		for c := range details {
			cols = append(cols, c)
		}
		sort.Strings(cols)

		values := []any{uid}
		sets := make([]string, len(cols))
		for i, c := range cols {
			values = append(values, details[c])
			sets[i] = c + " = excluded." + c
		}
		query, args, err := storage.Builder.
			Insert(table).
			Columns(append([]string{"uid"}, cols...)...).
			Values(values...).
			Suffix("ON CONFLICT(uid) DO UPDATE SET " + strings.Join(sets, ", ")).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert %s: %w", table, err)
		}
	}
	return tx.Commit()
}
