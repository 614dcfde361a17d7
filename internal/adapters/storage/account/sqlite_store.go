package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"clubhub/internal/adapters/storage"
	domain "clubhub/internal/domain/account"
	"clubhub/internal/domain/profile"
)

const selectColumns = "uid, fullName, email, pass, phoneNumber, gender, dob, nationality, nationalID, role, status, createdAt, lastLogin"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a user by uid.
// PRE: id is non-empty
// POST: Returns the user or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM users WHERE uid = ?", id)
	return scanOne(row.Scan)
}

// GetByEmail retrieves a user by email; the column collates NOCASE.
// PRE: email is non-empty
// POST: Returns the user or an error wrapping domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM users WHERE email = ?", strings.TrimSpace(email))
	return scanOne(row.Scan)
}

// Create inserts a user and its empty role detail row in one transaction.
// PRE: a has been validated and PasswordHash is set
// POST: users row and role table row exist, or neither does
func (s *SQLiteStore) Create(ctx context.Context, a domain.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (uid, fullName, email, pass, phoneNumber, gender, dob, nationality, nationalID, role, status, createdAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.FullName, a.Email, a.PasswordHash, a.PhoneNumber, a.Gender, a.DOB,
		a.Nationality, a.NationalID, a.Role, a.Status, storage.FormatTime(a.CreatedAt),
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return err
	}

	if table := profile.RoleTable(a.Role); table != "" {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (uid) VALUES (?)", table), a.ID); err != nil {
			return fmt.Errorf("insert %s row: %w", table, err)
		}
	}
	return tx.Commit()
}

// UpdateStatus sets users.status.
// PRE: status is Active or notActive
// POST: Returns domain.ErrNotFound when no row matched
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id, status string) error {
	return s.execOne(ctx, "UPDATE users SET status = ? WHERE uid = ?", status, id)
}

// UpdatePassword replaces the stored bcrypt hash.
// PRE: hash is a bcrypt hash
// POST: Returns domain.ErrNotFound when no row matched
func (s *SQLiteStore) UpdatePassword(ctx context.Context, id, hash string) error {
	return s.execOne(ctx, "UPDATE users SET pass = ? WHERE uid = ?", hash, id)
}

// TouchLastLogin records a successful sign-in.
func (s *SQLiteStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return s.execOne(ctx, "UPDATE users SET lastLogin = ? WHERE uid = ?", storage.FormatTime(at), id)
}

// ListByRoles returns users holding any of roles, ordered by role then fullName.
// PRE: roles is non-empty
// POST: Returns matching users; never includes password hashes in JSON
func (s *SQLiteStore) ListByRoles(ctx context.Context, roles []string) ([]domain.Account, error) {
	query, args, err := storage.Builder.
		Select(strings.Split(selectColumns, ", ")...).
		From("users").
		Where(sq.Eq{"role": roles}).
		OrderBy("role", "fullName").
		ToSql()
	if err != nil {
		return nil, err
	}
	return s.list(ctx, query, args...)
}

// Search returns active users whose name or email contains query.
// PRE: limit > 0
// POST: Returns at most limit users ordered by fullName
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]domain.Account, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	sqlText, args, err := storage.Builder.
		Select(strings.Split(selectColumns, ", ")...).
		From("users").
		Where(sq.Eq{"status": domain.StatusActive}).
		Where(sq.Or{sq.Like{"lower(fullName)": like}, sq.Like{"lower(email)": like}}).
		OrderBy("fullName").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}
	return s.list(ctx, sqlText, args...)
}

// Delete removes a user; dependent session, role and chat rows cascade.
// PRE: id is non-empty
// POST: Returns domain.ErrNotFound when no row matched
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return s.execOne(ctx, "DELETE FROM users WHERE uid = ?", id)
}

// Count returns the number of users.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

func (s *SQLiteStore) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	return results, rows.Err()
}

func scanOne(scan func(dest ...any) error) (domain.Account, error) {
	a, err := scanAccount(scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	return a, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var a domain.Account
	var createdAt string
	var lastLogin sql.NullString
	err := scan(
		&a.ID, &a.FullName, &a.Email, &a.PasswordHash, &a.PhoneNumber, &a.Gender,
		&a.DOB, &a.Nationality, &a.NationalID, &a.Role, &a.Status, &createdAt, &lastLogin,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.CreatedAt, _ = storage.ParseTime(createdAt)
	a.LastLogin = storage.ParseNullTime(lastLogin)
	return a, nil
}
