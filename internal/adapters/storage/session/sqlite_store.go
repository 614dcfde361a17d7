package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clubhub/internal/adapters/storage"
	domain "clubhub/internal/domain/session"
)

const selectColumns = "sessionID, uid, token, createdAt, expiresAt, isActive"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts a new session row.
// PRE: s.ID is unique, s.AccountID references a user
// POST: Session is persisted
func (s *SQLiteStore) Create(ctx context.Context, sess domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (sessionID, uid, token, createdAt, expiresAt, isActive) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.AccountID, sess.Token, storage.FormatTime(sess.CreatedAt),
		storage.FormatTime(sess.ExpiresAt), sess.IsActive)
	return err
}

// Get retrieves a session by ID regardless of state.
// POST: Returns domain.ErrNotFound when no row matches
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM sessions WHERE sessionID = ?", id)
	sess, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrNotFound
	}
	return sess, err
}

// Deactivate marks one session as logged out.
// POST: Returns domain.ErrAlreadyEnded when the session was not active
func (s *SQLiteStore) Deactivate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE sessions SET isActive = 0 WHERE sessionID = ? AND isActive = 1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAlreadyEnded
	}
	return nil
}

// DeactivateAllForUser ends every active session of accountID except exceptID.
// POST: Returns the number of sessions ended
func (s *SQLiteStore) DeactivateAllForUser(ctx context.Context, accountID, exceptID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET isActive = 0 WHERE uid = ? AND isActive = 1 AND sessionID <> ?",
		accountID, exceptID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// PurgeExpired deletes sessions that are inactive or past expiry.
// POST: Returns the number of rows removed
func (s *SQLiteStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE isActive = 0 OR expiresAt <= ?", storage.FormatTime(now))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ListForUser returns the sessions of accountID, newest first.
func (s *SQLiteStore) ListForUser(ctx context.Context, accountID string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM sessions WHERE uid = ? ORDER BY createdAt DESC", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Session
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var sess domain.Session
	var createdAt, expiresAt string
	if err := scan(&sess.ID, &sess.AccountID, &sess.Token, &createdAt, &expiresAt, &sess.IsActive); err != nil {
		return domain.Session{}, err
	}
	sess.CreatedAt, _ = storage.ParseTime(createdAt)
	sess.ExpiresAt, _ = storage.ParseTime(expiresAt)
	return sess, nil
}
