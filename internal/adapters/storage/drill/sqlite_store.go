package drill

import (
	"context"
	"database/sql"
	"errors"

	"clubhub/internal/adapters/storage"
	domain "clubhub/internal/domain/drill"
)

const selectColumns = "drillID, drillName, drillType, difficulty, drillDescription, video_link, notes, createdBy, createdAt, updatedAt"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new drill store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns all drills ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Drill, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM drills ORDER BY drillName")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Drill
	for rows.Next() {
		d, err := scanDrill(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get retrieves a drill by ID.
// POST: Returns domain.ErrNotFound when no row matches
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Drill, error) {
	d, err := scanDrill(s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM drills WHERE drillID = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Drill{}, domain.ErrNotFound
	}
	return d, err
}

// Create inserts a drill.
// PRE: d has been validated
func (s *SQLiteStore) Create(ctx context.Context, d domain.Drill) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO drills (`+selectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Type, d.Difficulty, d.Description, d.VideoLink, d.Notes, d.CreatedBy,
		storage.FormatTime(d.CreatedAt), storage.FormatTime(d.UpdatedAt))
	return err
}

// Update rewrites the editable columns of a drill.
// PRE: d has been validated
// POST: Returns domain.ErrNotFound when no row matched
func (s *SQLiteStore) Update(ctx context.Context, d domain.Drill) error {
	return s.execOne(ctx,
		`UPDATE drills SET drillName = ?, drillType = ?, difficulty = ?, drillDescription = ?, video_link = ?, notes = ?, updatedAt = ?
		 WHERE drillID = ?`,
		d.Name, d.Type, d.Difficulty, d.Description, d.VideoLink, d.Notes, storage.FormatTime(d.UpdatedAt), d.ID)
}

// Delete removes a drill.
// POST: Returns domain.ErrNotFound when no row matched
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return s.execOne(ctx, "DELETE FROM drills WHERE drillID = ?", id)
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

func scanDrill(scan func(dest ...any) error) (domain.Drill, error) {
	var d domain.Drill
	var createdAt, updatedAt string
	err := scan(&d.ID, &d.Name, &d.Type, &d.Difficulty, &d.Description, &d.VideoLink, &d.Notes,
		&d.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return domain.Drill{}, err
	}
	d.CreatedAt, _ = storage.ParseTime(createdAt)
	d.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return d, nil
}
