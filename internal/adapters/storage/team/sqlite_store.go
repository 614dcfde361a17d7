package team

import (
	"context"
	"database/sql"
	"errors"

	"clubhub/internal/adapters/storage"
	domain "clubhub/internal/domain/team"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new team store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves a team by ID.
// POST: Returns domain.ErrNotFound when no row matches
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Team, error) {
	row := s.db.QueryRowContext(ctx, `SELECT teamID, teamName, sport, teamRank, coachID FROM teams WHERE teamID = ?`, id)
	t, err := scanTeam(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Team{}, domain.ErrNotFound
	}
	return t, err
}

// List returns all teams ordered by sport then name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT teamID, teamName, sport, teamRank, coachID FROM teams ORDER BY sport, teamName`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows.Scan)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// Save inserts or replaces a team.
// PRE: t has been validated
func (s *SQLiteStore) Save(ctx context.Context, t domain.Team) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (teamID, teamName, sport, teamRank, coachID) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(teamID) DO UPDATE SET teamName = excluded.teamName, sport = excluded.sport,
		 teamRank = excluded.teamRank, coachID = excluded.coachID`,
		t.ID, t.Name, t.Sport, t.Rank, storage.NullString(t.CoachID))
	return err
}

// Exists reports whether a team with id exists.
func (s *SQLiteStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE teamID = ?`, id).Scan(&n)
	return n > 0, err
}

func scanTeam(scan func(dest ...any) error) (domain.Team, error) {
	var t domain.Team
	var coach sql.NullString
	if err := scan(&t.ID, &t.Name, &t.Sport, &t.Rank, &coach); err != nil {
		return domain.Team{}, err
	}
	t.CoachID = coach.String
	return t, nil
}
