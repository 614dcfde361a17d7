package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"clubhub/internal/adapters/storage"
	domain "clubhub/internal/domain/schedule"
)

var listingColumns = []string{
	"s.scheduleID", "s.eventType", "s.title", "s.description", "s.eventDate", "s.startTime", "s.endTime",
	"s.dayOfWeek", "s.location", "s.teamID", "s.opponentTeamID", "s.priority", "s.recurrence",
	"s.eventStatus", "s.notes", "s.createdBy", "s.approvedBy", "s.approvedAt", "s.createdAt", "s.updatedAt",
	"COALESCE(c.fullName, '')", "COALESCE(a.fullName, '')", "COALESCE(t.teamName, '')", "COALESCE(o.teamName, '')",
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new schedule store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func listingQuery() sq.SelectBuilder {
	return storage.Builder.
		Select(listingColumns...).
		From("schedules s").
		LeftJoin("users c ON c.uid = s.createdBy").
		LeftJoin("users a ON a.uid = s.approvedBy").
		LeftJoin("teams t ON t.teamID = s.teamID").
		LeftJoin("teams o ON o.teamID = s.opponentTeamID")
}

// Get retrieves one schedule with display names.
// POST: Returns domain.ErrNotFound when no row matches
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Listing, error) {
	query, args, err := listingQuery().Where(sq.Eq{"s.scheduleID": id}).ToSql()
	if err != nil {
		return domain.Listing{}, err
	}
	l, err := scanListing(s.db.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, err
}

// List returns schedules matching filter ordered by eventDate then startTime.
// A TeamID filter matches either side of a fixture.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]domain.Listing, error) {
	q := listingQuery()
	if filter.EventType != "" {
		q = q.Where(sq.Eq{"s.eventType": filter.EventType})
	}
	if filter.TeamID != "" {
		q = q.Where(sq.Or{sq.Eq{"s.teamID": filter.TeamID}, sq.Eq{"s.opponentTeamID": filter.TeamID}})
	}
	if filter.EventStatus != "" {
		q = q.Where(sq.Eq{"s.eventStatus": filter.EventStatus})
	}
	if filter.DateFrom != "" {
		q = q.Where(sq.GtOrEq{"s.eventDate": filter.DateFrom})
	}
	if filter.DateTo != "" {
		q = q.Where(sq.LtOrEq{"s.eventDate": filter.DateTo})
	}
	query, args, err := q.OrderBy("s.eventDate", "s.startTime").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Create inserts a schedule.
// PRE: sc has been validated
func (s *SQLiteStore) Create(ctx context.Context, sc domain.Schedule) error {
	query, args, err := storage.Builder.Insert("schedules").SetMap(columnMap(sc)).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Update rewrites the editable columns of a schedule.
// PRE: sc has been validated and UpdatedAt set
// POST: Returns domain.ErrNotFound when no row matched
func (s *SQLiteStore) Update(ctx context.Context, sc domain.Schedule) error {
	set := columnMap(sc)
	for _, k := range []string{"scheduleID", "createdBy", "createdAt", "approvedBy", "approvedAt"} {
		delete(set, k)
	}
	query, args, err := storage.Builder.Update("schedules").SetMap(set).Where(sq.Eq{"scheduleID": sc.ID}).ToSql()
	if err != nil {
		return err
	}
	return s.execOne(ctx, query, args...)
}

// Delete removes a schedule.
// PRE: HasAttendance(id) is false
// POST: Returns domain.ErrNotFound when no row matched
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return s.execOne(ctx, "DELETE FROM schedules WHERE scheduleID = ?", id)
}

// Approve stamps approvedBy and approvedAt on an unapproved schedule.
// POST: Returns domain.ErrAlreadyApproved or domain.ErrNotFound when nothing changed
func (s *SQLiteStore) Approve(ctx context.Context, id, approverID string, at time.Time) error {
	err := s.execOne(ctx,
		"UPDATE schedules SET approvedBy = ?, approvedAt = ?, updatedAt = ? WHERE scheduleID = ? AND approvedBy IS NULL",
		approverID, storage.FormatTime(at), storage.FormatTime(at), id)
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	var n int
	if qerr := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schedules WHERE scheduleID = ?", id).Scan(&n); qerr != nil {
		return qerr
	}
	if n > 0 {
		return domain.ErrAlreadyApproved
	}
	return domain.ErrNotFound
}

// HasAttendance reports whether any attendance row references the schedule.
func (s *SQLiteStore) HasAttendance(ctx context.Context, id string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance WHERE scheduleID = ?", id).Scan(&n)
	return n > 0, err
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

func columnMap(sc domain.Schedule) map[string]any {
	return map[string]any{
		"scheduleID":     sc.ID,
		"eventType":      sc.EventType,
		"title":          sc.Title,
		"description":    sc.Description,
		"eventDate":      sc.EventDate,
		"startTime":      sc.StartTime,
		"endTime":        sc.EndTime,
		"dayOfWeek":      sc.DayOfWeek,
		"location":       sc.Location,
		"teamID":         storage.NullString(sc.TeamID),
		"opponentTeamID": storage.NullString(sc.OpponentTeamID),
		"priority":       sc.Priority,
		"recurrence":     sc.Recurrence,
		"eventStatus":    sc.EventStatus,
		"notes":          sc.Notes,
		"createdBy":      sc.CreatedBy,
		"approvedBy":     storage.NullString(sc.ApprovedBy),
		"approvedAt":     storage.NullTime(sc.ApprovedAt),
		"createdAt":      storage.FormatTime(sc.CreatedAt),
		"updatedAt":      storage.FormatTime(sc.UpdatedAt),
	}
}

func scanListing(scan func(dest ...any) error) (domain.Listing, error) {
	var l domain.Listing
	var teamID, opponentID, approvedBy, approvedAt sql.NullString
	var createdAt, updatedAt string
	err := scan(
		&l.ID, &l.EventType, &l.Title, &l.Description, &l.EventDate, &l.StartTime, &l.EndTime,
		&l.DayOfWeek, &l.Location, &teamID, &opponentID, &l.Priority, &l.Recurrence,
		&l.EventStatus, &l.Notes, &l.CreatedBy, &approvedBy, &approvedAt, &createdAt, &updatedAt,
		&l.CreatorName, &l.ApproverName, &l.TeamName, &l.OpponentTeamName,
	)
	if err != nil {
		return domain.Listing{}, err
	}
	l.TeamID = teamID.String
	l.OpponentTeamID = opponentID.String
	l.ApprovedBy = approvedBy.String
	l.ApprovedAt = storage.ParseNullTime(approvedAt)
	l.CreatedAt, _ = storage.ParseTime(createdAt)
	l.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return l, nil
}
