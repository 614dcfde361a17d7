package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"clubhub/internal/adapters/storage"
	domain "clubhub/internal/domain/attendance"
)

const selectColumns = "attendanceID, playerID, scheduleID, status, attendanceDate, notes, recordedBy, approvedBy, approvedAt, createdAt, updatedAt"

var rowColumns = []string{
	"a.attendanceID", "a.playerID", "a.scheduleID", "a.status", "a.attendanceDate", "a.notes", "a.recordedBy",
	"a.approvedBy", "a.approvedAt", "a.createdAt", "a.updatedAt",
	"COALESCE(p.fullName, '')", "COALESCE(r.fullName, '')",
	"COALESCE(s.title, '')", "COALESCE(s.eventDate, '')", "COALESCE(s.eventType, '')",
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts an attendance record.
// PRE: a has been validated
// POST: Returns domain.ErrDuplicate when the player already has a record for the schedule
func (s *SQLiteStore) Create(ctx context.Context, a domain.Attendance) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (attendanceID, playerID, scheduleID, status, attendanceDate, notes, recordedBy, createdAt, updatedAt)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PlayerID, a.ScheduleID, a.Status, a.AttendanceDate, a.Notes, a.RecordedBy,
		storage.FormatTime(a.CreatedAt), storage.FormatTime(a.UpdatedAt))
	if storage.IsUniqueViolation(err) {
		return domain.ErrDuplicate
	}
	return err
}

// Get retrieves an attendance record by ID.
// POST: Returns domain.ErrNotFound when no row matches
func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Attendance, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM attendance WHERE attendanceID = ?", id)
	var a domain.Attendance
	var approvedBy, approvedAt sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&a.ID, &a.PlayerID, &a.ScheduleID, &a.Status, &a.AttendanceDate, &a.Notes,
		&a.RecordedBy, &approvedBy, &approvedAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attendance{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Attendance{}, err
	}
	a.ApprovedBy = approvedBy.String
	a.ApprovedAt = storage.ParseNullTime(approvedAt)
	a.CreatedAt, _ = storage.ParseTime(createdAt)
	a.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return a, nil
}

func rowQuery() sq.SelectBuilder {
	return storage.Builder.
		Select(rowColumns...).
		From("attendance a").
		LeftJoin("users p ON p.uid = a.playerID").
		LeftJoin("users r ON r.uid = a.recordedBy").
		LeftJoin("schedules s ON s.scheduleID = a.scheduleID")
}

func applyFilter(q sq.SelectBuilder, filter Filter) sq.SelectBuilder {
	if filter.PlayerID != "" {
		q = q.Where(sq.Eq{"a.playerID": filter.PlayerID})
	}
	if filter.DateFrom != "" {
		q = q.Where(sq.GtOrEq{"a.attendanceDate": filter.DateFrom})
	}
	if filter.DateTo != "" {
		q = q.Where(sq.LtOrEq{"a.attendanceDate": filter.DateTo})
	}
	return q
}

// ListByPlayer returns joined rows, newest attendanceDate first.
func (s *SQLiteStore) ListByPlayer(ctx context.Context, filter Filter) ([]domain.Row, error) {
	return s.listRows(ctx, applyFilter(rowQuery(), filter).OrderBy("a.attendanceDate DESC", "a.createdAt DESC"))
}

// ListBySchedule returns the rows of one schedule ordered by player name.
// PRE: scheduleID is non-empty
func (s *SQLiteStore) ListBySchedule(ctx context.Context, scheduleID string) ([]domain.Row, error) {
	return s.listRows(ctx, rowQuery().Where(sq.Eq{"a.scheduleID": scheduleID}).OrderBy("p.fullName"))
}

// Stats counts records by status over filter.
// POST: AttendanceRate is computed
func (s *SQLiteStore) Stats(ctx context.Context, filter Filter) (domain.Stats, error) {
	q := storage.Builder.Select(
		"COUNT(*)",
		"COALESCE(SUM(CASE WHEN a.status = 'Present' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN a.status = 'Absent' THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(CASE WHEN a.status = 'Late' THEN 1 ELSE 0 END), 0)",
	).From("attendance a")
	query, args, err := applyFilter(q, filter).ToSql()
	if err != nil {
		return domain.Stats{}, err
	}
	var st domain.Stats
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&st.Total, &st.Present, &st.Absent, &st.Late); err != nil {
		return domain.Stats{}, err
	}
	st.ComputeRate()
	return st, nil
}

// Update applies the non-nil fields of patch.
// PRE: patch has been validated
// POST: Returns domain.ErrNotFound when no row matched
func (s *SQLiteStore) Update(ctx context.Context, id string, patch domain.Patch, at time.Time) error {
	set := map[string]any{"updatedAt": storage.FormatTime(at)}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if patch.AttendanceDate != nil {
		set["attendanceDate"] = *patch.AttendanceDate
	}
	query, args, err := storage.Builder.Update("attendance").SetMap(set).Where(sq.Eq{"attendanceID": id}).ToSql()
	if err != nil {
		return err
	}
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

// Approve stamps approvedBy and approvedAt on an unapproved record.
// POST: Returns domain.ErrAlreadyApproved or domain.ErrNotFound when nothing changed
func (s *SQLiteStore) Approve(ctx context.Context, id, approverID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE attendance SET approvedBy = ?, approvedAt = ?, updatedAt = ? WHERE attendanceID = ? AND approvedBy IS NULL",
		approverID, storage.FormatTime(at), storage.FormatTime(at), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return domain.ErrAlreadyApproved
}

func (s *SQLiteStore) listRows(ctx context.Context, q sq.SelectBuilder) ([]domain.Row, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Row
	for rows.Next() {
		var r domain.Row
		var approvedBy, approvedAt sql.NullString
		var createdAt, updatedAt string
		err := rows.Scan(&r.ID, &r.PlayerID, &r.ScheduleID, &r.Status, &r.AttendanceDate, &r.Notes,
			&r.RecordedBy, &approvedBy, &approvedAt, &createdAt, &updatedAt,
			&r.PlayerName, &r.RecorderName, &r.ScheduleTitle, &r.EventDate, &r.EventType)
		if err != nil {
			return nil, err
		}
		r.ApprovedBy = approvedBy.String
		r.ApprovedAt = storage.ParseNullTime(approvedAt)
		r.CreatedAt, _ = storage.ParseTime(createdAt)
		r.UpdatedAt, _ = storage.ParseTime(updatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
