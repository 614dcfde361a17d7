// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"clubhub/internal/adapters/storage"
)

// OpenDB returns an in-memory database with every migration applied.
// A single connection is used so all statements see the same memory database.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.MigrateDB(context.Background(), db))
	return db
}

// InsertUser adds a users row directly and returns its uid.
func InsertUser(t *testing.T, db *sql.DB, uid, name, role, status string) string {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO users (uid, fullName, email, pass, role, status, createdAt) VALUES (?, ?, ?, 'x', ?, ?, ?)`,
		uid, name, uid+"@club.test", role, status, time.Now().UTC().Format(time.RFC3339Nano),
	)
	require.NoError(t, err)
	return uid
}

// InsertSchedule adds a minimal schedules row and returns its ID.
func InsertSchedule(t *testing.T, db *sql.DB, id, title, date, createdBy string) string {
	t.Helper()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := db.Exec(
		`INSERT INTO schedules (scheduleID, eventType, title, eventDate, startTime, endTime, dayOfWeek, createdBy, createdAt, updatedAt)
		 VALUES (?, 'Training', ?, ?, '09:00:00', '10:00:00', 'Monday', ?, ?, ?)`,
		id, title, date, createdBy, now, now,
	)
	require.NoError(t, err)
	return id
}
