package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCmd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "club.db")

	out, err := execute(t, "migrate", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version")

	// Running again is a no-op.
	_, err = execute(t, "migrate", "--db", db)
	assert.NoError(t, err)
}

func TestCreateUserCmd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "club.db")

	out, err := execute(t, "create-user", "--db", db,
		"--email", "coach@club.test", "--name", "Casey Coach", "--role", "coach", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "created coach coach@club.test")

	_, err = execute(t, "create-user", "--db", db,
		"--email", "coach@club.test", "--name", "Casey Again", "--password", "secret123")
	assert.Error(t, err)

	_, err = execute(t, "create-user", "--db", db,
		"--email", "wiz@club.test", "--name", "Wiz", "--role", "wizard", "--password", "secret123")
	assert.Error(t, err)

	_, err = execute(t, "create-user", "--db", db, "--email", "x@club.test")
	assert.Error(t, err, "name and password are required")
}

func TestPurgeSessionsCmd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "club.db")

	out, err := execute(t, "purge-sessions", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "removed 0 sessions\n", out)
}
