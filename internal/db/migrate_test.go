package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	conn, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "tickets.db"))
	require.NoError(t, err)
	defer conn.Close()

	version, _, err := MigrationVersion(conn)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, RunMigrations(conn))
	require.NoError(t, RunMigrations(conn))

	version, dirty, err := MigrationVersion(conn)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	var name string
	err = conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_category_severity'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_category_severity", name)
}

func TestSchemaRejectsBadRows(t *testing.T) {
	conn, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "tickets.db"))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, RunMigrations(conn))

	insert := `INSERT INTO tickets(category, severity, resolution_minutes, resolved, created_on) VALUES (?, ?, ?, ?, ?)`

	_, err = conn.Exec(insert, "VPN", "Urgent", 5, 1, "2024-01-01T00:00:00Z")
	assert.Error(t, err)
	_, err = conn.Exec(insert, "VPN", "Low", -1, 1, "2024-01-01T00:00:00Z")
	assert.Error(t, err)
	_, err = conn.Exec(insert, "VPN", "Low", 5, 2, "2024-01-01T00:00:00Z")
	assert.Error(t, err)
	_, err = conn.Exec(insert, "VPN", "Low", 5, 1, "2024-01-01T00:00:00Z")
	assert.NoError(t, err)
}
