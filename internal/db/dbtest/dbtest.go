// Package dbtest connects tests to a real PostgreSQL. Tests using it are
// skipped under -short and when TEST_DSN is not set.
package dbtest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"fitcoach/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var tables = []string{
	"visits",
	"memberships",
	"training_sessions",
	"coach_availability",
	"clients",
	"coaches",
}

// Open returns a migrated, empty database and closes it when the test ends.
func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DSN not set")
	}

	driver := os.Getenv("TEST_DB_DRIVER")
	if driver == "" {
		driver = "postgres"
	}

	conn, err := db.Connect(driver, dsn)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.RunMigrations(conn, migrationsPath()))
	Clean(t, conn)
	return conn
}

func Clean(t *testing.T, conn *sqlx.DB) {
	t.Helper()
	for _, table := range tables {
		_, err := conn.Exec(fmt.Sprintf("DELETE FROM %s", table))
		require.NoError(t, err, "Failed to clean table "+table)
	}
}

func CreateCoach(t *testing.T, conn *sqlx.DB, name string) int {
	t.Helper()
	var id int
	err := conn.QueryRow(`INSERT INTO coaches (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func CreateClient(t *testing.T, conn *sqlx.DB, name, email string) int {
	t.Helper()
	var id int
	err := conn.QueryRow(`INSERT INTO clients (name, email) VALUES ($1, $2) RETURNING id`, name, email).Scan(&id)
	require.NoError(t, err)
	return id
}

func migrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}
