package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/benjamin-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// urlEnvVars are checked in order by GetTestDatabaseURL.
var urlEnvVars = []string{"DATABASE_URL", "BENJAMIN_TEST_DB_URL"}

var (
	migrateOnce sync.Once
	migrateErr  error
)

// GetTestDatabaseURL returns the first configured database URL, or "".
func GetTestDatabaseURL() string {
	for _, name := range urlEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// SkipIfNoDatabase skips the test when no test database is configured.
func SkipIfNoDatabase(t *testing.T) {
	t.Helper()
	if !IsIntegrationTestEnvironment() {
		t.Skip("Skipping integration test - DATABASE_URL environment variable required")
	}
}

// GetTestDBWithT opens a connection to the migrated test database and closes
// it when the test ends. It skips the test without a database.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfNoDatabase(t)

	db, err := sql.Open("pgx", GetTestDatabaseURL())
	require.NoError(t, err, "Failed to open database connection")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Error closing database connection: %v", err)
		}
	})

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(context.Background(), db, nil, "up")
	})
	require.NoError(t, migrateErr, "Failed to apply migrations")
	return db
}

// BeginTx returns a transaction on the test database that is rolled back
// when the test ends.
func BeginTx(t *testing.T) *sql.Tx {
	t.Helper()
	db := GetTestDBWithT(t)

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")
	t.Cleanup(func() { AssertRollbackNoError(t, tx) })
	return tx
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()
	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")
	defer AssertRollbackNoError(t, tx)
	fn(t, tx)
}

// AssertRollbackNoError rolls tx back, tolerating an already finished
// transaction.
func AssertRollbackNoError(t *testing.T, tx *sql.Tx) {
	t.Helper()
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		t.Errorf("Failed to roll back transaction: %v", err)
	}
}

// InSavepoint runs fn inside a savepoint and rolls back to it afterwards so
// a constraint violation does not abort the surrounding test transaction.
func InSavepoint(t *testing.T, tx *sql.Tx, fn func() error) error {
	t.Helper()
	ctx := context.Background()
	_, err := tx.ExecContext(ctx, "SAVEPOINT test_sp")
	require.NoError(t, err)
	fnErr := fn()
	_, err = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT test_sp")
	require.NoError(t, err)
	return fnErr
}
