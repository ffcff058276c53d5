// Package testdb provides helpers for PostgreSQL integration tests.
//
// Tests skip unless DATABASE_URL (or BENJAMIN_TEST_DB_URL) is set. The
// schema is migrated once per test binary and every test runs inside its
// own transaction, rolled back on cleanup, so tests may call t.Parallel().
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    tx := testdb.BeginTx(t)
//	    users := postgres.NewPostgresUserStore(tx, nil)
//	    ...
//	}
package testdb
