package testdb

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTestDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BENJAMIN_TEST_DB_URL", "")
	assert.Empty(t, GetTestDatabaseURL())
	assert.False(t, IsIntegrationTestEnvironment())

	t.Setenv("BENJAMIN_TEST_DB_URL", "postgres://fallback")
	assert.Equal(t, "postgres://fallback", GetTestDatabaseURL())

	t.Setenv("DATABASE_URL", "postgres://primary")
	assert.Equal(t, "postgres://primary", GetTestDatabaseURL())
	assert.True(t, IsIntegrationTestEnvironment())
}

func TestBeginTx_RollsBack(t *testing.T) {
	db := GetTestDBWithT(t)

	WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		_, err := tx.ExecContext(context.Background(),
			`INSERT INTO users (id, user_name, first_name, last_name, email, hashed_password, created_at, updated_at)
			 VALUES (gen_random_uuid(), 'testdb-rollback', 'T', 'D', 'testdb-rollback@example.com', 'x', now(), now())`)
		require.NoError(t, err)
	})

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM users WHERE user_name = 'testdb-rollback'`).Scan(&count))
	assert.Zero(t, count)
}
