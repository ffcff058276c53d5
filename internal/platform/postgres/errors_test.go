package postgres_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/benjamin-api/internal/platform/postgres"
	"github.com/phrazzld/benjamin-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "test_table",
		ColumnName:     "test_column",
		ConstraintName: constraint,
	}
}

type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m mockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		unique     bool
		foreignKey bool
	}{
		{name: "nil error", err: nil},
		{name: "non-postgres error", err: errors.New("generic error")},
		{name: "unique violation", err: newPgError("23505", ""), unique: true},
		{name: "foreign key violation", err: newPgError("23503", ""), foreignKey: true},
		{name: "check violation", err: newPgError("23514", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.unique, postgres.IsUniqueViolation(tt.err))
			assert.Equal(t, tt.foreignKey, postgres.IsForeignKeyViolation(tt.err))
		})
	}
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsNotFoundError(sql.ErrNoRows))
	assert.True(t, postgres.IsNotFoundError(store.ErrTaskNotFound))
	assert.False(t, postgres.IsNotFoundError(store.ErrDuplicate))
	assert.False(t, postgres.IsNotFoundError(nil))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   sql.Result
		notFound error
		wantErr  bool
		errIs    error
	}{
		{name: "nil result", result: nil, wantErr: true},
		{
			name:    "zero rows without specific error",
			result:  mockResult{rowsAffected: 0},
			wantErr: true,
			errIs:   store.ErrNotFound,
		},
		{
			name:     "zero rows with specific error",
			result:   mockResult{rowsAffected: 0},
			notFound: store.ErrOutboxEventNotFound,
			wantErr:  true,
			errIs:    store.ErrOutboxEventNotFound,
		},
		{name: "one row affected", result: mockResult{rowsAffected: 1}},
		{
			name:    "error getting rows affected",
			result:  mockResult{err: errors.New("rows affected error")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := postgres.CheckRowsAffected(tt.result, tt.notFound)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
		})
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		errIs  error
		errMsg string
	}{
		{name: "nil error", err: nil},
		{name: "sql.ErrNoRows", err: sql.ErrNoRows, errIs: store.ErrNotFound, errMsg: "entity not found"},
		{
			name:   "unique violation on unknown constraint",
			err:    newPgError("23505", "something_key"),
			errIs:  store.ErrDuplicate,
			errMsg: "entity already exists",
		},
		{
			name:  "unique violation on user name",
			err:   newPgError("23505", "users_user_name_key"),
			errIs: store.ErrUserNameExists,
		},
		{
			name:  "unique violation on email",
			err:   newPgError("23505", "users_email_key"),
			errIs: store.ErrEmailExists,
		},
		{
			name:  "unique violation on access grant",
			err:   newPgError("23505", "project_access_pkey"),
			errIs: store.ErrAccessExists,
		},
		{
			name:   "foreign key violation",
			err:    newPgError("23503", "tasks_project_id_fkey"),
			errIs:  store.ErrInvalidEntity,
			errMsg: "foreign key violation (tasks_project_id_fkey)",
		},
		{
			name:   "check constraint violation",
			err:    newPgError("23514", "tasks_status_check"),
			errIs:  store.ErrInvalidEntity,
			errMsg: "check constraint violation",
		},
		{
			name:   "not null violation",
			err:    newPgError("23502", ""),
			errIs:  store.ErrInvalidEntity,
			errMsg: "not null violation (test_column)",
		},
		{name: "other postgres error", err: newPgError("42P01", "")},
		{name: "generic error", err: errors.New("generic error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := postgres.MapError(tt.err)

			if tt.err == nil {
				assert.Nil(t, result)
				return
			}

			if tt.errIs == nil {
				assert.Equal(t, tt.err.Error(), result.Error())
				return
			}
			assert.ErrorIs(t, result, tt.errIs)
			if tt.errMsg != "" {
				assert.Contains(t, result.Error(), tt.errMsg)
			}
		})
	}
}
