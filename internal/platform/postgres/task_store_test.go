package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/postgres"
	"github.com/phrazzld/benjamin-api/internal/store"
	"github.com/phrazzld/benjamin-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresTaskStore(t *testing.T) {
	tx := testdb.BeginTx(t)
	ctx := context.Background()
	projects := postgres.NewPostgresProjectStore(tx, nil)
	tasks := postgres.NewPostgresTaskStore(tx, nil)

	owner := createTestUser(t, tx)
	assignee := createTestUser(t, tx)
	project := createTestProject(t, tx, owner.UserName)

	newTask := func(t *testing.T, title, assignee string) *domain.Task {
		t.Helper()
		task, err := domain.NewTask(project.ID, owner.UserName, title, "", assignee)
		require.NoError(t, err)
		task.Number, err = projects.NextTaskNumber(ctx, project.ID)
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, task))
		return task
	}

	t.Run("Create and get", func(t *testing.T) {
		task := newTask(t, "Write docs", "")

		got, err := tasks.GetByNumber(ctx, project.ID, task.Number)
		require.NoError(t, err)
		assert.Equal(t, "Write docs", got.Title)
		assert.Empty(t, got.Assignee)
		assert.Equal(t, domain.TaskStatusNew, got.Status)
	})

	t.Run("Zero number is rejected", func(t *testing.T) {
		task, err := domain.NewTask(project.ID, owner.UserName, "No number", "", "")
		require.NoError(t, err)
		assert.ErrorIs(t, tasks.Create(ctx, task), store.ErrInvalidEntity)
	})

	t.Run("Update and delete", func(t *testing.T) {
		task := newTask(t, "Fix bug", "")
		task.Assignee = assignee.UserName
		task.Status = domain.TaskStatusInProgress
		require.NoError(t, tasks.Update(ctx, task))

		got, err := tasks.GetByNumber(ctx, project.ID, task.Number)
		require.NoError(t, err)
		assert.Equal(t, assignee.UserName, got.Assignee)
		assert.Equal(t, domain.TaskStatusInProgress, got.Status)

		require.NoError(t, tasks.Delete(ctx, project.ID, task.Number))
		_, err = tasks.GetByNumber(ctx, project.ID, task.Number)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
		assert.ErrorIs(t, tasks.Delete(ctx, project.ID, task.Number), store.ErrTaskNotFound)
	})

	t.Run("List and unassign", func(t *testing.T) {
		other := createTestProject(t, tx, owner.UserName)
		a := newTask(t, "First", assignee.UserName)
		b := newTask(t, "Second", "")
		c := newTask(t, "Third", assignee.UserName)

		assigned, err := tasks.ListByAssignee(ctx, project.ID, assignee.UserName)
		require.NoError(t, err)
		require.Len(t, assigned, 2)
		assert.Equal(t, a.Number, assigned[0].Number)
		assert.Equal(t, c.Number, assigned[1].Number)

		all, err := tasks.ListByProject(ctx, project.ID)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 3)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].Number, all[i].Number)
		}

		n, err := tasks.UnassignUser(ctx, project.ID, assignee.UserName)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		got, err := tasks.GetByNumber(ctx, project.ID, b.Number)
		require.NoError(t, err)
		assert.Empty(t, got.Assignee)

		empty, err := tasks.ListByProject(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("Unknown task", func(t *testing.T) {
		_, err := tasks.GetByNumber(ctx, uuid.New(), 1)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}
