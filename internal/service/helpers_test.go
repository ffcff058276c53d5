package service_test

import (
	"context"
	"testing"

	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/events"
	"github.com/phrazzld/benjamin-api/internal/mocks"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/service"
	"github.com/stretchr/testify/require"
)

const (
	ownerName        = "a.elmurzaev95"
	collaboratorName = "j.doe"
	outsiderName     = "outsider"
)

// fixture wires every service to in-memory stores seeded with three users
// and one project owned by ownerName and shared with collaboratorName.
type fixture struct {
	users    *mocks.MockUserStore
	projects *mocks.MockProjectStore
	grants   *mocks.MockAccessStore
	tasks    *mocks.MockTaskStore
	outbox   *mocks.MockOutboxStore
	tx       *mocks.MockTransactor
	logs     *logger.TestLogBuffer

	project *domain.Project

	projectSvc      service.ProjectService
	collaboratorSvc service.CollaboratorService
	taskSvc         service.TaskService
}

func newTestUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(name, "First", "Last", name+"@example.com", "password123")
	require.NoError(t, err)
	u.HashedPassword = "hashed:password123"
	u.Password = ""
	return u
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log, buf := logger.NewTestLogger(t)

	f := &fixture{
		users: mocks.NewMockUserStore(
			newTestUser(t, ownerName),
			newTestUser(t, collaboratorName),
			newTestUser(t, outsiderName),
		),
		grants: mocks.NewMockAccessStore(),
		tasks:  mocks.NewMockTaskStore(),
		outbox: mocks.NewMockOutboxStore(),
		tx:     &mocks.MockTransactor{},
		logs:   buf,
	}
	f.grants.Users = f.users

	project, err := domain.NewProject(ownerName, "Google", "search")
	require.NoError(t, err)
	f.project = project
	f.projects = mocks.NewMockProjectStore(project)
	f.projects.Access = f.grants
	require.NoError(t, f.grants.Grant(ctx, project.ID, collaboratorName))

	guard, err := access.NewGuard(f.projects, f.grants, log)
	require.NoError(t, err)
	recorder, err := events.NewOutboxRecorder(f.outbox, log)
	require.NoError(t, err)

	f.projectSvc, err = service.NewProjectService(f.projects, guard, log)
	require.NoError(t, err)
	f.collaboratorSvc, err = service.NewCollaboratorService(f.users, f.grants, f.tasks, f.tx, guard, recorder, log)
	require.NoError(t, err)
	f.taskSvc, err = service.NewTaskService(f.projects, f.tasks, f.users, f.tx, guard, recorder, log)
	require.NoError(t, err)
	return f
}

func ptr[T any](v T) *T {
	return &v
}
