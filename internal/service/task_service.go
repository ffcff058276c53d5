package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/events"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// TaskOutcome is the business result of a task write.
type TaskOutcome int

const (
	TaskSuccess TaskOutcome = iota
	TaskNotFound
	AssigneeNotFound
	AssigneeHasNoAccess
)

func (o TaskOutcome) String() string {
	switch o {
	case TaskSuccess:
		return "success"
	case TaskNotFound:
		return "task_not_found"
	case AssigneeNotFound:
		return "assignee_not_found"
	case AssigneeHasNoAccess:
		return "assignee_has_no_access"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// TaskResult carries the outcome of a create or update. Task is set only on
// TaskSuccess.
type TaskResult struct {
	Outcome TaskOutcome
	Task    *domain.Task
}

// CreateTaskInput describes a new task. An empty Assignee leaves it unassigned.
type CreateTaskInput struct {
	Title       string
	Description string
	Assignee    string
}

// UpdateTaskInput lists the fields to change. Nil fields are left as they
// are; an empty Assignee unassigns the task.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Assignee    *string
	Status      *domain.TaskStatus
}

// TaskService manages the tasks of a project.
type TaskService interface {
	Create(ctx context.Context, caller string, projectID uuid.UUID, input CreateTaskInput) (TaskResult, error)
	Update(ctx context.Context, caller string, projectID uuid.UUID, number int, input UpdateTaskInput) (TaskResult, error)
	Delete(ctx context.Context, caller string, projectID uuid.UUID, number int) error

	// Get returns the task together with its project title.
	Get(ctx context.Context, caller string, projectID uuid.UUID, number int) (*domain.TaskProfile, error)

	// List returns the project's tasks by number. A non-empty assignee
	// restricts the list to tasks assigned to that user.
	List(ctx context.Context, caller string, projectID uuid.UUID, assignee string) ([]domain.Task, error)
}

type taskServiceImpl struct {
	projects store.ProjectStore
	tasks    store.TaskStore
	users    store.UserStore
	tx       store.Transactor
	guard    *access.Guard
	emitter  events.Emitter
	logger   *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(
	projects store.ProjectStore,
	tasks store.TaskStore,
	users store.UserStore,
	tx store.Transactor,
	guard *access.Guard,
	emitter events.Emitter,
	log *slog.Logger,
) (TaskService, error) {
	if projects == nil || tasks == nil || users == nil || tx == nil || guard == nil || emitter == nil {
		return nil, errors.New("task service dependencies cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &taskServiceImpl{
		projects: projects,
		tasks:    tasks,
		users:    users,
		tx:       tx,
		guard:    guard,
		emitter:  emitter,
		logger:   log.With(slog.String("component", "task_service")),
	}, nil
}

// validateAssignee resolves assignee in the user directory and checks that
// they can see project. The user is returned on TaskSuccess.
func (s *taskServiceImpl) validateAssignee(
	ctx context.Context,
	project *domain.Project,
	assignee string,
) (TaskOutcome, *domain.User, error) {
	found, err := s.users.FetchByUserName(ctx, assignee)
	if err != nil {
		return TaskSuccess, nil, err
	}
	if len(found) == 0 {
		return AssigneeNotFound, nil, nil
	}
	ok, err := s.guard.HasAccess(ctx, project, assignee)
	if err != nil {
		return TaskSuccess, nil, err
	}
	if !ok {
		return AssigneeHasNoAccess, nil, nil
	}
	return TaskSuccess, &found[0], nil
}

func (s *taskServiceImpl) Create(
	ctx context.Context,
	caller string,
	projectID uuid.UUID,
	input CreateTaskInput,
) (TaskResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := s.guard.RequireOwner(ctx, caller, projectID)
	if err != nil {
		return TaskResult{}, NewServiceError("task", "create", err)
	}

	assignee := strings.TrimSpace(input.Assignee)
	task, err := domain.NewTask(project.ID, caller, input.Title, input.Description, assignee)
	if err != nil {
		return TaskResult{}, NewServiceError("task", "create", err)
	}

	var assigneeUser *domain.User
	if assignee != "" {
		outcome, user, err := s.validateAssignee(ctx, project, assignee)
		if err != nil {
			return TaskResult{}, NewServiceError("task", "create", err)
		}
		if outcome != TaskSuccess {
			log.Debug("task not created",
				slog.String("project_id", project.ID.String()),
				slog.String("assignee", assignee),
				slog.String("outcome", outcome.String()))
			return TaskResult{Outcome: outcome}, nil
		}
		assigneeUser = user
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		number, err := s.projects.WithTx(tx).NextTaskNumber(ctx, project.ID)
		if err != nil {
			return err
		}
		task.Number = number
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return err
		}
		return s.emitAssigned(ctx, tx, caller, project, task, assigneeUser)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return TaskResult{}, NewServiceError("task", "create", access.ErrResourceNotFound)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()))
		return TaskResult{}, NewServiceError("task", "create", err)
	}

	log.Info("task created",
		slog.String("project_id", project.ID.String()),
		slog.Int("number", task.Number))
	return TaskResult{Outcome: TaskSuccess, Task: task}, nil
}

func (s *taskServiceImpl) Update(
	ctx context.Context,
	caller string,
	projectID uuid.UUID,
	number int,
	input UpdateTaskInput,
) (TaskResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := s.guard.RequireOwner(ctx, caller, projectID)
	if err != nil {
		return TaskResult{}, NewServiceError("task", "update", err)
	}

	task, err := s.tasks.GetByNumber(ctx, project.ID, number)
	if err != nil {
		if store.IsNotFoundError(err) {
			return TaskResult{Outcome: TaskNotFound}, nil
		}
		return TaskResult{}, NewServiceError("task", "update", err)
	}

	previousAssignee := task.Assignee
	var assigneeUser *domain.User
	if input.Assignee != nil {
		assignee := strings.TrimSpace(*input.Assignee)
		if assignee != "" {
			outcome, user, err := s.validateAssignee(ctx, project, assignee)
			if err != nil {
				return TaskResult{}, NewServiceError("task", "update", err)
			}
			if outcome != TaskSuccess {
				log.Debug("task not updated",
					slog.String("project_id", project.ID.String()),
					slog.Int("number", number),
					slog.String("assignee", assignee),
					slog.String("outcome", outcome.String()))
				return TaskResult{Outcome: outcome}, nil
			}
			assigneeUser = user
		}
		task.Assignee = assignee
	}
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	task.UpdatedAt = time.Now().UTC()
	if err := task.Validate(); err != nil {
		return TaskResult{}, NewServiceError("task", "update", err)
	}

	if task.Assignee == previousAssignee {
		assigneeUser = nil
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Update(ctx, task); err != nil {
			return err
		}
		return s.emitAssigned(ctx, tx, caller, project, task, assigneeUser)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return TaskResult{Outcome: TaskNotFound}, nil
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()),
			slog.Int("number", number))
		return TaskResult{}, NewServiceError("task", "update", err)
	}

	return TaskResult{Outcome: TaskSuccess, Task: task}, nil
}

// emitAssigned records a task_assigned event unless there is no new assignee
// or the caller assigned the task to themselves.
func (s *taskServiceImpl) emitAssigned(
	ctx context.Context,
	tx *sql.Tx,
	caller string,
	project *domain.Project,
	task *domain.Task,
	assignee *domain.User,
) error {
	if assignee == nil || assignee.UserName == caller {
		return nil
	}
	return s.emitter.Emit(ctx, tx, events.TaskAssignedEvent{
		ProjectID:    project.ID,
		ProjectTitle: project.Title,
		TaskNumber:   task.Number,
		TaskTitle:    task.Title,
		AssignedBy:   caller,
		Assignee:     assignee.UserName,
		Email:        assignee.Email,
		AssignedAt:   task.UpdatedAt,
	})
}

func (s *taskServiceImpl) Delete(ctx context.Context, caller string, projectID uuid.UUID, number int) error {
	if _, err := s.guard.RequireOwner(ctx, caller, projectID); err != nil {
		return NewServiceError("task", "delete", err)
	}
	if err := s.tasks.Delete(ctx, projectID, number); err != nil {
		if store.IsNotFoundError(err) {
			return NewServiceError("task", "delete", ErrTaskNotFound)
		}
		return NewServiceError("task", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("task deleted",
		slog.String("project_id", projectID.String()),
		slog.Int("number", number))
	return nil
}

func (s *taskServiceImpl) Get(ctx context.Context, caller string, projectID uuid.UUID, number int) (*domain.TaskProfile, error) {
	project, err := s.guard.RequireMember(ctx, caller, projectID)
	if err != nil {
		return nil, NewServiceError("task", "get", err)
	}
	task, err := s.tasks.GetByNumber(ctx, project.ID, number)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError("task", "get", ErrTaskNotFound)
		}
		return nil, NewServiceError("task", "get", err)
	}
	profile := domain.NewTaskProfile(task, project)
	return &profile, nil
}

func (s *taskServiceImpl) List(
	ctx context.Context,
	caller string,
	projectID uuid.UUID,
	assignee string,
) ([]domain.Task, error) {
	if _, err := s.guard.RequireMember(ctx, caller, projectID); err != nil {
		return nil, NewServiceError("task", "list", err)
	}

	var (
		tasks []domain.Task
		err   error
	)
	if assignee = strings.TrimSpace(assignee); assignee != "" {
		tasks, err = s.tasks.ListByAssignee(ctx, projectID, assignee)
	} else {
		tasks, err = s.tasks.ListByProject(ctx, projectID)
	}
	if err != nil {
		return nil, NewServiceError("task", "list", err)
	}
	return tasks, nil
}
