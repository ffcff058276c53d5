package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// ProjectService manages projects on behalf of an authenticated caller.
// Reads require membership, mutations require ownership.
type ProjectService interface {
	Create(ctx context.Context, caller, title, description string) (*domain.Project, error)
	Get(ctx context.Context, caller string, projectID uuid.UUID) (*domain.Project, error)
	Update(ctx context.Context, caller string, projectID uuid.UUID, title, description string) (*domain.Project, error)
	Delete(ctx context.Context, caller string, projectID uuid.UUID) error

	// List returns the projects the caller owns or collaborates on, newest first.
	List(ctx context.Context, caller string) ([]domain.Project, error)
}

type projectServiceImpl struct {
	projects store.ProjectStore
	guard    *access.Guard
	logger   *slog.Logger
}

// NewProjectService creates a ProjectService.
func NewProjectService(projects store.ProjectStore, guard *access.Guard, log *slog.Logger) (ProjectService, error) {
	if projects == nil || guard == nil {
		return nil, errors.New("project service dependencies cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &projectServiceImpl{
		projects: projects,
		guard:    guard,
		logger:   log.With(slog.String("component", "project_service")),
	}, nil
}

func (s *projectServiceImpl) Create(ctx context.Context, caller, title, description string) (*domain.Project, error) {
	project, err := domain.NewProject(caller, title, description)
	if err != nil {
		return nil, NewServiceError("project", "create", err)
	}
	if err := s.projects.Create(ctx, project); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create project",
			slog.String("error", err.Error()),
			slog.String("owner", caller))
		return nil, NewServiceError("project", "create", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("owner", caller))
	return project, nil
}

func (s *projectServiceImpl) Get(ctx context.Context, caller string, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.guard.RequireMember(ctx, caller, projectID)
	if err != nil {
		return nil, NewServiceError("project", "get", err)
	}
	return project, nil
}

func (s *projectServiceImpl) Update(
	ctx context.Context,
	caller string,
	projectID uuid.UUID,
	title, description string,
) (*domain.Project, error) {
	project, err := s.guard.RequireOwner(ctx, caller, projectID)
	if err != nil {
		return nil, NewServiceError("project", "update", err)
	}
	if err := project.Rename(title, description); err != nil {
		return nil, NewServiceError("project", "update", err)
	}
	if err := s.projects.Update(ctx, project); err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError("project", "update", access.ErrResourceNotFound)
		}
		return nil, NewServiceError("project", "update", err)
	}
	return project, nil
}

func (s *projectServiceImpl) Delete(ctx context.Context, caller string, projectID uuid.UUID) error {
	if _, err := s.guard.RequireOwner(ctx, caller, projectID); err != nil {
		return NewServiceError("project", "delete", err)
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		if store.IsNotFoundError(err) {
			return NewServiceError("project", "delete", access.ErrResourceNotFound)
		}
		return NewServiceError("project", "delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("project deleted",
		slog.String("project_id", projectID.String()),
		slog.String("owner", caller))
	return nil
}

func (s *projectServiceImpl) List(ctx context.Context, caller string) ([]domain.Project, error) {
	projects, err := s.projects.ListForUser(ctx, caller)
	if err != nil {
		return nil, NewServiceError("project", "list", err)
	}
	return projects, nil
}
