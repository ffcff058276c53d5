package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/events"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// CollaboratorService shares projects with other users.
type CollaboratorService interface {
	// Invite grants userName access and records an invitation event in the
	// same transaction.
	Invite(ctx context.Context, caller string, projectID uuid.UUID, userName string) (*domain.Collaborator, error)

	// Remove revokes access and clears the user's task assignments in the project.
	Remove(ctx context.Context, caller string, projectID uuid.UUID, userName string) error

	List(ctx context.Context, caller string, projectID uuid.UUID) ([]domain.Collaborator, error)
}

type collaboratorServiceImpl struct {
	users   store.UserStore
	grants  store.AccessStore
	tasks   store.TaskStore
	tx      store.Transactor
	guard   *access.Guard
	emitter events.Emitter
	logger  *slog.Logger
}

// NewCollaboratorService creates a CollaboratorService.
func NewCollaboratorService(
	users store.UserStore,
	grants store.AccessStore,
	tasks store.TaskStore,
	tx store.Transactor,
	guard *access.Guard,
	emitter events.Emitter,
	log *slog.Logger,
) (CollaboratorService, error) {
	if users == nil || grants == nil || tasks == nil || tx == nil || guard == nil || emitter == nil {
		return nil, errors.New("collaborator service dependencies cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &collaboratorServiceImpl{
		users:   users,
		grants:  grants,
		tasks:   tasks,
		tx:      tx,
		guard:   guard,
		emitter: emitter,
		logger:  log.With(slog.String("component", "collaborator_service")),
	}, nil
}

func (s *collaboratorServiceImpl) Invite(
	ctx context.Context,
	caller string,
	projectID uuid.UUID,
	userName string,
) (*domain.Collaborator, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	project, err := s.guard.RequireOwner(ctx, caller, projectID)
	if err != nil {
		return nil, NewServiceError("collaborator", "invite", err)
	}
	if project.IsOwnedBy(userName) {
		return nil, NewServiceError("collaborator", "invite", ErrInviteOwner)
	}

	found, err := s.users.FetchByUserName(ctx, userName)
	if err != nil {
		return nil, NewServiceError("collaborator", "invite", err)
	}
	if len(found) == 0 {
		return nil, NewServiceError("collaborator", "invite", ErrUserNotFound)
	}
	invitee := found[0]

	now := time.Now().UTC()
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.grants.WithTx(tx).Grant(ctx, project.ID, invitee.UserName); err != nil {
			return err
		}
		return s.emitter.Emit(ctx, tx, events.InvitationEvent{
			ProjectID:    project.ID,
			ProjectTitle: project.Title,
			Inviter:      caller,
			UserName:     invitee.UserName,
			FirstName:    invitee.FirstName,
			LastName:     invitee.LastName,
			Email:        invitee.Email,
			InvitedAt:    now,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAccessExists) {
			return nil, NewServiceError("collaborator", "invite", ErrAlreadyCollaborator)
		}
		log.Error("failed to invite collaborator",
			slog.String("error", err.Error()),
			slog.String("project_id", project.ID.String()),
			slog.String("user_name", invitee.UserName))
		return nil, NewServiceError("collaborator", "invite", err)
	}

	log.Info("collaborator invited",
		slog.String("project_id", project.ID.String()),
		slog.String("user_name", invitee.UserName))
	return &domain.Collaborator{
		ProjectID: project.ID,
		UserName:  invitee.UserName,
		FirstName: invitee.FirstName,
		LastName:  invitee.LastName,
		GrantedAt: now,
	}, nil
}

func (s *collaboratorServiceImpl) Remove(ctx context.Context, caller string, projectID uuid.UUID, userName string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.guard.RequireOwner(ctx, caller, projectID); err != nil {
		return NewServiceError("collaborator", "remove", err)
	}

	var unassigned int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.grants.WithTx(tx).Revoke(ctx, projectID, userName); err != nil {
			return err
		}
		n, err := s.tasks.WithTx(tx).UnassignUser(ctx, projectID, userName)
		unassigned = n
		return err
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return NewServiceError("collaborator", "remove", ErrCollaboratorNotFound)
		}
		return NewServiceError("collaborator", "remove", err)
	}

	log.Info("collaborator removed",
		slog.String("project_id", projectID.String()),
		slog.String("user_name", userName),
		slog.Int64("tasks_unassigned", unassigned))
	return nil
}

func (s *collaboratorServiceImpl) List(ctx context.Context, caller string, projectID uuid.UUID) ([]domain.Collaborator, error) {
	if _, err := s.guard.RequireMember(ctx, caller, projectID); err != nil {
		return nil, NewServiceError("collaborator", "list", err)
	}
	collaborators, err := s.grants.ListCollaborators(ctx, projectID)
	if err != nil {
		return nil, NewServiceError("collaborator", "list", err)
	}
	return collaborators, nil
}
