package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
	"github.com/phrazzld/benjamin-api/internal/store"
)

// Rejections returned by RequireOwner and RequireMember.
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrAccessDenied     = errors.New("access denied")
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allowed Decision = iota
	Denied
	ResourceNotFound
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	case ResourceNotFound:
		return "resource_not_found"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Err returns the rejection for d, or nil when access is allowed.
func (d Decision) Err() error {
	switch d {
	case Allowed:
		return nil
	case ResourceNotFound:
		return ErrResourceNotFound
	default:
		return ErrAccessDenied
	}
}

// Guard authorizes callers against projects. It only reads.
type Guard struct {
	projects store.ProjectStore
	grants   store.AccessStore
	logger   *slog.Logger
}

// NewGuard creates a Guard. A nil logger uses slog.Default().
func NewGuard(projects store.ProjectStore, grants store.AccessStore, log *slog.Logger) (*Guard, error) {
	if projects == nil {
		return nil, errors.New("project store cannot be nil")
	}
	if grants == nil {
		return nil, errors.New("access store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Guard{
		projects: projects,
		grants:   grants,
		logger:   log.With(slog.String("component", "access_guard")),
	}, nil
}

// Decide resolves the project and compares its owner to caller. Store
// failures are returned as errors, not decisions. The project is returned
// whenever it was resolved.
func (g *Guard) Decide(ctx context.Context, caller string, projectID uuid.UUID) (Decision, *domain.Project, error) {
	project, err := g.projects.GetByID(ctx, projectID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ResourceNotFound, nil, nil
		}
		return Denied, nil, fmt.Errorf("failed to resolve project %s: %w", projectID, err)
	}
	if !project.IsOwnedBy(caller) {
		return Denied, project, nil
	}
	return Allowed, project, nil
}

// RequireOwner returns the project if caller owns it, otherwise
// ErrResourceNotFound or ErrAccessDenied.
func (g *Guard) RequireOwner(ctx context.Context, caller string, projectID uuid.UUID) (*domain.Project, error) {
	decision, project, err := g.Decide(ctx, caller, projectID)
	if err != nil {
		return nil, err
	}
	if decision != Allowed {
		g.reject(ctx, "owner", caller, projectID, decision)
		return nil, decision.Err()
	}
	return project, nil
}

// RequireMember returns the project if caller owns it or was granted access.
func (g *Guard) RequireMember(ctx context.Context, caller string, projectID uuid.UUID) (*domain.Project, error) {
	decision, project, err := g.Decide(ctx, caller, projectID)
	if err != nil {
		return nil, err
	}
	switch decision {
	case Allowed:
		return project, nil
	case Denied:
		ok, err := g.HasAccess(ctx, project, caller)
		if err != nil {
			return nil, err
		}
		if ok {
			return project, nil
		}
	}
	g.reject(ctx, "member", caller, projectID, decision)
	return nil, decision.Err()
}

// HasAccess reports whether userName owns project or holds a grant on it.
func (g *Guard) HasAccess(ctx context.Context, project *domain.Project, userName string) (bool, error) {
	if project.IsOwnedBy(userName) {
		return true, nil
	}
	ok, err := g.grants.HasAccess(ctx, project.ID, userName)
	if err != nil {
		return false, fmt.Errorf("failed to check access to project %s: %w", project.ID, err)
	}
	return ok, nil
}

func (g *Guard) reject(ctx context.Context, required, caller string, projectID uuid.UUID, d Decision) {
	logger.FromContextOrDefault(ctx, g.logger).Debug("access rejected",
		slog.String("required", required),
		slog.String("caller", caller),
		slog.String("project_id", projectID.String()),
		slog.String("decision", d.String()))
}
