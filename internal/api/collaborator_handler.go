package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/benjamin-api/internal/api/shared"
	"github.com/phrazzld/benjamin-api/internal/service"
)

// CollaboratorHandler serves project sharing endpoints.
type CollaboratorHandler struct {
	collaborators service.CollaboratorService
	logger        *slog.Logger
}

// NewCollaboratorHandler creates a CollaboratorHandler.
func NewCollaboratorHandler(collaborators service.CollaboratorService, logger *slog.Logger) *CollaboratorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollaboratorHandler{
		collaborators: collaborators,
		logger:        logger.With(slog.String("component", "collaborator_handler")),
	}
}

// Invite handles POST /projects/{projectID}/collaborators.
func (h *CollaboratorHandler) Invite(w http.ResponseWriter, r *http.Request) {
	caller, projectID, ok := callerAndProject(w, r)
	if !ok {
		return
	}
	var req InviteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	collaborator, err := h.collaborators.Invite(r.Context(), caller, projectID, req.UserName)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, collaboratorToResponse(collaborator))
}

// List handles GET /projects/{projectID}/collaborators.
func (h *CollaboratorHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, projectID, ok := callerAndProject(w, r)
	if !ok {
		return
	}

	collaborators, err := h.collaborators.List(r.Context(), caller, projectID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	resp := make([]CollaboratorResponse, 0, len(collaborators))
	for i := range collaborators {
		resp = append(resp, collaboratorToResponse(&collaborators[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Remove handles DELETE /projects/{projectID}/collaborators/{userName}.
func (h *CollaboratorHandler) Remove(w http.ResponseWriter, r *http.Request) {
	caller, projectID, ok := callerAndProject(w, r)
	if !ok {
		return
	}
	userName := chi.URLParam(r, ParamUserName)

	if err := h.collaborators.Remove(r.Context(), caller, projectID, userName); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
