package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/benjamin-api/internal/api/shared"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/platform/logger"
)

// Path parameter names used by the router.
const (
	ParamProjectID = "projectID"
	ParamNumber    = "number"
	ParamUserName  = "userName"
)

// callerFromRequest returns the authenticated user name or writes 401.
func callerFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	caller, ok := shared.UserNameFromContext(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("user name not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return caller, true
}

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, param)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, param)
	}
	return id, nil
}

// getPathNumber parses a positive task number path parameter.
func getPathNumber(r *http.Request, param string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || n <= 0 {
		return 0, domain.ErrInvalidTaskNumber
	}
	return n, nil
}

// callerAndProject extracts the caller and the project path parameter,
// writing an error response when either is missing or malformed.
func callerAndProject(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return "", uuid.Nil, false
	}
	projectID, err := getPathUUID(r, ParamProjectID)
	if err != nil {
		logger.FromContext(r.Context()).Debug("invalid project id",
			slog.String("value", chi.URLParam(r, ParamProjectID)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid project ID", err)
		return "", uuid.Nil, false
	}
	return caller, projectID, true
}

// decodeAndValidate reads the JSON body into v and validates it, writing 400
// on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
