package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/benjamin-api/internal/api/shared"
	"github.com/phrazzld/benjamin-api/internal/domain"
	"github.com/phrazzld/benjamin-api/internal/service"
)

// TaskHandler serves the task endpoints of a project.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /projects/{projectID}/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, projectID, ok := callerAndProject(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.tasks.Create(r.Context(), caller, projectID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	h.respondWithResult(w, r, result, http.StatusCreated)
}

// List handles GET /projects/{projectID}/tasks. The optional assignee query
// parameter filters by assignee.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, projectID, ok := callerAndProject(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), caller, projectID, r.URL.Query().Get("assignee"))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, taskToResponse(&tasks[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Get handles GET /projects/{projectID}/tasks/{number}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, projectID, ok := callerAndProject(w, r)
	if !ok {
		return
	}
	number, err := getPathNumber(r, ParamNumber)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid task number", err)
		return
	}

	profile, err := h.tasks.Get(r.Context(), caller, projectID, number)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, taskProfileToResponse(profile))
}

// Update handles PUT /projects/{projectID}/tasks/{number}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, projectID, ok := callerAndProject(w, r)
	if !ok {
		return
	}
	number, err := getPathNumber(r, ParamNumber)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid task number", err)
		return
	}
	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	input := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
	}
	if req.Status != nil {
		status, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			HandleAPIError(w, r, err)
			return
		}
		input.Status = &status
	}

	result, err := h.tasks.Update(r.Context(), caller, projectID, number, input)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	h.respondWithResult(w, r, result, http.StatusOK)
}

// Delete handles DELETE /projects/{projectID}/tasks/{number}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, projectID, ok := callerAndProject(w, r)
	if !ok {
		return
	}
	number, err := getPathNumber(r, ParamNumber)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid task number", err)
		return
	}

	if err := h.tasks.Delete(r.Context(), caller, projectID, number); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondWithResult maps a task outcome to its response.
func (h *TaskHandler) respondWithResult(w http.ResponseWriter, r *http.Request, result service.TaskResult, success int) {
	switch result.Outcome {
	case service.TaskSuccess:
		shared.RespondWithJSON(w, r, success, taskToResponse(result.Task))
	case service.TaskNotFound:
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
	case service.AssigneeNotFound:
		shared.RespondWithError(w, r, http.StatusNotFound, "Assignee not found")
	case service.AssigneeHasNoAccess:
		shared.RespondWithError(w, r, http.StatusForbidden, "Assignee has no access to the project")
	default:
		h.logger.Error("unknown task outcome", slog.String("outcome", result.Outcome.String()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
