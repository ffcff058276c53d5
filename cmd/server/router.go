package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/benjamin-api/internal/api"
	apiMiddleware "github.com/phrazzld/benjamin-api/internal/api/middleware"
	"github.com/phrazzld/benjamin-api/internal/api/shared"
	"github.com/phrazzld/benjamin-api/internal/platform/telemetry"
)

const healthCheckTimeout = 2 * time.Second

// healthCheck is a named dependency probe reported by /health.
type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

type routerDeps struct {
	auth          *api.AuthHandler
	projects      *api.ProjectHandler
	collaborators *api.CollaboratorHandler
	tasks         *api.TaskHandler
	authenticator *apiMiddleware.AuthMiddleware
	metrics       *telemetry.Metrics
	logger        *slog.Logger
	checks        []healthCheck
}

// newRouter builds the chi router with all routes and middleware.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.OpenTelemetry(deps.metrics))
	r.Use(apiMiddleware.TraceMiddleware(deps.logger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", deps.auth.Register)
		r.Post("/auth/login", deps.auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(deps.authenticator.Authenticate)

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", deps.projects.Create)
				r.Get("/", deps.projects.List)

				r.Route("/{"+api.ParamProjectID+"}", func(r chi.Router) {
					r.Get("/", deps.projects.Get)
					r.Put("/", deps.projects.Update)
					r.Delete("/", deps.projects.Delete)

					r.Get("/collaborators", deps.collaborators.List)
					r.Post("/collaborators", deps.collaborators.Invite)
					r.Delete("/collaborators/{"+api.ParamUserName+"}", deps.collaborators.Remove)

					r.Post("/tasks", deps.tasks.Create)
					r.Get("/tasks", deps.tasks.List)
					r.Get("/tasks/{"+api.ParamNumber+"}", deps.tasks.Get)
					r.Put("/tasks/{"+api.ParamNumber+"}", deps.tasks.Update)
					r.Delete("/tasks/{"+api.ParamNumber+"}", deps.tasks.Delete)
				})
			})
		})
	})

	r.Get("/health", healthHandler(deps.checks))

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthHandler reports 200 when every probe passes and 503 otherwise.
func healthHandler(checks []healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				resp.Checks[c.name] = err.Error()
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[c.name] = "ok"
		}
		shared.RespondWithJSON(w, r, status, resp)
	}
}
