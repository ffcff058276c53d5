package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/benjamin-api/internal/access"
	"github.com/phrazzld/benjamin-api/internal/api"
	apiMiddleware "github.com/phrazzld/benjamin-api/internal/api/middleware"
	"github.com/phrazzld/benjamin-api/internal/config"
	"github.com/phrazzld/benjamin-api/internal/events"
	"github.com/phrazzld/benjamin-api/internal/outbox"
	"github.com/phrazzld/benjamin-api/internal/platform/postgres"
	"github.com/phrazzld/benjamin-api/internal/platform/rabbitmq"
	"github.com/phrazzld/benjamin-api/internal/platform/redis"
	"github.com/phrazzld/benjamin-api/internal/platform/telemetry"
	"github.com/phrazzld/benjamin-api/internal/service"
	"github.com/phrazzld/benjamin-api/internal/service/auth"
	"github.com/phrazzld/benjamin-api/internal/store"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
)

// application holds the resolved dependency graph and the resources that
// need explicit cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	otel   *otelProviders

	injector *do.RootScope
	handler  http.Handler

	// Outbox delivery; nil when the outbox is disabled.
	outbox     *outbox.Publisher
	broker     *rabbitmq.Publisher
	brokerConn *rabbitmq.Connection
	redis      *goredislib.Client
}

// newApplication wires the dependency graph and resolves the HTTP handler
// and, when enabled, the outbox publisher.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	db *sql.DB,
	otel *otelProviders,
) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   log,
		db:       db,
		otel:     otel,
		injector: do.New(),
	}

	do.ProvideValue(app.injector, cfg)
	do.ProvideValue(app.injector, log)
	do.ProvideValue(app.injector, db)
	do.ProvideValue(app.injector, otel.metrics)

	registerStores(app.injector, db, log)
	registerServices(app.injector, cfg, log)

	var checks []healthCheck
	checks = append(checks, healthCheck{name: "database", check: db.PingContext})

	if cfg.Outbox.Enabled {
		registerOutbox(ctx, app.injector, cfg, log)

		if err := app.initOutbox(); err != nil {
			app.cleanup(ctx)
			return nil, fmt.Errorf("failed to initialize outbox publisher: %w", err)
		}
		checks = append(checks, healthCheck{name: "broker", check: app.broker.HealthCheck})
	}

	do.Provide(app.injector, func(i do.Injector) (http.Handler, error) {
		return newRouter(routerDeps{
			auth:          do.MustInvoke[*api.AuthHandler](i),
			projects:      do.MustInvoke[*api.ProjectHandler](i),
			collaborators: do.MustInvoke[*api.CollaboratorHandler](i),
			tasks:         do.MustInvoke[*api.TaskHandler](i),
			authenticator: apiMiddleware.NewAuthMiddleware(do.MustInvoke[auth.JWTService](i)),
			metrics:       do.MustInvoke[*telemetry.Metrics](i),
			logger:        log,
			checks:        checks,
		}), nil
	})

	handler, err := do.Invoke[http.Handler](app.injector)
	if err != nil {
		app.cleanup(ctx)
		return nil, fmt.Errorf("failed to build router: %w", err)
	}
	app.handler = handler

	log.Info("application initialized")
	return app, nil
}

func registerStores(injector do.Injector, db *sql.DB, log *slog.Logger) {
	do.Provide(injector, func(do.Injector) (store.UserStore, error) {
		return postgres.NewPostgresUserStore(db, log), nil
	})
	do.Provide(injector, func(do.Injector) (store.ProjectStore, error) {
		return postgres.NewPostgresProjectStore(db, log), nil
	})
	do.Provide(injector, func(do.Injector) (store.AccessStore, error) {
		return postgres.NewPostgresAccessStore(db, log), nil
	})
	do.Provide(injector, func(do.Injector) (store.TaskStore, error) {
		return postgres.NewPostgresTaskStore(db, log), nil
	})
	do.Provide(injector, func(do.Injector) (store.OutboxStore, error) {
		return postgres.NewPostgresOutboxStore(db, log), nil
	})
	do.Provide(injector, func(do.Injector) (store.Transactor, error) {
		return store.NewTransactor(db), nil
	})
}

func registerServices(injector do.Injector, cfg *config.Config, log *slog.Logger) {
	do.Provide(injector, func(do.Injector) (auth.JWTService, error) {
		return auth.NewJWTService(cfg.Auth)
	})
	do.Provide(injector, func(do.Injector) (*auth.BcryptVerifier, error) {
		return auth.NewBcryptVerifier(cfg.Auth.BCryptCost), nil
	})
	do.Provide(injector, func(i do.Injector) (*access.Guard, error) {
		return access.NewGuard(
			do.MustInvoke[store.ProjectStore](i),
			do.MustInvoke[store.AccessStore](i),
			log,
		)
	})
	do.Provide(injector, func(i do.Injector) (events.Emitter, error) {
		return events.NewOutboxRecorder(do.MustInvoke[store.OutboxStore](i), log)
	})

	do.Provide(injector, func(i do.Injector) (service.UserService, error) {
		bcrypt := do.MustInvoke[*auth.BcryptVerifier](i)
		return service.NewUserService(
			do.MustInvoke[store.UserStore](i),
			do.MustInvoke[store.Transactor](i),
			bcrypt,
			bcrypt,
			do.MustInvoke[auth.JWTService](i),
			log,
		)
	})
	do.Provide(injector, func(i do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[store.ProjectStore](i),
			do.MustInvoke[*access.Guard](i),
			log,
		)
	})
	do.Provide(injector, func(i do.Injector) (service.CollaboratorService, error) {
		return service.NewCollaboratorService(
			do.MustInvoke[store.UserStore](i),
			do.MustInvoke[store.AccessStore](i),
			do.MustInvoke[store.TaskStore](i),
			do.MustInvoke[store.Transactor](i),
			do.MustInvoke[*access.Guard](i),
			do.MustInvoke[events.Emitter](i),
			log,
		)
	})
	do.Provide(injector, func(i do.Injector) (service.TaskService, error) {
		return service.NewTaskService(
			do.MustInvoke[store.ProjectStore](i),
			do.MustInvoke[store.TaskStore](i),
			do.MustInvoke[store.UserStore](i),
			do.MustInvoke[store.Transactor](i),
			do.MustInvoke[*access.Guard](i),
			do.MustInvoke[events.Emitter](i),
			log,
		)
	})

	do.Provide(injector, func(i do.Injector) (*api.AuthHandler, error) {
		return api.NewAuthHandler(do.MustInvoke[service.UserService](i), log), nil
	})
	do.Provide(injector, func(i do.Injector) (*api.ProjectHandler, error) {
		return api.NewProjectHandler(do.MustInvoke[service.ProjectService](i), log), nil
	})
	do.Provide(injector, func(i do.Injector) (*api.CollaboratorHandler, error) {
		return api.NewCollaboratorHandler(do.MustInvoke[service.CollaboratorService](i), log), nil
	})
	do.Provide(injector, func(i do.Injector) (*api.TaskHandler, error) {
		return api.NewTaskHandler(do.MustInvoke[service.TaskService](i), log), nil
	})
}

func registerOutbox(ctx context.Context, injector do.Injector, cfg *config.Config, log *slog.Logger) {
	do.Provide(injector, func(do.Injector) (*rabbitmq.Connection, error) {
		return rabbitmq.Dial(cfg.Broker.URL, cfg.Broker.Exchange, log)
	})
	do.Provide(injector, func(i do.Injector) (*rabbitmq.Publisher, error) {
		conn, err := do.Invoke[*rabbitmq.Connection](i)
		if err != nil {
			return nil, err
		}
		return rabbitmq.NewPublisher(conn.Channel, cfg.Broker, log)
	})
	do.Provide(injector, func(do.Injector) (*goredislib.Client, error) {
		return redis.NewClient(ctx, cfg.Redis)
	})
	do.Provide(injector, func(i do.Injector) (*outbox.Publisher, error) {
		broker, err := do.Invoke[*rabbitmq.Publisher](i)
		if err != nil {
			return nil, err
		}

		opts := []outbox.Option{outbox.WithMetrics(do.MustInvoke[*telemetry.Metrics](i))}
		if cfg.Redis.Addr != "" {
			client, err := do.Invoke[*goredislib.Client](i)
			if err != nil {
				return nil, err
			}
			locker, err := redis.NewLocker(client, cfg.Redis.LockExpiry, log)
			if err != nil {
				return nil, err
			}
			opts = append(opts, outbox.WithLocker(locker))
		}

		return outbox.NewPublisher(
			do.MustInvoke[store.OutboxStore](i),
			broker,
			outbox.Config{
				Interval:       cfg.Outbox.Interval,
				BatchSize:      cfg.Outbox.BatchSize,
				Topic:          cfg.Broker.Topic,
				PublishTimeout: cfg.Outbox.PublishTimeout,
				LockKey:        cfg.Outbox.LockKey,
			},
			log,
			opts...,
		)
	})
}

// initOutbox resolves the outbox graph one resource at a time so that cleanup
// releases whatever was opened before a later step failed.
func (app *application) initOutbox() error {
	conn, err := do.Invoke[*rabbitmq.Connection](app.injector)
	if err != nil {
		return err
	}
	app.brokerConn = conn

	broker, err := do.Invoke[*rabbitmq.Publisher](app.injector)
	if err != nil {
		return err
	}
	app.broker = broker

	if app.config.Redis.Addr != "" {
		client, err := do.Invoke[*goredislib.Client](app.injector)
		if err != nil {
			return err
		}
		app.redis = client
	}

	publisher, err := do.Invoke[*outbox.Publisher](app.injector)
	if err != nil {
		return err
	}
	app.outbox = publisher
	return nil
}

// Run serves HTTP and runs the outbox publisher until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if app.outbox != nil {
		app.outbox.Start()
	}

	err := serveHTTP(ctx, app.config.Server, app.handler, app.logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()
	app.cleanup(shutdownCtx)
	return err
}

// cleanup stops background work and releases connections. The database is
// closed by the caller that opened it.
func (app *application) cleanup(ctx context.Context) {
	if app.outbox != nil {
		app.outbox.Stop()
	}
	if app.broker != nil {
		if err := app.broker.Close(ctx); err != nil {
			app.logger.Error("error closing broker publisher", slog.String("error", err.Error()))
		}
	}
	if app.brokerConn != nil {
		if err := app.brokerConn.Close(); err != nil {
			app.logger.Error("error closing broker connection", slog.String("error", err.Error()))
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", slog.String("error", err.Error()))
		}
	}
	if app.otel != nil {
		if err := app.otel.Shutdown(ctx); err != nil {
			app.logger.Error("telemetry shutdown error", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
