package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"salesdesk_backend/internal/analytics"
	"salesdesk_backend/internal/audit"
	"salesdesk_backend/internal/auth"
	"salesdesk_backend/internal/exports"
	apphttp "salesdesk_backend/internal/http"
	"salesdesk_backend/internal/http/router"
	"salesdesk_backend/internal/leads"
	leadsvc "salesdesk_backend/internal/leads/service"
	"salesdesk_backend/internal/notes"
	"salesdesk_backend/internal/opportunities"
	"salesdesk_backend/internal/reports"
	"salesdesk_backend/internal/scheduler"
	"salesdesk_backend/internal/templates"
	"salesdesk_backend/internal/todos"
	"salesdesk_backend/migrations"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/db"
	"salesdesk_backend/platform/events"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules.
	eventBus := events.NewInMemoryBus(log)

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection.
	val := validator.New()

	// Audit subscribes to deletion events; it must exist before any module
	// that publishes them handles a request.
	auditModule := audit.NewModule(pool, eventBus)

	authModule := auth.NewModule(pool, cfg, val, log)
	leadsModule := leads.NewModule(pool, eventBus, reminderScheduler, val, log)
	opportunitiesModule := opportunities.NewModule(pool, eventBus, val, log)
	todosModule := todos.NewModule(pool, val)
	notesModule := notes.NewModule(pool, val)
	analyticsModule := analytics.NewModule(pool)
	reportsModule := reports.NewModule(pool)
	templatesModule := templates.NewModule(pool, val)
	exportsModule := exports.NewModule(pool, val)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			opportunitiesModule,
			todosModule,
			notesModule,
			analyticsModule,
			reportsModule,
			templatesModule,
			exportsModule,
			auditModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (leadsvc.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; callback reminders disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn(name+" failed, retrying", "attempt", attempt, "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(baseDelay * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}
