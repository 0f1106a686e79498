package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/config"
	"github.com/arch2702/smart-study-scheduler/internal/domain/lifecycle"
	"github.com/arch2702/smart-study-scheduler/internal/domain/srs"
	"github.com/arch2702/smart-study-scheduler/internal/events"
	"github.com/arch2702/smart-study-scheduler/internal/platform/cache"
	"github.com/arch2702/smart-study-scheduler/internal/platform/memory"
	"github.com/arch2702/smart-study-scheduler/internal/platform/postgres"
	"github.com/arch2702/smart-study-scheduler/internal/redact"
	"github.com/arch2702/smart-study-scheduler/internal/service"
	"github.com/arch2702/smart-study-scheduler/internal/service/auth"
	"github.com/arch2702/smart-study-scheduler/internal/service/notifications"
	"github.com/arch2702/smart-study-scheduler/internal/service/progress"
	"github.com/arch2702/smart-study-scheduler/internal/service/rewards"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/arch2702/smart-study-scheduler/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	clock    clock.Clock
	location *time.Location

	// Storage. db is nil for the memory driver, cache is nil when disabled.
	db       *sql.DB
	uow      store.UnitOfWork
	learners store.LearnerStore
	cache    *cache.RedisCache

	verifier auth.TokenVerifier
	emitter  *events.InMemoryEmitter

	study         service.StudyService
	profiles      service.ProfileService
	progress      progress.Service
	rewards       rewards.Service
	notifications notifications.Service

	reminders *task.Scheduler
}

// newApplication creates a new application instance with all dependencies
// initialized. Resources opened before a failure are released.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
		clock:  clock.Real,
	}
	if err := app.init(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	log.Info("application initialized")
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg, log := app.config, app.logger

	err := app.setupStorage(ctx)
	if err != nil {
		return err
	}

	var summaries cache.SummaryCache = cache.Nop{}
	if cfg.Cache.URL != "" {
		app.cache, err = cache.New(ctx, cfg.Cache.URL, time.Duration(cfg.Cache.TTLSeconds)*time.Second, log)
		if err != nil {
			return fmt.Errorf("failed to connect to cache: %w", err)
		}
		summaries = app.cache
	}

	app.verifier, err = auth.NewVerifier(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	params, err := srs.NewParams(srs.ParamsConfig{
		EasyBaseDays:    cfg.Scheduler.EasyBaseDays,
		MediumBaseDays:  cfg.Scheduler.MediumBaseDays,
		HardBaseDays:    cfg.Scheduler.HardBaseDays,
		GrowthFactor:    cfg.Scheduler.GrowthFactor,
		MaxIntervalDays: cfg.Scheduler.MaxDays,
	})
	if err != nil {
		return fmt.Errorf("invalid scheduler configuration: %w", err)
	}
	scheduler, err := srs.NewSchedulerWithParams(params)
	if err != nil {
		return fmt.Errorf("failed to create review scheduler: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Rewards.DefaultTimezone)
	if err != nil {
		return fmt.Errorf("invalid default timezone: %w", err)
	}
	app.location = loc

	app.emitter = events.NewInMemoryEmitter(log)
	if app.cache != nil {
		app.emitter.Subscribe(rewards.InvalidationHandler(summaries), rewards.InvalidatingEvents...)
	}

	provisioner := service.NewLearnerProvisioner(app.learners, app.clock, log)
	app.study = service.NewStudyService(app.uow, provisioner, app.emitter, app.clock, log)
	app.profiles = service.NewProfileService(app.uow, provisioner, app.emitter, app.clock, log)
	app.progress = progress.NewService(
		app.uow,
		lifecycle.NewEngine(scheduler),
		app.emitter,
		app.clock,
		progress.Options{DefaultLocation: loc, VerifyBalance: cfg.Rewards.VerifyBalance},
		log,
	)
	app.rewards = rewards.NewService(
		app.uow,
		summaries,
		app.clock,
		rewards.Options{DefaultLocation: loc, RecentLimit: cfg.Rewards.RecentLimit},
		log,
	)
	app.notifications = notifications.NewService(app.uow, app.emitter, app.clock, loc, log)

	if cfg.Reminders.Enabled {
		sweep := task.NewReminderSweep(app.learners, app.notifications, cfg.Reminders.Concurrency, log)
		app.reminders = task.NewScheduler(sweep, time.Duration(cfg.Reminders.IntervalMinutes)*time.Minute, log)
	}

	return nil
}

func (app *application) setupStorage(ctx context.Context) error {
	switch app.config.Database.Driver {
	case "memory":
		mem := memory.New(app.logger)
		app.uow = mem
		app.learners = mem.Repositories().Learners
		app.logger.Warn("using in-memory storage, data will not survive a restart")
	case "postgres":
		db, err := openDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
			return err
		}
		app.uow = postgres.NewUnitOfWork(db, app.logger)
		app.learners = postgres.NewRepositories(db, app.logger).Learners
	default:
		return fmt.Errorf("unsupported database driver %q", app.config.Database.Driver)
	}
	return nil
}

// Run starts background jobs and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if app.reminders != nil {
		if err := app.reminders.Start(ctx); err != nil {
			return fmt.Errorf("failed to start reminder scheduler: %w", err)
		}
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources. It is safe to call on a partly built application.
func (app *application) cleanup() {
	if app.reminders != nil {
		app.reminders.Stop()
	}
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing cache connection", slog.String("error", redact.Error(err)))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
		}
	}
	app.logger.Info("application shutdown completed")
}
