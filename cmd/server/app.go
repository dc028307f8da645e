package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dosewise/dosewise-api/internal/config"
	"github.com/dosewise/dosewise-api/internal/dispatch"
	"github.com/dosewise/dosewise-api/internal/domain"
	"github.com/dosewise/dosewise-api/internal/events"
	"github.com/dosewise/dosewise-api/internal/platform/postgres"
	"github.com/dosewise/dosewise-api/internal/service"
	"github.com/dosewise/dosewise-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	medicationStore store.MedicationStore
	adherenceStore  store.AdherenceStore
	reminderStore   store.ReminderStore
	preferenceStore store.PreferenceStore

	// Service interfaces
	generationService service.GenerationService
	adherenceService  service.AdherenceService

	// Background processing
	scanner *dispatch.Scanner
	cron    *cron.Cron

	// Cancels the dispatch scanner loop on shutdown.
	stopScanner context.CancelFunc
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.medicationStore = postgres.NewPostgresMedicationStore(db, logger)
	app.adherenceStore = postgres.NewPostgresAdherenceStore(db, logger)
	app.reminderStore = postgres.NewPostgresReminderStore(db, logger)
	app.preferenceStore = postgres.NewPostgresPreferenceStore(db, logger)

	// Initialize the generation pipeline
	adherenceMaterializer, err := service.NewAdherenceMaterializer(app.adherenceStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create adherence materializer: %w", err)
	}

	reminderMaterializer, err := service.NewReminderMaterializer(
		app.reminderStore, app.adherenceStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder materializer: %w", err)
	}

	app.generationService, err = service.NewGenerationService(
		app.medicationStore,
		app.preferenceStore,
		adherenceMaterializer,
		reminderMaterializer,
		service.GenerationConfig{
			WindowDays:  cfg.Generation.WindowDays,
			HorizonDays: cfg.Generation.HorizonDays,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	app.adherenceService, err = service.NewAdherenceService(
		app.adherenceStore,
		time.Duration(cfg.Generation.SweepGraceHours)*time.Hour,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create adherence service: %w", err)
	}

	// Initialize the dispatch scanner. The log senders stand in for the real
	// channel transports, which run outside this service.
	app.scanner, err = dispatch.NewScanner(
		app.reminderStore,
		dispatch.Senders{
			Email: dispatch.NewLogSender(domain.ChannelEmail, logger),
			SMS:   dispatch.NewLogSender(domain.ChannelSMS, logger),
			Push:  dispatch.NewLogSender(domain.ChannelPush, logger),
		},
		dispatch.RetryPolicy{MaxAttempts: cfg.Dispatch.MaxAttempts},
		dispatch.ScannerConfig{
			Interval:    time.Duration(cfg.Dispatch.IntervalSeconds) * time.Second,
			WorkerCount: cfg.Dispatch.WorkerCount,
			BatchSize:   cfg.Dispatch.BatchSize,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch scanner: %w", err)
	}

	// Publish terminal reminder transitions to the audit log.
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewAuditLogHandler(logger))
	app.scanner.SetEventEmitter(emitter)

	if err := app.setupCron(); err != nil {
		return nil, fmt.Errorf("failed to schedule background jobs: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupCron registers the scheduled triggers: the daily generation run and the
// missed-dose sweep. The dispatch scanner runs on its own ticker loop because
// its cadence is seconds, not cron granularity.
func (app *application) setupCron() error {
	c := cron.New()

	_, err := c.AddFunc(app.config.Generation.Cron, func() {
		ctx := context.Background()
		result, err := app.generationService.RunGeneration(ctx, time.Now().UTC())
		if err != nil {
			app.logger.Error("scheduled generation run failed", "error", err)
			return
		}
		app.logger.Info("scheduled generation run completed",
			"medications_seen", result.MedicationsSeen,
			"adherence_created", result.AdherenceCreated,
			"reminders_created", result.RemindersCreated,
			"medication_errors", len(result.Errors))
	})
	if err != nil {
		return fmt.Errorf("invalid generation cron expression %q: %w",
			app.config.Generation.Cron, err)
	}

	_, err = c.AddFunc(app.config.Generation.SweepCron, func() {
		swept, err := app.adherenceService.SweepMissed(context.Background(), time.Now().UTC())
		if err != nil {
			app.logger.Error("scheduled missed sweep failed", "error", err)
			return
		}
		app.logger.Info("scheduled missed sweep completed", "records_swept", swept)
	})
	if err != nil {
		return fmt.Errorf("invalid sweep cron expression %q: %w",
			app.config.Generation.SweepCron, err)
	}

	app.cron = c
	return nil
}

// Run starts the background jobs and the HTTP server, handling lifecycle and
// cleanup. It returns an error if the server fails to start or encounters
// problems.
func (app *application) Run(ctx context.Context) error {
	scannerCtx, stopScanner := context.WithCancel(ctx)
	app.stopScanner = stopScanner
	go app.scanner.Run(scannerCtx)

	app.cron.Start()

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.cron != nil {
		// Stop returns a context that completes when running jobs finish.
		<-app.cron.Stop().Done()
	}

	if app.stopScanner != nil {
		app.stopScanner()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
