package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/almaluz/backend/internal/accounts"
	"github.com/almaluz/backend/internal/backup"
	"github.com/almaluz/backend/internal/catalog"
	"github.com/almaluz/backend/internal/config"
	"github.com/almaluz/backend/internal/httpapi"
	"github.com/almaluz/backend/internal/notifier"
	"github.com/almaluz/backend/internal/scheduler"
	"github.com/almaluz/backend/internal/settings"
	"github.com/almaluz/backend/internal/templates"
	"github.com/almaluz/backend/migrations"
	"github.com/almaluz/backend/pkg/db"
	"github.com/almaluz/backend/pkg/health"
	"github.com/almaluz/backend/pkg/logger"
	"github.com/almaluz/backend/pkg/mailer"
	"github.com/almaluz/backend/pkg/mailer/resend"
	"github.com/almaluz/backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Sentry, logger.ParseLevel(cfg.LogLevel), httpapi.RequestIDExtractor())
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Primary pool serves request traffic; the service pool runs with
	// elevated credentials for migrations, seeding, and background jobs.
	pool, err := db.Connect(ctx, cfg.DB.ConnectionString, cfg.DB)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	servicePool := pool
	if dsn := cfg.DB.ServiceDSN(); dsn != cfg.DB.ConnectionString {
		servicePool, err = db.Connect(ctx, dsn, cfg.DB)
		if err != nil {
			return fmt.Errorf("connect service database: %w", err)
		}
		defer servicePool.Close()
	}

	if err := db.Migrate(ctx, servicePool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	templateRepo := templates.NewRepository(servicePool, log)
	if err := templateRepo.Seed(ctx, log); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}

	settingsRepo := settings.NewRepository(pool)
	productRepo := catalog.NewRepository(pool)
	profileRepo := accounts.NewRepository(pool)

	var store storage.Storage
	if cfg.Storage.Configured() {
		store, err = storage.New(cfg.Storage)
		if err != nil {
			return fmt.Errorf("object storage: %w", err)
		}
		log.Info("backup object storage enabled", slog.String("bucket", cfg.Storage.Bucket))
	} else {
		log.Info("backup object storage not configured, artifacts stay inline")
	}
	backupSvc := backup.NewService(servicePool, store, log)

	var sender mailer.Sender
	if cfg.Resend.Configured() {
		sender = resend.New(cfg.Resend)
	} else {
		log.Warn("email provider not configured, sends will degrade gracefully")
	}
	mail := mailer.New(sender, log)

	notify := notifier.New(cfg.Notifier, mail, templateRepo, profileRepo, log)

	sched := scheduler.New(cfg.Scheduler, notify, profileRepo, productRepo, settingsRepo, log)
	if cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Log:        log,
		AdminToken: cfg.AdminToken,
		Templates:  templateRepo,
		Settings:   settingsRepo,
		Products:   productRepo,
		Profiles:   profileRepo,
		Backups:    backupSvc,
		Notifier:   notify,
		Health: health.Checks{
			"postgres": db.Healthcheck(pool),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("address", srv.Addr), slog.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if cfg.Scheduler.Enabled {
		if err := sched.Stop(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		log.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	log.Info("shutdown completed")
	return nil
}
