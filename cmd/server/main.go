package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"clubhub/internal/adapters/email"
	web "clubhub/internal/adapters/http"
	"clubhub/internal/adapters/http/perf"
	"clubhub/internal/adapters/storage"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/config"
	"clubhub/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const (
	sessionPurgeInterval = time.Hour
	shutdownTimeout      = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	closer := logging.Setup(logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		JSON:  cfg.IsProduction(),
	}, os.Stderr)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.MigrateDB(ctx, db); err != nil {
		return err
	}
	if v, err := storage.SchemaVersion(ctx, db); err == nil {
		slog.Info("database_ready", "path", cfg.DBPath, "schema", v)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)
	stores := web.NewSQLiteStores(timedDB)

	newID := func() string { return uuid.New().String() }
	seeded, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminInput{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, orchestrators.SeedAdminDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   newID,
		Now:          time.Now,
	})
	if err != nil {
		return err
	}
	if seeded {
		slog.Info("admin_seeded", "email", cfg.AdminEmail)
	}

	// Seed one account per role outside production (idempotent)
	if !cfg.IsProduction() {
		n, err := orchestrators.ExecuteSeedTestAccounts(ctx, orchestrators.TestAccountSeedDeps{
			AccountStore: stores.AccountStore,
			GenerateID:   newID,
			Now:          time.Now,
		})
		if err != nil {
			return err
		}
		if n > 0 {
			slog.Info("test_accounts_seeded", "count", n)
		}
	}

	var mailer email.Sender = email.NewNoopSender()
	if cfg.ResendKey != "" {
		mailer = email.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
		slog.Info("email_sender", "provider", "resend")
	} else if cfg.IsProduction() {
		slog.Warn("email_sender", "provider", "noop", "reason", "CLUBHUB_RESEND_KEY is not set")
	}

	go orchestrators.RunSessionPurger(ctx, sessionPurgeInterval, orchestrators.PurgeSessionsDeps{
		SessionStore: stores.SessionStore,
		Now:          time.Now,
	})

	handler := web.NewMux(stores, collector, web.Options{
		CSRFKey:         cfg.CSRFKey,
		JWTSecret:       cfg.JWTSecret,
		SessionLifetime: cfg.SessionLifetime,
		SecureCookies:   cfg.IsProduction(),
		TrustedOrigins:  cfg.TrustedOrigins,
		SlowRequestMs:   cfg.SlowRequestMs,
		Mailer:          mailer,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env)
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

	slog.Info("server_shutdown", "reason", "signal")
	web.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
