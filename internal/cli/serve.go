package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelter-operations/internal/adapters/auth/iam"
	"shelter-operations/internal/adapters/storage"
	"shelter-operations/internal/config"
	"shelter-operations/internal/platform/telemetry"
	"shelter-operations/internal/ports/auth"
	"shelter-operations/internal/router"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), app)
		},
	}
}

func runServe(ctx context.Context, app *App) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := app.Config
	log := app.Log

	tp, err := telemetry.Setup(ctx, telemetryConfig(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	store, err := storage.Open(ctx, storageOptions(app))
	if err != nil {
		return err
	}
	defer store.Close()

	// nil = modo dev (X-Debug-User-ID)
	var verifier auth.AuthVerifier
	if !cfg.DevAuth() {
		client, err := iam.NewClient(iam.Config{BaseURL: cfg.AuthBaseURL, APIKey: cfg.AuthAPIKey})
		if err != nil {
			return err
		}
		verifier = iam.NewVerifier(client)
	} else {
		log.Warn("no AUTH_BASE_URL configured, accepting X-Debug-User-ID", nil)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			AuthVerifier:    verifier,
			Repo:            store.Animals,
			Logger:          log,
			Labels:          app.Labels,
			RateLimitWrites: cfg.RateLimitWrites,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{
			"addr":      srv.Addr,
			"db_driver": cfg.DBDriver,
			"tracing":   tp.Enabled(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", map[string]any{"error": err.Error()})
		return err
	}
	return nil
}

func telemetryConfig(cfg config.Config) telemetry.Config {
	return telemetry.Config{
		ServiceName:    cfg.AppName,
		ServiceVersion: cfg.AppVersion,
		Endpoint:       cfg.OTLPEndpoint,
		SamplingRate:   cfg.OTelSamplingRate,
	}
}

func storageOptions(app *App) storage.Options {
	return storage.Options{
		Driver:     app.Config.DBDriver,
		DSN:        app.Config.DBDSN,
		SQLitePath: app.Config.SQLitePath,
	}
}
