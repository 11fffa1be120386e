package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/isdelr/ledger-be/internal/api"
	"github.com/isdelr/ledger-be/internal/auth"
	"github.com/isdelr/ledger-be/internal/config"
	"github.com/isdelr/ledger-be/internal/maintenance"
	"github.com/isdelr/ledger-be/internal/services"
	"github.com/isdelr/ledger-be/internal/websocket"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *globalOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, db, err := setup(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.JWTSecret == config.DefaultJWTSecret {
		if cfg.IsProduction() {
			return errors.New("JWT_SECRET must be set in production")
		}
		log.Warn().Msg("JWT_SECRET not set, using the development default")
	}

	tmpl, err := loadChart(cfg)
	if err != nil {
		return err
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Set up services
	eventService := services.NewEventService(db)
	maintenanceService := services.NewMaintenanceService(db, tmpl, eventService)
	svc := api.Services{
		Users:       services.NewUserService(db, tmpl, eventService),
		Accounts:    services.NewAccountService(db, eventService),
		Entries:     services.NewEntryService(db, eventService),
		Reports:     services.NewReportService(db),
		Events:      eventService,
		Maintenance: maintenanceService,
	}

	// Reconcile existing charts in the background
	scheduler := maintenance.NewScheduler(maintenanceService, cfg.ReconcileCron, hub)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	tokens := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	router := api.NewRouter(svc, tokens, hub, cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("database", cfg.DatabasePath).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return nil
}
