package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/franzego/apptnotifier/internal/config"
	"github.com/franzego/apptnotifier/internal/handlers"
	"github.com/franzego/apptnotifier/internal/logging"
	"github.com/franzego/apptnotifier/internal/mailer"
	"github.com/franzego/apptnotifier/internal/server"
	"github.com/franzego/apptnotifier/internal/services"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)
	cmd := &cobra.Command{
		Use:           "notifier",
		Short:         "Send appointment notification emails to doctors and patients",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, configPath, debug)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (default ./config/config.yaml if present)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable gin debug mode and development logging")
	return cmd
}

func run(ctx context.Context, configPath string, debug bool) error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development || debug)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	sugar := log.Sugar()

	if err := cfg.Email.Validate(); err != nil {
		sugar.Warnw("Mail sender credentials missing; /send-emails will fail until they are set", "error", err)
	}

	m := mailer.NewSMTPMailer(cfg.SMTP, cfg.Email, sugar)
	svc := services.NewAppointmentService(m, cfg.Email, cfg.Breaker, sugar)
	router := server.NewRouter(log, debug, handlers.NewNotificationHandler(svc, sugar))

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		sugar.Infow("HTTP server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	sugar.Infow("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("Graceful shutdown failed", "error", err)
		return err
	}
	return nil
}
