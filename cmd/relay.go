package cmd

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
	"github.com/oklog/run"
	"github.com/spf13/cobra"

	"github.com/example/meeting-scheduler/internal/instrumentation"
	"github.com/example/meeting-scheduler/internal/logging"
	"github.com/example/meeting-scheduler/internal/relay"
)

func newRelayCmd() *cobra.Command {
	var (
		addr    string
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the Zoom OAuth relay server",
		Long: `Run the HTTP relay that keeps the Zoom client secret off end-user machines.

The relay exposes two endpoints:

  POST /api/zoom/token           exchange an authorization code for tokens
  POST /api/zoom/create-meeting  create a Zoom meeting with a user token

Credentials come from ZOOM_CLIENT_ID, ZOOM_CLIENT_SECRET and
ZOOM_REDIRECT_URI, loaded from the environment or an optional .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}

			logger := logging.Setup(os.Stderr, debugMode)

			cfg := relay.ConfigFromEnv()
			if addr != "" {
				cfg.Addr = addr
			}

			ctx := cmd.Context()
			provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
			if err != nil {
				return fmt.Errorf("failed to initialize instrumentation: %w", err)
			}

			srv, err := relay.NewServer(cfg, logger, provider.Metrics())
			if err != nil {
				return err
			}

			osSignal := make(chan os.Signal, 1)
			signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)

			g := run.Group{}

			g.Add(func() error {
				<-osSignal
				logger.Info("shutdown signal received")
				return nil
			}, func(error) {
				close(osSignal)
			})

			g.Add(func() error {
				return srv.Start()
			}, func(error) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Error("relay shutdown failed", slog.Any("error", err))
				}
			})

			if provider.HasPrometheusExporter() {
				metricsSrv, err := instrumentation.NewMetricsServer(provider)
				if err != nil {
					return err
				}
				g.Add(func() error {
					return metricsSrv.Start()
				}, func(error) {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
						logger.Error("metrics server shutdown failed", slog.Any("error", err))
					}
				})
			}

			err = g.Run()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if shutdownErr := provider.Shutdown(shutdownCtx); shutdownErr != nil {
				logger.Error("instrumentation shutdown failed", slog.Any("error", shutdownErr))
			}

			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides RELAY_ADDR)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "path to an optional .env file")

	return cmd
}
