package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/example/meeting-scheduler/internal/instrumentation"
	"github.com/example/meeting-scheduler/internal/server"
	"github.com/example/meeting-scheduler/internal/session"
	"github.com/example/meeting-scheduler/internal/tools/schedule_tools"
)

func newServeCmd() *cobra.Command {
	var yolo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run an MCP server exposing the scheduler to MCP clients over stdio.

By default the server runs in read-only mode: only listing, lookup and
conflict-check tools are registered. Pass --yolo to also register the
scheduling, update, delete and invite tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), yolo)
		},
	}

	cmd.Flags().BoolVar(&yolo, "yolo", false, "enable write operations (schedule, update, delete, invite)")

	return cmd
}

func runServe(ctx context.Context, yolo bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	provider, err := instrumentation.NewProvider(shutdownCtx, instrumentation.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize instrumentation: %w", err)
	}
	a.sessions.SetMetrics(provider.Metrics())

	var metricsServer *instrumentation.MetricsServer
	if provider.HasPrometheusExporter() {
		metricsServer, err = instrumentation.NewMetricsServer(provider)
		if err != nil {
			return err
		}
		go func() {
			if err := metricsServer.Start(); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	sc := server.NewServerContext(shutdownCtx, a.store, a.sessions, a.scheduler, provider.Metrics())

	// Log auth-state changes for the lifetime of the server. A cached
	// identity token surfaces here as an immediate sign-in event.
	events, unsubscribe, err := a.sessions.Subscribe()
	if err != nil {
		return err
	}
	defer unsubscribe()
	go func() {
		for ev := range events {
			if ev.Identity.State == session.SignedIn {
				a.logger.Info("identity session signed in")
			} else {
				a.logger.Info("identity session signed out")
			}
		}
	}()

	defer func() {
		if metricsServer != nil {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := metricsServer.Shutdown(stopCtx); err != nil {
				log.Printf("error during metrics server shutdown: %v", err)
			}
		}
		sc.Shutdown()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := provider.Shutdown(stopCtx); err != nil {
			log.Printf("error during instrumentation shutdown: %v", err)
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("meetsched", version,
		mcpserver.WithToolCapabilities(true),
	)

	readOnly := !yolo

	if err := schedule_tools.RegisterScheduleTools(mcpSrv, sc, readOnly); err != nil {
		return err
	}
	if err := schedule_tools.RegisterAuthTools(mcpSrv, sc); err != nil {
		return err
	}

	return runStdioServer(mcpSrv)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
