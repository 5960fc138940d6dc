package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/meeting-scheduler/internal/google"
	"github.com/example/meeting-scheduler/internal/logging"
	"github.com/example/meeting-scheduler/internal/scheduler"
	"github.com/example/meeting-scheduler/internal/session"
	"github.com/example/meeting-scheduler/internal/store"
	"github.com/example/meeting-scheduler/internal/zoom"
)

// rootCmd represents the base command for the meetsched application
var rootCmd = &cobra.Command{
	Use:   "meetsched",
	Short: "Schedule meetings with conflict detection and email invites",
	Long: `meetsched is a meeting scheduler with local persistence, advisory
conflict detection, Google-backed email invites and Zoom-backed join links.

It can run as:
  - A standalone CLI tool (default)
  - An MCP (Model Context Protocol) server for AI assistants
  - The OAuth relay backend for the Zoom integration`,
	SilenceUsage: true,
}

var (
	debugMode bool
	stateDir  string
)

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "meetsched version %s\n" .Version}}`)

	// If no subcommand is provided, show the agenda by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "agenda")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "State directory (default: the per-user config dir)")

	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAgendaCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newInviteCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newRelayCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// app bundles the dependencies every meeting command needs.
type app struct {
	logger    *slog.Logger
	store     *store.Store
	sessions  *session.Manager
	scheduler *scheduler.Scheduler
}

// newApp wires the store, the provider sessions and the scheduler. Logs go
// to stderr so command output stays pipeable.
func newApp() (*app, error) {
	logger := logging.Setup(os.Stderr, debugMode)

	dir := stateDir
	if dir == "" {
		var err error
		dir, err = store.DefaultDir()
		if err != nil {
			return nil, err
		}
	}

	st, err := store.Open(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open meeting store: %w", err)
	}

	var identity session.IdentityExchanger
	if cfg := google.ConfigFromEnv(); cfg.ClientID != "" {
		identity = google.NewAuthenticator(cfg)
	} else {
		logger.Debug("google sign-in not configured, set GOOGLE_CLIENT_ID")
	}

	zoomClient := zoom.NewClient(zoom.ConfigFromEnv())
	sessions := session.NewManager(st, identity, zoomClient, logger)

	return &app{
		logger:    logger,
		store:     st,
		sessions:  sessions,
		scheduler: scheduler.New(st, sessions, zoomClient, logger, nil),
	}, nil
}
