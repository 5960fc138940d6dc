package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/meeting-scheduler/internal/meeting"
	"github.com/example/meeting-scheduler/internal/views"
)

func newExportCmd() *cobra.Command {
	var (
		output   string
		query    string
		platform string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export meetings as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			meetings := views.Filter(a.store.All(), query, platform)

			w := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := meeting.WriteCSV(w, meetings); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}
			if output != "" {
				fmt.Fprintf(os.Stderr, "Exported %d meetings to %s\n", len(meetings), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&query, "query", "", "Case-insensitive substring matched against title and description")
	cmd.Flags().StringVar(&platform, "platform", "all", "Platform filter: zoom, teams, meet or all")

	return cmd
}

func newInviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite <id>",
		Short: "Send email invites for a meeting",
		Long: `Send one email invite per participant of a meeting through Gmail.
Requires a signed-in Google identity session (see "meetsched auth google").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			m, ok := a.store.Get(id)
			if !ok {
				return fmt.Errorf("no meeting with id %d", id)
			}

			results, err := a.scheduler.SendInvites(cmd.Context(), m)
			for _, r := range results {
				if r.Failed() {
					fmt.Printf("Invite to %s failed: %v\n", r.Participant, r.Err)
				} else {
					fmt.Printf("Invite sent to %s\n", r.Participant)
				}
			}
			if err != nil {
				return err
			}
			return nil
		},
	}

	return cmd
}
