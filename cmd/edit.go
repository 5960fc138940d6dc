package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/meeting-scheduler/internal/meeting"
)

func parseIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid meeting id %q", arg)
	}
	return id, nil
}

func newUpdateCmd() *cobra.Command {
	var (
		title         string
		date          string
		duration      string
		platform      string
		participants  string
		location      string
		description   string
		strictOverlap bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an existing meeting",
		Long: `Update an existing meeting. Only the given flags change; the stored
record is replaced as a whole and the join link is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.scheduler.SetStrictOverlap(strictOverlap)

			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			m, ok := a.store.Get(id)
			if !ok {
				return fmt.Errorf("no meeting with id %d", id)
			}

			if title != "" {
				m.Title = title
			}
			if date != "" {
				when, err := parseDateFlag(date)
				if err != nil {
					return err
				}
				m.Date = when
			}
			if duration != "" {
				m.Duration = duration
			}
			if platform != "" {
				p, err := meeting.ParsePlatform(platform)
				if err != nil {
					return err
				}
				m.Platform = p
			}
			if participants != "" {
				m.Participants = meeting.NormalizeParticipants(participants)
			}
			if location != "" {
				m.Location = location
			}
			if description != "" {
				m.Description = description
			}

			res, err := a.scheduler.Update(cmd.Context(), m)
			if err != nil {
				return err
			}

			fmt.Printf("Updated meeting %d\n", id)
			for _, c := range res.Conflicts {
				fmt.Printf("Warning: conflicts with %q at %s\n", c.Title, c.DisplayTime())
			}
			writeMeetingDetail(os.Stdout, res.Meeting)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&date, "date", "", `New start, RFC3339 or "2006-01-02 15:04"`)
	cmd.Flags().StringVar(&duration, "duration", "", "New duration display string")
	cmd.Flags().StringVar(&platform, "platform", "", "New platform: zoom, teams or meet")
	cmd.Flags().StringVar(&participants, "participants", "", "Comma-separated participant email addresses, replacing the current list")
	cmd.Flags().StringVar(&location, "location", "", "New location")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().BoolVar(&strictOverlap, "strict-overlap", false, "Report conflicts on true interval overlap instead of start-time proximity")

	return cmd
}

func newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a meeting",
		Args:  cobra.ExactArgs(1),
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

			if !yes && !confirm(fmt.Sprintf("Delete %q on %s?", m.Title, m.Date.Format("Jan 2 2006"))) {
				fmt.Println("Aborted")
				return nil
			}

			if err := a.scheduler.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted meeting %d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// confirm asks a yes/no question on the terminal.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
