package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/meeting-scheduler/internal/meeting"
)

func newScheduleCmd() *cobra.Command {
	var (
		date          string
		duration      string
		platform      string
		participants  string
		location      string
		description   string
		recurring     bool
		sendInvites   bool
		strictOverlap bool
	)

	cmd := &cobra.Command{
		Use:   "schedule <title>",
		Short: "Schedule a new meeting",
		Long: `Schedule a new meeting. Conflicting meetings on the same day are
reported as warnings but never block the save. A zoom meeting gets a
provider-backed join link when the Zoom session is connected, otherwise a
placeholder link is generated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.scheduler.SetStrictOverlap(strictOverlap)

			when, err := parseDateFlag(date)
			if err != nil {
				return err
			}
			p, err := meeting.ParsePlatform(platform)
			if err != nil {
				return err
			}

			draft := meeting.Meeting{
				Title:        args[0],
				Date:         when,
				Duration:     duration,
				Platform:     p,
				Participants: meeting.NormalizeParticipants(participants),
				Location:     location,
				Description:  description,
				Recurring:    recurring,
			}

			res, err := a.scheduler.Schedule(cmd.Context(), draft)
			if err != nil {
				return err
			}

			fmt.Printf("Scheduled %q (%d) on %s at %s\n",
				res.Meeting.Title, res.Meeting.ID,
				res.Meeting.Date.Format("Mon Jan 2 2006"), res.Meeting.DisplayTime())
			fmt.Printf("Join link: %s\n", res.Meeting.MeetingLink)
			if res.UsedPlaceholder {
				fmt.Println("Warning: Zoom meeting creation failed, using a placeholder link")
			}
			for _, c := range res.Conflicts {
				fmt.Printf("Warning: conflicts with %q at %s\n", c.Title, c.DisplayTime())
			}

			if sendInvites && len(res.Meeting.Participants) > 0 {
				reportInvites(a, cmd, res.Meeting)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", `Start, RFC3339 or "2006-01-02 15:04" (required)`)
	cmd.Flags().StringVar(&duration, "duration", "30 min", `Duration: "15 min", "30 min", "45 min", "1 hour", "1.5 hours" or "2 hours"`)
	cmd.Flags().StringVar(&platform, "platform", "zoom", "Platform: zoom, teams or meet")
	cmd.Flags().StringVar(&participants, "participants", "", "Comma-separated participant email addresses")
	cmd.Flags().StringVar(&location, "location", "", `Location (default: "Virtual")`)
	cmd.Flags().StringVar(&description, "description", "", "Free-text description")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "Mark the meeting as recurring (display only)")
	cmd.Flags().BoolVar(&sendInvites, "invite", false, "Send email invites to the participants after scheduling")
	cmd.Flags().BoolVar(&strictOverlap, "strict-overlap", false, "Report conflicts on true interval overlap instead of start-time proximity")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

// reportInvites sends the invites and prints one line per recipient.
// Failures are reported, never fatal: the meeting is already saved.
func reportInvites(a *app, cmd *cobra.Command, m meeting.Meeting) {
	results, err := a.scheduler.SendInvites(cmd.Context(), m)
	for _, r := range results {
		if r.Failed() {
			fmt.Printf("Invite to %s failed: %v\n", r.Participant, r.Err)
		} else {
			fmt.Printf("Invite sent to %s\n", r.Participant)
		}
	}
	if err != nil && len(results) == 0 {
		fmt.Printf("Failed to send invites: %v\n", err)
	}
}
