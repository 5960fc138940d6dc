package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/meeting-scheduler/internal/meeting"
	"github.com/example/meeting-scheduler/internal/views"
)

func newListCmd() *cobra.Command {
	var (
		query    string
		platform string
		mode     string
		date     string
		hour     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meetings",
		Long: `List meetings, optionally restricted to the day, week or month around a
reference date and filtered by a search query and platform.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			ref := time.Now()
			if date != "" {
				if ref, err = parseDateFlag(date); err != nil {
					return err
				}
			}

			meetings := views.Filter(a.store.All(), query, platform)
			switch m, _ := views.ParseMode(mode); m {
			case views.ModeDay:
				if hour >= 0 {
					meetings = views.AtHour(meetings, ref, hour)
				} else {
					meetings = views.On(meetings, ref)
				}
			case views.ModeWeek:
				var week []meeting.Meeting
				for _, d := range views.WeekDays(ref) {
					week = append(week, views.On(meetings, d)...)
				}
				meetings = week
			case views.ModeMonth:
				meetings = views.InMonth(meetings, ref)
			}

			if len(meetings) == 0 {
				fmt.Println("No meetings found")
				return nil
			}
			writeMeetingTable(os.Stdout, meetings)
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Case-insensitive substring matched against title and description")
	cmd.Flags().StringVar(&platform, "platform", "all", "Platform filter: zoom, teams, meet or all")
	cmd.Flags().StringVar(&mode, "mode", "", "Restrict to a day, week or month around the reference date")
	cmd.Flags().StringVar(&date, "date", "", "Reference date for --mode (default: now)")
	cmd.Flags().IntVar(&hour, "hour", -1, "Restrict --mode day to meetings starting in one 24-hour clock hour")

	return cmd
}

func newAgendaCmd() *cobra.Command {
	var (
		query    string
		platform string
	)

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Show all meetings grouped by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			groups := views.Agenda(views.Filter(a.store.All(), query, platform))
			if len(groups) == 0 {
				fmt.Println("No meetings scheduled")
				return nil
			}

			for i, g := range groups {
				if i > 0 {
					fmt.Println()
				}
				fmt.Printf("%s\n", g.Day.Format("Monday, January 2 2006"))
				for _, m := range g.Meetings {
					fmt.Printf("  %s  %-8s %s (%s)\n", m.DisplayTime(), m.Platform.DisplayName(), m.Title, m.Duration)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "Case-insensitive substring matched against title and description")
	cmd.Flags().StringVar(&platform, "platform", "all", "Platform filter: zoom, teams, meet or all")

	return cmd
}
