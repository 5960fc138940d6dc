package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/meeting-scheduler/internal/meeting"
)

// dateLayouts are the accepted input formats for --date flags, tried in
// order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02 3:04 PM",
}

func parseDateFlag(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf(`unrecognized date %q (use RFC3339 or "2006-01-02 15:04")`, s)
}

// writeMeetingTable renders meetings as an aligned table.
func writeMeetingTable(w io.Writer, meetings []meeting.Meeting) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tDURATION\tPLATFORM\tTITLE")
	for _, m := range meetings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			m.ID,
			m.Date.Format("2006-01-02"),
			m.DisplayTime(),
			m.Duration,
			m.Platform.DisplayName(),
			m.Title,
		)
	}
	_ = tw.Flush()
}

// writeMeetingDetail renders one meeting with all fields.
func writeMeetingDetail(w io.Writer, m meeting.Meeting) {
	fmt.Fprintf(w, "%s (%d)\n", m.Title, m.ID)
	fmt.Fprintf(w, "  When:         %s at %s (%s)\n", m.Date.Format("Monday, January 2 2006"), m.DisplayTime(), m.Duration)
	fmt.Fprintf(w, "  Platform:     %s\n", m.Platform.DisplayName())
	fmt.Fprintf(w, "  Location:     %s\n", m.Location)
	if len(m.Participants) > 0 {
		fmt.Fprintf(w, "  Participants: %s\n", strings.Join(m.Participants, ", "))
	}
	if m.Description != "" {
		fmt.Fprintf(w, "  Description:  %s\n", m.Description)
	}
	fmt.Fprintf(w, "  Join link:    %s\n", m.MeetingLink)
	if m.Recurring {
		fmt.Fprintln(w, "  Recurring:    yes")
	}
}
