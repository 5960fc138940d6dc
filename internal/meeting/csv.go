package meeting

import (
	"encoding/csv"
	"io"
	"strings"
)

// csvHeader matches the export layout of the original scheduler UI.
var csvHeader = []string{"Title", "Date", "Time", "Duration", "Platform", "Participants", "Link"}

// WriteCSV exports meetings as CSV rows, one per meeting, participants
// joined with "; ".
func WriteCSV(w io.Writer, meetings []Meeting) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, m := range meetings {
		row := []string{
			m.Title,
			m.Date.Format("2006-01-02"),
			m.DisplayTime(),
			m.Duration,
			m.Platform.DisplayName(),
			strings.Join(m.Participants, "; "),
			m.MeetingLink,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
