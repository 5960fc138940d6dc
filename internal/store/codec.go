package store

import (
	"time"

	"github.com/example/meeting-scheduler/internal/meeting"
)

// meetingRecord is the on-disk shape of a meeting. Dates are ISO strings; the
// "time" field is a derived display value regenerated on every write and
// ignored on read, kept only so the slot layout stays compatible with
// exported data.
type meetingRecord struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Duration     string   `json:"duration"`
	Platform     string   `json:"platform"`
	Participants []string `json:"participants"`
	Location     string   `json:"location"`
	Description  string   `json:"description,omitempty"`
	MeetingLink  string   `json:"meetingLink"`
	Recurring    bool     `json:"recurring"`
	Status       string   `json:"status"`
	Timezone     string   `json:"timezone"`
}

func toRecord(m meeting.Meeting) meetingRecord {
	return meetingRecord{
		ID:           m.ID,
		Title:        m.Title,
		Date:         m.Date.Format(time.RFC3339Nano),
		Time:         m.DisplayTime(),
		Duration:     m.Duration,
		Platform:     string(m.Platform),
		Participants: m.Participants,
		Location:     m.Location,
		Description:  m.Description,
		MeetingLink:  m.MeetingLink,
		Recurring:    m.Recurring,
		Status:       m.Status,
		Timezone:     m.Timezone,
	}
}

func (r meetingRecord) toMeeting() meeting.Meeting {
	date, err := time.Parse(time.RFC3339Nano, r.Date)
	if err != nil {
		// Keep the record rather than dropping it; a zero date is caught by
		// validation before any further mutation.
		date = time.Time{}
	}
	return meeting.Meeting{
		ID:           r.ID,
		Title:        r.Title,
		Date:         date,
		Duration:     r.Duration,
		Platform:     meeting.Platform(r.Platform),
		Participants: r.Participants,
		Location:     r.Location,
		Description:  r.Description,
		MeetingLink:  r.MeetingLink,
		Recurring:    r.Recurring,
		Status:       r.Status,
		Timezone:     r.Timezone,
	}
}

// Seed returns the example meetings used when no meetings file exists yet.
func Seed() []meeting.Meeting {
	return []meeting.Meeting{
		{
			ID:           1,
			Title:        "Team Standup",
			Date:         time.Date(2024, time.December, 5, 9, 0, 0, 0, time.UTC),
			Duration:     "30 min",
			Platform:     meeting.PlatformZoom,
			Participants: []string{"john@example.com", "jane@example.com"},
			Location:     meeting.DefaultLocation,
			Description:  "Daily team sync",
			MeetingLink:  "https://zoom.us/j/123456789",
			Status:       meeting.StatusConfirmed,
			Timezone:     "America/New_York",
		},
		{
			ID:           2,
			Title:        "Client Review",
			Date:         time.Date(2024, time.December, 5, 14, 0, 0, 0, time.UTC),
			Duration:     "1 hour",
			Platform:     meeting.PlatformTeams,
			Participants: []string{"client@company.com"},
			Location:     meeting.DefaultLocation,
			Description:  "Q4 project review",
			MeetingLink:  "https://teams.microsoft.com/l/meetup-join",
			Status:       meeting.StatusConfirmed,
			Timezone:     "America/New_York",
		},
		{
			ID:           3,
			Title:        "Design Sync",
			Date:         time.Date(2024, time.December, 8, 11, 0, 0, 0, time.UTC),
			Duration:     "45 min",
			Platform:     meeting.PlatformMeet,
			Participants: []string{"design@example.com"},
			Location:     meeting.DefaultLocation,
			Description:  "Weekly design discussion",
			MeetingLink:  "https://meet.google.com/abc-defg-hij",
			Recurring:    true,
			Status:       meeting.StatusConfirmed,
			Timezone:     "America/Los_Angeles",
		},
	}
}
