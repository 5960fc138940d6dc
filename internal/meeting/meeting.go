// Package meeting defines the meeting data model and the pure domain logic
// around it: validation, display formatting, conflict detection, join-link
// generation and CSV export.
package meeting

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Platform identifies the conferencing platform a meeting is hosted on.
type Platform string

// Supported conferencing platforms.
const (
	PlatformZoom  Platform = "zoom"
	PlatformTeams Platform = "teams"
	PlatformMeet  Platform = "meet"
)

// Platforms lists all supported platforms in display order.
var Platforms = []Platform{PlatformZoom, PlatformTeams, PlatformMeet}

// ParsePlatform converts user input into a Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlatformZoom, PlatformTeams, PlatformMeet:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q (supported: zoom, teams, meet)", s)
}

// DisplayName returns the human-facing platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformZoom:
		return "Zoom"
	case PlatformTeams:
		return "Teams"
	case PlatformMeet:
		return "Meet"
	}
	return string(p)
}

// StatusConfirmed is the only status ever assigned to a meeting.
const StatusConfirmed = "confirmed"

// Durations is the fixed set of duration display strings offered to users.
// The field itself stays free text; anything outside this set falls back to
// DefaultDurationMinutes when a structured value is needed.
var Durations = []string{"15 min", "30 min", "45 min", "1 hour", "1.5 hours", "2 hours"}

// DefaultDurationMinutes is used when a duration string cannot be mapped to
// a structured value.
const DefaultDurationMinutes = 30

var durationMinutes = map[string]int{
	"15 min":    15,
	"30 min":    30,
	"45 min":    45,
	"1 hour":    60,
	"1.5 hours": 90,
	"2 hours":   120,
}

// DurationMinutes maps a duration display string to whole minutes.
func DurationMinutes(s string) int {
	if m, ok := durationMinutes[strings.TrimSpace(s)]; ok {
		return m
	}
	return DefaultDurationMinutes
}

// Meeting is the central scheduling record.
//
// Date is the authoritative start instant; the 12-hour display time is always
// derived from it via FormatTime and never stored as a separately mutable
// field.
type Meeting struct {
	ID           int64
	Title        string
	Date         time.Time
	Duration     string
	Platform     Platform
	Participants []string
	Location     string
	Description  string
	MeetingLink  string
	Recurring    bool
	Status       string
	Timezone     string
}

// FormatTime renders the 12-hour display time for a start instant,
// e.g. "9:00 AM".
func FormatTime(t time.Time) string {
	return t.Format("3:04 PM")
}

// DisplayTime returns the meeting's 12-hour display time.
func (m Meeting) DisplayTime() string {
	return FormatTime(m.Date)
}

// End returns the meeting's end instant derived from its duration string.
func (m Meeting) End() time.Time {
	return m.Date.Add(time.Duration(DurationMinutes(m.Duration)) * time.Minute)
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NormalizeParticipants parses a comma-separated participant string into the
// canonical ordered slice. This is the single place where free-form user text
// becomes the internal representation: entries are trimmed and empties
// dropped, duplicates are kept.
func NormalizeParticipants(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the record invariants that block a save.
func (m Meeting) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("meeting title is required")
	}
	if _, err := ParsePlatform(string(m.Platform)); err != nil {
		return err
	}
	if m.Date.IsZero() {
		return fmt.Errorf("meeting date is required")
	}
	for _, p := range m.Participants {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("participant list contains an empty entry")
		}
	}
	return nil
}

// DefaultLocation is used when no location is given.
const DefaultLocation = "Virtual"

// DefaultTimezone captures the IANA timezone of the environment,
// falling back to UTC when it cannot be determined.
func DefaultTimezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	if name := time.Now().Location().String(); name != "" && name != "Local" {
		return name
	}
	return "UTC"
}
