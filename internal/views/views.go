// Package views implements the pure filtering and date-bucketing functions
// the presentation layer is built on. Nothing in here mutates the store;
// every function takes a snapshot slice and returns a derived one.
package views

import (
	"sort"
	"strings"
	"time"

	"github.com/example/meeting-scheduler/internal/meeting"
)

// Mode names the four presentation modes.
type Mode string

const (
	ModeDay    Mode = "day"
	ModeWeek   Mode = "week"
	ModeMonth  Mode = "month"
	ModeAgenda Mode = "agenda"
)

// PlatformAll disables platform filtering.
const PlatformAll = "all"

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeDay:
		return ModeDay, true
	case ModeWeek:
		return ModeWeek, true
	case ModeMonth:
		return ModeMonth, true
	case ModeAgenda:
		return ModeAgenda, true
	}
	return "", false
}

// Filter returns the meetings matching both the search query and the
// platform filter, preserving input order.
//
// The query matches case-insensitively as a substring of title or
// description; an empty query matches everything. The platform filter is an
// exact match, with "all" (or empty) disabling it.
func Filter(meetings []meeting.Meeting, query, platform string) []meeting.Meeting {
	query = strings.ToLower(strings.TrimSpace(query))
	platform = strings.ToLower(strings.TrimSpace(platform))

	var out []meeting.Meeting
	for _, m := range meetings {
		if query != "" &&
			!strings.Contains(strings.ToLower(m.Title), query) &&
			!strings.Contains(strings.ToLower(m.Description), query) {
			continue
		}
		if platform != "" && platform != PlatformAll && string(m.Platform) != platform {
			continue
		}
		out = append(out, m)
	}
	return out
}

// On returns the meetings whose start falls on the same calendar day as ref,
// preserving input order.
func On(meetings []meeting.Meeting, ref time.Time) []meeting.Meeting {
	var out []meeting.Meeting
	for _, m := range meetings {
		if meeting.SameDay(m.Date, ref) {
			out = append(out, m)
		}
	}
	return out
}

// AtHour returns the meetings on ref's day that start within the given
// 24-hour clock hour.
func AtHour(meetings []meeting.Meeting, ref time.Time, hour int) []meeting.Meeting {
	var out []meeting.Meeting
	for _, m := range On(meetings, ref) {
		if m.Date.Hour() == hour {
			out = append(out, m)
		}
	}
	return out
}

// WeekStart returns midnight of the Sunday that starts ref's week.
func WeekStart(ref time.Time) time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekDays returns the seven days of ref's week, Sunday first.
func WeekDays(ref time.Time) []time.Time {
	start := WeekStart(ref)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// InMonth returns the meetings falling in ref's calendar month, preserving
// input order.
func InMonth(meetings []meeting.Meeting, ref time.Time) []meeting.Meeting {
	var out []meeting.Meeting
	for _, m := range meetings {
		if m.Date.Year() == ref.Year() && m.Date.Month() == ref.Month() {
			out = append(out, m)
		}
	}
	return out
}

// DayGroup is one agenda bucket: a calendar day and its meetings in start
// order.
type DayGroup struct {
	Day      time.Time
	Meetings []meeting.Meeting
}

// Agenda sorts meetings by start instant and groups them by calendar day,
// earliest day first. Within a day, meetings that start at the same instant
// keep their input order.
func Agenda(meetings []meeting.Meeting) []DayGroup {
	sorted := make([]meeting.Meeting, len(meetings))
	copy(sorted, meetings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var groups []DayGroup
	for _, m := range sorted {
		if n := len(groups); n > 0 && meeting.SameDay(groups[n-1].Day, m.Date) {
			groups[n-1].Meetings = append(groups[n-1].Meetings, m)
			continue
		}
		groups = append(groups, DayGroup{Day: m.Date, Meetings: []meeting.Meeting{m}})
	}
	return groups
}
