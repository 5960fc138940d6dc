package meeting

import (
	"regexp"
	"strconv"
	"time"
)

// nearWindow is the proximity threshold of the heuristic conflict check:
// two same-day meetings whose display times are strictly closer than this
// are flagged.
const nearWindow = 60

var digitGroups = regexp.MustCompile(`\d+`)

// minutesOfDay parses a 12-hour display time string into minutes since
// midnight using its first two numeric groups, mirroring the historical
// behavior of comparing raw hour and minute digits without meridiem
// adjustment. Malformed strings report ok=false and are treated as
// non-conflicting by callers.
func minutesOfDay(display string) (int, bool) {
	groups := digitGroups.FindAllString(display, 2)
	if len(groups) < 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(groups[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(groups[1])
	if err != nil {
		return 0, false
	}
	return hours*60 + minutes, true
}

// Check flags same-day meetings whose display times are less than an hour
// apart from the candidate's. It is a heuristic overlap proxy, not true
// interval overlap: durations are ignored, so a long meeting more than an
// hour before the candidate is never flagged. The candidate itself is
// excluded by ID so editing a meeting does not conflict with itself.
//
// Check is pure: it never mutates its inputs and identical inputs yield
// identical results.
func Check(candidate Meeting, existing []Meeting) []Meeting {
	candidateMinutes, ok := minutesOfDay(candidate.DisplayTime())
	if !ok {
		return nil
	}

	var conflicts []Meeting
	for _, m := range existing {
		if m.ID == candidate.ID {
			continue
		}
		if !SameDay(m.Date, candidate.Date) {
			continue
		}
		minutes, ok := minutesOfDay(m.DisplayTime())
		if !ok {
			continue
		}
		delta := minutes - candidateMinutes
		if delta < 0 {
			delta = -delta
		}
		if delta < nearWindow {
			conflicts = append(conflicts, m)
		}
	}
	return conflicts
}

// CheckOverlap flags meetings whose [start, end) interval genuinely overlaps
// the candidate's, using the structured duration instead of display-time
// proximity. Two back-to-back meetings never overlap.
func CheckOverlap(candidate Meeting, existing []Meeting) []Meeting {
	candidateEnd := candidate.End()

	var conflicts []Meeting
	for _, m := range existing {
		if m.ID == candidate.ID {
			continue
		}
		if overlaps(candidate.Date, candidateEnd, m.Date, m.End()) {
			conflicts = append(conflicts, m)
		}
	}
	return conflicts
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
