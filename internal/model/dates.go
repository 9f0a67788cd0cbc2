package model

import "time"

// DateLayout is the calendar-day format used for every date field.
const DateLayout = "2006-01-02"

const streakHorizon = 365

// FormatDate returns t's local calendar day.
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// ParseDate parses a calendar day in the local zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// Streak counts consecutive completed days ending at today. A missing today
// yields 0 even when yesterday is present. The walk looks back at most 365 days.
func Streak(completed []string, today time.Time) int {
	if len(completed) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(completed))
	for _, d := range completed {
		set[d] = struct{}{}
	}

	y, m, d := today.Local().Date()
	streak := 0
	for i := 0; i < streakHorizon; i++ {
		day := time.Date(y, m, d-i, 12, 0, 0, 0, time.Local).Format(DateLayout)
		if _, ok := set[day]; !ok {
			break
		}
		streak++
	}
	return streak
}
