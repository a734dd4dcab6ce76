package leave

import "time"

// WorkingDays counts the days in [start, end] that fall on neither Saturday nor
// Sunday. Both bounds are truncated to their calendar date first.
func WorkingDays(start, end time.Time) int {
	from := dateOf(start)
	to := dateOf(end)

	days := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return days
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
