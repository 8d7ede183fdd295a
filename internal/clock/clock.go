package clock

import "time"

// BillingHour anchors generated timestamps to a fixed hour of the day so
// daily cycle runs observe a stable due time regardless of when they fire.
const BillingHour = 9

// NextMonthlyOccurrence returns the next timestamp at BillingHour whose
// calendar day equals dayOfMonth, clipped to the last day of short months.
// If the candidate in from's month is not after from, the result advances
// one month.
func NextMonthlyOccurrence(from time.Time, dayOfMonth int) time.Time {
	candidate := monthlyCandidate(from.Year(), from.Month(), dayOfMonth, from.Location())
	if !candidate.After(from) {
		next := from.AddDate(0, 0, -from.Day()+1).AddDate(0, 1, 0)
		candidate = monthlyCandidate(next.Year(), next.Month(), dayOfMonth, from.Location())
	}
	return candidate
}

// NextWeeklyOccurrence returns the next timestamp at BillingHour on or
// after from whose weekday equals dayOfWeek (0=Sunday .. 6=Saturday).
func NextWeeklyOccurrence(from time.Time, dayOfWeek int) time.Time {
	daysAhead := (dayOfWeek - int(from.Weekday()) + 7) % 7
	candidate := time.Date(from.Year(), from.Month(), from.Day()+daysAhead,
		BillingHour, 0, 0, 0, from.Location())
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// monthlyCandidate builds the occurrence for a given year/month, clipping
// dayOfMonth to the month's last day. Day-of-month inputs above 28 are
// accepted here so callers validating 1-28 still get safe arithmetic.
func monthlyCandidate(year int, month time.Month, dayOfMonth int, loc *time.Location) time.Time {
	if last := daysIn(year, month); dayOfMonth > last {
		dayOfMonth = last
	}
	return time.Date(year, month, dayOfMonth, BillingHour, 0, 0, 0, loc)
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
