// Package season owns the calendar math for the two windows the ledger cares
// about: the rolling annual "season" that scopes leaderboard aggregation, and
// the civil-timezone day that scopes a sender's daily quota. Both are
// computed from an explicit reference instant so callers and tests can pin
// the clock.
package season

import "time"

// Start returns the epoch seconds of the current season's starting midnight:
// the most recent occurrence of (month, day) in loc at or before now. When
// that date has not yet occurred this calendar year, the boundary falls in
// the previous year.
func Start(now time.Time, month time.Month, day int, loc *time.Location) int64 {
	local := now.In(loc)
	boundary := time.Date(local.Year(), month, day, 0, 0, 0, 0, loc)
	if boundary.After(local) {
		boundary = time.Date(local.Year()-1, month, day, 0, 0, 0, 0, loc)
	}
	return boundary.Unix()
}

// DayWindow returns the half-open epoch-second interval
// [localMidnightToday, localMidnightTomorrow) of the civil day containing
// now in loc. "Sent today" for quota purposes means a receipt timestamp
// inside this interval.
func DayWindow(now time.Time, loc *time.Location) (start, end int64) {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.Unix(), midnight.AddDate(0, 0, 1).Unix()
}

// SameDay reports whether ts (epoch seconds) falls within the civil day
// containing now in loc. The reversal path uses this to ignore edits and
// deletes of stale messages.
func SameDay(ts int64, now time.Time, loc *time.Location) bool {
	start, end := DayWindow(now, loc)
	return ts >= start && ts < end
}
