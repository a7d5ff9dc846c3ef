package season

import (
	"testing"
	"time"
)

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestStart_BoundaryAlreadyPassedThisYear(t *testing.T) {
	loc := chicago(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, loc)

	got := Start(now, time.March, 1, loc)
	want := time.Date(2025, 3, 1, 0, 0, 0, 0, loc).Unix()
	if got != want {
		t.Fatalf("Start = %d, want %d", got, want)
	}
}

func TestStart_BoundaryNotYetReached_FallsInPreviousYear(t *testing.T) {
	loc := chicago(t)
	now := time.Date(2025, 2, 10, 12, 0, 0, 0, loc)

	got := Start(now, time.September, 1, loc)
	want := time.Date(2024, 9, 1, 0, 0, 0, 0, loc).Unix()
	if got != want {
		t.Fatalf("Start = %d, want %d", got, want)
	}
}

func TestStart_OnTheBoundaryDayItself(t *testing.T) {
	loc := chicago(t)
	now := time.Date(2025, 9, 1, 0, 0, 1, 0, loc)

	got := Start(now, time.September, 1, loc)
	want := time.Date(2025, 9, 1, 0, 0, 0, 0, loc).Unix()
	if got != want {
		t.Fatalf("Start = %d, want %d", got, want)
	}
}

func TestDayWindow_HalfOpenInterval(t *testing.T) {
	loc := chicago(t)
	now := time.Date(2025, 4, 10, 15, 30, 0, 0, loc)

	start, end := DayWindow(now, loc)
	wantStart := time.Date(2025, 4, 10, 0, 0, 0, 0, loc).Unix()
	wantEnd := time.Date(2025, 4, 11, 0, 0, 0, 0, loc).Unix()
	if start != wantStart || end != wantEnd {
		t.Fatalf("DayWindow = [%d,%d), want [%d,%d)", start, end, wantStart, wantEnd)
	}
}

func TestDayWindow_UTCInstantMapsToLocalDay(t *testing.T) {
	loc := chicago(t)
	// 03:00 UTC is still the previous civil day in Chicago.
	now := time.Date(2025, 4, 11, 3, 0, 0, 0, time.UTC)

	start, _ := DayWindow(now, loc)
	want := time.Date(2025, 4, 10, 0, 0, 0, 0, loc).Unix()
	if start != want {
		t.Fatalf("window start = %d, want %d", start, want)
	}
}

func TestSameDay(t *testing.T) {
	loc := chicago(t)
	now := time.Date(2025, 4, 10, 12, 0, 0, 0, loc)
	start, end := DayWindow(now, loc)

	if !SameDay(start, now, loc) {
		t.Fatalf("window start must count as today")
	}
	if SameDay(end, now, loc) {
		t.Fatalf("window end is exclusive")
	}
	if SameDay(start-1, now, loc) {
		t.Fatalf("yesterday must not count as today")
	}
}
