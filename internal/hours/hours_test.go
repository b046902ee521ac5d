package hours

import (
	"strings"
	"testing"
	"time"
)

func mustOracle(t *testing.T) *Oracle {
	t.Helper()
	o, err := NewOracle()
	if err != nil {
		t.Fatalf("failed to create oracle: %v", err)
	}
	return o
}

// instant builds a fixed business-time instant for boundary tests.
func instant(t *testing.T, loc *time.Location, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func TestIsOpenBoundaries(t *testing.T) {
	o := mustOracle(t)
	loc := o.TimeLocation()

	cases := []struct {
		name string
		now  time.Time
		open bool
	}{
		// 2026-09-04 is a Friday, 2026-09-05 a Saturday, 2026-09-07 a Monday.
		{name: "friday just before close", now: instant(t, loc, 2026, time.September, 4, 16, 59), open: true},
		{name: "friday just after close", now: instant(t, loc, 2026, time.September, 4, 17, 1), open: false},
		{name: "saturday noon", now: instant(t, loc, 2026, time.September, 5, 12, 0), open: false},
		{name: "sunday noon", now: instant(t, loc, 2026, time.September, 6, 12, 0), open: false},
		{name: "monday just before open", now: instant(t, loc, 2026, time.September, 7, 9, 59), open: false},
		{name: "monday just after open", now: instant(t, loc, 2026, time.September, 7, 10, 1), open: true},
		{name: "closing minute still open", now: instant(t, loc, 2026, time.September, 7, 17, 0), open: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := o.IsOpen(c.now); got != c.open {
				t.Errorf("IsOpen(%v) = %v, want %v", c.now, got, c.open)
			}
		})
	}
}

func TestTimeUntilOpen(t *testing.T) {
	o := mustOracle(t)
	loc := o.TimeLocation()

	cases := []struct {
		name      string
		now       time.Time
		daysAhead int
		contains  string
	}{
		{name: "friday after close opens monday", now: instant(t, loc, 2026, time.September, 4, 17, 1), daysAhead: 3, contains: "on Monday"},
		{name: "saturday opens monday", now: instant(t, loc, 2026, time.September, 5, 12, 0), daysAhead: 2, contains: "on Monday"},
		{name: "sunday opens tomorrow", now: instant(t, loc, 2026, time.September, 6, 12, 0), daysAhead: 1, contains: "tomorrow"},
		{name: "monday before open opens today", now: instant(t, loc, 2026, time.September, 7, 9, 59), daysAhead: 0, contains: "today at 10 AM"},
		{name: "monday during hours is open now", now: instant(t, loc, 2026, time.September, 7, 10, 1), daysAhead: 0, contains: "open now until 5 PM"},
		{name: "tuesday after close opens tomorrow", now: instant(t, loc, 2026, time.September, 8, 18, 0), daysAhead: 1, contains: "tomorrow"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			daysAhead, message := o.TimeUntilOpen(c.now)
			if daysAhead != c.daysAhead {
				t.Errorf("TimeUntilOpen(%v) daysAhead = %d, want %d", c.now, daysAhead, c.daysAhead)
			}
			if !strings.Contains(message, c.contains) {
				t.Errorf("TimeUntilOpen(%v) message = %q, want it to contain %q", c.now, message, c.contains)
			}
		})
	}
}

func TestNextOpenDate(t *testing.T) {
	o := mustOracle(t)
	loc := o.TimeLocation()

	cases := []struct {
		name string
		now  time.Time
		want time.Weekday
		day  int
	}{
		{name: "thursday offers friday", now: instant(t, loc, 2026, time.September, 3, 11, 0), want: time.Friday, day: 4},
		{name: "friday skips to monday", now: instant(t, loc, 2026, time.September, 4, 11, 0), want: time.Monday, day: 7},
		{name: "saturday skips to monday", now: instant(t, loc, 2026, time.September, 5, 11, 0), want: time.Monday, day: 7},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := o.NextOpenDate(c.now)
			if got.Weekday() != c.want || got.Day() != c.day {
				t.Errorf("NextOpenDate(%v) = %v, want %v the %dth", c.now, got, c.want, c.day)
			}
		})
	}
}

func TestNewOracleInvalidConfig(t *testing.T) {
	if _, err := NewOracle(WithTimezone("Not/AZone")); err == nil {
		t.Error("expected error for invalid timezone, got nil")
	}
	if _, err := NewOracle(WithOpenHour(18), WithCloseHour(10)); err == nil {
		t.Error("expected error for close before open, got nil")
	}
}
