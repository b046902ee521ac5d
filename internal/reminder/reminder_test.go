package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AltairPartners/AltairIVR/internal/hours"
	"github.com/AltairPartners/AltairIVR/internal/models"
	"github.com/AltairPartners/AltairIVR/internal/store"
	"github.com/AltairPartners/AltairIVR/internal/twiliovoice"
)

func newTestPoller(t *testing.T, st store.Store, sender twiliovoice.Sender, now time.Time) *Poller {
	t.Helper()
	oracle, err := hours.NewOracle()
	if err != nil {
		t.Fatalf("NewOracle() error = %v", err)
	}
	return NewPoller(st, sender, oracle, WithNow(func() time.Time { return now }))
}

func saveAppointment(t *testing.T, st store.Store, date string) {
	t.Helper()
	err := st.SaveAppointment(models.Appointment{
		Phone: "5035551234", Name: "Maria", Date: date, Time: "2 PM",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("SaveAppointment() error = %v", err)
	}
}

func TestCheckOncePlacesReminderInWindow(t *testing.T) {
	st := store.NewInMemoryStore()
	sender := twiliovoice.NewMockClient()
	saveAppointment(t, st, "Friday, September 4, 2026")

	// Thursday, September 3 at 2:02 PM Pacific, inside the window around the
	// day-before 2 PM target.
	loc, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Date(2026, time.September, 3, 14, 2, 0, 0, loc)

	p := newTestPoller(t, st, sender, now)
	if err := p.CheckOnce(context.Background()); err != nil {
		t.Fatalf("CheckOnce() error = %v", err)
	}

	if len(sender.PlacedCalls) != 1 {
		t.Fatalf("placed calls = %d, want 1", len(sender.PlacedCalls))
	}
	call := sender.PlacedCalls[0]
	if call.To != "5035551234" {
		t.Errorf("call to %q, want the appointment phone", call.To)
	}
	if !strings.Contains(call.Twiml, "Maria") || !strings.Contains(call.Twiml, "2 PM") {
		t.Errorf("reminder script %q missing name or time", call.Twiml)
	}
}

func TestCheckOnceFiresAtMostOnce(t *testing.T) {
	st := store.NewInMemoryStore()
	sender := twiliovoice.NewMockClient()
	saveAppointment(t, st, "Friday, September 4, 2026")

	loc, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Date(2026, time.September, 3, 14, 1, 0, 0, loc)
	p := newTestPoller(t, st, sender, now)

	// Two consecutive polls inside the same window.
	if err := p.CheckOnce(context.Background()); err != nil {
		t.Fatalf("CheckOnce() error = %v", err)
	}
	if err := p.CheckOnce(context.Background()); err != nil {
		t.Fatalf("CheckOnce() error = %v", err)
	}

	if len(sender.PlacedCalls) != 1 {
		t.Errorf("placed calls = %d, want exactly 1", len(sender.PlacedCalls))
	}
}

func TestCheckOnceOutsideWindowDoesNothing(t *testing.T) {
	st := store.NewInMemoryStore()
	sender := twiliovoice.NewMockClient()
	saveAppointment(t, st, "Friday, September 4, 2026")

	loc, _ := time.LoadLocation("America/Los_Angeles")
	// Ten past: outside the five-minute tolerance.
	now := time.Date(2026, time.September, 3, 14, 10, 0, 0, loc)

	p := newTestPoller(t, st, sender, now)
	if err := p.CheckOnce(context.Background()); err != nil {
		t.Fatalf("CheckOnce() error = %v", err)
	}
	if len(sender.PlacedCalls) != 0 {
		t.Errorf("placed calls = %d, want 0", len(sender.PlacedCalls))
	}
}

func TestCheckOnceSkipsUnparsableDates(t *testing.T) {
	st := store.NewInMemoryStore()
	sender := twiliovoice.NewMockClient()
	saveAppointment(t, st, "whenever works for you")

	loc, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Date(2026, time.September, 3, 14, 0, 0, 0, loc)

	p := newTestPoller(t, st, sender, now)
	if err := p.CheckOnce(context.Background()); err != nil {
		t.Fatalf("CheckOnce() error = %v", err)
	}
	if len(sender.PlacedCalls) != 0 {
		t.Errorf("placed calls = %d, want 0 for an unparsable date", len(sender.PlacedCalls))
	}
}

func TestFailedCallRecordsFailureAndRetries(t *testing.T) {
	st := store.NewInMemoryStore()
	sender := twiliovoice.NewMockClient()
	sender.CallErr = errors.New("twilio unavailable")
	saveAppointment(t, st, "Friday, September 4, 2026")

	loc, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Date(2026, time.September, 3, 14, 1, 0, 0, loc)
	p := newTestPoller(t, st, sender, now)

	if err := p.CheckOnce(context.Background()); err != nil {
		t.Fatalf("CheckOnce() error = %v", err)
	}
	done, err := st.HasReminderInitiated("5035551234", "Friday, September 4, 2026")
	if err != nil {
		t.Fatalf("HasReminderInitiated() error = %v", err)
	}
	if done {
		t.Error("failed reminder counted as initiated")
	}

	// The next poll retries because only initiated records block redelivery.
	sender.CallErr = nil
	if err := p.CheckOnce(context.Background()); err != nil {
		t.Fatalf("CheckOnce() error = %v", err)
	}
	if len(sender.PlacedCalls) != 1 {
		t.Errorf("placed calls after retry = %d, want 1", len(sender.PlacedCalls))
	}
}

func TestParseSpokenDate(t *testing.T) {
	st := store.NewInMemoryStore()
	loc, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, loc)
	p := newTestPoller(t, st, twiliovoice.NewMockClient(), now)

	tests := []struct {
		spoken string
		want   string
		ok     bool
	}{
		{"Friday, September 4, 2026", "2026-09-04", true},
		{"September 4th", "2026-09-04", true},
		{"september 4", "2026-09-04", true},
		{"2026-09-04", "2026-09-04", true},
		{"9/4/2026", "2026-09-04", true},
		{"9/4", "2026-09-04", true},
		// A month/day earlier in the year rolls forward to the next year.
		{"January 15", "2027-01-15", true},
		{"sometime next week", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := p.parseSpokenDate(tc.spoken, now)
		if ok != tc.ok {
			t.Errorf("parseSpokenDate(%q) ok = %v, want %v", tc.spoken, ok, tc.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tc.want {
			t.Errorf("parseSpokenDate(%q) = %s, want %s", tc.spoken, got.Format("2006-01-02"), tc.want)
		}
	}
}
