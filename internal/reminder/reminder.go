// Package reminder implements the appointment reminder poller for AltairIVR.
//
// The poller periodically scans stored appointments, parses their free-text
// dates, and places an automated reminder call one day before each
// appointment at a fixed afternoon hour in business time. Reminder records
// guarantee at most one successful reminder per appointment.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/AltairPartners/AltairIVR/internal/hours"
	"github.com/AltairPartners/AltairIVR/internal/models"
	"github.com/AltairPartners/AltairIVR/internal/scheduler"
	"github.com/AltairPartners/AltairIVR/internal/store"
	"github.com/AltairPartners/AltairIVR/internal/twiliovoice"
)

const (
	// DefaultSchedule is the cron expression for the reminder poll.
	DefaultSchedule = "*/5 * * * *"
	// ReminderHour is the hour (24h clock, business time) the reminder call
	// targets on the day before the appointment.
	ReminderHour = 14
	// ToleranceMinutes is the window around the target instant in which a
	// poll fires the reminder, sized to the poll interval so exactly one poll
	// can match.
	ToleranceMinutes = 5
)

// ordinalSuffix strips "1st", "22nd", "3rd", "15th" down to the bare number.
var ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)\b`)

// weekdayPrefix drops a leading spoken weekday such as "Friday, " or "friday ".
var weekdayPrefix = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday),?\s+`)

// dateLayouts are tried in order against the cleaned spoken date.
var dateLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"January 2",
	"2 January 2006",
	"2 January",
	"2006-01-02",
	"1/2/2006",
	"1/2",
}

// Opts holds configuration options for the poller.
type Opts struct {
	BusinessName string
	Now          func() time.Time
}

// Option defines a configuration option for the poller.
type Option func(*Opts)

// WithBusinessName sets the spoken business name in the reminder script.
func WithBusinessName(name string) Option {
	return func(o *Opts) { o.BusinessName = name }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// Poller scans appointments and places reminder calls.
type Poller struct {
	store        store.Store
	sender       twiliovoice.Sender
	hours        *hours.Oracle
	now          func() time.Time
	businessName string
}

// NewPoller creates a reminder poller. A nil sender disables placing calls,
// which keeps local development working without Twilio credentials.
func NewPoller(st store.Store, sender twiliovoice.Sender, oracle *hours.Oracle, opts ...Option) *Poller {
	cfg := Opts{BusinessName: "Altair Partners", Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Poller{
		store:        st,
		sender:       sender,
		hours:        oracle,
		now:          cfg.Now,
		businessName: cfg.BusinessName,
	}
}

// Register schedules the poll on the scheduler with the given cron expression.
func (p *Poller) Register(s *scheduler.Scheduler, expr string) error {
	if expr == "" {
		expr = DefaultSchedule
	}
	return s.AddJob(expr, func() {
		if err := p.CheckOnce(context.Background()); err != nil {
			slog.Error("Poller: reminder poll failed", "error", err)
		}
	})
}

// CheckOnce runs one reminder poll: every appointment whose reminder instant
// falls inside the tolerance window and has no initiated record yet gets one
// outbound call. Appointments with dates the parser cannot read are skipped.
func (p *Poller) CheckOnce(ctx context.Context) error {
	appointments, err := p.store.ListAppointments()
	if err != nil {
		return fmt.Errorf("failed to list appointments: %w", err)
	}
	now := p.now()

	for _, appt := range appointments {
		target, ok := p.reminderInstant(appt.Date, now)
		if !ok {
			slog.Debug("Poller.CheckOnce: unparsable appointment date, skipping", "phone", appt.Phone, "date", appt.Date)
			continue
		}
		delta := now.Sub(target)
		if delta < 0 {
			delta = -delta
		}
		if delta >= ToleranceMinutes*time.Minute {
			continue
		}

		done, err := p.store.HasReminderInitiated(appt.Phone, appt.Date)
		if err != nil {
			slog.Error("Poller.CheckOnce: reminder lookup failed", "error", err, "phone", appt.Phone)
			continue
		}
		if done {
			continue
		}
		p.remind(ctx, appt, now)
	}
	return nil
}

// remind places one reminder call and records the delivery status.
func (p *Poller) remind(ctx context.Context, appt models.Appointment, now time.Time) {
	status := models.ReminderInitiated
	if p.sender == nil {
		slog.Warn("Poller.remind: no Twilio sender configured, skipping call", "phone", appt.Phone)
		status = models.ReminderFailed
	} else if err := p.sender.PlaceCall(ctx, appt.Phone, p.script(appt)); err != nil {
		slog.Error("Poller.remind: reminder call failed", "error", err, "phone", appt.Phone)
		status = models.ReminderFailed
	} else {
		slog.Info("Poller.remind: reminder call placed", "phone", appt.Phone, "date", appt.Date)
	}

	rec := models.NewReminderRecord(appt.Phone, appt.Date, status, now)
	if err := p.store.AddReminder(rec); err != nil {
		slog.Error("Poller.remind: failed to record reminder", "error", err, "phone", appt.Phone)
	}
}

// script builds the TwiML document spoken on the reminder call.
func (p *Poller) script(appt models.Appointment) string {
	say := fmt.Sprintf("Hello %s. This is a reminder from %s about your appointment tomorrow, %s, at %s. We look forward to seeing you. Goodbye.",
		appt.Name, p.businessName, appt.Date, appt.Time)
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><Response><Say>%s</Say></Response>`, xmlEscape(say))
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func xmlEscape(s string) string {
	return xmlEscaper.Replace(s)
}

// reminderInstant parses a spoken appointment date and returns the instant
// the reminder targets: the day before the appointment at ReminderHour in
// business time.
func (p *Poller) reminderInstant(spoken string, now time.Time) (time.Time, bool) {
	day, ok := p.parseSpokenDate(spoken, now)
	if !ok {
		return time.Time{}, false
	}
	target := day.AddDate(0, 0, -1)
	loc := p.hours.TimeLocation()
	return time.Date(target.Year(), target.Month(), target.Day(), ReminderHour, 0, 0, 0, loc), true
}

// parseSpokenDate reads a free-text date such as "Friday, September 4, 2026",
// "September 4th", or "9/4". Dates without a year resolve to the occurrence
// on or after today.
func (p *Poller) parseSpokenDate(spoken string, now time.Time) (time.Time, bool) {
	cleaned := strings.TrimSpace(spoken)
	cleaned = weekdayPrefix.ReplaceAllString(cleaned, "")
	cleaned = ordinalSuffix.ReplaceAllString(cleaned, "$1")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return time.Time{}, false
	}

	loc := p.hours.TimeLocation()
	today := now.In(loc)
	for _, layout := range dateLayouts {
		parsed, err := time.ParseInLocation(layout, cleaned, loc)
		if err != nil {
			continue
		}
		if parsed.Year() == 0 {
			parsed = time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, loc)
			if parsed.Before(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)) {
				parsed = parsed.AddDate(1, 0, 0)
			}
		}
		return parsed, true
	}
	return time.Time{}, false
}
