// Package hours provides the business-hours oracle for AltairIVR.
//
// It classifies an instant as open or closed against a fixed weekly schedule
// and computes a human-readable time-until-open message.
package hours

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/AltairPartners/AltairIVR/internal/models"
)

// Default schedule constants
const (
	// DefaultTimezone is the business timezone.
	DefaultTimezone = "America/Los_Angeles"
	// DefaultOpenHour is the opening hour in business time (24h clock).
	DefaultOpenHour = 10
	// DefaultCloseHour is the closing hour in business time (24h clock).
	DefaultCloseHour = 17
	// DefaultLocation is the human-readable business location.
	DefaultLocation = "Portland, Oregon"
	// DefaultTimezoneLabel is the spoken name of the business timezone.
	DefaultTimezoneLabel = "Pacific Time"
)

// Opts holds configuration options for the oracle.
type Opts struct {
	Timezone      string
	TimezoneLabel string
	OpenHour      int
	CloseHour     int
	Location      string
}

// Option defines a configuration option for the oracle.
type Option func(*Opts)

// WithTimezone sets the IANA timezone name for the weekly schedule.
func WithTimezone(tz string) Option {
	return func(o *Opts) { o.Timezone = tz }
}

// WithOpenHour sets the opening hour (24h clock, business time).
func WithOpenHour(h int) Option {
	return func(o *Opts) { o.OpenHour = h }
}

// WithCloseHour sets the closing hour (24h clock, business time).
func WithCloseHour(h int) Option {
	return func(o *Opts) { o.CloseHour = h }
}

// WithLocation sets the human-readable business location.
func WithLocation(loc string) Option {
	return func(o *Opts) { o.Location = loc }
}

// Oracle answers open/closed questions against a fixed Monday-Friday schedule.
type Oracle struct {
	loc       *time.Location
	tzLabel   string
	openHour  int
	closeHour int
	location  string
}

// NewOracle creates a business-hours oracle. The timezone is loaded once; the
// schedule itself is fixed configuration, not re-derived per request.
func NewOracle(opts ...Option) (*Oracle, error) {
	cfg := Opts{
		Timezone:      DefaultTimezone,
		TimezoneLabel: DefaultTimezoneLabel,
		OpenHour:      DefaultOpenHour,
		CloseHour:     DefaultCloseHour,
		Location:      DefaultLocation,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load business timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.OpenHour < 0 || cfg.CloseHour <= cfg.OpenHour || cfg.CloseHour > 23 {
		return nil, fmt.Errorf("invalid business hours: open %d, close %d", cfg.OpenHour, cfg.CloseHour)
	}
	slog.Debug("Oracle.NewOracle: schedule configured", "timezone", cfg.Timezone, "open_hour", cfg.OpenHour, "close_hour", cfg.CloseHour)
	return &Oracle{
		loc:       loc,
		tzLabel:   cfg.TimezoneLabel,
		openHour:  cfg.OpenHour,
		closeHour: cfg.CloseHour,
		location:  cfg.Location,
	}, nil
}

// TimeLocation returns the business timezone.
func (o *Oracle) TimeLocation() *time.Location {
	return o.loc
}

// Location returns the human-readable business location.
func (o *Oracle) Location() string {
	return o.location
}

// Hours returns the spoken weekly schedule.
func (o *Oracle) Hours() string {
	return fmt.Sprintf("Monday to Friday, %s to %s %s", formatHour(o.openHour), formatHour(o.closeHour), o.tzLabel)
}

// IsOpen reports whether now falls within business hours. Weekdays only;
// the closing minute itself still counts as open.
func (o *Oracle) IsOpen(now time.Time) bool {
	local := now.In(o.loc)
	day := local.Weekday()
	if day < time.Monday || day > time.Friday {
		return false
	}
	hhmm := local.Hour()*100 + local.Minute()
	return hhmm >= o.openHour*100 && hhmm <= o.closeHour*100
}

// TimeUntilOpen computes how many days ahead the next opening is and a
// spoken message for the caller. daysAhead is zero when the business opens
// later today or is open now.
func (o *Oracle) TimeUntilOpen(now time.Time) (int, string) {
	local := now.In(o.loc)
	day := local.Weekday()
	hour := local.Hour()

	daysAhead := 0
	switch {
	case day == time.Sunday:
		daysAhead = 1
	case day == time.Saturday:
		daysAhead = 2
	case hour >= o.closeHour:
		if day == time.Friday {
			daysAhead = 3
		} else {
			daysAhead = 1
		}
	}

	var message string
	switch {
	case daysAhead == 0 && hour < o.openHour:
		message = fmt.Sprintf("We open today at %s %s", formatHour(o.openHour), o.tzLabel)
	case daysAhead == 0:
		message = fmt.Sprintf("We're open now until %s %s", formatHour(o.closeHour), o.tzLabel)
	case daysAhead == 1:
		message = fmt.Sprintf("We open tomorrow at %s %s", formatHour(o.openHour), o.tzLabel)
	default:
		message = fmt.Sprintf("We open on Monday at %s %s", formatHour(o.openHour), o.tzLabel)
	}
	return daysAhead, message
}

// NextOpenDate returns the next business day strictly after now, used when
// offering the earliest booking date.
func (o *Oracle) NextOpenDate(now time.Time) time.Time {
	local := now.In(o.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, o.loc).AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Status returns a snapshot of the schedule for logs and debug endpoints.
func (o *Oracle) Status(now time.Time) models.BusinessStatus {
	_, nextOpen := o.TimeUntilOpen(now)
	return models.BusinessStatus{
		IsOpen:       o.IsOpen(now),
		NextOpenTime: nextOpen,
		CurrentTime:  now.In(o.loc).Format("Monday, January 2, 2006 3:04 PM"),
		Hours:        o.Hours(),
		Location:     o.location,
	}
}

// formatHour renders a 24h hour as a spoken 12h clock value.
func formatHour(h int) string {
	switch {
	case h == 0:
		return "12 AM"
	case h < 12:
		return fmt.Sprintf("%d AM", h)
	case h == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", h-12)
	}
}
