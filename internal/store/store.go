// Package store provides storage backends for AltairIVR.
//
// It includes an in-memory store for tests and DSN-less runs, plus
// SQLite and PostgreSQL backed stores for appointments, call logs,
// and reminder records.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/AltairPartners/AltairIVR/internal/models"
)

// Store is the persistence collaborator consumed by the flow controller and
// the reminder poller. Appointments are keyed by normalized phone number with
// at most one appointment per phone; SaveAppointment has upsert semantics.
type Store interface {
	// FindAppointment returns the appointment for a phone, or nil when none exists.
	FindAppointment(phone string) (*models.Appointment, error)
	// SaveAppointment stores an appointment, replacing any prior one for the phone.
	SaveAppointment(appt models.Appointment) error
	// DeleteAppointment removes the appointment for a phone, reporting whether one existed.
	DeleteAppointment(phone string) (bool, error)
	// ListAppointments returns all stored appointments.
	ListAppointments() ([]models.Appointment, error)

	// AddCallLog appends a call log entry.
	AddCallLog(entry models.CallLogEntry) error
	// GetCallLogsByDate returns the entries logged on a business-time day (YYYY-MM-DD).
	GetCallLogsByDate(day string) ([]models.CallLogEntry, error)
	// ListCallLogDates returns the distinct days with call log entries, newest first.
	ListCallLogDates() ([]string, error)

	// AddReminder appends a reminder record.
	AddReminder(rec models.ReminderRecord) error
	// HasReminderInitiated reports whether an initiated reminder exists for the pair.
	HasReminderInitiated(phone, appointmentDate string) (bool, error)

	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN configures a SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN configures a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". File paths are
// assumed to be SQLite databases.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// InMemoryStore is a mutex-guarded in-memory store. The mutex also serializes
// the find-then-save sequences handlers run, so concurrent calls from one
// phone cannot produce two appointments.
type InMemoryStore struct {
	mu           sync.RWMutex
	appointments map[string]models.Appointment
	callLogs     []models.CallLogEntry
	reminders    []models.ReminderRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{appointments: make(map[string]models.Appointment)}
}

// FindAppointment returns the appointment for a phone, or nil when none exists.
func (s *InMemoryStore) FindAppointment(phone string) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appt, ok := s.appointments[phone]
	if !ok {
		return nil, nil
	}
	return &appt, nil
}

// SaveAppointment stores an appointment, replacing any prior one for the phone.
func (s *InMemoryStore) SaveAppointment(appt models.Appointment) error {
	if err := appt.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments[appt.Phone] = appt
	return nil
}

// DeleteAppointment removes the appointment for a phone.
func (s *InMemoryStore) DeleteAppointment(phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[phone]; !ok {
		return false, nil
	}
	delete(s.appointments, phone)
	return true, nil
}

// ListAppointments returns all stored appointments.
func (s *InMemoryStore) ListAppointments() ([]models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Appointment, 0, len(s.appointments))
	for _, appt := range s.appointments {
		out = append(out, appt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// AddCallLog appends a call log entry.
func (s *InMemoryStore) AddCallLog(entry models.CallLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callLogs = append(s.callLogs, entry)
	return nil
}

// GetCallLogsByDate returns the entries logged on a given day.
func (s *InMemoryStore) GetCallLogsByDate(day string) ([]models.CallLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CallLogEntry
	for _, e := range s.callLogs {
		if e.Day == day {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListCallLogDates returns the distinct days with call log entries, newest first.
func (s *InMemoryStore) ListCallLogDates() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var days []string
	for _, e := range s.callLogs {
		if !seen[e.Day] {
			seen[e.Day] = true
			days = append(days, e.Day)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	return days, nil
}

// AddReminder appends a reminder record.
func (s *InMemoryStore) AddReminder(rec models.ReminderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, rec)
	return nil
}

// HasReminderInitiated reports whether an initiated reminder exists for the pair.
func (s *InMemoryStore) HasReminderInitiated(phone, appointmentDate string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.reminders {
		if rec.Phone == phone && rec.AppointmentDate == appointmentDate && rec.Status == models.ReminderInitiated {
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
