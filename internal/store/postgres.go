// Package store provides storage backends for AltairIVR.
//
// This file implements a PostgreSQL-backed store for appointments, call logs,
// and reminder records.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/AltairPartners/AltairIVR/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists appointments, call logs, and reminders in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// FindAppointment returns the appointment for a phone, or nil when none exists.
func (s *PostgresStore) FindAppointment(phone string) (*models.Appointment, error) {
	row := s.db.QueryRow(`SELECT phone, name, business_type, service_type, date, time, created_at FROM appointments WHERE phone = $1`, phone)
	appt, err := scanAppointmentRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore.FindAppointment failed", "error", err, "phone", phone)
		return nil, fmt.Errorf("failed to find appointment for %s: %w", phone, err)
	}
	return appt, nil
}

// SaveAppointment stores an appointment, replacing any prior one for the phone.
func (s *PostgresStore) SaveAppointment(appt models.Appointment) error {
	if err := appt.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO appointments (phone, name, business_type, service_type, date, time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (phone) DO UPDATE SET
			name = EXCLUDED.name,
			business_type = EXCLUDED.business_type,
			service_type = EXCLUDED.service_type,
			date = EXCLUDED.date,
			time = EXCLUDED.time,
			created_at = EXCLUDED.created_at`,
		appt.Phone, appt.Name, nilIfEmpty(appt.BusinessType), nilIfEmpty(appt.ServiceType), appt.Date, appt.Time, appt.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore.SaveAppointment failed", "error", err, "phone", appt.Phone)
		return fmt.Errorf("failed to save appointment for %s: %w", appt.Phone, err)
	}
	return nil
}

// DeleteAppointment removes the appointment for a phone.
func (s *PostgresStore) DeleteAppointment(phone string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM appointments WHERE phone = $1`, phone)
	if err != nil {
		slog.Error("PostgresStore.DeleteAppointment failed", "error", err, "phone", phone)
		return false, fmt.Errorf("failed to delete appointment for %s: %w", phone, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result for %s: %w", phone, err)
	}
	return n > 0, nil
}

// ListAppointments returns all stored appointments.
func (s *PostgresStore) ListAppointments() ([]models.Appointment, error) {
	rows, err := s.db.Query(`SELECT phone, name, business_type, service_type, date, time, created_at FROM appointments ORDER BY created_at`)
	if err != nil {
		slog.Error("PostgresStore.ListAppointments query failed", "error", err)
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// AddCallLog appends a call log entry.
func (s *PostgresStore) AddCallLog(entry models.CallLogEntry) error {
	details, err := entry.DetailsJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize call log details: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO call_logs (id, phone, action, details, day, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Phone, string(entry.Action), nilIfEmpty(details), entry.Day, entry.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore.AddCallLog failed", "error", err, "phone", entry.Phone, "action", entry.Action)
		return fmt.Errorf("failed to insert call log for %s: %w", entry.Phone, err)
	}
	return nil
}

// GetCallLogsByDate returns the entries logged on a given day.
func (s *PostgresStore) GetCallLogsByDate(day string) ([]models.CallLogEntry, error) {
	rows, err := s.db.Query(`SELECT id, phone, action, details, day, created_at FROM call_logs WHERE day = $1 ORDER BY created_at`, day)
	if err != nil {
		slog.Error("PostgresStore.GetCallLogsByDate query failed", "error", err, "day", day)
		return nil, fmt.Errorf("failed to query call logs for %s: %w", day, err)
	}
	defer rows.Close()
	return scanCallLogs(rows)
}

// ListCallLogDates returns the distinct days with call log entries, newest first.
func (s *PostgresStore) ListCallLogDates() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT day FROM call_logs ORDER BY day DESC`)
	if err != nil {
		slog.Error("PostgresStore.ListCallLogDates query failed", "error", err)
		return nil, fmt.Errorf("failed to query call log dates: %w", err)
	}
	defer rows.Close()
	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("failed to scan call log date: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate call log dates: %w", err)
	}
	return days, nil
}

// AddReminder appends a reminder record.
func (s *PostgresStore) AddReminder(rec models.ReminderRecord) error {
	_, err := s.db.Exec(`INSERT INTO reminders (id, phone, appointment_date, status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.Phone, rec.AppointmentDate, string(rec.Status), rec.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore.AddReminder failed", "error", err, "phone", rec.Phone)
		return fmt.Errorf("failed to insert reminder for %s: %w", rec.Phone, err)
	}
	return nil
}

// HasReminderInitiated reports whether an initiated reminder exists for the pair.
func (s *PostgresStore) HasReminderInitiated(phone, appointmentDate string) (bool, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM reminders WHERE phone = $1 AND appointment_date = $2 AND status = $3 LIMIT 1`,
		phone, appointmentDate, string(models.ReminderInitiated)).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reminder check failed: %w", err)
	}
	return true, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
