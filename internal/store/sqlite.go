// Package store provides storage backends for AltairIVR.
//
// This file implements an SQLite-backed store for appointments, call logs,
// and reminder records.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/AltairPartners/AltairIVR/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists appointments, call logs, and reminders in a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// FindAppointment returns the appointment for a phone, or nil when none exists.
func (s *SQLiteStore) FindAppointment(phone string) (*models.Appointment, error) {
	row := s.db.QueryRow(`SELECT phone, name, business_type, service_type, date, time, created_at FROM appointments WHERE phone = ?`, phone)
	appt, err := scanAppointmentRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.FindAppointment failed", "error", err, "phone", phone)
		return nil, fmt.Errorf("failed to find appointment for %s: %w", phone, err)
	}
	return appt, nil
}

// SaveAppointment stores an appointment, replacing any prior one for the phone.
func (s *SQLiteStore) SaveAppointment(appt models.Appointment) error {
	if err := appt.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(`INSERT INTO appointments (phone, name, business_type, service_type, date, time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(phone) DO UPDATE SET
			name = excluded.name,
			business_type = excluded.business_type,
			service_type = excluded.service_type,
			date = excluded.date,
			time = excluded.time,
			created_at = excluded.created_at`,
		appt.Phone, appt.Name, nilIfEmpty(appt.BusinessType), nilIfEmpty(appt.ServiceType), appt.Date, appt.Time, appt.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore.SaveAppointment failed", "error", err, "phone", appt.Phone)
		return fmt.Errorf("failed to save appointment for %s: %w", appt.Phone, err)
	}
	slog.Debug("SQLiteStore.SaveAppointment succeeded", "phone", appt.Phone, "date", appt.Date)
	return nil
}

// DeleteAppointment removes the appointment for a phone.
func (s *SQLiteStore) DeleteAppointment(phone string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM appointments WHERE phone = ?`, phone)
	if err != nil {
		slog.Error("SQLiteStore.DeleteAppointment failed", "error", err, "phone", phone)
		return false, fmt.Errorf("failed to delete appointment for %s: %w", phone, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result for %s: %w", phone, err)
	}
	return n > 0, nil
}

// ListAppointments returns all stored appointments.
func (s *SQLiteStore) ListAppointments() ([]models.Appointment, error) {
	rows, err := s.db.Query(`SELECT phone, name, business_type, service_type, date, time, created_at FROM appointments ORDER BY created_at`)
	if err != nil {
		slog.Error("SQLiteStore.ListAppointments query failed", "error", err)
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// AddCallLog appends a call log entry.
func (s *SQLiteStore) AddCallLog(entry models.CallLogEntry) error {
	details, err := entry.DetailsJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize call log details: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO call_logs (id, phone, action, details, day, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Phone, string(entry.Action), nilIfEmpty(details), entry.Day, entry.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore.AddCallLog failed", "error", err, "phone", entry.Phone, "action", entry.Action)
		return fmt.Errorf("failed to insert call log for %s: %w", entry.Phone, err)
	}
	return nil
}

// GetCallLogsByDate returns the entries logged on a given day.
func (s *SQLiteStore) GetCallLogsByDate(day string) ([]models.CallLogEntry, error) {
	rows, err := s.db.Query(`SELECT id, phone, action, details, day, created_at FROM call_logs WHERE day = ? ORDER BY created_at`, day)
	if err != nil {
		slog.Error("SQLiteStore.GetCallLogsByDate query failed", "error", err, "day", day)
		return nil, fmt.Errorf("failed to query call logs for %s: %w", day, err)
	}
	defer rows.Close()
	return scanCallLogs(rows)
}

// ListCallLogDates returns the distinct days with call log entries, newest first.
func (s *SQLiteStore) ListCallLogDates() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT day FROM call_logs ORDER BY day DESC`)
	if err != nil {
		slog.Error("SQLiteStore.ListCallLogDates query failed", "error", err)
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
func (s *SQLiteStore) AddReminder(rec models.ReminderRecord) error {
	_, err := s.db.Exec(`INSERT INTO reminders (id, phone, appointment_date, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Phone, rec.AppointmentDate, string(rec.Status), rec.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore.AddReminder failed", "error", err, "phone", rec.Phone)
		return fmt.Errorf("failed to insert reminder for %s: %w", rec.Phone, err)
	}
	return nil
}

// HasReminderInitiated reports whether an initiated reminder exists for the pair.
func (s *SQLiteStore) HasReminderInitiated(phone, appointmentDate string) (bool, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM reminders WHERE phone = ? AND appointment_date = ? AND status = ? LIMIT 1`,
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
