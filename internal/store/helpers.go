package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/AltairPartners/AltairIVR/internal/models"
)

// Compile-time checks that every backend implements Store.
var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanAppointmentRow scans an Appointment from a single sql.Row.
func scanAppointmentRow(row *sql.Row) (*models.Appointment, error) {
	var appt models.Appointment
	var businessType, serviceType sql.NullString
	err := row.Scan(&appt.Phone, &appt.Name, &businessType, &serviceType, &appt.Date, &appt.Time, &appt.CreatedAt)
	if err != nil {
		return nil, err
	}
	appt.BusinessType = businessType.String
	appt.ServiceType = serviceType.String
	return &appt, nil
}

// scanAppointments scans all appointments from sql.Rows.
func scanAppointments(rows *sql.Rows) ([]models.Appointment, error) {
	var out []models.Appointment
	for rows.Next() {
		var appt models.Appointment
		var businessType, serviceType sql.NullString
		if err := rows.Scan(&appt.Phone, &appt.Name, &businessType, &serviceType, &appt.Date, &appt.Time, &appt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan appointment row: %w", err)
		}
		appt.BusinessType = businessType.String
		appt.ServiceType = serviceType.String
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointment rows: %w", err)
	}
	return out, nil
}

// scanCallLogs scans all call log entries from sql.Rows. Detail payloads that
// fail to parse are treated as malformed collaborator data and surfaced as errors.
func scanCallLogs(rows *sql.Rows) ([]models.CallLogEntry, error) {
	var out []models.CallLogEntry
	for rows.Next() {
		var entry models.CallLogEntry
		var action string
		var details sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Phone, &action, &details, &entry.Day, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call log row: %w", err)
		}
		entry.Action = models.CallAction(action)
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to parse call log details for %s: %w", entry.ID, err)
			}
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate call log rows: %w", err)
	}
	return out, nil
}
