// Package models defines the core data structures for AltairIVR.
//
// It includes types for appointments, call log entries, and reminder records,
// which are shared across modules.
package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Validation constants for input validation
const (
	// MaxFreeTextLength defines the maximum allowed length for caller-supplied
	// free text (names, dates, times, reasons) before it is truncated.
	MaxFreeTextLength = 500
)

// Error variables for better error handling and testability
var (
	ErrEmptyPhone          = errors.New("phone number cannot be empty")
	ErrEmptyName           = errors.New("appointment holder name cannot be empty")
	ErrEmptyDate           = errors.New("appointment date cannot be empty")
	ErrEmptyTime           = errors.New("appointment time cannot be empty")
	ErrAppointmentNotFound = errors.New("no appointment found for phone number")
	ErrAlreadyBooked       = errors.New("an appointment already exists for phone number")
)

// Appointment represents a booked appointment, keyed by the caller's
// normalized phone number. At most one appointment exists per phone number;
// saving a new one replaces any prior one. Date and time are stored as the
// caller spoke them and are never validated against a real calendar.
type Appointment struct {
	Phone        string    `json:"phone"`
	Name         string    `json:"name"`
	BusinessType string    `json:"business_type,omitempty"`
	ServiceType  string    `json:"service_type,omitempty"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks that the appointment carries the fields the store requires.
func (a *Appointment) Validate() error {
	if a.Phone == "" {
		return ErrEmptyPhone
	}
	if a.Name == "" {
		return ErrEmptyName
	}
	if a.Date == "" {
		return ErrEmptyDate
	}
	if a.Time == "" {
		return ErrEmptyTime
	}
	return nil
}

// CallAction tags a call log entry with what happened during the call.
type CallAction string

const (
	ActionCallReceived        CallAction = "CALL_RECEIVED"
	ActionAppointmentBooked   CallAction = "APPOINTMENT_SCHEDULED"
	ActionAppointmentCanceled CallAction = "APPOINTMENT_CANCELLED"
	ActionAppointmentRebooked CallAction = "APPOINTMENT_RESCHEDULED"
	ActionCallbackRequested   CallAction = "CALLBACK_REQUESTED"
	ActionAfterHoursCallback  CallAction = "AFTER_HOURS_CALLBACK_REQUESTED"
	ActionRepresentative      CallAction = "REPRESENTATIVE_SELECTED"
	ActionCreativeDirector    CallAction = "CREATIVE_DIRECTOR_SELECTED"
	ActionPartnershipInquiry  CallAction = "PARTNERSHIP_INQUIRY"
	ActionVoiceMessage        CallAction = "VOICE_MESSAGE_RECORDED"
)

// CallLogEntry is an append-only record of one action observed during a call.
// Day is the calendar day in business time, used for daily reporting.
type CallLogEntry struct {
	ID        string            `json:"id"`
	Phone     string            `json:"phone"`
	Action    CallAction        `json:"action"`
	Details   map[string]string `json:"details,omitempty"`
	Day       string            `json:"day"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewCallLogEntry builds a call log entry for the given instant, computing the
// business-time day bucket from loc.
func NewCallLogEntry(phone string, action CallAction, details map[string]string, now time.Time, loc *time.Location) CallLogEntry {
	local := now.In(loc)
	return CallLogEntry{
		ID:        uuid.NewString(),
		Phone:     phone,
		Action:    action,
		Details:   details,
		Day:       local.Format("2006-01-02"),
		CreatedAt: now,
	}
}

// DetailsJSON serializes the entry details for storage. An empty map
// serializes to an empty string.
func (e *CallLogEntry) DetailsJSON() (string, error) {
	if len(e.Details) == 0 {
		return "", nil
	}
	data, err := json.Marshal(e.Details)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReminderStatus is the delivery status of a reminder record.
type ReminderStatus string

const (
	// ReminderInitiated means the outbound reminder call was successfully placed.
	ReminderInitiated ReminderStatus = "initiated"
	// ReminderFailed means placing the outbound reminder call failed.
	ReminderFailed ReminderStatus = "failed"
)

// ReminderRecord associates a phone and appointment date snapshot with a
// delivery status. At most one initiated record may exist per
// (phone, appointment date) pair.
type ReminderRecord struct {
	ID              string         `json:"id"`
	Phone           string         `json:"phone"`
	AppointmentDate string         `json:"appointment_date"`
	Status          ReminderStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewReminderRecord builds a reminder record with a fresh id.
func NewReminderRecord(phone, appointmentDate string, status ReminderStatus, now time.Time) ReminderRecord {
	return ReminderRecord{
		ID:              uuid.NewString(),
		Phone:           phone,
		AppointmentDate: appointmentDate,
		Status:          status,
		CreatedAt:       now,
	}
}

// DailyStats aggregates one day of call log entries by action tag.
type DailyStats struct {
	Date                  string `json:"date"`
	TotalCalls            int    `json:"total_calls"`
	AppointmentsMade      int    `json:"appointments_made"`
	CallbackRequests      int    `json:"callback_requests"`
	RepresentativeCalls   int    `json:"representative_calls"`
	CreativeDirectorCalls int    `json:"creative_director_calls"`
	PartnershipInquiries  int    `json:"partnership_inquiries"`
	AfterHoursCalls       int    `json:"after_hours_calls"`
	VoiceMessages         int    `json:"voice_messages"`
}

// BusinessStatus is a read-only snapshot of the business-hours oracle,
// exposed on debug endpoints and attached to call logs.
type BusinessStatus struct {
	IsOpen       bool   `json:"is_open"`
	NextOpenTime string `json:"next_open_time"`
	CurrentTime  string `json:"current_time"`
	Hours        string `json:"hours"`
	Location     string `json:"location"`
}

// API response status constants
const (
	APIStatusOK    = "ok"
	APIStatusError = "error"
)

// APIResponse is the envelope for JSON endpoints.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: APIStatusOK, Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: APIStatusOK, Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: APIStatusError, Message: message}
}
