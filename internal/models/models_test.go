package models

import (
	"errors"
	"testing"
	"time"
)

func TestAppointmentValidate(t *testing.T) {
	base := Appointment{
		Phone: "5035551234", Name: "Maria", Date: "September 4, 2026", Time: "2 PM",
	}

	tests := []struct {
		name    string
		mutate  func(*Appointment)
		wantErr error
	}{
		{"valid", func(a *Appointment) {}, nil},
		{"missing phone", func(a *Appointment) { a.Phone = "" }, ErrEmptyPhone},
		{"missing name", func(a *Appointment) { a.Name = "" }, ErrEmptyName},
		{"missing date", func(a *Appointment) { a.Date = "" }, ErrEmptyDate},
		{"missing time", func(a *Appointment) { a.Time = "" }, ErrEmptyTime},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			appt := base
			tc.mutate(&appt)
			if err := appt.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewCallLogEntryBucketsDayInBusinessTime(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("LoadLocation() error = %v", err)
	}
	// 4 AM UTC on September 2 is still September 1 in Pacific time.
	now := time.Date(2026, time.September, 2, 4, 0, 0, 0, time.UTC)

	entry := NewCallLogEntry("5035551234", ActionCallReceived, nil, now, loc)
	if entry.Day != "2026-09-01" {
		t.Errorf("Day = %q, want %q", entry.Day, "2026-09-01")
	}
	if entry.ID == "" {
		t.Error("entry has no id")
	}
}

func TestDetailsJSON(t *testing.T) {
	entry := CallLogEntry{Details: map[string]string{"is_open": "true"}}
	got, err := entry.DetailsJSON()
	if err != nil {
		t.Fatalf("DetailsJSON() error = %v", err)
	}
	if got != `{"is_open":"true"}` {
		t.Errorf("DetailsJSON() = %q", got)
	}

	empty := CallLogEntry{}
	got, err = empty.DetailsJSON()
	if err != nil {
		t.Fatalf("DetailsJSON() error = %v", err)
	}
	if got != "" {
		t.Errorf("empty details serialized to %q, want empty string", got)
	}
}
