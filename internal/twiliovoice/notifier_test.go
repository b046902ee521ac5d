package twiliovoice

import (
	"context"
	"errors"
	"testing"
)

func TestNotifierFansOutToAdmins(t *testing.T) {
	mock := NewMockClient()
	n := NewNotifier(mock, []string{"+15035550001", "+15035550002"})
	n.NotifyAdmins(context.Background(), "New appointment booked")

	if len(mock.SentMessages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mock.SentMessages))
	}
	if mock.SentMessages[0].To != "+15035550001" || mock.SentMessages[1].To != "+15035550002" {
		t.Errorf("unexpected recipients: %+v", mock.SentMessages)
	}
}

func TestNotifierBestEffort(t *testing.T) {
	mock := NewMockClient()
	mock.SMSErr = errors.New("twilio down")
	n := NewNotifier(mock, []string{"+15035550001"})

	// Must not panic or surface the error.
	n.NotifyAdmins(context.Background(), "alert")
	n.SendCustomer(context.Background(), "+15035550188", "confirmed")
}

func TestNotifierWithoutSender(t *testing.T) {
	n := NewNotifier(nil, []string{"+15035550001"})
	n.NotifyAdmins(context.Background(), "alert")
	n.SendCustomer(context.Background(), "+15035550188", "confirmed")
}

func TestNewClientRequiresCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_PHONE_NUMBER", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error without credentials, got nil")
	}
	if _, err := NewClient(WithAccountSID("AC123"), WithAuthToken("token")); err == nil {
		t.Error("expected error without from number, got nil")
	}
	if _, err := NewClient(WithAccountSID("AC123"), WithAuthToken("token"), WithFromNumber("+15035550000")); err != nil {
		t.Errorf("expected client with full credentials, got error: %v", err)
	}
}
