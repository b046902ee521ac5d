package flow

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/AltairPartners/AltairIVR/internal/models"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sess := NewContext("5035551234")
	sess.Fields[FieldName] = "Maria's Bakery & Co"
	sess.Fields[FieldDate] = "Friday, September 4, 2026"
	sess.Fields[FieldReason] = "pricing? for web design"

	action := EncodeAction(models.StepAskTime, sess)
	if !strings.HasPrefix(action, StepPath+"?") {
		t.Fatalf("action URL = %q, want prefix %q", action, StepPath+"?")
	}

	req := httptest.NewRequest(http.MethodPost, action, nil)
	got, _ := DecodeRequest(req)

	if got.Phone != sess.Phone {
		t.Errorf("phone = %q, want %q", got.Phone, sess.Phone)
	}
	for key, want := range sess.Fields {
		if got.Get(key) != want {
			t.Errorf("field %q = %q, want %q", key, got.Get(key), want)
		}
	}
	if step := StepFromRequest(req); step != models.StepAskTime {
		t.Errorf("step = %q, want %q", step, models.StepAskTime)
	}
}

func TestDecodeRequestFallsBackToCallerID(t *testing.T) {
	form := url.Values{}
	form.Set("From", "+1 (503) 555-1234")
	form.Set("Digits", "1")

	req := httptest.NewRequest(http.MethodPost, StepPath+"?step=menu_select", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	sess, in := DecodeRequest(req)
	if sess.Phone != "15035551234" {
		t.Errorf("phone = %q, want %q", sess.Phone, "15035551234")
	}
	if in.Digits != "1" {
		t.Errorf("digits = %q, want %q", in.Digits, "1")
	}
}

func TestDecodeRequestPrefersQueryPhone(t *testing.T) {
	form := url.Values{}
	form.Set("From", "+1 (503) 555-9999")

	req := httptest.NewRequest(http.MethodPost, StepPath+"?step=main_menu&phone=5035551234", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	sess, _ := DecodeRequest(req)
	if sess.Phone != "5035551234" {
		t.Errorf("phone = %q, want query phone %q", sess.Phone, "5035551234")
	}
}

func TestInputValuePrefersDigits(t *testing.T) {
	in := Input{Digits: "2", Speech: "no thank you"}
	if got := in.Value(); got != "2" {
		t.Errorf("Value() = %q, want %q", got, "2")
	}
}

func TestInputValueTruncatesLongSpeech(t *testing.T) {
	in := Input{Speech: strings.Repeat("a", models.MaxFreeTextLength+50)}
	if got := len(in.Value()); got != models.MaxFreeTextLength {
		t.Errorf("len(Value()) = %d, want %d", got, models.MaxFreeTextLength)
	}
}

func TestContextWithDoesNotMutateReceiver(t *testing.T) {
	base := NewContext("5035551234")
	base.Fields[FieldName] = "Maria"

	patched := base.With(map[string]string{FieldName: "Ana", FieldDate: "tomorrow"})
	if base.Get(FieldName) != "Maria" {
		t.Errorf("receiver mutated: name = %q", base.Get(FieldName))
	}
	if patched.Get(FieldName) != "Ana" || patched.Get(FieldDate) != "tomorrow" {
		t.Errorf("patch not applied: %+v", patched.Fields)
	}
}
