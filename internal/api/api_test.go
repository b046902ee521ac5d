package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/AltairPartners/AltairIVR/internal/flow"
	"github.com/AltairPartners/AltairIVR/internal/hours"
	"github.com/AltairPartners/AltairIVR/internal/models"
	"github.com/AltairPartners/AltairIVR/internal/store"
	"github.com/AltairPartners/AltairIVR/internal/twiliovoice"
)

func newTestServer(t *testing.T) (*Server, *store.InMemoryStore) {
	t.Helper()
	oracle, err := hours.NewOracle()
	if err != nil {
		t.Fatalf("NewOracle() error = %v", err)
	}
	st := store.NewInMemoryStore()
	notifier := twiliovoice.NewNotifier(twiliovoice.NewMockClient(), []string{"15555550100"})
	// Pin the clock inside business hours: Tuesday, September 1, 2026 at 11 AM Pacific.
	clock := time.Date(2026, time.September, 1, 11, 0, 0, 0, oracle.TimeLocation())
	controller := flow.NewController(st, notifier, nil, oracle,
		flow.WithNow(func() time.Time { return clock }))
	return NewServer(controller, st, oracle), st
}

func postForm(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestVoiceEntryReturnsGreetingTwiML(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{}
	form.Set("From", "+15035551234")
	rec := postForm(t, srv.Handler(), "/twilio/voice", form)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("content type = %q, want text/xml", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<Gather") {
		t.Errorf("response has no Gather verb: %s", body)
	}
	if !strings.Contains(body, "Altair Partners") {
		t.Errorf("greeting does not name the business: %s", body)
	}
	if !strings.Contains(body, "step=menu-select") {
		t.Errorf("gather action does not target the menu select step: %s", body)
	}
	if !strings.Contains(body, "phone=15035551234") {
		t.Errorf("action URL does not carry the normalized phone: %s", body)
	}
}

func TestVoiceEntryRejectsGet(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/twilio/voice", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestVoiceStepCarriesSessionContextForward(t *testing.T) {
	srv, _ := newTestServer(t)

	form := url.Values{}
	form.Set("SpeechResult", "Maria")
	path := flow.StepPath + "?step=collect-name&phone=15035551234"
	rec := postForm(t, srv.Handler(), path, form)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "step=confirm-name") {
		t.Errorf("confirmation gather does not target the confirm step: %s", body)
	}
	// The collected name must ride in the action URL to the next step.
	if !strings.Contains(body, "name=Maria") {
		t.Errorf("action URL does not carry the collected name: %s", body)
	}
}

func TestVoiceStepTerminatesWithoutCallerPhone(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postForm(t, srv.Handler(), flow.StepPath+"?step=main-menu", url.Values{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<Hangup") {
		t.Errorf("response without caller phone does not hang up: %s", body)
	}
}

func TestStatsAggregatesByAction(t *testing.T) {
	srv, st := newTestServer(t)
	loc, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Date(2026, time.September, 1, 11, 0, 0, 0, loc)

	actions := []models.CallAction{
		models.ActionCallReceived,
		models.ActionCallReceived,
		models.ActionAppointmentBooked,
		models.ActionCallbackRequested,
		models.ActionVoiceMessage,
	}
	for _, a := range actions {
		if err := st.AddCallLog(models.NewCallLogEntry("15035551234", a, nil, now, loc)); err != nil {
			t.Fatalf("AddCallLog() error = %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/stats?date=2026-09-01", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Status string            `json:"status"`
		Result models.DailyStats `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != models.APIStatusOK {
		t.Errorf("status = %q, want %q", resp.Status, models.APIStatusOK)
	}
	want := models.DailyStats{
		Date: "2026-09-01", TotalCalls: 2, AppointmentsMade: 1,
		CallbackRequests: 1, VoiceMessages: 1,
	}
	if resp.Result != want {
		t.Errorf("stats = %+v, want %+v", resp.Result, want)
	}
}

func TestStatsRejectsMalformedDate(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/stats?date=tomorrow", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAppointmentsListsStore(t *testing.T) {
	srv, st := newTestServer(t)
	if err := st.SaveAppointment(models.Appointment{
		Phone: "15035551234", Name: "Maria", Date: "Wednesday, September 2, 2026", Time: "2 PM",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("SaveAppointment() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Maria") {
		t.Errorf("appointments listing missing stored appointment: %s", rec.Body.String())
	}
}

func TestHealthReportsBusinessStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "Portland, Oregon") {
		t.Errorf("health response missing business location: %s", rec.Body.String())
	}
}
