// Package api provides HTTP handlers for AltairIVR endpoints.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AltairPartners/AltairIVR/internal/flow"
	"github.com/AltairPartners/AltairIVR/internal/models"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.hours.Status(time.Now())))
}

// voiceEntryHandler answers the initial Twilio call webhook. Every call starts
// at the welcome step with an empty session context.
func (s *Server) voiceEntryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.voiceEntryHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, in := flow.DecodeRequest(r)
	slog.Info("Server.voiceEntryHandler: incoming call", "phone", sess.Phone)
	out := s.controller.Step(r.Context(), models.StepWelcome, sess, in)
	writeTwiML(w, out, sess)
}

// voiceStepHandler answers every subsequent step webhook. The step name and
// session context ride in the action URL the previous response emitted.
func (s *Server) voiceStepHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.voiceStepHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	step := flow.StepFromRequest(r)
	sess, in := flow.DecodeRequest(r)
	slog.Debug("Server.voiceStepHandler: step webhook", "step", step, "phone", sess.Phone)
	out := s.controller.Step(r.Context(), step, sess, in)
	writeTwiML(w, out, sess)
}

// statsHandler aggregates one day of call logs. The day defaults to today in
// business time and can be overridden with ?date=YYYY-MM-DD.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	day := r.URL.Query().Get("date")
	if day == "" {
		day = time.Now().In(s.hours.TimeLocation()).Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid date, want YYYY-MM-DD"))
		return
	}

	entries, err := s.store.GetCallLogsByDate(day)
	if err != nil {
		slog.Error("Server.statsHandler: failed to load call logs", "error", err, "day", day)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load call logs"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(aggregateStats(day, entries)))
}

// statsDatesHandler lists the days that have call log entries.
func (s *Server) statsDatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	dates, err := s.store.ListCallLogDates()
	if err != nil {
		slog.Error("Server.statsDatesHandler: failed to list dates", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list call log dates"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(dates))
}

// appointmentsHandler lists all stored appointments, for operator debugging.
func (s *Server) appointmentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	appointments, err := s.store.ListAppointments()
	if err != nil {
		slog.Error("Server.appointmentsHandler: failed to list appointments", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list appointments"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(appointments))
}

// aggregateStats folds call log entries into per-action counters.
func aggregateStats(day string, entries []models.CallLogEntry) models.DailyStats {
	stats := models.DailyStats{Date: day}
	for _, e := range entries {
		switch e.Action {
		case models.ActionCallReceived:
			stats.TotalCalls++
		case models.ActionAppointmentBooked:
			stats.AppointmentsMade++
		case models.ActionCallbackRequested:
			stats.CallbackRequests++
		case models.ActionRepresentative:
			stats.RepresentativeCalls++
		case models.ActionCreativeDirector:
			stats.CreativeDirectorCalls++
		case models.ActionPartnershipInquiry:
			stats.PartnershipInquiries++
		case models.ActionAfterHoursCallback:
			stats.AfterHoursCalls++
		case models.ActionVoiceMessage:
			stats.VoiceMessages++
		}
	}
	return stats
}
