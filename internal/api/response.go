// Package api provides HTTP response utilities for AltairIVR.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/twilio/twilio-go/twiml"

	"github.com/AltairPartners/AltairIVR/internal/flow"
	"github.com/AltairPartners/AltairIVR/internal/models"
)

// Pre-marshaled fallback responses to avoid runtime encoding failures
var (
	fallbackErrorResponse []byte
)

// fallbackTwiML is spoken when TwiML rendering itself fails. It must never
// depend on runtime rendering.
const fallbackTwiML = `<?xml version="1.0" encoding="UTF-8"?>` +
	`<Response><Say>I'm sorry, something went wrong on our end. Please call back in a few minutes. Goodbye.</Say><Hangup/></Response>`

// init validates that our fallback responses can be marshaled
func init() {
	var err error
	fallbackErrorResponse, err = json.Marshal(models.Error("Internal server error"))
	if err != nil {
		panic(fmt.Sprintf("Failed to marshal fallback error response at startup: %v", err))
	}
}

// writeJSONResponse writes a JSON response to the http.ResponseWriter with the given status code.
func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	// Marshal the response to JSON first to catch encoding errors before writing headers
	jsonData, err := json.Marshal(response)
	if err != nil {
		slog.Error("Server.writeJSONResponse: failed to marshal JSON response", "error", err)
		jsonData = fallbackErrorResponse
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, writeErr := w.Write(jsonData); writeErr != nil {
		slog.Error("Server.writeJSONResponse: failed to write JSON response", "error", writeErr)
	}
}

// writeTwiML renders a step outcome as a TwiML document. Render failures fall
// back to a static apology document so the caller always hears something.
func writeTwiML(w http.ResponseWriter, out flow.Outcome, sess flow.Context) {
	doc, err := renderOutcome(out, sess)
	if err != nil {
		slog.Error("Server.writeTwiML: failed to render TwiML", "error", err, "next", out.Next)
		doc = fallbackTwiML
	}
	w.Header().Set("Content-Type", "text/xml")
	if _, writeErr := w.Write([]byte(doc)); writeErr != nil {
		slog.Error("Server.writeTwiML: failed to write TwiML response", "error", writeErr)
	}
}

// renderOutcome translates a step outcome into TwiML verbs. The outcome's
// context patch is folded into the session before the action URLs are built,
// so collected fields travel on to the next step.
func renderOutcome(out flow.Outcome, sess flow.Context) (string, error) {
	next := sess.With(out.Patch)

	var verbs []twiml.Element
	switch out.Kind {
	case flow.OutcomePrompt:
		gather := &twiml.VoiceGather{
			Input:         "dtmf speech",
			Action:        flow.EncodeAction(out.Next, next),
			Method:        http.MethodPost,
			Timeout:       "5",
			SpeechTimeout: "auto",
		}
		if out.NumDigits > 0 {
			gather.NumDigits = strconv.Itoa(out.NumDigits)
		}
		if out.Say != "" {
			gather.InnerElements = []twiml.Element{&twiml.VoiceSay{Message: out.Say}}
		}
		verbs = append(verbs, gather)
		// A gather that times out falls through to the next verb; redirect
		// back to the retry step so silence re-runs the question.
		verbs = append(verbs, &twiml.VoiceRedirect{
			Url:    flow.EncodeAction(out.RetryStep(), next),
			Method: http.MethodPost,
		})

	case flow.OutcomeRedirect:
		if out.Say != "" {
			verbs = append(verbs, &twiml.VoiceSay{Message: out.Say})
		}
		verbs = append(verbs, &twiml.VoiceRedirect{
			Url:    flow.EncodeAction(out.Next, next),
			Method: http.MethodPost,
		})

	case flow.OutcomeRecord:
		if out.Say != "" {
			verbs = append(verbs, &twiml.VoiceSay{Message: out.Say})
		}
		verbs = append(verbs, &twiml.VoiceRecord{
			Action:      flow.EncodeAction(out.Next, next),
			Method:      http.MethodPost,
			MaxLength:   "120",
			FinishOnKey: "#",
			PlayBeep:    "true",
		})
		verbs = append(verbs, &twiml.VoiceRedirect{
			Url:    flow.EncodeAction(out.RetryStep(), next),
			Method: http.MethodPost,
		})

	case flow.OutcomeTerminate:
		if out.Say != "" {
			verbs = append(verbs, &twiml.VoiceSay{Message: out.Say})
		}
		verbs = append(verbs, &twiml.VoiceHangup{})

	default:
		return "", fmt.Errorf("unknown outcome kind %d", out.Kind)
	}

	return twiml.Voice(verbs)
}
