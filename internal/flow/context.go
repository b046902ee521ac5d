// Package flow implements the call-flow graph for AltairIVR.
//
// A call's session state is never stored server-side: it travels inside the
// webhook action URLs the call provider echoes back on each step. This file
// implements that encode/decode boundary.
package flow

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/AltairPartners/AltairIVR/internal/models"
	"github.com/AltairPartners/AltairIVR/internal/util"
)

// StepPath is the webhook path all step action URLs point at.
const StepPath = "/twilio/voice/step"

// Reserved query parameter names in step action URLs. Everything else is a
// session context field.
const (
	paramStep  = "step"
	paramPhone = "phone"
)

// Session context field keys.
const (
	FieldName         = "name"
	FieldBusinessType = "business_type"
	FieldServiceType  = "service_type"
	FieldDate         = "date"
	FieldTime         = "time"
	FieldReason       = "reason"
	FieldOfferedDate  = "offered_date"
)

// Context is the immutable bag of facts accumulated across the steps of one
// call. Values are always strings; later steps add fields, never remove them.
type Context struct {
	Phone  string
	Fields map[string]string
}

// NewContext creates a context for a caller with no collected fields.
func NewContext(phone string) Context {
	return Context{Phone: phone, Fields: make(map[string]string)}
}

// Get returns a field value, or the empty string when absent.
func (c Context) Get(key string) string {
	return c.Fields[key]
}

// With returns a copy of the context with the patch applied. The receiver is
// never mutated, so handlers can hold a context across collaborator calls.
func (c Context) With(patch map[string]string) Context {
	if len(patch) == 0 {
		return c
	}
	next := Context{Phone: c.Phone, Fields: make(map[string]string, len(c.Fields)+len(patch))}
	for k, v := range c.Fields {
		next.Fields[k] = v
	}
	for k, v := range patch {
		next.Fields[k] = v
	}
	return next
}

// Input is the caller-supplied payload of one step: a menu digit, a
// recognized utterance, a recording reference, or nothing when input
// timed out.
type Input struct {
	Digits       string
	Speech       string
	RecordingURL string
}

// Value returns the caller's answer for the step, preferring digits over
// speech, trimmed and bounded.
func (in Input) Value() string {
	v := in.Digits
	if v == "" {
		v = in.Speech
	}
	v = strings.TrimSpace(v)
	if len(v) > models.MaxFreeTextLength {
		v = v[:models.MaxFreeTextLength]
	}
	return v
}

// Empty reports whether the step produced no usable input.
func (in Input) Empty() bool {
	return in.Value() == ""
}

// EncodeAction serializes a step name and session context into the action URL
// for the next webhook request. Values are stored decoded in the context and
// percent-encoded exactly once here.
func EncodeAction(step models.StepType, c Context) string {
	v := url.Values{}
	v.Set(paramStep, string(step))
	v.Set(paramPhone, c.Phone)
	for key, val := range c.Fields {
		if val != "" {
			v.Set(key, val)
		}
	}
	return StepPath + "?" + v.Encode()
}

// DecodeRequest reconstructs the session context and step input from an
// incoming webhook request. Missing fields decode to empty values rather
// than failing; the value the current step collected arrives as Input, so
// fresh payload data always wins over the echoed URL for that field.
func DecodeRequest(r *http.Request) (Context, Input) {
	_ = r.ParseForm()

	phone := r.URL.Query().Get(paramPhone)
	if phone == "" {
		if normalized, err := util.NormalizePhone(r.PostFormValue("From")); err == nil {
			phone = normalized
		}
	}

	ctx := NewContext(phone)
	for key, vals := range r.URL.Query() {
		if key == paramStep || key == paramPhone || len(vals) == 0 {
			continue
		}
		ctx.Fields[key] = vals[0]
	}

	in := Input{
		Digits:       strings.TrimSpace(r.PostFormValue("Digits")),
		Speech:       strings.TrimSpace(r.PostFormValue("SpeechResult")),
		RecordingURL: strings.TrimSpace(r.PostFormValue("RecordingUrl")),
	}
	return ctx, in
}

// StepFromRequest extracts the step name from a webhook request.
func StepFromRequest(r *http.Request) models.StepType {
	return models.StepType(r.URL.Query().Get(paramStep))
}
