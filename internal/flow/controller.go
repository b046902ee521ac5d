package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/AltairPartners/AltairIVR/internal/hours"
	"github.com/AltairPartners/AltairIVR/internal/models"
	"github.com/AltairPartners/AltairIVR/internal/store"
)

// Spoken fallback messages. Collaborator and contract errors are never
// surfaced to the caller as raw diagnostics; they map to one of these.
const (
	msgApology  = "I'm sorry, something went wrong on our end. Please call back in a few minutes. Goodbye."
	msgNoCaller = "I'm sorry, I couldn't identify your phone number. Please call back from an unblocked line. Goodbye."
)

// Notifier abstracts the outbound SMS alert channel. All sends are
// best-effort; a failed notification never decides a caller-visible outcome.
type Notifier interface {
	NotifyAdmins(ctx context.Context, body string)
	SendCustomer(ctx context.Context, to string, body string)
}

// Responder abstracts the AI completion collaborator used by the
// representative and creative-director sub-flows.
type Responder interface {
	GenerateReply(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Handler implements one node of the flow graph. It receives the decoded
// session context plus the current step's raw input and returns an Outcome.
type Handler interface {
	Handle(ctx context.Context, sess Context, in Input) Outcome
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, sess Context, in Input) Outcome

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, sess Context, in Input) Outcome {
	return f(ctx, sess, in)
}

// Opts holds configuration options for the controller.
type Opts struct {
	BusinessName string
	ConfirmBySMS bool
	Now          func() time.Time
}

// Option defines a configuration option for the controller.
type Option func(*Opts)

// WithBusinessName sets the spoken business name.
func WithBusinessName(name string) Option {
	return func(o *Opts) { o.BusinessName = name }
}

// WithCustomerConfirmation enables SMS booking confirmations to callers.
func WithCustomerConfirmation(enabled bool) Option {
	return func(o *Opts) { o.ConfirmBySMS = enabled }
}

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// DefaultBusinessName is the spoken business name.
const DefaultBusinessName = "Altair Partners"

// Controller owns the dispatch table mapping step names to handlers and the
// collaborators individual handlers consult.
type Controller struct {
	store        store.Store
	notifier     Notifier
	ai           Responder
	hours        *hours.Oracle
	now          func() time.Time
	businessName string
	confirmBySMS bool
	handlers     map[models.StepType]Handler
}

// NewController creates a controller and registers every step of the flow
// graph. The AI responder may be nil; the sub-flows that need it fall back
// gracefully.
func NewController(st store.Store, notifier Notifier, ai Responder, oracle *hours.Oracle, opts ...Option) *Controller {
	cfg := Opts{BusinessName: DefaultBusinessName, Now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := &Controller{
		store:        st,
		notifier:     notifier,
		ai:           ai,
		hours:        oracle,
		now:          cfg.Now,
		businessName: cfg.BusinessName,
		confirmBySMS: cfg.ConfirmBySMS,
		handlers:     make(map[models.StepType]Handler),
	}
	c.registerMenuSteps()
	c.registerBookingSteps()
	c.registerAssistantSteps()
	return c
}

// Step routes one webhook request to its handler. A request without a caller
// identifier fails the call gracefully; an unknown step routes back to the
// main menu instead of hanging the call.
func (c *Controller) Step(ctx context.Context, step models.StepType, sess Context, in Input) Outcome {
	if sess.Phone == "" {
		slog.Warn("Controller.Step: request without caller phone", "step", step)
		return Terminate(msgNoCaller)
	}
	handler, ok := c.handlers[step]
	if !ok {
		slog.Warn("Controller.Step: unknown step, returning to main menu", "step", step, "phone", sess.Phone)
		return RedirectWithMessage("Sorry, something went wrong. Returning to the main menu.", models.StepMainMenu)
	}
	slog.Debug("Controller.Step: dispatching", "step", step, "phone", sess.Phone, "has_input", !in.Empty())
	return handler.Handle(ctx, sess, in)
}

// register installs a handler for a step.
func (c *Controller) register(step models.StepType, h HandlerFunc) {
	c.handlers[step] = h
}

// gated wraps a handler with a business-hours check. The gate is re-checked
// at sub-flow entry even when the menu already checked it, so a call that
// straddles closing time cannot slip into an open-only sub-flow.
func (c *Controller) gated(h Handler) HandlerFunc {
	return func(ctx context.Context, sess Context, in Input) Outcome {
		if !c.hours.IsOpen(c.now()) {
			return Redirect(models.StepClosedMenu)
		}
		return h.Handle(ctx, sess, in)
	}
}

// logCall appends a call log entry, best-effort.
func (c *Controller) logCall(phone string, action models.CallAction, details map[string]string) {
	entry := models.NewCallLogEntry(phone, action, details, c.now(), c.hours.TimeLocation())
	if err := c.store.AddCallLog(entry); err != nil {
		slog.Error("Controller.logCall: failed to append call log", "error", err, "phone", phone, "action", action)
	}
}
