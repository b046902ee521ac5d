// Package twiliovoice wraps the Twilio API for SMS notifications and
// outbound call placement in AltairIVR.
package twiliovoice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender is the outbound Twilio surface consumed by the notifier and the
// reminder poller.
type Sender interface {
	SendSMS(ctx context.Context, to string, body string) error
	PlaceCall(ctx context.Context, to string, twimlDoc string) error
}

// Opts holds configuration options for the Twilio client.
type Opts struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Option defines a configuration option for the Twilio client.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFromNumber sets the Twilio phone number used for SMS and outbound calls.
func WithFromNumber(from string) Option {
	return func(o *Opts) { o.FromNumber = from }
}

// Client wraps the Twilio REST API.
type Client struct {
	client *twilio.RestClient
	from   string
}

// NewClient creates a Twilio client. Credentials fall back to the
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, and TWILIO_PHONE_NUMBER environment
// variables when not provided via options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromNumber == "" {
		cfg.FromNumber = os.Getenv("TWILIO_PHONE_NUMBER")
	}
	slog.Debug("Twilio client config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"FromNumber_set", cfg.FromNumber != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.FromNumber == "" {
		return nil, fmt.Errorf("from number must be provided")
	}

	client := twilio.NewRestClientWithParams(
		twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		},
	)

	return &Client{client: client, from: cfg.FromNumber}, nil
}

// SendSMS sends a text message using the Twilio API.
func (c *Client) SendSMS(ctx context.Context, to string, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	_, err := c.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("Twilio SendSMS failed", "to", to, "error", err)
		return fmt.Errorf("failed to send SMS to %s: %w", to, err)
	}
	slog.Debug("Twilio SMS sent", "to", to)
	return nil
}

// PlaceCall originates an outbound call that speaks the given TwiML document.
func (c *Client) PlaceCall(ctx context.Context, to string, twimlDoc string) error {
	params := &twilioApi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetTwiml(twimlDoc)

	call, err := c.client.Api.CreateCall(params)
	if err != nil {
		slog.Error("Twilio PlaceCall failed", "to", to, "error", err)
		return fmt.Errorf("failed to place call to %s: %w", to, err)
	}
	sid := ""
	if call != nil && call.Sid != nil {
		sid = *call.Sid
	}
	slog.Info("Twilio call initiated", "to", to, "sid", sid)
	return nil
}

// MockClient records outbound messages and calls for tests.
type MockClient struct {
	mu           sync.Mutex
	SentMessages []SentMessage
	PlacedCalls  []PlacedCall
	SMSErr       error
	CallErr      error
}

// SentMessage is one recorded SMS.
type SentMessage struct {
	To   string
	Body string
}

// PlacedCall is one recorded outbound call.
type PlacedCall struct {
	To    string
	Twiml string
}

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// SendSMS records the message.
func (m *MockClient) SendSMS(ctx context.Context, to string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SMSErr != nil {
		return m.SMSErr
	}
	m.SentMessages = append(m.SentMessages, SentMessage{To: to, Body: body})
	return nil
}

// PlaceCall records the call.
func (m *MockClient) PlaceCall(ctx context.Context, to string, twimlDoc string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CallErr != nil {
		return m.CallErr
	}
	m.PlacedCalls = append(m.PlacedCalls, PlacedCall{To: to, Twiml: twimlDoc})
	return nil
}
