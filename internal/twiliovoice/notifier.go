package twiliovoice

import (
	"context"
	"log/slog"
)

// Notifier fans admin alerts out to the configured destination numbers and
// sends optional customer-facing confirmations. Every send is best-effort:
// failures are logged, never surfaced, so a notification problem can never
// decide a caller-visible outcome.
type Notifier struct {
	sender Sender
	admins []string
}

// NewNotifier creates a notifier. A nil sender disables delivery entirely,
// which keeps local development working without Twilio credentials.
func NewNotifier(sender Sender, admins []string) *Notifier {
	if sender == nil {
		slog.Warn("Notifier created without a Twilio sender, notifications disabled")
	}
	return &Notifier{sender: sender, admins: admins}
}

// NotifyAdmins sends the body to every configured admin number.
func (n *Notifier) NotifyAdmins(ctx context.Context, body string) {
	if n.sender == nil {
		slog.Debug("Notifier.NotifyAdmins skipped, no sender configured")
		return
	}
	for _, admin := range n.admins {
		if err := n.sender.SendSMS(ctx, admin, body); err != nil {
			slog.Error("Notifier.NotifyAdmins send failed", "error", err, "to", admin)
		}
	}
}

// SendCustomer sends a confirmation text to a caller.
func (n *Notifier) SendCustomer(ctx context.Context, to string, body string) {
	if n.sender == nil {
		slog.Debug("Notifier.SendCustomer skipped, no sender configured")
		return
	}
	if err := n.sender.SendSMS(ctx, to, body); err != nil {
		slog.Error("Notifier.SendCustomer send failed", "error", err, "to", to)
	}
}
