// Package mailer is the narrow interface to email delivery. Only the
// intent to send lives in scope; delivery failures are logged by the
// caller, never fatal to the auth flow.
package mailer

import "context"

type Mailer interface {
	// SendVerification sends the email-ownership verification link.
	SendVerification(ctx context.Context, to, link string) error
}

// Noop discards mail. Used in tests and when no API key is configured.
type Noop struct{}

func (Noop) SendVerification(ctx context.Context, to, link string) error {
	return nil
}
