package mailer

import (
	"context"
	"fmt"

	"startosedge/internal/logger"

	"github.com/resend/resend-go/v2"
)

// ResendMailer sends verification mail via the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (m *ResendMailer) SendVerification(ctx context.Context, to, link string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: "Verify your email address",
		Html: fmt.Sprintf(
			`<p>Welcome! Confirm your email address to activate your account:</p>
<p><a href="%s">Verify email</a></p>
<p>If you did not sign up, ignore this message.</p>`,
			link,
		),
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("mailer: resend send failed: %w", err)
	}

	logger.Info("verification email sent", map[string]any{
		"message_id": sent.Id,
		"to":         to,
	})
	return nil
}
