package mail

import (
	"context"
	"fmt"

	"github.com/solenhq/teamgate/pkg/config"
	gomail "github.com/wneessen/go-mail"
)

// Mailer sends transactional mail over SMTP. A fresh client is dialed per
// message; volume is low enough that pooling is not worth the state.
type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendVerificationCode(ctx context.Context, email, code string) error {
	body := fmt.Sprintf("<p>Your verification code is: <strong>%s</strong></p>", code)
	return m.send(ctx, email, "Email Verification", body)
}

func (m *Mailer) SendLoginOTP(ctx context.Context, email, otp string) error {
	body := fmt.Sprintf("<p>Your login OTP is: <strong>%s</strong></p>", otp)
	return m.send(ctx, email, "Login OTP", body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
