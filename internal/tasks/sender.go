package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/solenhq/teamgate/internal/auth"
)

// QueueSender implements auth.Sender by enqueueing email tasks. The HTTP
// path never blocks on SMTP; only the enqueue can fail the request.
type QueueSender struct {
	client *asynq.Client
}

func NewQueueSender(client *asynq.Client) *QueueSender {
	return &QueueSender{client: client}
}

var _ auth.Sender = (*QueueSender)(nil)

func (s *QueueSender) SendVerificationCode(ctx context.Context, email, code string) error {
	task, err := NewVerificationEmailTask(EmailCodePayload{Email: email, Code: code})
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue verification email: %w", err)
	}
	return nil
}

func (s *QueueSender) SendLoginOTP(ctx context.Context, email, otp string) error {
	task, err := NewLoginOTPEmailTask(EmailCodePayload{Email: email, Code: otp})
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue login OTP email: %w", err)
	}
	return nil
}
