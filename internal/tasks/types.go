package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeVerificationEmail = "email:verification"
	TypeLoginOTPEmail     = "email:login_otp"
)

// EmailCodePayload carries a one-time code to deliver by email.
type EmailCodePayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Email sends are not retried: a stale OTP or verification code is worse
// than a failed send the user can re-request.
func NewVerificationEmailTask(payload EmailCodePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeVerificationEmail, data, asynq.MaxRetry(0), asynq.Queue("default")), nil
}

func NewLoginOTPEmailTask(payload EmailCodePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLoginOTPEmail, data, asynq.MaxRetry(0), asynq.Queue("critical")), nil
}
