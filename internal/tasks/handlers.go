package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/solenhq/teamgate/internal/mail"
)

type Handler struct {
	mailer *mail.Mailer
	logger *slog.Logger
}

func NewHandler(mailer *mail.Mailer, logger *slog.Logger) *Handler {
	return &Handler{mailer: mailer, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeVerificationEmail, h.HandleVerificationEmail)
	mux.HandleFunc(TypeLoginOTPEmail, h.HandleLoginOTPEmail)
}

func (h *Handler) HandleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	var payload EmailCodePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.mailer.SendVerificationCode(ctx, payload.Email, payload.Code); err != nil {
		h.logger.Error("verification email failed", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("verification email sent", "email", payload.Email)
	return nil
}

func (h *Handler) HandleLoginOTPEmail(ctx context.Context, t *asynq.Task) error {
	var payload EmailCodePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := h.mailer.SendLoginOTP(ctx, payload.Email, payload.Code); err != nil {
		h.logger.Error("login OTP email failed", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("login OTP email sent", "email", payload.Email)
	return nil
}
