package email

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"ecommerce-backend/internal/apperrors"
)

// Sender delivers one transactional email. Callers treat failures as
// best-effort: a failed send is logged, never rolled into the primary
// operation's outcome.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) (deliveryID string, err error)
}

// SendGridSender sends through the SendGrid v3 mail API.
type SendGridSender struct {
	client  *sendgrid.Client
	from    *mail.Email
	timeout time.Duration
	logger  *zap.Logger
}

func NewSendGridSender(apiKey, senderName, senderEmail string, timeout time.Duration, logger *zap.Logger) *SendGridSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SendGridSender{
		client:  sendgrid.NewSendClient(apiKey),
		from:    mail.NewEmail(senderName, senderEmail),
		timeout: timeout,
		logger:  logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", to), htmlBody, htmlBody)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindIntegration, "email delivery failed", err)
	}
	if response.StatusCode >= 400 {
		return "", apperrors.New(apperrors.KindIntegration,
			fmt.Sprintf("email delivery failed: sendgrid returned %d", response.StatusCode))
	}

	deliveryID := response.Headers["X-Message-Id"]
	if len(deliveryID) > 0 {
		return deliveryID[0], nil
	}
	return "", nil
}

// LogSender is used when no SendGrid key is configured; it records the
// mail instead of delivering it.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, htmlBody string) (string, error) {
	s.logger.Info("email delivery skipped, no provider configured",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(htmlBody)))
	return "", nil
}
