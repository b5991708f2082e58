// Package mailer delivers one-time login codes to users. SendGridMailer
// sends real email; LogMailer writes the code to the application log for
// local development.
package mailer

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const loginCodeSubject = "Your login code"

// sendClient is the subset of the SendGrid client the mailer uses.
type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer emails login codes through the SendGrid v3 API.
type SendGridMailer struct {
	client   sendClient
	fromName string
	fromAddr string
	logger   *slog.Logger
}

// NewSendGridMailer creates a mailer authenticated with apiKey.
func NewSendGridMailer(apiKey, fromAddress, fromName string, logger *slog.Logger) *SendGridMailer {
	return newSendGridMailer(sendgrid.NewSendClient(apiKey), fromAddress, fromName, logger)
}

func newSendGridMailer(client sendClient, fromAddress, fromName string, logger *slog.Logger) *SendGridMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendGridMailer{
		client:   client,
		fromName: fromName,
		fromAddr: fromAddress,
		logger:   logger.With(slog.String("component", "sendgrid_mailer")),
	}
}

// SendLoginCode emails code to the user's registered address.
func (m *SendGridMailer) SendLoginCode(
	ctx context.Context,
	user *domain.User,
	code string,
	ttl time.Duration,
) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	from := mail.NewEmail(m.fromName, m.fromAddr)
	to := mail.NewEmail(user.Name, user.Email)
	plain, htmlBody := loginCodeBody(code, ttl)
	message := mail.NewSingleEmail(from, loginCodeSubject, to, plain, htmlBody)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		log.Error("failed to send login code email",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to send login code email: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		log.Error("sendgrid rejected login code email",
			slog.String("user_id", user.ID.String()),
			slog.Int("status_code", resp.StatusCode))
		return fmt.Errorf("sendgrid rejected login code email: status %d", resp.StatusCode)
	}

	log.Info("login code email sent", slog.String("user_id", user.ID.String()))
	return nil
}

// LogMailer logs login codes instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that writes codes to logger.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With(slog.String("component", "log_mailer"))}
}

// SendLoginCode logs the code at warn level so it stands out in development output.
func (m *LogMailer) SendLoginCode(
	ctx context.Context,
	user *domain.User,
	code string,
	ttl time.Duration,
) error {
	logger.FromContextOrDefault(ctx, m.logger).Warn("login code issued (email delivery disabled)",
		slog.String("user_id", user.ID.String()),
		slog.String("login_code", code),
		slog.Duration("expires_in", ttl))
	return nil
}

func loginCodeBody(code string, ttl time.Duration) (string, string) {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	plain := fmt.Sprintf("Your login code is %s. It expires in %d minute(s).", code, minutes)
	htmlBody := fmt.Sprintf(
		"<p>Your login code is <strong>%s</strong>.</p><p>It expires in %d minute(s).</p>",
		html.EscapeString(code),
		minutes,
	)
	return plain, htmlBody
}
