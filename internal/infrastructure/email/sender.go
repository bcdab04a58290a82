package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/docuflow/docuflow/internal/application/port"
	"go.uber.org/zap"
)

// Config holds SMTP sender configuration
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender implements port.EmailSender over SMTP.
type Sender struct {
	config Config
	logger *zap.Logger
}

// NewSender creates an SMTP email sender
func NewSender(config Config, logger *zap.Logger) port.EmailSender {
	return &Sender{config: config, logger: logger}
}

// Send delivers one message. The context only gates entry; net/smtp has
// no per-operation cancellation.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.config.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.From, []string{to}, []byte(msg)); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.logger.Debug("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
