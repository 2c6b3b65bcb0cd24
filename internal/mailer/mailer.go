// Package mailer sends the visible table as a plain-text email over SMTP
// with mandatory STARTTLS and PLAIN authentication.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wneessen/go-mail"

	"sheetcli/internal/config"
	apperrors "sheetcli/internal/errors"
)

// Message is one outgoing email. The password is passed separately and
// never stored.
type Message struct {
	Host    string   `json:"host" validate:"required,hostname_rfc1123"`
	Port    int      `json:"port" validate:"min=1,max=65535"`
	From    string   `json:"from" validate:"required,email"`
	To      []string `json:"to" validate:"required,min=1,dive,email"`
	Subject string   `json:"subject"`
	Body    string   `json:"-"`
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message, password string) error
}

// SMTPSender delivers mail through an SMTP relay. Each call opens one
// connection; there are no retries.
type SMTPSender struct {
	timeout  time.Duration
	logger   *slog.Logger
	validate *validator.Validate
}

// NewSMTPSender creates a sender with the given connection timeout
func NewSMTPSender(timeout time.Duration, logger *slog.Logger) *SMTPSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPSender{
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "mailer")),
		validate: validator.New(),
	}
}

// Send validates msg and delivers it, authenticating as msg.From. Every
// failure is an EMAIL error.
func (s *SMTPSender) Send(ctx context.Context, msg Message, password string) error {
	if msg.Port == 0 {
		msg.Port = config.DefaultSMTPPort
	}
	if msg.Subject == "" {
		msg.Subject = config.DefaultMailSubject
	}

	if err := s.validate.Struct(msg); err != nil {
		return apperrors.NewEmailError("invalid email settings", err)
	}
	if password == "" {
		return apperrors.NewEmailError("password is required", nil)
	}

	m, err := buildMessage(msg)
	if err != nil {
		return apperrors.NewEmailError("failed to build message", err)
	}

	opts := []mail.Option{
		mail.WithPort(msg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(msg.From),
		mail.WithPassword(password),
	}
	if s.timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.timeout))
	}

	client, err := mail.NewClient(msg.Host, opts...)
	if err != nil {
		return apperrors.NewEmailError("failed to create SMTP client", err)
	}

	s.logger.InfoContext(ctx, "Sending email",
		slog.String("host", msg.Host),
		slog.Int("port", msg.Port),
		slog.Int("recipients", len(msg.To)),
		slog.Int("body_bytes", len(msg.Body)))

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.ErrorContext(ctx, "Email delivery failed",
			slog.String("host", msg.Host),
			slog.String("error", err.Error()))
		return apperrors.NewEmailError("failed to send email", err).
			WithContext("host", msg.Host)
	}

	s.logger.InfoContext(ctx, "Email sent", slog.String("host", msg.Host))
	return nil
}

func buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}

// ParseRecipients splits a comma or semicolon separated address list.
func ParseRecipients(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
