// Package mail dispatches the platform's transactional email: second-factor
// one-time codes, temporary passwords, and user welcome messages.
//
// The SMTP dispatcher is fire-and-forget from the engine's point of view on
// the OTP path; the engine decides per flow whether a dispatch failure is
// fatal. This package never sees password hashes or TOTP seeds — only the
// short-lived plaintexts it is asked to deliver.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/google/uuid"

	"github.com/fixacareer/fixauth"
)

// SMTPConfig configures the SMTP dispatcher. AppURL is embedded in message
// bodies so recipients land on the right deployment.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppURL   string
}

// SMTPMailer delivers messages over a single authenticated SMTP relay.
// Safe for concurrent use; each send opens its own connection.
type SMTPMailer struct {
	config SMTPConfig
	logger *slog.Logger
}

// NewSMTPMailer returns a ready dispatcher.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("smtp host and port are required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp sender address is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPMailer{config: cfg, logger: logger}, nil
}

// SendOTP delivers a one-time login code.
func (m *SMTPMailer) SendOTP(ctx context.Context, admin *fixauth.AdminRecord, code string) error {
	msg := otpMessage(displayName(admin.FirstName, admin.LastName), code)
	return m.send(ctx, admin.Email, msg)
}

// SendTemporaryPassword delivers a generated temporary password.
func (m *SMTPMailer) SendTemporaryPassword(ctx context.Context, admin *fixauth.AdminRecord, password string) error {
	msg := temporaryPasswordMessage(displayName(admin.FirstName, admin.LastName), password, m.config.AppURL)
	return m.send(ctx, admin.Email, msg)
}

// SendWelcome delivers the registration welcome message.
func (m *SMTPMailer) SendWelcome(ctx context.Context, user *fixauth.UserRecord) error {
	msg := welcomeMessage(displayName(user.FirstName, user.LastName), m.config.AppURL)
	return m.send(ctx, user.Email, msg)
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	raw := msg.render(m.config.From, to)
	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, raw); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	m.logger.InfoContext(ctx, "email sent", "to", to, "subject", msg.subject)
	return nil
}

type message struct {
	subject string
	body    string
}

func (msg message) render(from, to string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: FixACareer <%s>\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.subject)
	fmt.Fprintf(&b, "Message-ID: <%s@fixacareer>\r\n", uuid.NewString())
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.body)
	return []byte(b.String())
}

func displayName(first, last string) string {
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return "there"
	}
	return name
}

// LogMailer is a development dispatcher that logs instead of sending.
// Plaintext codes and passwords are never written to the log.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// SendOTP logs the dispatch.
func (m *LogMailer) SendOTP(ctx context.Context, admin *fixauth.AdminRecord, _ string) error {
	m.logger().InfoContext(ctx, "would send otp email", "to", admin.Email)
	return nil
}

// SendTemporaryPassword logs the dispatch.
func (m *LogMailer) SendTemporaryPassword(ctx context.Context, admin *fixauth.AdminRecord, _ string) error {
	m.logger().InfoContext(ctx, "would send temporary password email", "to", admin.Email)
	return nil
}

// SendWelcome logs the dispatch.
func (m *LogMailer) SendWelcome(ctx context.Context, user *fixauth.UserRecord) error {
	m.logger().InfoContext(ctx, "would send welcome email", "to", user.Email)
	return nil
}
