package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// Configured reports whether credentials are present
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// SMTPSender sends HTML emails
type SMTPSender struct {
	config    SMTPConfig
	templates *Templates
	logger    zerolog.Logger
}

// NewSMTPSender creates an SMTP backed sender
func NewSMTPSender(config SMTPConfig, templates *Templates, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{config: config, templates: templates, logger: logger}
}

// Send renders n and delivers it to the address
func (s *SMTPSender) Send(ctx context.Context, to string, n Notification) error {
	body, err := s.templates.Render(n)
	if err != nil {
		return err
	}

	headers := []string{
		fmt.Sprintf("From: %s <%s>", s.config.FromName, s.config.FromEmail),
		"To: " + to,
		"Subject: PrintQ - " + n.Subject(),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)

	errCh := make(chan error, 1)
	go func() { errCh <- s.deliver(to, msg) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", to, ctx.Err())
	}
}

func (s *SMTPSender) deliver(to string, msg []byte) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	if !s.config.UseTLS {
		if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, msg); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}

// LogSender records notifications in the log instead of sending them
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a sender for environments without SMTP credentials
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification payload
func (s *LogSender) Send(_ context.Context, to string, n Notification) error {
	s.logger.Warn().
		Str("to", to).
		Str("kind", string(n.Kind())).
		Str("subject", n.Subject()).
		Interface("fields", n.Fields()).
		Msg("SMTP credentials not configured - notification logged instead of sent")
	return nil
}

// NewSender picks the SMTP sender when credentials are configured
func NewSender(config SMTPConfig, logger zerolog.Logger) (Sender, error) {
	if !config.Configured() {
		return NewLogSender(logger), nil
	}
	templates, err := ParseTemplates()
	if err != nil {
		return nil, err
	}
	return NewSMTPSender(config, templates, logger), nil
}
