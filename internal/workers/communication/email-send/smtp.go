package emailsend

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"pk-market-chat/internal/common/logger"
)

// SMTPSender delivers over SMTP, upgrading with STARTTLS when UseTLS is set.
type SMTPSender struct {
	config *Config
	logger logger.Logger
}

func NewSMTPSender(config *Config, log logger.Logger) *SMTPSender {
	return &SMTPSender{
		config: config,
		logger: logger.ForComponent(log, "email-send"),
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) (*Receipt, error) {
	if msg.From == "" {
		msg.From = s.config.From()
	}
	if s.config.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is not configured")
	}
	if err := validateMessage(msg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before sending email: %w", err)
	}

	messageID := newMessageID(msg.From)
	raw, err := buildMIME(msg, messageID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("sending email", map[string]interface{}{
		"to":          msg.To,
		"subject":     msg.Subject,
		"attachments": len(msg.Attachments),
		"provider":    ProviderSMTP,
	})

	addr := net.JoinHostPort(s.config.SMTPHost, strconv.Itoa(s.config.SMTPPort))

	var auth smtp.Auth
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.deliver(ctx, addr, auth, msg.From, []string{msg.To}, raw); err != nil {
		return nil, err
	}

	s.logger.Info("email sent", map[string]interface{}{
		"to":        msg.To,
		"messageId": messageID,
	})
	return &Receipt{MessageID: messageID, Provider: ProviderSMTP, SentAt: time.Now().UTC()}, nil
}

func (s *SMTPSender) deliver(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: s.config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if s.config.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.config.Timeout))
	}

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if s.config.UseTLS {
		tlsConfig := &tls.Config{ServerName: s.config.SMTPHost}
		if err = client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
