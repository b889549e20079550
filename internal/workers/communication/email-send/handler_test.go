package emailsend

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pk-market-chat/internal/common/logger"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendRawEmailFunc func(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

func (m *MockSESService) SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
	return m.SendRawEmailFunc(ctx, params, optFns...)
}

// fakeSMTP accepts one plaintext session and records the envelope.
type fakeSMTP struct {
	ln   net.Listener
	mu   sync.Mutex
	from string
	rcpt []string
	data string
	done chan struct{}
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	f := &fakeSMTP{ln: ln, done: make(chan struct{})}
	go f.serve()
	t.Cleanup(func() { ln.Close() })
	return f
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) serve() {
	defer close(f.done)
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	reply := func(s string) { _, _ = io.WriteString(conn, s+"\r\n") }
	reply("220 localhost ESMTP fake")

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)
		upper := strings.ToUpper(cmd)
		switch {
		case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(upper, "MAIL FROM:"):
			f.mu.Lock()
			f.from = strings.Trim(cmd[len("MAIL FROM:"):], "<> ")
			f.mu.Unlock()
			reply("250 OK")
		case strings.HasPrefix(upper, "RCPT TO:"):
			f.mu.Lock()
			f.rcpt = append(f.rcpt, strings.Trim(cmd[len("RCPT TO:"):], "<> "))
			f.mu.Unlock()
			reply("250 OK")
		case upper == "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			f.mu.Lock()
			f.data = b.String()
			f.mu.Unlock()
			reply("250 OK queued")
		case upper == "QUIT":
			reply("221 Bye")
			return
		default:
			reply("250 OK")
		}
	}
}

// ==========================
// Test Helpers
// ==========================

func writeAttachment(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat_summary.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3 fake"), 0o600))
	return path
}

func parseRaw(t *testing.T, raw string) (*mail.Message, map[string]string) {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/mixed", mediaType)

	parts := map[string]string{}
	mr := multipart.NewReader(msg.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(p)
		require.NoError(t, err)
		if strings.EqualFold(p.Header.Get("Content-Transfer-Encoding"), "base64") {
			compact := strings.NewReplacer("\r", "", "\n", "").Replace(string(body))
			body, err = base64.StdEncoding.DecodeString(compact)
			require.NoError(t, err)
		}
		key := p.FileName()
		if key == "" {
			key = "body"
		}
		parts[key] = string(body)
	}
	return msg, parts
}

// ==========================
// SMTP
// ==========================

func TestSMTPSender_Send(t *testing.T) {
	srv := startFakeSMTP(t)

	cfg := DefaultConfig()
	cfg.SMTPHost = "127.0.0.1"
	cfg.SMTPPort = srv.port()
	cfg.UseTLS = false
	cfg.FromEmail = "bot@pkchat.example"
	cfg.Timeout = 2 * time.Second

	attachment := writeAttachment(t)
	receipt, err := NewSMTPSender(cfg, logger.NewTestLogger(t)).Send(context.Background(), &Message{
		To:          "a@b.com",
		Subject:     "Pakistan Stock Market Chat Summary",
		Body:        "Key points from your chat.",
		Attachments: []string{attachment},
	})
	require.NoError(t, err)
	<-srv.done

	assert.Equal(t, ProviderSMTP, receipt.Provider)
	assert.True(t, strings.HasSuffix(receipt.MessageID, "@pkchat.example>"))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Equal(t, "bot@pkchat.example", srv.from)
	assert.Equal(t, []string{"a@b.com"}, srv.rcpt)

	msg, parts := parseRaw(t, srv.data)
	assert.Equal(t, "a@b.com", msg.Header.Get("To"))
	assert.Equal(t, receipt.MessageID, msg.Header.Get("Message-Id"))
	require.Len(t, parts, 2)
	assert.Contains(t, parts, "chat_summary.pdf")
}

func TestSMTPSender_Failures(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedPort := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	tests := []struct {
		name     string
		mutate   func(*Config, *Message)
		contains string
	}{
		{
			name:     "no host",
			mutate:   func(c *Config, m *Message) { c.SMTPHost = "" },
			contains: "smtp host is not configured",
		},
		{
			name:     "bad recipient",
			mutate:   func(c *Config, m *Message) { m.To = "not-an-address" },
			contains: "recipient",
		},
		{
			name:     "missing attachment",
			mutate:   func(c *Config, m *Message) { m.Attachments = []string{"/nonexistent/file.pdf"} },
			contains: "read attachment",
		},
		{
			name:     "connection refused",
			mutate:   func(c *Config, m *Message) {},
			contains: "failed to connect to SMTP server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.SMTPHost = "127.0.0.1"
			cfg.SMTPPort = closedPort
			cfg.UseTLS = false
			cfg.FromEmail = "bot@pkchat.example"
			cfg.Timeout = time.Second

			msg := &Message{To: "a@b.com", Subject: "s", Body: "b"}
			tt.mutate(cfg, msg)

			_, err := NewSMTPSender(cfg, logger.NewNoOpLogger()).Send(context.Background(), msg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

// ==========================
// SES
// ==========================

func TestSESSender_Send(t *testing.T) {
	var captured *ses.SendRawEmailInput
	mockSES := &MockSESService{
		SendRawEmailFunc: func(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
			captured = params
			return &ses.SendRawEmailOutput{MessageId: aws.String("ses-123")}, nil
		},
	}

	cfg := DefaultConfig()
	cfg.Provider = ProviderSES
	cfg.SESRegion = "us-east-1"
	cfg.FromEmail = "bot@pkchat.example"

	receipt, err := NewSESSender(cfg, mockSES, logger.NewTestLogger(t)).Send(context.Background(), &Message{
		To:          "a@b.com",
		Subject:     "Summary",
		Body:        "Body",
		Attachments: []string{writeAttachment(t)},
	})
	require.NoError(t, err)

	assert.Equal(t, "ses-123", receipt.MessageID)
	assert.Equal(t, ProviderSES, receipt.Provider)
	require.NotNil(t, captured)
	assert.Equal(t, "bot@pkchat.example", aws.ToString(captured.Source))
	assert.Equal(t, []string{"a@b.com"}, captured.Destinations)

	_, parts := parseRaw(t, string(captured.RawMessage.Data))
	assert.Equal(t, "Body", parts["body"])
	assert.Equal(t, "%PDF-1.3 fake", parts["chat_summary.pdf"])
}

func TestSESSender_Error(t *testing.T) {
	mockSES := &MockSESService{
		SendRawEmailFunc: func(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
			return nil, errors.New("MessageRejected: Email address is not verified")
		},
	}
	cfg := DefaultConfig()
	cfg.FromEmail = "bot@pkchat.example"

	_, err := NewSESSender(cfg, mockSES, logger.NewNoOpLogger()).Send(context.Background(), &Message{
		To: "a@b.com", Subject: "s", Body: "b",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not verified")
}

// ==========================
// Helpers
// ==========================

func TestExtractAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a@b.com", "a@b.com"},
		{"  a@b.com ", "a@b.com"},
		{"Send to user@example.com", "user@example.com"},
		{"Send to user@example.com.", "user@example.com"},
		{"Ali <ali@example.pk>", "ali@example.pk"},
		{"no address here", "no address here"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAddress(tt.in))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())

	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPUsername = "bot@example.com"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "bot@example.com", cfg.From())

	cfg.Provider = ProviderSES
	assert.Error(t, cfg.Validate())
	cfg.SESRegion = "eu-west-1"
	assert.NoError(t, cfg.Validate())

	cfg.Provider = "fax"
	assert.Error(t, cfg.Validate())
}

func TestBuildMIME_WrapsBase64(t *testing.T) {
	raw, err := buildMIME(&Message{
		From: "a@b.com", To: "c@d.com", Subject: "Ünïcode subject",
		Body: strings.Repeat("long body ", 40),
	}, "<id@b.com>")
	require.NoError(t, err)

	for _, line := range strings.Split(string(raw), "\r\n") {
		assert.LessOrEqual(t, len(line), 998, "line too long: "+strconv.Itoa(len(line)))
	}
	msg, parts := parseRaw(t, string(raw))
	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Ünïcode subject", subject)
	assert.Equal(t, strings.Repeat("long body ", 40), parts["body"])
}
