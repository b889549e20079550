package emailsummary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "pk-market-chat/internal/common/errors"
	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/models"
	llmcompletion "pk-market-chat/internal/workers/ai-conversation/llm-completion"
	emailsend "pk-market-chat/internal/workers/communication/email-send"
	summarynotify "pk-market-chat/internal/workers/communication/summary-notify"
)

// ==========================
// Mocks
// ==========================

type MockCompleter struct{ mock.Mock }

func (m *MockCompleter) Complete(ctx context.Context, req llmcompletion.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockRenderer struct{ mock.Mock }

func (m *MockRenderer) Render(history []models.ChatMessage, path string) error {
	return m.Called(history, path).Error(0)
}

type MockSender struct{ mock.Mock }

func (m *MockSender) Send(ctx context.Context, msg *emailsend.Message) (*emailsend.Receipt, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*emailsend.Receipt), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, evt summarynotify.Event) error {
	return m.Called(ctx, evt).Error(0)
}

// ==========================
// Helpers
// ==========================

const validSummary = `{"subject":"Pakistan Stock Market Chat Summary","body":"Here are the key points.","pdf_filename":"chat_summary_2025.pdf"}`

var history = []models.ChatMessage{
	{Role: "user", Content: "How is the KSE-100?"},
	{Role: "assistant", Content: "Up 1.2%."},
}

type fixture struct {
	completer *MockCompleter
	renderer  *MockRenderer
	sender    *MockSender
	notifier  *MockNotifier
	composer  *Composer
	dir       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		completer: &MockCompleter{},
		renderer:  &MockRenderer{},
		sender:    &MockSender{},
		notifier:  &MockNotifier{},
		dir:       filepath.Join(t.TempDir(), "temp_attachments"),
	}
	f.composer = NewComposer(&Config{AttachmentsDir: f.dir}, f.completer, f.renderer, f.sender, f.notifier, logger.NewTestLogger(t))
	return f
}

// ==========================
// Tests
// ==========================

func TestCompose_Success(t *testing.T) {
	f := newFixture(t)
	wantPath := filepath.Join(f.dir, "chat_summary_2025.pdf")

	f.completer.On("Complete", mock.Anything, mock.MatchedBy(func(req llmcompletion.Request) bool {
		return req.Purpose == llmcompletion.PurposeEmail &&
			strings.Contains(req.System, "JSON object with fields: subject, body, pdf_filename") &&
			req.User == `Mode: stock`+"\n"+`Chat History: [{"role":"user","content":"How is the KSE-100?"},{"role":"assistant","content":"Up 1.2%."}]`
	})).Return(validSummary, nil).Once()
	f.renderer.On("Render", history, wantPath).Return(nil).Once()
	f.sender.On("Send", mock.Anything, &emailsend.Message{
		To:          "a@b.com",
		Subject:     "Pakistan Stock Market Chat Summary",
		Body:        "Here are the key points.",
		Attachments: []string{wantPath},
	}).Return(&emailsend.Receipt{MessageID: "m-1", Provider: "smtp", SentAt: time.Now()}, nil).Once()
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(evt summarynotify.Event) bool {
		return evt.Recipient == "a@b.com" && evt.PDFFilename == "chat_summary_2025.pdf" && evt.MessageID == "m-1"
	})).Return(nil).Once()

	reply := f.composer.Compose(context.Background(), models.ModeStock, history, "a@b.com")

	assert.Equal(t, models.OK("Summary sent to a@b.com."), reply)
	f.completer.AssertExpectations(t)
	f.renderer.AssertExpectations(t)
	f.sender.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCompose_ExtractsAddressFromText(t *testing.T) {
	f := newFixture(t)
	f.completer.On("Complete", mock.Anything, mock.Anything).Return(validSummary, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(nil)
	f.sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *emailsend.Message) bool {
		return msg.To == "user@example.com"
	})).Return(&emailsend.Receipt{MessageID: "m"}, nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	reply := f.composer.Compose(context.Background(), models.ModeEconomy, history, "Send to user@example.com")

	assert.Equal(t, "Summary sent to user@example.com.", reply.Text)
}

func TestCompose_ContentFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
	}{
		{name: "transport error", err: errors.New("LLM_COMPLETION_FAILED: 503 Service Unavailable")},
		{name: "prose instead of JSON", content: "Sure! Here is your summary: subject..."},
		{name: "code fenced JSON", content: "```json\n" + validSummary + "\n```"},
		{name: "missing field", content: `{"subject":"s","body":"b"}`},
		{name: "wrong type", content: `{"subject":"s","body":"b","pdf_filename":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.completer.On("Complete", mock.Anything, mock.Anything).Return(tt.content, tt.err).Once()

			reply := f.composer.Compose(context.Background(), models.ModeStock, history, "a@b.com")

			assert.Equal(t, models.ReplyFatal, reply.Status)
			assert.True(t, strings.HasPrefix(reply.Text, "Error processing request: Failed to generate email content"), reply.Text)
			assert.Equal(t, apperrors.ErrCodeEmailContentFailed, apperrors.CodeOf(reply.Cause))
			f.renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
			f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
			f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
		})
	}
}

func TestCompose_PDFFailure(t *testing.T) {
	f := newFixture(t)
	f.completer.On("Complete", mock.Anything, mock.Anything).Return(validSummary, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	reply := f.composer.Compose(context.Background(), models.ModeStock, history, "a@b.com")

	assert.Equal(t, models.ReplyFatal, reply.Status)
	assert.Equal(t, "Error processing request: PDF generation failed: disk full", reply.Text)
	assert.Equal(t, apperrors.ErrCodePDFGenerationFailed, apperrors.CodeOf(reply.Cause))
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestCompose_SendFailure(t *testing.T) {
	f := newFixture(t)
	f.completer.On("Complete", mock.Anything, mock.Anything).Return(validSummary, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(nil)
	f.sender.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("535 authentication failed"))

	reply := f.composer.Compose(context.Background(), models.ModeStock, history, "a@b.com")

	assert.Equal(t, models.ReplyFatal, reply.Status)
	assert.Equal(t, "Error processing request: Email sending failed: 535 authentication failed", reply.Text)
	assert.Equal(t, apperrors.ErrCodeEmailSendFailed, apperrors.CodeOf(reply.Cause))
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCompose_NotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.completer.On("Complete", mock.Anything, mock.Anything).Return(validSummary, nil)
	f.renderer.On("Render", mock.Anything, mock.Anything).Return(nil)
	f.sender.On("Send", mock.Anything, mock.Anything).Return(&emailsend.Receipt{MessageID: "m"}, nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("sns down"))

	reply := f.composer.Compose(context.Background(), models.ModeStock, history, "a@b.com")

	assert.Equal(t, models.ReplyOK, reply.Status)
}

func TestCompose_NilNotifier(t *testing.T) {
	completer := &MockCompleter{}
	completer.On("Complete", mock.Anything, mock.Anything).Return(validSummary, nil)
	renderer := &MockRenderer{}
	renderer.On("Render", mock.Anything, mock.Anything).Return(nil)
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(&emailsend.Receipt{}, nil)

	c := NewComposer(DefaultConfig(), completer, renderer, sender, nil, logger.NewNoOpLogger())
	reply := c.Compose(context.Background(), models.ModeStock, nil, "a@b.com")

	assert.Equal(t, models.ReplyOK, reply.Status)
}

func TestCompose_EmptyHistoryIsJSONArray(t *testing.T) {
	f := newFixture(t)
	f.completer.On("Complete", mock.Anything, mock.MatchedBy(func(req llmcompletion.Request) bool {
		return req.User == "Mode: economy\nChat History: []"
	})).Return("", errors.New("stop here")).Once()

	f.composer.Compose(context.Background(), models.ModeEconomy, nil, "a@b.com")

	f.completer.AssertExpectations(t)
}

func TestParseSummary(t *testing.T) {
	s, err := ParseSummary(`{"subject":"S","body":"B","pdf_filename":"f.pdf","extra":true}`)
	require.NoError(t, err)
	assert.Equal(t, &models.EmailSummary{Subject: "S", Body: "B", PDFFilename: "f.pdf"}, s)
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"chat_summary_2025.pdf", "chat_summary_2025.pdf"},
		{"../../etc/passwd", "passwd"},
		{"/tmp/x.pdf", "x.pdf"},
		{`..\..\windows\x.pdf`, "x.pdf"},
		{"", "chat_summary.pdf"},
		{"  ", "chat_summary.pdf"},
		{".", "chat_summary.pdf"},
		{"..", "chat_summary.pdf"},
		{"/", "chat_summary.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFilename(tt.in))
		})
	}
}

func TestCompose_WritesUnderAttachmentsDir(t *testing.T) {
	f := newFixture(t)
	f.completer.On("Complete", mock.Anything, mock.Anything).
		Return(`{"subject":"s","body":"b","pdf_filename":"../../escape.pdf"}`, nil)
	f.renderer.On("Render", mock.Anything, filepath.Join(f.dir, "escape.pdf")).Return(nil).Once()
	f.sender.On("Send", mock.Anything, mock.Anything).Return(&emailsend.Receipt{}, nil)
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	f.composer.Compose(context.Background(), models.ModeStock, history, "a@b.com")

	f.renderer.AssertExpectations(t)
	_, err := os.Stat(filepath.Join(filepath.Dir(f.dir), "escape.pdf"))
	assert.True(t, os.IsNotExist(err))
}
