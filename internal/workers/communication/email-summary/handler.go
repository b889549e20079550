// internal/workers/communication/email-summary/handler.go
package emailsummary

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "pk-market-chat/internal/common/errors"
	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/common/metrics"
	"pk-market-chat/internal/models"
	llmcompletion "pk-market-chat/internal/workers/ai-conversation/llm-completion"
	emailsend "pk-market-chat/internal/workers/communication/email-send"
	summarynotify "pk-market-chat/internal/workers/communication/summary-notify"
)

const (
	fallbackFilename = "chat_summary.pdf"
	failurePrefix    = "Error processing request: "
)

type Completer interface {
	Complete(ctx context.Context, req llmcompletion.Request) (string, error)
}

type PDFRenderer interface {
	Render(history []models.ChatMessage, path string) error
}

// Notifier is told about every delivered summary. It is optional.
type Notifier interface {
	Notify(ctx context.Context, evt summarynotify.Event) error
}

// Composer turns a conversation into an emailed PDF summary. Each step must
// succeed before the next runs; nothing is retried.
type Composer struct {
	config    *Config
	completer Completer
	renderer  PDFRenderer
	sender    emailsend.Sender
	notifier  Notifier
	logger    logger.Logger
}

func NewComposer(
	config *Config,
	completer Completer,
	renderer PDFRenderer,
	sender emailsend.Sender,
	notifier Notifier,
	log logger.Logger,
) *Composer {
	return &Composer{
		config:    config,
		completer: completer,
		renderer:  renderer,
		sender:    sender,
		notifier:  notifier,
		logger:    logger.ForComponent(log, "email-summary"),
	}
}

// Compose runs the summary workflow for recipient.
func (c *Composer) Compose(ctx context.Context, mode models.Mode, history []models.ChatMessage, recipient string) models.Reply {
	ctx, span := otel.Tracer("pk-market-chat/email-summary").Start(ctx, "email.compose")
	defer span.End()

	to := emailsend.ExtractAddress(recipient)
	span.SetAttributes(attribute.String("chat.mode", string(mode)), attribute.Int("chat.history", len(history)))
	c.logger.Info("generating email summary", map[string]interface{}{"recipient": to, "mode": mode})

	summary, err := c.generate(ctx, mode, history)
	if err != nil {
		return c.fail(span, apperrors.NewEmailContentFailedError(err))
	}

	pdfPath := filepath.Join(c.config.AttachmentsDir, SafeFilename(summary.PDFFilename))
	c.logger.Info("generating PDF", map[string]interface{}{"path": pdfPath})
	if err := c.renderer.Render(history, pdfPath); err != nil {
		return c.fail(span, apperrors.NewPDFGenerationFailedError(err))
	}

	receipt, err := c.sender.Send(ctx, &emailsend.Message{
		To:          to,
		Subject:     summary.Subject,
		Body:        summary.Body,
		Attachments: []string{pdfPath},
	})
	if err != nil {
		return c.fail(span, apperrors.NewEmailSendFailedError(err))
	}

	metrics.EmailSummaries.WithLabelValues(metrics.StatusOK).Inc()
	c.logger.Info("email sent", map[string]interface{}{"recipient": to, "messageId": receipt.MessageID})

	if c.notifier != nil {
		evt := summarynotify.Event{
			Recipient:   to,
			Mode:        string(mode),
			Subject:     summary.Subject,
			PDFFilename: filepath.Base(pdfPath),
			MessageID:   receipt.MessageID,
			Provider:    receipt.Provider,
			SentAt:      receipt.SentAt,
		}
		if err := c.notifier.Notify(ctx, evt); err != nil {
			c.logger.Warn("dispatch notification failed", map[string]interface{}{"error": err})
		}
	}

	return models.OK(fmt.Sprintf("Summary sent to %s.", to))
}

func (c *Composer) generate(ctx context.Context, mode models.Mode, history []models.ChatMessage) (*models.EmailSummary, error) {
	if history == nil {
		history = []models.ChatMessage{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}

	content, err := c.completer.Complete(ctx, llmcompletion.Request{
		Purpose: llmcompletion.PurposeEmail,
		System:  composeSystemPrompt,
		User:    fmt.Sprintf("Mode: %s\nChat History: %s", mode, historyJSON),
	})
	if err != nil {
		return nil, err
	}

	summary, err := ParseSummary(content)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("email data generated", map[string]interface{}{
		"subject":     summary.Subject,
		"pdfFilename": summary.PDFFilename,
	})
	return summary, nil
}

func (c *Composer) fail(span trace.Span, stdErr *apperrors.StandardError) models.Reply {
	span.RecordError(stdErr)
	span.SetStatus(codes.Error, stdErr.Message)
	metrics.EmailSummaries.WithLabelValues(metrics.StatusFatal).Inc()

	c.logger.Error(stdErr.Message, map[string]interface{}{
		"errorCode": string(stdErr.Code),
		"error":     stdErr.Details,
	})
	return models.Fatal(failurePrefix+UserMessage(stdErr), stdErr)
}

// UserMessage renders a composer failure the way it is shown to users,
// e.g. "Failed to generate email content: <cause>".
func UserMessage(stdErr *apperrors.StandardError) string {
	if stdErr.Details == "" {
		return stdErr.Message
	}
	return stdErr.Message + ": " + stdErr.Details
}

// ParseSummary decodes the model output. The content must be a bare JSON
// object carrying the three string fields; nothing is repaired.
func ParseSummary(content string) (*models.EmailSummary, error) {
	if err := summarySchema.Check([]byte(content)); err != nil {
		return nil, err
	}
	var summary models.EmailSummary
	if err := json.Unmarshal([]byte(content), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SafeFilename keeps only the base name so the model cannot write outside
// the attachments directory.
func SafeFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	base := filepath.Base(name)
	switch base {
	case "", ".", "..", "/":
		return fallbackFilename
	}
	return base
}
