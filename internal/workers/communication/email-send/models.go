package emailsend

import (
	"context"
	"time"
)

const (
	ProviderSMTP = "smtp"
	ProviderSES  = "ses"
)

// Message is one outbound email. Attachments are file paths read at send
// time.
type Message struct {
	From        string
	To          string
	Subject     string
	Body        string
	Attachments []string
}

type Receipt struct {
	MessageID string
	Provider  string
	SentAt    time.Time
}

// Sender delivers a message with its attachments or fails as a whole.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Receipt, error)
}
