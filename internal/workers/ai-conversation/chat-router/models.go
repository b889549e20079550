// internal/workers/ai-conversation/chat-router/models.go
package chatrouter

import (
	"context"

	"pk-market-chat/internal/models"
)

// Answerer produces a domain answer for a single question.
type Answerer interface {
	Answer(ctx context.Context, question string) models.Reply
}

// SummaryComposer mails the conversation to recipient.
type SummaryComposer interface {
	Compose(ctx context.Context, mode models.Mode, history []models.ChatMessage, recipient string) models.Reply
}

// JobOutput is the variable set a chat-respond job completes with.
type JobOutput struct {
	Response string `json:"response"`
	Status   string `json:"status"`
	Intent   string `json:"intent"`
}
