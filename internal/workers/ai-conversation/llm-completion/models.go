// internal/workers/ai-conversation/llm-completion/models.go
package llmcompletion

// Purpose labels a completion for metrics and token budgeting.
type Purpose string

const (
	PurposeQA    Purpose = "qa"
	PurposeEmail Purpose = "email"
)

// Request is one system message plus one user message.
type Request struct {
	Purpose Purpose
	System  string
	User    string
}
