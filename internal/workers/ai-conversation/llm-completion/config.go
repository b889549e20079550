// internal/workers/ai-conversation/llm-completion/config.go
package llmcompletion

import "time"

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	Temperature    float32
	MaxTokens      int
	EmailMaxTokens int
	Timeout        time.Duration
}

// DefaultConfig targets Groq's OpenAI-compatible endpoint.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://api.groq.com/openai/v1",
		Model:          "llama3-70b-8192",
		Temperature:    0.7,
		MaxTokens:      300,
		EmailMaxTokens: 500,
		Timeout:        60 * time.Second,
	}
}
