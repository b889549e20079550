// internal/workers/ai-conversation/llm-completion/handler.go
package llmcompletion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/common/metrics"
)

var (
	ErrMissingAPIKey    = errors.New("LLM_API_KEY_MISSING")
	ErrCompletionFailed = errors.New("LLM_COMPLETION_FAILED")
	ErrNoChoices        = errors.New("no choices in completion response")
)

type Client struct {
	config *Config
	client *openai.Client
	logger logger.Logger
}

// NewClient builds the completion client. A missing key is a startup error.
func NewClient(config *Config, log logger.Logger) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	openaiCfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		openaiCfg.BaseURL = config.BaseURL
	}
	openaiCfg.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &Client{
		config: config,
		client: openai.NewClientWithConfig(openaiCfg),
		logger: logger.ForComponent(log, "llm-completion"),
	}, nil
}

// Complete sends the request and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	ctx, span := otel.Tracer("pk-market-chat/llm-completion").Start(ctx, "llm.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.config.Model),
		attribute.String("llm.purpose", string(req.Purpose)),
	)

	payload := c.buildRequest(req)
	c.logger.Debug("sending completion request", map[string]interface{}{
		"purpose":   req.Purpose,
		"model":     payload.Model,
		"maxTokens": payload.MaxTokens,
		"messages":  payload.Messages,
	})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, payload)
	metrics.LLMCompletionDuration.WithLabelValues(string(req.Purpose)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("completion request failed", map[string]interface{}{
			"purpose": req.Purpose,
			"error":   err,
		})
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	if len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, ErrNoChoices.Error())
		return "", fmt.Errorf("%w: %v", ErrCompletionFailed, ErrNoChoices)
	}

	answer := resp.Choices[0].Message.Content
	c.logger.Debug("completion response", map[string]interface{}{
		"purpose":          req.Purpose,
		"answer":           answer,
		"promptTokens":     resp.Usage.PromptTokens,
		"completionTokens": resp.Usage.CompletionTokens,
	})
	return answer, nil
}

func (c *Client) buildRequest(req Request) openai.ChatCompletionRequest {
	maxTokens := c.config.MaxTokens
	if req.Purpose == PurposeEmail {
		maxTokens = c.config.EmailMaxTokens
	}

	return openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   maxTokens,
		Temperature: c.config.Temperature,
	}
}
