// internal/workers/ai-conversation/chat-router/handler.go
package chatrouter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "pk-market-chat/internal/common/errors"
	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/common/metrics"
	"pk-market-chat/internal/models"
	parseuserintent "pk-market-chat/internal/workers/ai-conversation/parse-user-intent"
)

// EmailPrompt asks the user for a recipient before a summary can be sent.
const EmailPrompt = "Please provide your email address to receive the summary. For example, reply with: 'Send to user@example.com'."

var ErrInvalidMode = errors.New("INVALID_MODE")

// RequestRecorder receives one observation per routed request.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, mode, status string, duration time.Duration)
}

type Router struct {
	stock    Answerer
	economy  Answerer
	composer SummaryComposer
	recorder RequestRecorder
	logger   logger.Logger
}

func NewRouter(stock, economy Answerer, composer SummaryComposer, recorder RequestRecorder, log logger.Logger) *Router {
	return &Router{
		stock:    stock,
		economy:  economy,
		composer: composer,
		recorder: recorder,
		logger:   logger.ForComponent(log, "chat-router"),
	}
}

// Route answers one chat turn. The only error it returns is an invalid
// mode, which is rejected before any outbound call; every other failure is
// carried in the reply.
func (r *Router) Route(ctx context.Context, req *models.ChatRequest) (models.Reply, error) {
	start := time.Now()
	ctx, span := otel.Tracer("pk-market-chat/chat-router").Start(ctx, "chat.route")
	defer span.End()

	r.logger.Debug("received chat request", map[string]interface{}{
		"message":      req.Message,
		"mode":         req.Mode,
		"historyLen":   len(req.ChatHistory),
		"hasUserEmail": req.UserEmail != nil,
	})

	if !req.Mode.Valid() {
		r.logger.Error("invalid mode", map[string]interface{}{"mode": req.Mode})
		metrics.ChatRequests.WithLabelValues(string(req.Mode), "none", "rejected").Inc()
		return models.Reply{}, fmt.Errorf("%w: %w", ErrInvalidMode, apperrors.NewInvalidModeError(string(req.Mode)))
	}

	analysis := parseuserintent.Classify(req.Message, req.Mode)
	span.SetAttributes(
		attribute.String("chat.mode", string(req.Mode)),
		attribute.String("chat.intent", string(analysis.Intent)),
	)

	reply := r.dispatch(ctx, req, analysis)

	metrics.ChatRequests.WithLabelValues(string(req.Mode), string(analysis.Intent), string(reply.Status)).Inc()
	if r.recorder != nil {
		r.recorder.RecordRequest(ctx, string(req.Mode), string(reply.Status), time.Since(start))
	}
	if reply.Status == models.ReplyFatal {
		r.logger.Error("chat turn failed", map[string]interface{}{
			"intent": analysis.Intent,
			"error":  reply.Cause,
		})
	}
	return reply, nil
}

func (r *Router) dispatch(ctx context.Context, req *models.ChatRequest, analysis parseuserintent.Analysis) models.Reply {
	switch analysis.Intent {
	case parseuserintent.IntentEmailSummary:
		email := req.Email()
		r.logger.Info("email request detected", map[string]interface{}{"keyword": analysis.MatchedKeyword})
		if !parseuserintent.HasUsableEmail(email) {
			r.logger.Info("requesting user email", nil)
			return models.OK(EmailPrompt)
		}
		return r.composer.Compose(ctx, req.Mode, req.ChatHistory, email)
	case parseuserintent.IntentEconomyQuery:
		return r.economy.Answer(ctx, req.Message)
	default:
		return r.stock.Answer(ctx, req.Message)
	}
}
