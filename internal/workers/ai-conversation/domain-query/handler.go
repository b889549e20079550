// internal/workers/ai-conversation/domain-query/handler.go
package domainquery

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "pk-market-chat/internal/common/errors"
	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/common/metrics"
	"pk-market-chat/internal/models"
	economicnews "pk-market-chat/internal/workers/context-fetch/economic-news"
	marketsummary "pk-market-chat/internal/workers/context-fetch/market-summary"
	llmcompletion "pk-market-chat/internal/workers/ai-conversation/llm-completion"
)

// Completer is the chat-completion capability the handlers need.
type Completer interface {
	Complete(ctx context.Context, req llmcompletion.Request) (string, error)
}

// NewsFetcher supplies the economy news digest.
type NewsFetcher interface {
	Fetch(ctx context.Context) models.ContextDigest
}

// StockHandler answers PSX questions. The market snapshot is fetched for
// every question.
type StockHandler struct {
	market    marketsummary.MarketSnapshotProvider
	completer Completer
	logger    logger.Logger
}

func NewStockHandler(market marketsummary.MarketSnapshotProvider, completer Completer, log logger.Logger) *StockHandler {
	return &StockHandler{
		market:    market,
		completer: completer,
		logger:    logger.ForComponent(log, "stock-query"),
	}
}

func (h *StockHandler) Answer(ctx context.Context, question string) models.Reply {
	ctx, span := otel.Tracer("pk-market-chat/domain-query").Start(ctx, "stock.answer")
	defer span.End()

	digest := h.market.Snapshot(ctx)
	system := stockSystemPrompt + "\nPSX Market Summary: " + digest.Text

	return answer(ctx, h.completer, h.logger, "market summary", system, question, digest)
}

// EconomyHandler answers macroeconomy questions, pulling headlines only
// when the question asks for recent events.
type EconomyHandler struct {
	news      NewsFetcher
	completer Completer
	logger    logger.Logger
}

func NewEconomyHandler(news NewsFetcher, completer Completer, log logger.Logger) *EconomyHandler {
	return &EconomyHandler{
		news:      news,
		completer: completer,
		logger:    logger.ForComponent(log, "economy-query"),
	}
}

func (h *EconomyHandler) Answer(ctx context.Context, question string) models.Reply {
	ctx, span := otel.Tracer("pk-market-chat/domain-query").Start(ctx, "economy.answer")
	defer span.End()

	var digest models.ContextDigest
	if economicnews.WantsNews(question) {
		digest = h.news.Fetch(ctx)
	} else {
		metrics.ContextFetches.WithLabelValues(economicnews.Source, metrics.StatusSkipped).Inc()
	}
	span.SetAttributes(attribute.Bool("news.fetched", digest.Source != ""))

	system := economySystemPrompt + "\nNews Context: " + digest.Text

	return answer(ctx, h.completer, h.logger, "economy", system, question, digest)
}

func answer(
	ctx context.Context,
	completer Completer,
	log logger.Logger,
	domain, system, question string,
	digest models.ContextDigest,
) models.Reply {
	text, err := completer.Complete(ctx, llmcompletion.Request{
		Purpose: llmcompletion.PurposeQA,
		System:  system,
		User:    question,
	})
	if err != nil {
		log.Error("domain query failed", map[string]interface{}{
			"domain": domain,
			"error":  err,
		})
		return models.Fatal(
			"Error processing "+domain+" query: "+err.Error(),
			apperrors.NewLLMCompletionFailedError(err),
		)
	}

	if digest.Degraded() {
		log.Warn("answered with degraded context", map[string]interface{}{
			"domain": domain,
			"source": digest.Source,
			"cause":  digest.Cause,
		})
		return models.Degraded(text, digest.Cause)
	}
	return models.OK(text)
}
