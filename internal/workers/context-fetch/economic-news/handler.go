// internal/workers/context-fetch/economic-news/handler.go
package economicnews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "pk-market-chat/internal/common/errors"
	httpclient "pk-market-chat/internal/common/http"
	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/common/metrics"
	"pk-market-chat/internal/models"
)

const (
	Source = "news"

	NoNewsText   = "No recent economic news available."
	digestHeader = "Recent Pakistan Economic News:\n"
	errorPrefix  = "Error fetching news: "
)

var (
	ErrMissingAPIKey = errors.New("NEWS_API_KEY_MISSING")
	ErrNewsAPI       = errors.New("NEWS_API_ERROR")
)

// keywords gate the news fetch for economy questions.
var keywords = []string{"latest", "recent", "news", "update"}

// WantsNews reports whether an economy question asks for recent events.
func WantsNews(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

type Handler struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: httpclient.NewClient(config.Timeout),
		logger: logger.ForComponent(log, "economic-news"),
		now:    time.Now,
	}
}

// Fetch returns the recent-news digest. It never fails: any problem is
// folded into a placeholder digest whose Cause records the reason.
func (h *Handler) Fetch(ctx context.Context) models.ContextDigest {
	ctx, span := otel.Tracer("pk-market-chat/economic-news").Start(ctx, "news.fetch")
	defer span.End()

	h.logger.Info("fetching latest Pakistan economic news", nil)

	articles, err := h.fetchArticles(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ContextFetches.WithLabelValues(Source, metrics.StatusDegraded).Inc()

		h.logger.Error("news API error", map[string]interface{}{
			"error": err,
			"code":  string(apperrors.ErrCodeContextFetchDegraded),
		})
		return models.ContextDigest{
			Source: Source,
			Text:   errorPrefix + err.Error(),
			Cause:  apperrors.NewContextFetchDegradedError(Source, err),
		}
	}

	span.SetAttributes(attribute.Int("news.articles", len(articles)))
	metrics.ContextFetches.WithLabelValues(Source, metrics.StatusOK).Inc()

	if len(articles) == 0 {
		h.logger.Warn("no recent economic news found", nil)
		return models.ContextDigest{Source: Source, Text: NoNewsText}
	}

	digest := FormatDigest(articles)
	h.logger.Debug("fetched news", map[string]interface{}{"digest": digest})
	return models.ContextDigest{Source: Source, Text: digest}
}

func (h *Handler) fetchArticles(ctx context.Context) ([]Article, error) {
	if h.config.APIKey == "" {
		return nil, fmt.Errorf("%w: news API key is not configured", ErrMissingAPIKey)
	}

	reqURL, err := h.buildURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", h.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed apiResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if parsed.Status == "error" {
		return nil, fmt.Errorf("%w: %s: %s", ErrNewsAPI, parsed.Code, parsed.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: news API returned %d", ErrNewsAPI, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	return parsed.Articles, nil
}

func (h *Handler) buildURL() (string, error) {
	base, err := url.Parse(h.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid news API URL: %w", err)
	}

	to := h.now()
	from := to.AddDate(0, 0, -h.config.WindowDays)

	params := url.Values{}
	params.Set("q", h.config.Query)
	params.Set("language", h.config.Language)
	params.Set("sortBy", h.config.SortBy)
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))
	params.Set("pageSize", strconv.Itoa(h.config.PageSize))
	base.RawQuery = params.Encode()
	return base.String(), nil
}

// FormatDigest renders articles as the prompt context block.
func FormatDigest(articles []Article) string {
	var b strings.Builder
	b.WriteString(digestHeader)
	for _, a := range articles {
		fmt.Fprintf(&b, "- %s (%s): %s\n",
			orDefault(a.Title, "No title"),
			orDefault(a.PublishedAt, "Unknown date"),
			orDefault(a.Description, "No description"),
		)
	}
	return b.String()
}

func orDefault(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}
