// internal/workers/context-fetch/market-summary/handler.go
package marketsummary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	apperrors "pk-market-chat/internal/common/errors"
	httpclient "pk-market-chat/internal/common/http"
	"pk-market-chat/internal/common/logger"
	"pk-market-chat/internal/common/metrics"
	"pk-market-chat/internal/models"
)

const (
	Source = "psx"

	errorPrefix = "Error fetching PSX market summary: "
	notFound    = "N/A"
	maxMovers   = 3
)

var ErrUpstreamStatus = errors.New("MARKET_PAGE_STATUS")

// MarketSnapshotProvider supplies the stock-mode prompt context. The PSX
// scraper is one implementation; an API-backed provider can replace it.
type MarketSnapshotProvider interface {
	Snapshot(ctx context.Context) models.ContextDigest
}

// Scraper reads the PSX market-summary page. Its CSS selectors are an
// unversioned contract with the site and break silently when it changes.
type Scraper struct {
	config *Config
	client *httpclient.Client
	logger logger.Logger
	now    func() time.Time
}

var _ MarketSnapshotProvider = (*Scraper)(nil)

func NewScraper(config *Config, log logger.Logger) *Scraper {
	return &Scraper{
		config: config,
		client: httpclient.NewClient(config.Timeout, httpclient.WithUserAgent(config.UserAgent)),
		logger: logger.ForComponent(log, "market-summary"),
		now:    time.Now,
	}
}

// Snapshot fetches and renders the page. Network, status and parse
// failures collapse into a single placeholder digest.
func (s *Scraper) Snapshot(ctx context.Context) models.ContextDigest {
	ctx, span := otel.Tracer("pk-market-chat/market-summary").Start(ctx, "psx.scrape")
	defer span.End()

	s.logger.Info("fetching PSX market summary", map[string]interface{}{"url": s.config.URL})

	snap, err := s.scrape(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.ContextFetches.WithLabelValues(Source, metrics.StatusDegraded).Inc()

		s.logger.Error("market summary scraping error", map[string]interface{}{"error": err})
		return models.ContextDigest{
			Source: Source,
			Text:   errorPrefix + err.Error(),
			Cause:  apperrors.NewContextFetchDegradedError(Source, err),
		}
	}

	metrics.ContextFetches.WithLabelValues(Source, metrics.StatusOK).Inc()

	text := Format(snap, s.now())
	s.logger.Debug("fetched market summary", map[string]interface{}{"summary": text})
	return models.ContextDigest{Source: Source, Text: text}
}

func (s *Scraper) scrape(ctx context.Context) (*Snapshot, error) {
	resp, err := s.client.Get(ctx, s.config.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d %s for url: %s",
			ErrUpstreamStatus, resp.StatusCode, http.StatusText(resp.StatusCode), s.config.URL)
	}
	return Parse(resp.Body)
}

// Parse extracts each summary section independently.
func Parse(r io.Reader) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse market page: %w", err)
	}

	snap := &Snapshot{}

	if idx := doc.Find("div.index-data").First(); idx.Length() > 0 {
		snap.Index = &IndexData{
			Value:  spanText(idx, "value"),
			Change: spanText(idx, "change"),
		}
	}

	if to := doc.Find("div.turnover-data").First(); to.Length() > 0 {
		snap.Turnover = &TurnoverData{
			Volume: spanText(to, "volume"),
			Value:  spanText(to, "traded-value"),
		}
	}

	if g := doc.Find("div.top-gainers").First(); g.Length() > 0 {
		snap.HasGainers = true
		snap.Gainers = movers(g)
	}
	if l := doc.Find("div.top-losers").First(); l.Length() > 0 {
		snap.HasLosers = true
		snap.Losers = movers(l)
	}

	return snap, nil
}

func movers(section *goquery.Selection) []Mover {
	var out []Mover
	section.Find("div.stock").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		out = append(out, Mover{
			Name:   spanText(row, "name"),
			Change: spanText(row, "change"),
		})
		return len(out) < maxMovers
	})
	return out
}

func spanText(sel *goquery.Selection, class string) string {
	span := sel.Find("span." + class).First()
	if span.Length() == 0 {
		return notFound
	}
	return strings.TrimSpace(span.Text())
}

// Format renders the snapshot as the prompt context block.
func Format(snap *Snapshot, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PSX Market Summary (%s):\n", date.Format("2006-01-02"))

	if snap.Index != nil {
		fmt.Fprintf(&b, "KSE-100 Index: %s, Change: %s\n", snap.Index.Value, snap.Index.Change)
	} else {
		b.WriteString("KSE-100 Index: Data unavailable\n")
	}

	if snap.Turnover != nil {
		fmt.Fprintf(&b, "Market Turnover: Volume: %s, Value: %s\n", snap.Turnover.Volume, snap.Turnover.Value)
	} else {
		b.WriteString("Market Turnover: Data unavailable\n")
	}

	if !snap.HasGainers && !snap.HasLosers {
		b.WriteString("Top Stocks: Data unavailable\n")
		return b.String()
	}

	b.WriteString("Top Stocks:\n")
	for _, m := range snap.Gainers {
		fmt.Fprintf(&b, "- Gainer: %s, Change: %s\n", m.Name, m.Change)
	}
	for _, m := range snap.Losers {
		fmt.Fprintf(&b, "- Loser: %s, Change: %s\n", m.Name, m.Change)
	}
	return b.String()
}
