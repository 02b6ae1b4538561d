// Package news pulls configured local-news feeds, parses them into
// structured items, and surfaces the ones the hazard filter keeps. A
// feed that fails to fetch degrades coverage silently; it never fails
// the adapter as a whole.
package news

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/ospreycove/hazmon/internal/domain"
	"github.com/ospreycove/hazmon/internal/newsfilter"
)

const maxFeedBytes = 1 << 20 // 1 MiB per feed is plenty for headline feeds

// Client implements the news feed adapter over one or more RSS/Atom
// feeds.
type Client struct {
	feeds      []string
	filter     *newsfilter.Filter
	httpClient *http.Client
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewClient creates a news client over the configured feed URLs.
func NewClient(feeds []string, filter *newsfilter.Filter, logger *slog.Logger, clock clockwork.Clock) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Client{
		feeds:      feeds,
		filter:     filter,
		httpClient: &http.Client{},
		logger:     logger,
		clock:      clock,
	}
}

func (c *Client) Source() domain.Source { return domain.SourceNews }

// Check fetches every configured feed, merges the parsed items in feed
// order, and runs the hazard filter. The result is clear iff nothing
// survives filtering. Only the case where every feed fails is surfaced
// on the Error field.
func (c *Client) Check(ctx context.Context, _ domain.Location) domain.CheckResult {
	if len(c.feeds) == 0 {
		return domain.ClearResult(domain.SourceNews)
	}

	var items []domain.FeedItem
	failed := 0
	for _, feedURL := range c.feeds {
		parsed, err := c.fetchFeed(ctx, feedURL)
		if err != nil {
			c.logger.Warn("news feed skipped", "feed", feedURL, "error", err)
			failed++
			continue
		}
		items = append(items, parsed...)
	}

	if failed == len(c.feeds) {
		return domain.FailedResult(domain.SourceNews, fmt.Errorf("all %d feeds failed", failed))
	}

	now := c.clock.Now()
	surviving := c.filter.Apply(items)
	alerts := make([]domain.HazardAlert, 0, len(surviving))
	for _, item := range surviving {
		alerts = append(alerts, domain.HazardAlert{
			Source:   domain.SourceNews,
			Severity: domain.SeverityWarning,
			News: &domain.NewsItem{
				Title:        item.Title,
				SourceDomain: item.Source,
				Link:         item.Link,
				AgeMinutes:   int(now.Sub(item.PublishedAt).Minutes()),
			},
		})
	}
	return domain.ResultFromAlerts(domain.SourceNews, alerts)
}

func (c *Client) fetchFeed(ctx context.Context, feedURL string) ([]domain.FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return parseFeed(data, feedURL)
}
