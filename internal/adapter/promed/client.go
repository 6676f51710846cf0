package promed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

// Client fetches disease reports from the ProMED-mail RSS feed.
type Client struct {
	feedURL  string
	parser   *gofeed.Parser
	maxItems int
	logger   *slog.Logger
}

// NewClient creates a ProMED feed client capped at maxItems newest entries.
func NewClient(feedURL string, timeout time.Duration, maxItems int, logger *slog.Logger) *Client {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}

	return &Client{
		feedURL:  feedURL,
		parser:   parser,
		maxItems: maxItems,
		logger:   logger,
	}
}

// Name identifies this source in run results and metrics labels.
func (c *Client) Name() string {
	return "promed"
}

// Fetch parses the RSS feed and returns the newest entries as raw records.
// Items without a title are dropped and counted as malformed.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawRecord, int, error) {
	feed, err := c.parser.ParseURLWithContext(c.feedURL, ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Items
	if len(items) > c.maxItems {
		items = items[:c.maxItems]
	}

	records := make([]domain.RawRecord, 0, len(items))
	malformed := 0
	for _, item := range items {
		if item.Title == "" {
			malformed++
			c.logger.Warn("dropping untitled feed item", "source", c.Name(), "link", item.Link)
			continue
		}

		fi := domain.RawFeedItem{
			Title:   item.Title,
			Link:    item.Link,
			Content: item.Description,
		}
		if item.PublishedParsed != nil {
			fi.Published = *item.PublishedParsed
		}
		records = append(records, domain.RawRecord{FeedItem: &fi})
	}

	return records, malformed, nil
}
