package wahis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

const dateLayout = "2006-01-02"

// Client fetches outbreak reports from the WAHIS public API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	window     time.Duration
	retries    int
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates a WAHIS API client. The window controls how far back
// the report query reaches from the current time.
func NewClient(baseURL string, window, timeout time.Duration, retries int, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		window:  window,
		retries: retries,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
	}
}

// SetClock swaps the time source used for the query window and retry
// backoff. Tests inject a fake clock.
func (c *Client) SetClock(clk clockwork.Clock) {
	c.clock = clk
}

// Name identifies this source in run results and metrics labels.
func (c *Client) Name() string {
	return "wahis"
}

// Fetch queries recent outbreak reports. Elements that fail to decode are
// dropped and counted as malformed rather than failing the whole batch.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawRecord, int, error) {
	now := c.clock.Now().UTC()
	params := url.Values{
		"startDate": {now.Add(-c.window).Format(dateLayout)},
		"endDate":   {now.Format(dateLayout)},
	}
	fullURL := c.baseURL + "/outbreaks?" + params.Encode()

	body, err := c.getWithRetry(ctx, fullURL)
	if err != nil {
		return nil, 0, err
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	records := make([]domain.RawRecord, 0, len(elements))
	malformed := 0
	for _, el := range elements {
		var report domain.RawOutbreakReport
		if err := json.Unmarshal(el, &report); err != nil {
			malformed++
			c.logger.Warn("dropping malformed report", "source", c.Name(), "error", err)
			continue
		}
		records = append(records, domain.RawRecord{Report: &report})
	}

	return records, malformed, nil
}

func (c *Client) getWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-c.clock.After(backoff):
			}
			c.logger.Info("retrying report fetch", "source", c.Name(), "attempt", attempt)
		}

		body, err := c.get(ctx, fullURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("fetch reports after %d attempts: %w", c.retries+1, lastErr)
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("WAHIS API error: status %d: %s", resp.StatusCode, body)
	}

	return io.ReadAll(resp.Body)
}
