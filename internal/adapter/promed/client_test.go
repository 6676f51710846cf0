package promed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rssFeed(items ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>ProMED</title>`)
	for _, item := range items {
		b.WriteString(item)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func rssItem(title, link, pubDate string) string {
	return fmt.Sprintf(`<item><title>%s</title><link>%s</link><pubDate>%s</pubDate><description>case report</description></item>`, title, link, pubDate)
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, err := w.Write([]byte(body))
		require.NoError(t, err)
	}))
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := serveFeed(t, rssFeed(
		rssItem("Avian influenza (21): Vietnam (Hanoi) poultry", "https://promedmail.org/1", "Mon, 16 Mar 2026 08:00:00 GMT"),
		rssItem("African swine fever - Thailand: (Chiang Mai)", "https://promedmail.org/2", "Sun, 15 Mar 2026 08:00:00 GMT"),
	))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 20, testLogger())
	records, malformed, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, malformed)
	require.Len(t, records, 2)

	first := records[0].FeedItem
	require.NotNil(t, first)
	assert.Equal(t, "Avian influenza (21): Vietnam (Hanoi) poultry", first.Title)
	assert.Equal(t, "https://promedmail.org/1", first.Link)
	assert.Equal(t, "case report", first.Content)
	assert.Equal(t, time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC), first.Published.UTC())
}

func TestClient_Fetch_CapsAtMaxItems(t *testing.T) {
	items := make([]string, 30)
	for i := range items {
		items[i] = rssItem(fmt.Sprintf("Outbreak report %d", i), fmt.Sprintf("https://promedmail.org/%d", i), "Mon, 16 Mar 2026 08:00:00 GMT")
	}
	srv := serveFeed(t, rssFeed(items...))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 20, testLogger())
	records, _, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 20)
	assert.Equal(t, "Outbreak report 0", records[0].FeedItem.Title)
}

func TestClient_Fetch_DropsUntitledItems(t *testing.T) {
	srv := serveFeed(t, rssFeed(
		`<item><link>https://promedmail.org/1</link></item>`,
		rssItem("Newcastle disease - India", "https://promedmail.org/2", "Mon, 16 Mar 2026 08:00:00 GMT"),
	))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 20, testLogger())
	records, malformed, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, malformed)
	require.Len(t, records, 1)
	assert.Equal(t, "Newcastle disease - India", records[0].FeedItem.Title)
}

func TestClient_Fetch_FeedUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 20, testLogger())
	_, _, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse feed")
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, "promed", NewClient("http://example", time.Second, 20, testLogger()).Name())
}
