package wahis

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	c := NewClient(baseURL, 90*24*time.Hour, 5*time.Second, 2, testLogger())
	c.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	return c
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/outbreaks", r.URL.Path)
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2026-04-01", r.URL.Query().Get("endDate"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`[
			{"reportId":"WAHIS-1001","country":"Vietnam","disease":"Highly pathogenic avian influenza","latitude":21.02,"longitude":105.83,"reportDate":"2026-03-15","affectedAnimals":1500},
			{"reportId":"WAHIS-1002","country":"Thailand","disease":"African swine fever","reportDate":"2026-03-20","affectedAnimals":80}
		]`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	records, malformed, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, malformed)
	require.Len(t, records, 2)

	first := records[0].Report
	require.NotNil(t, first)
	assert.Equal(t, "WAHIS-1001", first.ReportID)
	assert.Equal(t, "Vietnam", first.Country)
	require.NotNil(t, first.Latitude)
	assert.Equal(t, 21.02, *first.Latitude)
	require.NotNil(t, first.AffectedAnimals)
	assert.Equal(t, 1500, *first.AffectedAnimals)

	second := records[1].Report
	require.NotNil(t, second)
	assert.Nil(t, second.Latitude)
	assert.Nil(t, second.Longitude)
}

func TestClient_Fetch_DropsMalformedElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"reportId":"WAHIS-1","country":"India","disease":"avian influenza","reportDate":"2026-03-01"},
			{"reportId":"WAHIS-2","latitude":"not-a-number"},
			"just a string"
		]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	records, malformed, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, malformed)
	require.Len(t, records, 1)
	assert.Equal(t, "WAHIS-1", records[0].Report.ReportID)
}

func TestClient_Fetch_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"reportId":"WAHIS-1","country":"India","disease":"avian influenza","reportDate":"2026-03-01"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 90*24*time.Hour, 5*time.Second, 2, testLogger())
	fake := clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	c.SetClock(fake)

	type fetchOut struct {
		n   int
		err error
	}
	done := make(chan fetchOut, 1)
	go func() {
		records, _, err := c.Fetch(context.Background())
		done <- fetchOut{len(records), err}
	}()

	for i := 0; i < 2; i++ {
		require.NoError(t, fake.BlockUntilContext(context.Background(), 1))
		fake.Advance(time.Duration(i+1) * time.Second)
	}

	out := <-done
	require.NoError(t, out.err)
	assert.Equal(t, 1, out.n)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Fetch_ExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 90*24*time.Hour, 5*time.Second, 0, testLogger())
	_, _, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, "wahis", testClient("http://example").Name())
}
