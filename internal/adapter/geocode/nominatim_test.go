package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

func testNominatimClient(baseURL string) *NominatimClient {
	return &NominatimClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     testLogger(),
	}
}

func TestNominatimClient_Resolve_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Hanoi, Vietnam", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, nominatimUserAgent, r.Header.Get("User-Agent"))

		w.Header().Set(headerContentType, contentTypeJSON)
		_, err := w.Write([]byte(`[{"lat":"21.0278","lon":"105.8342","display_name":"Hanoi, Vietnam"}]`))
		require.NoError(t, err)
	}))
	defer srv.Close()

	c := testNominatimClient(srv.URL)
	result, err := c.Resolve(context.Background(), "Hanoi, Vietnam")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 21.0278, result.Lat)
	assert.Equal(t, 105.8342, result.Lng)
	assert.Equal(t, "Hanoi, Vietnam", result.FormattedAddress)
	assert.Equal(t, domain.AccuracyCity, result.Accuracy)
}

func TestNominatimClient_Resolve_EmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testNominatimClient(srv.URL)
	result, err := c.Resolve(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestNominatimClient_Resolve_BadCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`[{"lat":"not-a-number","lon":"105.8342","display_name":"x"}]`))
	}))
	defer srv.Close()

	c := testNominatimClient(srv.URL)
	_, err := c.Resolve(context.Background(), "Hanoi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse latitude")
}
