package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

const nominatimUserAgent = "outbreak-sync-service/1.0"

// NominatimClient implements domain.Geocoder using the OpenStreetMap
// Nominatim search API. It needs no API key but requires a User-Agent.
type NominatimClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewNominatimClient creates a Nominatim geocoding client.
func NewNominatimClient(timeout time.Duration, logger *slog.Logger) *NominatimClient {
	return &NominatimClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://nominatim.openstreetmap.org/search",
		logger:  logger,
	}
}

// Resolve converts a location name to coordinates. A nil result with a nil
// error means the search returned no matches.
func (c *NominatimClient) Resolve(ctx context.Context, location string) (*domain.GeocodeResult, error) {
	params := url.Values{
		"q":      {location},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(places) == 0 {
		return nil, nil
	}

	p := places[0]
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", p.Lon, err)
	}

	return &domain.GeocodeResult{
		Lat:              lat,
		Lng:              lng,
		FormattedAddress: p.DisplayName,
		Accuracy:         domain.AccuracyCity,
	}, nil
}

// Nominatim returns coordinates as JSON strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
