package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

// GoogleClient implements domain.Geocoder using the Google Geocoding API.
type GoogleClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewGoogleClient creates a keyed Google geocoding client.
func NewGoogleClient(apiKey string, timeout time.Duration, logger *slog.Logger) *GoogleClient {
	return &GoogleClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		logger:  logger,
	}
}

// Resolve converts a location name to coordinates. A nil result with a nil
// error means the API returned no matches.
func (c *GoogleClient) Resolve(ctx context.Context, location string) (*domain.GeocodeResult, error) {
	params := url.Values{
		"address": {location},
		"key":     {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geocoding API error: status %d: %s", resp.StatusCode, body)
	}

	var googleResp googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&googleResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(googleResp.Results) == 0 {
		return nil, nil
	}

	r := googleResp.Results[0]
	return &domain.GeocodeResult{
		Lat:              r.Geometry.Location.Lat,
		Lng:              r.Geometry.Location.Lng,
		FormattedAddress: r.FormattedAddress,
		Accuracy:         accuracyFromTypes(r.Types),
	}, nil
}

func accuracyFromTypes(types []string) string {
	for _, t := range types {
		switch t {
		case "street_address", "premise", "point_of_interest":
			return domain.AccuracyExact
		case "locality", "postal_town", "administrative_area_level_2":
			return domain.AccuracyCity
		}
	}
	return domain.AccuracyCountry
}

// Google Geocoding API response types.

type googleResponse struct {
	Results []googleResult `json:"results"`
	Status  string         `json:"status"`
}

type googleResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
}
