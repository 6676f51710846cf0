package domain

import "context"

// Geocode accuracy levels, coarsest last.
const (
	AccuracyExact   = "exact"
	AccuracyCity    = "city"
	AccuracyCountry = "country"
)

// GeocodeResult contains coordinates resolved from a free-text location.
type GeocodeResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	Accuracy         string // exact, city, or country
}

// Geocoder resolves free-text locations into coordinates. Resolve returns
// (nil, nil) when the location cannot be resolved by any provider; callers
// treat that as an expected skip, not an error.
type Geocoder interface {
	Resolve(ctx context.Context, location string) (*GeocodeResult, error)
}
