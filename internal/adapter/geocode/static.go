package geocode

import (
	"context"
	"strings"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

// countryCentroids maps country names to approximate centroid coordinates
// for the regions most frequently named in animal disease reports.
var countryCentroids = map[string]coordinates{
	"india":        {20.5937, 78.9629},
	"china":        {35.8617, 104.1954},
	"usa":          {37.0902, -95.7129},
	"uk":           {55.3781, -3.4360},
	"germany":      {51.1657, 10.4515},
	"france":       {46.2276, 2.2137},
	"italy":        {41.8719, 12.5674},
	"spain":        {40.4637, -3.7492},
	"brazil":       {-14.2350, -51.9253},
	"australia":    {-25.2744, 133.7751},
	"japan":        {36.2048, 138.2529},
	"south korea":  {35.9078, 127.7669},
	"vietnam":      {14.0583, 108.2772},
	"thailand":     {15.8700, 100.9925},
	"indonesia":    {-0.7893, 113.9213},
	"philippines":  {12.8797, 121.7740},
	"bangladesh":   {23.6850, 90.3563},
	"pakistan":     {30.3753, 69.3451},
	"nigeria":      {9.0820, 8.6753},
	"south africa": {-30.5595, 22.9375},
	"egypt":        {26.8206, 30.8025},
	"kenya":        {-0.0236, 37.9062},
	"mexico":       {23.6345, -102.5528},
	"canada":       {56.1304, -106.3468},
	"russia":       {61.5240, 105.3188},
}

type coordinates struct {
	lat float64
	lng float64
}

// StaticResolver implements domain.Geocoder from a fixed country centroid
// table. It is the offline last resort when no live provider can answer.
type StaticResolver struct{}

// NewStaticResolver creates a table-backed geocoder.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{}
}

// Resolve looks the location up in the centroid table, first by exact name
// and then by substring in either direction, so "Punjab, India" still maps
// to the India centroid.
func (r *StaticResolver) Resolve(_ context.Context, location string) (*domain.GeocodeResult, error) {
	query := strings.ToLower(strings.TrimSpace(location))
	if query == "" {
		return nil, nil
	}

	if c, ok := countryCentroids[query]; ok {
		return staticResult(query, c), nil
	}

	for name, c := range countryCentroids {
		if strings.Contains(query, name) || strings.Contains(name, query) {
			return staticResult(name, c), nil
		}
	}

	return nil, nil
}

func staticResult(name string, c coordinates) *domain.GeocodeResult {
	return &domain.GeocodeResult{
		Lat:              c.lat,
		Lng:              c.lng,
		FormattedAddress: name,
		Accuracy:         domain.AccuracyCountry,
	}
}
