package geocode

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
	"github.com/farmsecure/outbreak-sync-service/internal/observability"
)

// Resolver chains geocoding providers: the keyed primary API when
// configured, then Nominatim, then the static country table. The first
// provider to return a result wins; provider errors demote to the next
// link rather than failing the lookup.
type Resolver struct {
	primary    domain.Geocoder // nil when no API key is configured
	nominatim  domain.Geocoder
	static     domain.Geocoder
	batchDelay time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewResolver builds the provider chain. Pass a nil primary to start the
// chain at Nominatim.
func NewResolver(primary, nominatim, static domain.Geocoder, batchDelay time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Resolver {
	return &Resolver{
		primary:    primary,
		nominatim:  nominatim,
		static:     static,
		batchDelay: batchDelay,
		clock:      clockwork.NewRealClock(),
		metrics:    metrics,
		logger:     logger,
	}
}

// SetClock swaps the time source used for batch pacing. Tests inject a fake
// clock to advance through delays instantly.
func (r *Resolver) SetClock(c clockwork.Clock) {
	r.clock = c
}

// Resolve walks the full chain for an outbreak location. Returns (nil, nil)
// when every provider comes up empty.
func (r *Resolver) Resolve(ctx context.Context, location string) (*domain.GeocodeResult, error) {
	if r.primary != nil {
		if result := r.tryProvider(ctx, "primary", r.primary, location); result != nil {
			return result, nil
		}
	}
	if result := r.tryProvider(ctx, "nominatim", r.nominatim, location); result != nil {
		return result, nil
	}
	if result := r.tryProvider(ctx, "static", r.static, location); result != nil {
		return result, nil
	}
	return nil, nil
}

// ResolveFarmLocation resolves a farm address. When the primary provider
// answers with less than exact accuracy it retries with a " farm" suffix,
// which steers the API toward agricultural premises. Farm lookups never
// fall back to the static table since a country centroid is useless for
// proximity alerting.
func (r *Resolver) ResolveFarmLocation(ctx context.Context, location string) (*domain.GeocodeResult, error) {
	if r.primary != nil {
		result := r.tryProvider(ctx, "primary", r.primary, location)
		if result != nil && result.Accuracy == domain.AccuracyExact {
			return result, nil
		}
		if retry := r.tryProvider(ctx, "primary", r.primary, location+" farm"); retry != nil {
			return retry, nil
		}
		if result != nil {
			return result, nil
		}
	}
	if result := r.tryProvider(ctx, "nominatim", r.nominatim, location); result != nil {
		return result, nil
	}
	return nil, nil
}

// ResolveBatch resolves locations sequentially with a pacing delay between
// requests to stay under provider rate limits. Results are positional; an
// unresolved location yields a nil entry.
func (r *Resolver) ResolveBatch(ctx context.Context, locations []string) ([]*domain.GeocodeResult, error) {
	results := make([]*domain.GeocodeResult, len(locations))
	for i, loc := range locations {
		if i > 0 && r.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-r.clock.After(r.batchDelay):
			}
		}
		result, err := r.Resolve(ctx, loc)
		if err != nil {
			return results, err
		}
		results[i] = result
	}
	return results, nil
}

func (r *Resolver) tryProvider(ctx context.Context, name string, g domain.Geocoder, location string) *domain.GeocodeResult {
	start := time.Now()
	result, err := g.Resolve(ctx, location)
	r.metrics.GeocodeAPIDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		r.metrics.GeocodeRequests.WithLabelValues(name, "error").Inc()
		r.logger.Warn("geocode provider failed", "provider", name, "location", location, "error", err)
		return nil
	case result == nil:
		r.metrics.GeocodeRequests.WithLabelValues(name, "empty").Inc()
		return nil
	default:
		r.metrics.GeocodeRequests.WithLabelValues(name, "success").Inc()
		return result
	}
}
