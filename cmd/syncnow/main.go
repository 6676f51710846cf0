// Command syncnow runs a single sync cycle from the command line and prints
// the run result as JSON. It shares the service configuration, so a .env
// file pointing at the same database and providers is enough.
//
// Usage:
//
//	go run ./cmd/syncnow            # all sources, with notifications
//	go run ./cmd/syncnow -source wahis
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/farmsecure/outbreak-sync-service/internal/adapter/geocode"
	"github.com/farmsecure/outbreak-sync-service/internal/adapter/notify"
	"github.com/farmsecure/outbreak-sync-service/internal/adapter/promed"
	"github.com/farmsecure/outbreak-sync-service/internal/adapter/storage"
	"github.com/farmsecure/outbreak-sync-service/internal/adapter/wahis"
	"github.com/farmsecure/outbreak-sync-service/internal/config"
	"github.com/farmsecure/outbreak-sync-service/internal/domain"
	"github.com/farmsecure/outbreak-sync-service/internal/observability"
	syncer "github.com/farmsecure/outbreak-sync-service/internal/sync"
)

func main() {
	if err := run(); err != nil {
		slog.Error("sync failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	source := flag.String("source", "", "sync a single source (wahis or promed); empty runs all")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	ctx := context.Background()

	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := storage.Migrate(ctx, pool); err != nil {
		return err
	}

	var primary domain.Geocoder
	if cfg.GeocodePrimaryEnabled {
		primary = geocode.NewGoogleClient(cfg.GeocodeAPIKey, cfg.GeocodeTimeout, logger)
	}
	nominatim := geocode.NewNominatimClient(cfg.GeocodeTimeout, logger)
	resolver := geocode.NewResolver(primary, nominatim, geocode.NewStaticResolver(), cfg.GeocodeBatchDelay, metrics, logger)
	cached := geocode.NewCachedGeocoder(resolver, cfg.GeocodeCacheSize, metrics)

	writer := notify.NewWriter(cfg, metrics, logger)
	defer writer.Close()

	s := syncer.NewSyncer(
		[]syncer.Source{
			wahis.NewClient(cfg.WAHISBaseURL, cfg.WAHISWindow, cfg.SourceTimeout, cfg.SourceRetries, logger),
			promed.NewClient(cfg.PromedFeedURL, cfg.SourceTimeout, cfg.FeedMaxItems, logger),
		},
		storage.NewOutbreakStore(pool),
		storage.NewFarmStore(pool),
		writer,
		cached,
		syncer.Options{
			RequireCoords: cfg.WAHISRequireCoords,
			AlertRadiusKm: cfg.AlertRadiusKm,
			NotifyWindow:  cfg.NotifyWindow,
			RetentionAge:  cfg.RetentionMaxAge,
		},
		metrics,
		logger,
	)

	var result syncer.RunResult
	if *source != "" {
		result, err = s.SyncSource(ctx, *source)
	} else {
		result, err = s.SyncAll(ctx)
	}
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(result)
}
