package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/farmsecure/outbreak-sync-service/internal/adapter/geocode"
	"github.com/farmsecure/outbreak-sync-service/internal/adapter/httpapi"
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
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := storage.Migrate(ctx, pool); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	// Geocoding chain: keyed primary (when configured) -> Nominatim ->
	// static country table, fronted by an LRU cache.
	var primary domain.Geocoder
	if cfg.GeocodePrimaryEnabled {
		primary = geocode.NewGoogleClient(cfg.GeocodeAPIKey, cfg.GeocodeTimeout, logger)
		metrics.GeocodePrimary.Set(1)
		logger.Info("primary geocoder enabled", "timeout", cfg.GeocodeTimeout)
	} else {
		logger.Info("primary geocoder disabled, using fallback providers only")
	}
	nominatim := geocode.NewNominatimClient(cfg.GeocodeTimeout, logger)
	resolver := geocode.NewResolver(primary, nominatim, geocode.NewStaticResolver(), cfg.GeocodeBatchDelay, metrics, logger)
	cached := geocode.NewCachedGeocoder(resolver, cfg.GeocodeCacheSize, metrics)

	sources := []syncer.Source{
		wahis.NewClient(cfg.WAHISBaseURL, cfg.WAHISWindow, cfg.SourceTimeout, cfg.SourceRetries, logger),
		promed.NewClient(cfg.PromedFeedURL, cfg.SourceTimeout, cfg.FeedMaxItems, logger),
	}

	writer := notify.NewWriter(cfg, metrics, logger)

	s := syncer.NewSyncer(
		sources,
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

	scheduler := syncer.NewScheduler(s, syncer.Schedule{
		SyncHour:          cfg.SyncHourUTC,
		CleanupWeekday:    cfg.CleanupWeekday,
		CleanupHour:       cfg.CleanupHourUTC,
		HeartbeatInterval: cfg.HeartbeatInterval,
	}, logger)

	srv := httpapi.NewServer(cfg.HTTPAddr, s, cfg.SyncAPIToken, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go scheduler.Run(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
