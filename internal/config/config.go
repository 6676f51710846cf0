package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatabaseURL string

	KafkaBrokers     []string
	KafkaNotifyTopic string

	// Source adapter configuration.
	WAHISBaseURL       string
	WAHISWindow        time.Duration
	WAHISRequireCoords bool
	PromedFeedURL      string
	FeedMaxItems       int
	SourceTimeout      time.Duration
	SourceRetries      int

	// Geocoding chain configuration.
	GeocodeAPIKey         string
	GeocodePrimaryEnabled bool
	GeocodeTimeout        time.Duration
	GeocodeCacheSize      int
	GeocodeBatchDelay     time.Duration

	// Proximity alerting.
	AlertRadiusKm float64
	NotifyWindow  time.Duration

	// Scheduling.
	SyncHourUTC       int
	CleanupWeekday    time.Weekday
	CleanupHourUTC    int
	HeartbeatInterval time.Duration
	RetentionMaxAge   time.Duration

	// Manual trigger authentication. Empty disables the endpoint.
	SyncAPIToken string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	wahisWindow, err := envDuration("WAHIS_WINDOW", 90*24*time.Hour)
	if err != nil {
		return nil, err
	}
	sourceTimeout, err := envDuration("SOURCE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := envDuration("GEOCODE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	batchDelay, err := envDuration("GEOCODE_BATCH_DELAY", 200*time.Millisecond)
	if err != nil {
		return nil, err
	}
	notifyWindow, err := envDuration("NOTIFY_WINDOW", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	heartbeat, err := envDuration("HEARTBEAT_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	retention, err := envDuration("RETENTION_MAX_AGE", 365*24*time.Hour)
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv("GEOCODE_API_KEY")
	primaryEnabled := apiKey != ""
	if v := os.Getenv("GEOCODE_PRIMARY_ENABLED"); v != "" {
		primaryEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL: envOrDefault("DATABASE_URL", "postgres://localhost:5432/outbreaks?sslmode=disable"),

		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaNotifyTopic: envOrDefault("KAFKA_NOTIFY_TOPIC", "outbreak-notifications"),

		WAHISBaseURL:       envOrDefault("WAHIS_BASE_URL", "https://wahis.woah.org/pi/api"),
		WAHISWindow:        wahisWindow,
		WAHISRequireCoords: envOrDefault("WAHIS_REQUIRE_COORDS", "true") == "true",
		PromedFeedURL:      envOrDefault("PROMED_FEED_URL", "https://promedmail.org/ajax/runSearch.php?feed=animal&format=rss"),
		FeedMaxItems:       envPositiveInt("FEED_MAX_ITEMS", 20),
		SourceTimeout:      sourceTimeout,
		SourceRetries:      envNonNegativeInt("SOURCE_RETRIES", 2),

		GeocodeAPIKey:         apiKey,
		GeocodePrimaryEnabled: primaryEnabled,
		GeocodeTimeout:        geocodeTimeout,
		GeocodeCacheSize:      envPositiveInt("GEOCODE_CACHE_SIZE", 1000),
		GeocodeBatchDelay:     batchDelay,

		AlertRadiusKm: envFloat("ALERT_RADIUS_KM", 200),
		NotifyWindow:  notifyWindow,

		SyncHourUTC:       envInt("SYNC_HOUR", 2),
		CleanupWeekday:    time.Weekday(envInt("CLEANUP_WEEKDAY", int(time.Sunday))),
		CleanupHourUTC:    envInt("CLEANUP_HOUR", 3),
		HeartbeatInterval: heartbeat,
		RetentionMaxAge:   retention,

		SyncAPIToken: os.Getenv("SYNC_API_TOKEN"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaNotifyTopic == "" {
		return nil, errors.New("KAFKA_NOTIFY_TOPIC is required")
	}
	if cfg.GeocodePrimaryEnabled && cfg.GeocodeAPIKey == "" {
		return nil, errors.New("GEOCODE_PRIMARY_ENABLED is true but GEOCODE_API_KEY is not set")
	}
	if cfg.SyncHourUTC < 0 || cfg.SyncHourUTC > 23 {
		return nil, errors.New("SYNC_HOUR must be between 0 and 23")
	}
	if cfg.CleanupHourUTC < 0 || cfg.CleanupHourUTC > 23 {
		return nil, errors.New("CLEANUP_HOUR must be between 0 and 23")
	}
	if cfg.CleanupWeekday < time.Sunday || cfg.CleanupWeekday > time.Saturday {
		return nil, errors.New("CLEANUP_WEEKDAY must be between 0 (Sunday) and 6 (Saturday)")
	}
	if cfg.AlertRadiusKm <= 0 {
		return nil, errors.New("ALERT_RADIUS_KM must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}

func envPositiveInt(key string, def int) int {
	if n := envInt(key, def); n > 0 {
		return n
	}
	return def
}

// envNonNegativeInt allows zero, so settings like retry counts can be
// switched off outright.
func envNonNegativeInt(key string, def int) int {
	if n := envInt(key, def); n >= 0 {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return def
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
