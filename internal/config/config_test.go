package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmsecure/outbreak-sync-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "outbreak-notifications", cfg.KafkaNotifyTopic)
	assert.Equal(t, 90*24*time.Hour, cfg.WAHISWindow)
	assert.True(t, cfg.WAHISRequireCoords)
	assert.Equal(t, 20, cfg.FeedMaxItems)
	assert.Equal(t, 10*time.Second, cfg.SourceTimeout)
	assert.Equal(t, 2, cfg.SourceRetries)
	assert.False(t, cfg.GeocodePrimaryEnabled)
	assert.Equal(t, 1000, cfg.GeocodeCacheSize)
	assert.Equal(t, 200*time.Millisecond, cfg.GeocodeBatchDelay)
	assert.Equal(t, float64(200), cfg.AlertRadiusKm)
	assert.Equal(t, 24*time.Hour, cfg.NotifyWindow)
	assert.Equal(t, 2, cfg.SyncHourUTC)
	assert.Equal(t, time.Sunday, cfg.CleanupWeekday)
	assert.Equal(t, 3, cfg.CleanupHourUTC)
	assert.Equal(t, time.Hour, cfg.HeartbeatInterval)
	assert.Equal(t, 365*24*time.Hour, cfg.RetentionMaxAge)
	assert.Empty(t, cfg.SyncAPIToken)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("DATABASE_URL", "postgres://db:5432/sync")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("KAFKA_NOTIFY_TOPIC", "alerts")
	t.Setenv("WAHIS_WINDOW", "720h")
	t.Setenv("WAHIS_REQUIRE_COORDS", "false")
	t.Setenv("FEED_MAX_ITEMS", "50")
	t.Setenv("GEOCODE_API_KEY", "secret")
	t.Setenv("ALERT_RADIUS_KM", "150")
	t.Setenv("SYNC_HOUR", "5")
	t.Setenv("CLEANUP_WEEKDAY", "6")
	t.Setenv("SYNC_API_TOKEN", "token-123")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "postgres://db:5432/sync", cfg.DatabaseURL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "alerts", cfg.KafkaNotifyTopic)
	assert.Equal(t, 720*time.Hour, cfg.WAHISWindow)
	assert.False(t, cfg.WAHISRequireCoords)
	assert.Equal(t, 50, cfg.FeedMaxItems)
	assert.Equal(t, "secret", cfg.GeocodeAPIKey)
	assert.True(t, cfg.GeocodePrimaryEnabled)
	assert.Equal(t, float64(150), cfg.AlertRadiusKm)
	assert.Equal(t, 5, cfg.SyncHourUTC)
	assert.Equal(t, time.Saturday, cfg.CleanupWeekday)
	assert.Equal(t, "token-123", cfg.SyncAPIToken)
}

func TestLoad_ZeroRetriesDisablesRetry(t *testing.T) {
	t.Setenv("SOURCE_RETRIES", "0")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.SourceRetries)
}

func TestLoad_NegativeRetriesFallsBack(t *testing.T) {
	t.Setenv("SOURCE_RETRIES", "-1")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.SourceRetries)
}

func TestLoad_PrimaryImpliedByKey(t *testing.T) {
	t.Setenv("GEOCODE_API_KEY", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.GeocodePrimaryEnabled)
}

func TestLoad_PrimaryDisabledExplicitly(t *testing.T) {
	t.Setenv("GEOCODE_API_KEY", "secret")
	t.Setenv("GEOCODE_PRIMARY_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.GeocodePrimaryEnabled)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{
			name:    "invalid duration",
			key:     "SOURCE_TIMEOUT",
			value:   "soon",
			wantErr: "invalid SOURCE_TIMEOUT",
		},
		{
			name:    "negative duration",
			key:     "NOTIFY_WINDOW",
			value:   "-1h",
			wantErr: "invalid NOTIFY_WINDOW",
		},
		{
			name:    "primary enabled without key",
			key:     "GEOCODE_PRIMARY_ENABLED",
			value:   "true",
			wantErr: "GEOCODE_API_KEY is not set",
		},
		{
			name:    "sync hour out of range",
			key:     "SYNC_HOUR",
			value:   "24",
			wantErr: "SYNC_HOUR must be between 0 and 23",
		},
		{
			name:    "cleanup weekday out of range",
			key:     "CLEANUP_WEEKDAY",
			value:   "7",
			wantErr: "CLEANUP_WEEKDAY must be between 0 (Sunday) and 6 (Saturday)",
		},
		{
			name:    "alert radius not positive",
			key:     "ALERT_RADIUS_KM",
			value:   "0",
			wantErr: "ALERT_RADIUS_KM must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
