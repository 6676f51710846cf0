package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the sync service.
type Metrics struct {
	RecordsSynced  *prometheus.CounterVec // labels: source={wahis,promed}
	RecordsSkipped *prometheus.CounterVec // labels: source={wahis,promed}
	RecordErrors   *prometheus.CounterVec // labels: source={wahis,promed}
	SyncRuns       *prometheus.CounterVec // labels: source, outcome={success,error}
	SyncRunning    prometheus.Gauge
	SyncDuration   *prometheus.HistogramVec // labels: source

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider={primary,nominatim,static}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: provider
	GeocodePrimary     prometheus.Gauge

	// Alerting and retention metrics.
	NotificationsEmitted prometheus.Counter
	OutbreaksDeleted     prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_sync",
			Name:      "records_synced_total",
			Help:      "Total outbreak records stored, by source.",
		}, []string{"source"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_sync",
			Name:      "records_skipped_total",
			Help:      "Total records skipped as duplicates or unresolvable, by source.",
		}, []string{"source"}),
		RecordErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_sync",
			Name:      "record_errors_total",
			Help:      "Total per-record failures during a sync run, by source.",
		}, []string{"source"}),
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_sync",
			Name:      "sync_runs_total",
			Help:      "Completed sync runs by source and outcome.",
		}, []string{"source", "outcome"}),
		SyncRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outbreak_sync",
			Name:      "sync_running",
			Help:      "1 while a sync run is in progress, 0 otherwise.",
		}),
		SyncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "outbreak_sync",
			Name:      "sync_duration_seconds",
			Help:      "Duration of a complete fetch-normalize-store cycle per source.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"source"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_sync",
			Name:      "geocode_requests_total",
			Help:      "Geocoding requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_sync",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "outbreak_sync",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding provider request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		GeocodePrimary: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outbreak_sync",
			Name:      "geocode_primary_enabled",
			Help:      "1 when the keyed primary geocoder is configured, 0 otherwise.",
		}),
		NotificationsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outbreak_sync",
			Name:      "notifications_emitted_total",
			Help:      "Total proximity notification requests published.",
		}),
		OutbreaksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outbreak_sync",
			Name:      "outbreaks_deleted_total",
			Help:      "Total outbreak rows removed by retention cleanup.",
		}),
	}

	prometheus.MustRegister(
		m.RecordsSynced,
		m.RecordsSkipped,
		m.RecordErrors,
		m.SyncRuns,
		m.SyncRunning,
		m.SyncDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodePrimary,
		m.NotificationsEmitted,
		m.OutbreaksDeleted,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsSynced:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "outbreak_sync", Name: "records_synced_total"}, []string{"source"}),
		RecordsSkipped:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "outbreak_sync", Name: "records_skipped_total"}, []string{"source"}),
		RecordErrors:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "outbreak_sync", Name: "record_errors_total"}, []string{"source"}),
		SyncRuns:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "outbreak_sync", Name: "sync_runs_total"}, []string{"source", "outcome"}),
		SyncRunning:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "outbreak_sync", Name: "sync_running"}),
		SyncDuration:         prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "outbreak_sync", Name: "sync_duration_seconds"}, []string{"source"}),
		GeocodeRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "outbreak_sync", Name: "geocode_requests_total"}, []string{"provider", "outcome"}),
		GeocodeCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "outbreak_sync", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "outbreak_sync", Name: "geocode_api_duration_seconds"}, []string{"provider"}),
		GeocodePrimary:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "outbreak_sync", Name: "geocode_primary_enabled"}),
		NotificationsEmitted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "outbreak_sync", Name: "notifications_emitted_total"}),
		OutbreaksDeleted:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "outbreak_sync", Name: "outbreaks_deleted_total"}),
	}
}
