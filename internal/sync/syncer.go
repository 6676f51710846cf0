// Package sync orchestrates outbreak synchronization: fetching from the
// registered sources, normalizing and geocoding records, deduplicating
// against the canonical store, and emitting proximity notifications.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/farmsecure/outbreak-sync-service/internal/adapter/storage"
	"github.com/farmsecure/outbreak-sync-service/internal/domain"
	"github.com/farmsecure/outbreak-sync-service/internal/observability"
)

// ErrUnknownSource is returned by SyncSource for a source name that is not
// registered.
var ErrUnknownSource = errors.New("unknown source")

// RunResult summarizes one sync run. It is the JSON body of the manual
// trigger response.
type RunResult struct {
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

func (r *RunResult) add(other RunResult) {
	r.Synced += other.Synced
	r.Skipped += other.Skipped
	r.Errors += other.Errors
}

// Source fetches raw outbreak records from an upstream provider. Fetch
// returns the records alongside a count of malformed entries it dropped.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawRecord, int, error)
}

// OutbreakStore is the canonical store surface the syncer needs.
type OutbreakStore interface {
	Insert(ctx context.Context, o domain.Outbreak) error
	TitleFragmentExists(ctx context.Context, fragment string) (bool, error)
	CreatedSince(ctx context.Context, cutoff time.Time) ([]domain.Outbreak, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// FarmStore lists farms eligible for proximity alerting.
type FarmStore interface {
	ListAlertable(ctx context.Context) ([]domain.Farm, error)
}

// Notifier hands notification requests to the downstream delivery pipeline.
type Notifier interface {
	Publish(ctx context.Context, requests []domain.NotificationRequest) error
}

// Options carries the tunables a Syncer needs beyond its collaborators.
type Options struct {
	RequireCoords bool // skip polling-API records without coordinates
	AlertRadiusKm float64
	NotifyWindow  time.Duration
	RetentionAge  time.Duration
}

// Syncer runs the fetch-normalize-geocode-store cycle. Runs are serialized:
// a manual trigger overlapping the scheduled run waits for it to finish.
type Syncer struct {
	sources   []Source
	outbreaks OutbreakStore
	farms     FarmStore
	notifier  Notifier
	geocoder  domain.Geocoder
	opts      Options
	clock     clockwork.Clock
	metrics   *observability.Metrics
	logger    *slog.Logger

	mu    sync.Mutex
	ready atomic.Bool
}

// NewSyncer wires a syncer from its collaborators.
func NewSyncer(sources []Source, outbreaks OutbreakStore, farms FarmStore, notifier Notifier, geocoder domain.Geocoder, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Syncer {
	s := &Syncer{
		sources:   sources,
		outbreaks: outbreaks,
		farms:     farms,
		notifier:  notifier,
		geocoder:  geocoder,
		opts:      opts,
		clock:     clockwork.NewRealClock(),
		metrics:   metrics,
		logger:    logger,
	}
	s.ready.Store(true)
	return s
}

// SetClock swaps the time source. Tests inject a fake clock so stored
// timestamps and the notification window are deterministic.
func (s *Syncer) SetClock(c clockwork.Clock) {
	s.clock = c
}

// Ready reports whether the last storage interaction succeeded.
func (s *Syncer) Ready() bool {
	return s.ready.Load()
}

// SyncAll runs every registered source in order and, when at least one new
// outbreak was stored, computes and emits proximity notifications.
func (s *Syncer) SyncAll(ctx context.Context) (RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total RunResult
	for _, src := range s.sources {
		result, err := s.runSource(ctx, src)
		total.add(result)
		if err != nil {
			return total, err
		}
	}

	if total.Synced > 0 {
		if _, err := s.notify(ctx); err != nil {
			return total, fmt.Errorf("emit notifications: %w", err)
		}
	}

	return total, nil
}

// SyncSource runs a single source by name. Manual triggers use this; they
// never emit notifications, which stay tied to the scheduled full run.
func (s *Syncer) SyncSource(ctx context.Context, name string) (RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, src := range s.sources {
		if src.Name() == name {
			return s.runSource(ctx, src)
		}
	}
	return RunResult{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// Cleanup deletes outbreaks whose event date is older than the retention
// age and returns the number of rows removed.
func (s *Syncer) Cleanup(ctx context.Context) (int64, error) {
	cutoff := s.clock.Now().UTC().Add(-s.opts.RetentionAge)
	deleted, err := s.outbreaks.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.noteStorageErr(err)
		return 0, err
	}
	s.ready.Store(true)
	s.metrics.OutbreaksDeleted.Add(float64(deleted))
	s.logger.Info("retention cleanup finished", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}

func (s *Syncer) runSource(ctx context.Context, src Source) (RunResult, error) {
	name := src.Name()
	s.metrics.SyncRunning.Set(1)
	defer s.metrics.SyncRunning.Set(0)

	start := s.clock.Now()
	result, err := s.ingest(ctx, src)
	s.metrics.SyncDuration.WithLabelValues(name).Observe(s.clock.Since(start).Seconds())

	s.metrics.RecordsSynced.WithLabelValues(name).Add(float64(result.Synced))
	s.metrics.RecordsSkipped.WithLabelValues(name).Add(float64(result.Skipped))
	s.metrics.RecordErrors.WithLabelValues(name).Add(float64(result.Errors))

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.SyncRuns.WithLabelValues(name, outcome).Inc()

	s.logger.Info("sync run finished",
		"source", name,
		"outcome", outcome,
		"synced", result.Synced,
		"skipped", result.Skipped,
		"errors", result.Errors,
	)
	if err != nil && !errors.Is(err, storage.ErrUnavailable) {
		// An unreachable source yields zero records, not a failed run.
		s.logger.Error("source sync failed", "source", name, "error", err)
		return result, nil
	}
	return result, err
}

func (s *Syncer) ingest(ctx context.Context, src Source) (RunResult, error) {
	var result RunResult

	records, malformed, err := src.Fetch(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch from %s: %w", src.Name(), err)
	}
	result.Errors += malformed

	for _, raw := range records {
		outcome, err := s.ingestRecord(ctx, raw)
		switch {
		case errors.Is(err, storage.ErrUnavailable):
			// Infrastructure failure; the rest of the batch would fail too.
			s.noteStorageErr(err)
			result.Errors++
			return result, err
		case err != nil:
			s.logger.Warn("record rejected", "source", src.Name(), "error", err)
			result.Errors++
		case outcome == outcomeSkipped:
			result.Skipped++
		default:
			result.Synced++
		}
	}

	s.ready.Store(true)
	return result, nil
}

type recordOutcome int

const (
	outcomeSynced recordOutcome = iota
	outcomeSkipped
)

func (s *Syncer) ingestRecord(ctx context.Context, raw domain.RawRecord) (recordOutcome, error) {
	candidate, err := domain.Normalize(raw)
	if err != nil {
		return 0, err
	}

	lat, lng, outcome, err := s.resolveCoordinates(ctx, raw, candidate)
	if err != nil || outcome == outcomeSkipped {
		return outcome, err
	}

	if !domain.ValidCoordinates(lat, lng) {
		return 0, fmt.Errorf("record %q: coordinates out of bounds (%f, %f)", candidate.Title, lat, lng)
	}

	exists, err := s.outbreaks.TitleFragmentExists(ctx, domain.DedupeTitlePrefix(candidate.Title))
	if err != nil {
		return 0, err
	}
	if exists {
		return outcomeSkipped, nil
	}

	o := candidate.Outbreak(uuid.NewString(), lat, lng, s.clock.Now().UTC())
	if err := s.outbreaks.Insert(ctx, o); err != nil {
		return 0, err
	}
	return outcomeSynced, nil
}

// resolveCoordinates returns usable coordinates for a candidate: the ones
// the source supplied, or the geocoded location text. Unresolvable
// locations are skips, not errors.
func (s *Syncer) resolveCoordinates(ctx context.Context, raw domain.RawRecord, candidate domain.NormalizedRecord) (float64, float64, recordOutcome, error) {
	if candidate.Latitude != nil && candidate.Longitude != nil {
		return *candidate.Latitude, *candidate.Longitude, outcomeSynced, nil
	}

	if raw.FromPollingAPI() && s.opts.RequireCoords {
		s.logger.Debug("skipping report without coordinates", "title", candidate.Title)
		return 0, 0, outcomeSkipped, nil
	}

	resolved, err := s.geocoder.Resolve(ctx, candidate.LocationText)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("geocode %q: %w", candidate.LocationText, err)
	}
	if resolved == nil {
		s.logger.Debug("skipping unresolvable location", "location", candidate.LocationText, "title", candidate.Title)
		return 0, 0, outcomeSkipped, nil
	}
	return resolved.Lat, resolved.Lng, outcomeSynced, nil
}

// notify loads the recent outbreak window and alertable farms, computes
// proximity pairs, and publishes one request per affected farm.
func (s *Syncer) notify(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().UTC().Add(-s.opts.NotifyWindow)
	outbreaks, err := s.outbreaks.CreatedSince(ctx, cutoff)
	if err != nil {
		s.noteStorageErr(err)
		return 0, err
	}
	if len(outbreaks) == 0 {
		return 0, nil
	}

	farms, err := s.farms.ListAlertable(ctx)
	if err != nil {
		s.noteStorageErr(err)
		return 0, err
	}

	requests := domain.ComputeProximityAlerts(farms, outbreaks, s.opts.AlertRadiusKm)
	if len(requests) == 0 {
		return 0, nil
	}

	if err := s.notifier.Publish(ctx, requests); err != nil {
		return 0, err
	}
	s.logger.Info("notifications emitted", "farms", len(requests), "outbreaks", len(outbreaks))
	return len(requests), nil
}

func (s *Syncer) noteStorageErr(err error) {
	if errors.Is(err, storage.ErrUnavailable) {
		s.ready.Store(false)
	}
}
