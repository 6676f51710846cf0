package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

// OutbreakStore persists canonical outbreak records.
type OutbreakStore struct {
	db *pgxpool.Pool
}

// NewOutbreakStore creates an outbreak store backed by a pgx pool.
func NewOutbreakStore(db *pgxpool.Pool) *OutbreakStore {
	return &OutbreakStore{db: db}
}

// Insert stores a new outbreak row. Stored rows are never updated.
func (s *OutbreakStore) Insert(ctx context.Context, o domain.Outbreak) error {
	query := `
		INSERT INTO outbreaks (
			id, title, disease_type, latitude, longitude,
			severity, event_date, affected_animals, risk_radius_km, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.Exec(
		ctx,
		query,
		o.ID,
		o.Title,
		o.DiseaseType,
		o.Latitude,
		o.Longitude,
		o.Severity,
		o.Date,
		o.AffectedAnimals,
		o.RiskRadiusKm,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbreak: %w", wrapUnavailable(err))
	}
	return nil
}

// TitleFragmentExists reports whether any stored outbreak title contains
// the given fragment. The sync run uses the first part of an incoming
// title as the fragment, so re-fetched reports are recognized as
// duplicates even when a source reorders or re-publishes them.
func (s *OutbreakStore) TitleFragmentExists(ctx context.Context, fragment string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM outbreaks WHERE title LIKE '%' || $1 || '%' ESCAPE '\')`

	var exists bool
	if err := s.db.QueryRow(ctx, query, escapeLike(fragment)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check duplicate title: %w", wrapUnavailable(err))
	}
	return exists, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE metacharacters so the fragment matches literally.
// Titles come straight from upstream headlines and routinely contain "%".
func escapeLike(fragment string) string {
	return likeEscaper.Replace(fragment)
}

// CreatedSince returns outbreaks stored at or after the cutoff, newest first.
func (s *OutbreakStore) CreatedSince(ctx context.Context, cutoff time.Time) ([]domain.Outbreak, error) {
	query := `
		SELECT id, title, disease_type, latitude, longitude,
		       severity, event_date, affected_animals, risk_radius_km, created_at
		FROM outbreaks
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query recent outbreaks: %w", wrapUnavailable(err))
	}
	defer rows.Close()

	return scanOutbreaks(rows)
}

// DeleteOlderThan removes outbreaks whose event date precedes the cutoff
// and returns the number of rows deleted.
func (s *OutbreakStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM outbreaks WHERE event_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old outbreaks: %w", wrapUnavailable(err))
	}
	return tag.RowsAffected(), nil
}

func scanOutbreaks(rows pgx.Rows) ([]domain.Outbreak, error) {
	var outbreaks []domain.Outbreak
	for rows.Next() {
		var o domain.Outbreak
		if err := rows.Scan(
			&o.ID,
			&o.Title,
			&o.DiseaseType,
			&o.Latitude,
			&o.Longitude,
			&o.Severity,
			&o.Date,
			&o.AffectedAnimals,
			&o.RiskRadiusKm,
			&o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbreak row: %w", err)
		}
		outbreaks = append(outbreaks, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbreak rows: %w", wrapUnavailable(err))
	}
	return outbreaks, nil
}
