package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/farmsecure/outbreak-sync-service/internal/domain"
)

// FarmStore reads and seeds registered farms.
type FarmStore struct {
	db *pgxpool.Pool
}

// NewFarmStore creates a farm store backed by a pgx pool.
func NewFarmStore(db *pgxpool.Pool) *FarmStore {
	return &FarmStore{db: db}
}

// ListAlertable returns farms with notifications enabled. Farms without
// coordinates are included; the proximity computation skips them.
func (s *FarmStore) ListAlertable(ctx context.Context) ([]domain.Farm, error) {
	query := `
		SELECT id, owner_id, name, latitude, longitude, notifications_enabled
		FROM farms
		WHERE notifications_enabled
		ORDER BY name
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query alertable farms: %w", wrapUnavailable(err))
	}
	defer rows.Close()

	var farms []domain.Farm
	for rows.Next() {
		var f domain.Farm
		if err := rows.Scan(
			&f.ID,
			&f.OwnerID,
			&f.Name,
			&f.Latitude,
			&f.Longitude,
			&f.NotificationsEnabled,
		); err != nil {
			return nil, fmt.Errorf("scan farm row: %w", err)
		}
		farms = append(farms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate farm rows: %w", wrapUnavailable(err))
	}
	return farms, nil
}

// Upsert stores a farm, updating it in place when the ID already exists.
// Used by the seed tool.
func (s *FarmStore) Upsert(ctx context.Context, f domain.Farm) error {
	query := `
		INSERT INTO farms (id, owner_id, name, latitude, longitude, notifications_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = $2,
			name = $3,
			latitude = $4,
			longitude = $5,
			notifications_enabled = $6
	`

	_, err := s.db.Exec(ctx, query, f.ID, f.OwnerID, f.Name, f.Latitude, f.Longitude, f.NotificationsEnabled)
	if err != nil {
		return fmt.Errorf("upsert farm: %w", wrapUnavailable(err))
	}
	return nil
}
