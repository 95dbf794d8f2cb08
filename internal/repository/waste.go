package repository

import (
	"context"
	"fmt"

	"recycle-backend/internal/models"
)

// WasteRepository handles waste types, collections and recycling centers
type WasteRepository struct {
	db DB
}

// NewWasteRepository creates a new waste repository
func NewWasteRepository(db DB) *WasteRepository {
	return &WasteRepository{db: db}
}

// ListWasteTypes returns all waste types ordered by name
func (r *WasteRepository) ListWasteTypes(ctx context.Context) ([]*models.WasteType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, reward_points FROM waste_types ORDER BY name`)
	if err != nil {
		return nil, wrapError(err, "list waste types", "waste type")
	}
	defer rows.Close()

	types := make([]*models.WasteType, 0)
	for rows.Next() {
		var wt models.WasteType
		if err := rows.Scan(&wt.ID, &wt.Name, &wt.RewardPoints); err != nil {
			return nil, fmt.Errorf("failed to scan waste type: %w", err)
		}
		types = append(types, &wt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate waste types: %w", err)
	}
	return types, nil
}

// GetWasteTypeByName retrieves a waste type by its case-insensitive name
func (r *WasteRepository) GetWasteTypeByName(ctx context.Context, name string) (*models.WasteType, error) {
	query := `SELECT id, name, reward_points FROM waste_types WHERE LOWER(name) = LOWER($1)`
	var wt models.WasteType
	if err := r.db.QueryRow(ctx, query, name).Scan(&wt.ID, &wt.Name, &wt.RewardPoints); err != nil {
		return nil, wrapError(err, "get waste type", fmt.Sprintf("waste type %q", name))
	}
	return &wt, nil
}

// CreateCollection records a collected batch of waste
func (r *WasteRepository) CreateCollection(ctx context.Context, c *models.WasteCollection) error {
	query := `
		INSERT INTO waste_collections (user_id, waste_type_id, quantity, collection_date, location_latitude, location_longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		c.UserID, c.WasteTypeID, c.Quantity, c.CollectionDate, c.LocationLatitude, c.LocationLongitude,
	).Scan(&c.ID)
	if err != nil {
		return wrapError(err, "create waste collection", "waste collection")
	}
	return nil
}

// ListCenters returns every recycling center
func (r *WasteRepository) ListCenters(ctx context.Context) ([]*models.RecyclingCenter, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, address, latitude, longitude FROM recycling_centers ORDER BY id`)
	if err != nil {
		return nil, wrapError(err, "list recycling centers", "recycling center")
	}
	defer rows.Close()

	centers := make([]*models.RecyclingCenter, 0)
	for rows.Next() {
		var c models.RecyclingCenter
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan recycling center: %w", err)
		}
		centers = append(centers, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recycling centers: %w", err)
	}
	return centers, nil
}
