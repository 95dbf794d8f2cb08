package repository

import (
	"context"
	"fmt"
)

// SearchHit is a raw match before ranking
type SearchHit struct {
	ID          int64
	Entity      string
	Kind        string
	Title       string
	Description string
}

// Hit entities
const (
	HitPost    = "post"
	HitProduct = "product"
)

// SearchRepository finds posts and products containing a query string
type SearchRepository struct {
	db DB
}

// NewSearchRepository creates a new search repository
func NewSearchRepository(db DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Posts returns posts whose title or content contains the query, kinded by post-type name
func (r *SearchRepository) Posts(ctx context.Context, q string) ([]SearchHit, error) {
	query := `
		SELECT p.id, 'post', COALESCE(pt.name, 'post'), p.title, p.content
		FROM posts p
		LEFT JOIN post_types pt ON pt.id = p.post_type_id
		WHERE p.title ILIKE $1 OR p.content ILIKE $1
		ORDER BY p.id
	`
	return r.hits(ctx, query, q)
}

// Products returns products whose name or description contains the query
func (r *SearchRepository) Products(ctx context.Context, q string) ([]SearchHit, error) {
	query := `
		SELECT id, 'product', 'product', name, description
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY id
	`
	return r.hits(ctx, query, q)
}

func (r *SearchRepository) hits(ctx context.Context, query, q string) ([]SearchHit, error) {
	rows, err := r.db.Query(ctx, query, likePattern(q))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.ID, &h.Entity, &h.Kind, &h.Title, &h.Description); err != nil {
			return nil, fmt.Errorf("failed to scan search hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search hits: %w", err)
	}
	return hits, nil
}
