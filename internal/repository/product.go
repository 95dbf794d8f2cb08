package repository

import (
	"context"
	"fmt"
	"strings"

	"recycle-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.product_type_id, p.image_url, p.seller_id, pt.name
	FROM products p
	JOIN product_types pt ON pt.id = p.product_type_id
`

// ProductRepository handles database operations for marketplace products
type ProductRepository struct {
	db DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var typeName string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ProductTypeID, &p.ImageURL, &p.SellerID, &typeName)
	if err != nil {
		return nil, err
	}
	p.ProductType = &models.LookupType{ID: p.ProductTypeID, Name: typeName}
	return &p, nil
}

// List returns a page of products ordered by id
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]*models.Product, error) {
	var where []string
	var args []any
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}
	if f.ProductTypeID != nil {
		args = append(args, *f.ProductTypeID)
		where = append(where, fmt.Sprintf("p.product_type_id = $%d", len(args)))
	}

	query := productSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Skip, f.Limit)
	query += fmt.Sprintf(" ORDER BY p.id OFFSET $%d LIMIT $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err, "list products", "product")
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, productSelect+" WHERE p.id = $1", id))
	if err != nil {
		return nil, wrapError(err, "get product", fmt.Sprintf("product %d", id))
	}
	return p, nil
}

// Create inserts a product
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, product_type_id, image_url, seller_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, p.Name, p.Description, p.Price, p.ProductTypeID, p.ImageURL, p.SellerID).Scan(&p.ID)
	if err != nil {
		return wrapError(err, "create product", "product")
	}
	return nil
}

// Update writes every mutable product field
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, product_type_id = $5, image_url = $6
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Description, p.Price, p.ProductTypeID, p.ImageURL)
	if err != nil {
		return wrapError(err, "update product", "product")
	}
	if tag.RowsAffected() == 0 {
		return wrapError(pgx.ErrNoRows, "update product", fmt.Sprintf("product %d", p.ID))
	}
	return nil
}

// Delete removes a product
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return wrapError(err, "delete product", "product")
	}
	if tag.RowsAffected() == 0 {
		return wrapError(pgx.ErrNoRows, "delete product", fmt.Sprintf("product %d", id))
	}
	return nil
}

// ListProductTypes returns every product type
func (r *ProductRepository) ListProductTypes(ctx context.Context) ([]*models.LookupType, error) {
	return listLookup(ctx, r.db, "product_types")
}
