package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProductStore persists marketplace products
type ProductStore interface {
	List(ctx context.Context, f models.ProductFilter) ([]*models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
	ListProductTypes(ctx context.Context) ([]*models.LookupType, error)
}

// ProductInput is the payload of a new product
type ProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ProductTypeID *int64          `json:"product_type_id"`
	ImageURL      *string         `json:"image_url"`
}

// ProductUpdate holds the optional fields of a product change.
// ProductTypeNull is set when the payload carries "product_type_id": null.
type ProductUpdate struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	ProductTypeID   *int64           `json:"product_type_id"`
	ImageURL        *string          `json:"image_url"`
	ProductTypeNull bool             `json:"-"`
}

// UnmarshalJSON tells an absent product_type_id from an explicit null
func (u *ProductUpdate) UnmarshalJSON(data []byte) error {
	type plain ProductUpdate
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["product_type_id"]; ok && bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		p.ProductTypeNull = true
	}

	*u = ProductUpdate(p)
	return nil
}

// ProductService handles the marketplace
type ProductService struct {
	products ProductStore
}

// NewProductService creates a new product service
func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, f models.ProductFilter) ([]*models.Product, error) {
	if err := validatePage(f.Skip, f.Limit); err != nil {
		return nil, err
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.products.List(ctx, f)
}

// Get returns a product by ID
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ProductTypes returns every product type
func (s *ProductService) ProductTypes(ctx context.Context) ([]*models.LookupType, error) {
	return s.products.ListProductTypes(ctx)
}

// Create lists a new product for sale by sellerID
func (s *ProductService) Create(ctx context.Context, sellerID int64, in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Invalid("name is required")
	}
	if in.ProductTypeID == nil {
		return nil, apperror.Invalid("product_type_id is required")
	}
	if in.Price.IsNegative() {
		return nil, apperror.Invalid("price must not be negative")
	}

	p := &models.Product{
		Name:          name,
		Description:   in.Description,
		Price:         in.Price,
		ProductTypeID: *in.ProductTypeID,
		ImageURL:      in.ImageURL,
		SellerID:      sellerID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	log.Info().Int64("product_id", p.ID).Int64("seller_id", sellerID).Msg("Product created")
	return s.products.GetByID(ctx, p.ID)
}

// Update changes a product sold by userID
func (s *ProductService) Update(ctx context.Context, userID, productID int64, upd ProductUpdate) (*models.Product, error) {
	if upd.ProductTypeNull {
		return nil, apperror.Invalid("product_type_id must not be null")
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := apperror.AssertOwner("product", p.SellerID, userID); err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperror.Invalid("name must not be empty")
		}
		p.Name = name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return nil, apperror.Invalid("price must not be negative")
		}
		p.Price = *upd.Price
	}
	if upd.ProductTypeID != nil {
		p.ProductTypeID = *upd.ProductTypeID
	}
	if upd.ImageURL != nil {
		p.ImageURL = upd.ImageURL
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}

	log.Info().Int64("product_id", productID).Int64("user_id", userID).Msg("Product updated")
	return s.products.GetByID(ctx, productID)
}

// Delete removes a product sold by userID
func (s *ProductService) Delete(ctx context.Context, userID, productID int64) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if err := apperror.AssertOwner("product", p.SellerID, userID); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return err
	}

	log.Info().Int64("product_id", productID).Int64("user_id", userID).Msg("Product deleted")
	return nil
}
