package handlers

import (
	"net/http"

	"recycle-backend/internal/models"
	"recycle-backend/internal/services"
)

// ProductHandler handles the marketplace
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := pagination(w, r)
	if !ok {
		return
	}
	productTypeID, ok := optionalID(w, r, "product_type_id")
	if !ok {
		return
	}

	products, err := h.productService.List(r.Context(), models.ProductFilter{
		Skip:          skip,
		Limit:         limit,
		Search:        r.URL.Query().Get("search"),
		ProductTypeID: productTypeID,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// Types handles GET /api/v1/products/types
func (h *ProductHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.productService.ProductTypes(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to list product types")
		return
	}
	respondJSON(w, http.StatusOK, types)
}

// Get handles GET /api/v1/products/{product_id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), productID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.ProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create product")
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/v1/products/{product_id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	var req services.ProductUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), userID, productID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/v1/products/{product_id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "product_id")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), userID, productID); err != nil {
		respondServiceError(w, r, err, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
