package handlers

import (
	"net/http"

	"recycle-backend/internal/services"
)

// SearchHandler handles the combined post and product search
type SearchHandler struct {
	searchService *services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles GET /api/v1/search?query=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := pagination(w, r)
	if !ok {
		return
	}

	results, err := h.searchService.Search(r.Context(), r.URL.Query().Get("query"), skip, limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to search")
		return
	}
	respondJSON(w, http.StatusOK, results)
}
