package handlers

import (
	"net/http"

	"recycle-backend/internal/models"
	"recycle-backend/internal/services"
)

// FeedHandler handles the social feed
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// List handles GET /api/v1/feed
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := pagination(w, r)
	if !ok {
		return
	}
	postTypeID, ok := optionalID(w, r, "post_type_id")
	if !ok {
		return
	}

	posts, err := h.feedService.List(r.Context(), models.PostFilter{
		Skip:       skip,
		Limit:      limit,
		Search:     r.URL.Query().Get("search"),
		PostTypeID: postTypeID,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to list posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// ListByUser handles GET /api/v1/feed/user/{user_id}
func (h *FeedHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	authorID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}
	skip, limit, ok := pagination(w, r)
	if !ok {
		return
	}

	posts, err := h.feedService.ListByUser(r.Context(), authorID, skip, limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list user posts")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// Get handles GET /api/v1/feed/{post_id}
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "post_id")
	if !ok {
		return
	}

	post, err := h.feedService.Get(r.Context(), postID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// PostTypes handles GET /api/v1/feed/post-types
func (h *FeedHandler) PostTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.feedService.PostTypes(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to list post types")
		return
	}
	respondJSON(w, http.StatusOK, types)
}

// Create handles POST /api/v1/feed with a multipart form
func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	postTypeID, err := formInt64(r, "post_type_id")
	if err != nil {
		respondServiceError(w, r, err, "Invalid post type")
		return
	}
	files, err := formFiles(r, "files")
	if err != nil {
		respondServiceError(w, r, err, "Failed to read files")
		return
	}

	post, err := h.feedService.Create(r.Context(), userID, services.PostInput{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		PostTypeID: postTypeID,
		Files:      files,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to create post")
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// Update handles PUT /api/v1/feed/{post_id} with a multipart form
func (h *FeedHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "post_id")
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	postTypeID, err := formInt64(r, "post_type_id")
	if err != nil {
		respondServiceError(w, r, err, "Invalid post type")
		return
	}
	files, err := formFiles(r, "files")
	if err != nil {
		respondServiceError(w, r, err, "Failed to read files")
		return
	}

	post, err := h.feedService.Update(r.Context(), userID, postID, services.PostUpdate{
		Title:      formString(r, "title"),
		Content:    formString(r, "content"),
		PostTypeID: postTypeID,
		Files:      files,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to update post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /api/v1/feed/{post_id}
func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "post_id")
	if !ok {
		return
	}

	if err := h.feedService.Delete(r.Context(), userID, postID); err != nil {
		respondServiceError(w, r, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
