package handlers

import (
	"net/http"

	"recycle-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update profile")
		return
	}

	log.Info().Int64("user_id", userID).Msg("Profile updated")
	respondJSON(w, http.StatusOK, user)
}

// UpdateProfilePhoto handles PATCH /api/v1/users/me/profile-photo
func (h *UserHandler) UpdateProfilePhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	files, err := formFiles(r, "file")
	if err != nil {
		respondServiceError(w, r, err, "Failed to read file")
		return
	}
	if len(files) != 1 {
		respondError(w, "exactly one file is required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UploadProfileImage(r.Context(), userID, files[0])
	if err != nil {
		respondServiceError(w, r, err, "Failed to update profile photo")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ListPhotos handles GET /api/v1/users/me/photos
func (h *UserHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	photos, err := h.userService.ListPhotos(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list photos")
		return
	}
	respondJSON(w, http.StatusOK, photos)
}

// AddPhotos handles POST /api/v1/users/me/photos
func (h *UserHandler) AddPhotos(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if !parseMultipart(w, r) {
		return
	}

	files, err := formFiles(r, "files")
	if err != nil {
		respondServiceError(w, r, err, "Failed to read files")
		return
	}

	photos, err := h.userService.AddPhotos(r.Context(), userID, files)
	if err != nil {
		respondServiceError(w, r, err, "Failed to upload photos")
		return
	}

	log.Info().Int64("user_id", userID).Int("count", len(photos)).Msg("Photos uploaded")
	respondJSON(w, http.StatusCreated, photos)
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

// RegisterPushToken handles PUT /api/v1/users/me/push-token
func (h *UserHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req pushTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.RegisterPushToken(r.Context(), userID, req.Token); err != nil {
		respondServiceError(w, r, err, "Failed to register push token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOptions handles GET /api/v1/users/options
func (h *UserHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	opts, err := h.userService.GetOptions(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get options")
		return
	}
	respondJSON(w, http.StatusOK, opts)
}

// UpdateOptions handles PUT /api/v1/users/options
func (h *UserHandler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var values map[string]any
	if !decodeJSON(w, r, &values) {
		return
	}

	opts, err := h.userService.UpdateOptions(r.Context(), userID, values)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update options")
		return
	}
	respondJSON(w, http.StatusOK, opts)
}
