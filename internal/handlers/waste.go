package handlers

import (
	"net/http"
	"strconv"

	"recycle-backend/internal/services"
)

// WasteHandler handles waste types, detection, collections and centers
type WasteHandler struct {
	wasteService *services.WasteService
}

// NewWasteHandler creates a new waste handler
func NewWasteHandler(wasteService *services.WasteService) *WasteHandler {
	return &WasteHandler{wasteService: wasteService}
}

// WasteTypesResponse lists waste-type names
type WasteTypesResponse struct {
	WasteTypes []string `json:"waste_types"`
}

// DetectResponse carries the detected waste type
type DetectResponse struct {
	WasteType string `json:"waste_type"`
}

// RewardResponse carries the points granted for a waste type
type RewardResponse struct {
	WasteType string `json:"waste_type"`
	Points    int64  `json:"points"`
}

// WasteTypes handles GET /api/v1/waste-collection/waste-types
func (h *WasteHandler) WasteTypes(w http.ResponseWriter, r *http.Request) {
	names, err := h.wasteService.WasteTypeNames(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to list waste types")
		return
	}
	respondJSON(w, http.StatusOK, WasteTypesResponse{WasteTypes: names})
}

// Detect handles POST /api/v1/waste-collection/detect-waste
func (h *WasteHandler) Detect(w http.ResponseWriter, r *http.Request) {
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

	label, err := h.wasteService.Detect(r.Context(), files[0].Data)
	if err != nil {
		respondServiceError(w, r, err, "Failed to detect waste type")
		return
	}
	respondJSON(w, http.StatusOK, DetectResponse{WasteType: label})
}

// RecordCollection handles POST /api/v1/waste-collection
func (h *WasteHandler) RecordCollection(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.CollectionInput
	if !decodeJSON(w, r, &req) {
		return
	}

	collection, err := h.wasteService.RecordCollection(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to record collection")
		return
	}
	respondJSON(w, http.StatusCreated, collection)
}

// RecyclingCenters handles GET /api/v1/waste-collection/recycling-centers?latitude=&longitude=
func (h *WasteHandler) RecyclingCenters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("latitude"), 64)
	if err != nil {
		respondError(w, "Invalid latitude", http.StatusBadRequest)
		return
	}
	lon, err := strconv.ParseFloat(q.Get("longitude"), 64)
	if err != nil {
		respondError(w, "Invalid longitude", http.StatusBadRequest)
		return
	}

	centers, err := h.wasteService.NearbyCenters(r.Context(), lat, lon)
	if err != nil {
		respondServiceError(w, r, err, "Failed to find recycling centers")
		return
	}
	respondJSON(w, http.StatusOK, centers)
}

// Reward handles GET /api/v1/waste-collection/reward?waste_type=
func (h *WasteHandler) Reward(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("waste_type")
	if name == "" {
		respondError(w, "waste_type is required", http.StatusBadRequest)
		return
	}

	points, err := h.wasteService.RewardFor(r.Context(), name)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get reward")
		return
	}
	respondJSON(w, http.StatusOK, RewardResponse{WasteType: name, Points: points})
}
