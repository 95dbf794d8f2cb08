package handlers

import (
	"net/http"

	"recycle-backend/internal/services"
)

// CalendarHandler handles personal calendar events
type CalendarHandler struct {
	calendarService *services.CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// List handles GET /api/v1/calendar
func (h *CalendarHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	skip, limit, ok := pagination(w, r)
	if !ok {
		return
	}

	events, err := h.calendarService.List(r.Context(), userID, skip, limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list events")
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// Create handles POST /api/v1/calendar
func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.EventInput
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.calendarService.Create(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create event")
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

// Update handles PUT /api/v1/calendar/{event_id}
func (h *CalendarHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}

	var req services.EventUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.calendarService.Update(r.Context(), userID, eventID, req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update event")
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/v1/calendar/{event_id}
func (h *CalendarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	eventID, ok := pathID(w, r, "event_id")
	if !ok {
		return
	}

	if err := h.calendarService.Delete(r.Context(), userID, eventID); err != nil {
		respondServiceError(w, r, err, "Failed to delete event")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
