package services

import (
	"context"
	"strings"
	"time"

	"recycle-backend/internal/apperror"
	"recycle-backend/internal/models"
)

// CalendarStore persists calendar events
type CalendarStore interface {
	ListByUser(ctx context.Context, userID int64, skip, limit int) ([]*models.CalendarEvent, error)
	GetByID(ctx context.Context, id int64) (*models.CalendarEvent, error)
	Create(ctx context.Context, e *models.CalendarEvent) error
	Update(ctx context.Context, e *models.CalendarEvent) error
	Delete(ctx context.Context, id int64) error
}

// EventInput is the payload of a new event
type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// EventUpdate holds the optional fields of an event change
type EventUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

// CalendarService handles personal calendar events
type CalendarService struct {
	events CalendarStore
}

// NewCalendarService creates a new calendar service
func NewCalendarService(events CalendarStore) *CalendarService {
	return &CalendarService{events: events}
}

// List returns a page of the user's events
func (s *CalendarService) List(ctx context.Context, userID int64, skip, limit int) ([]*models.CalendarEvent, error) {
	if err := validatePage(skip, limit); err != nil {
		return nil, err
	}
	return s.events.ListByUser(ctx, userID, skip, limit)
}

// Create adds an event to the user's calendar
func (s *CalendarService) Create(ctx context.Context, userID int64, in EventInput) (*models.CalendarEvent, error) {
	e := &models.CalendarEvent{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
	}
	if err := validateEvent(e); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update changes an event owned by userID
func (s *CalendarService) Update(ctx context.Context, userID, eventID int64, upd EventUpdate) (*models.CalendarEvent, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := apperror.AssertOwner("event", e.UserID, userID); err != nil {
		return nil, err
	}

	if upd.Title != nil {
		e.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.StartTime != nil {
		e.StartTime = upd.StartTime.UTC()
	}
	if upd.EndTime != nil {
		e.EndTime = upd.EndTime.UTC()
	}
	if err := validateEvent(e); err != nil {
		return nil, err
	}

	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an event owned by userID
func (s *CalendarService) Delete(ctx context.Context, userID, eventID int64) error {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := apperror.AssertOwner("event", e.UserID, userID); err != nil {
		return err
	}
	return s.events.Delete(ctx, eventID)
}

func validateEvent(e *models.CalendarEvent) error {
	if e.Title == "" {
		return apperror.Invalid("title is required")
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return apperror.Invalid("start_time and end_time are required")
	}
	if e.EndTime.Before(e.StartTime) {
		return apperror.Invalid("end_time must not be before start_time")
	}
	return nil
}
