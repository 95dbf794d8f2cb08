package repository

import (
	"context"
	"fmt"

	"recycle-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// CalendarRepository handles database operations for calendar events
type CalendarRepository struct {
	db DB
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListByUser returns a page of a user's events ordered by start time
func (r *CalendarRepository) ListByUser(ctx context.Context, userID int64, skip, limit int) ([]*models.CalendarEvent, error) {
	query := `
		SELECT id, user_id, title, description, start_time, end_time
		FROM calendar_events
		WHERE user_id = $1
		ORDER BY start_time, id
		OFFSET $2 LIMIT $3
	`
	rows, err := r.db.Query(ctx, query, userID, skip, limit)
	if err != nil {
		return nil, wrapError(err, "list events", "event")
	}
	defer rows.Close()

	events := make([]*models.CalendarEvent, 0)
	for rows.Next() {
		var e models.CalendarEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartTime, &e.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// GetByID retrieves an event by ID
func (r *CalendarRepository) GetByID(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	query := `SELECT id, user_id, title, description, start_time, end_time FROM calendar_events WHERE id = $1`
	var e models.CalendarEvent
	err := r.db.QueryRow(ctx, query, id).Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartTime, &e.EndTime)
	if err != nil {
		return nil, wrapError(err, "get event", fmt.Sprintf("event %d", id))
	}
	return &e, nil
}

// Create inserts an event
func (r *CalendarRepository) Create(ctx context.Context, e *models.CalendarEvent) error {
	query := `
		INSERT INTO calendar_events (user_id, title, description, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := r.db.QueryRow(ctx, query, e.UserID, e.Title, e.Description, e.StartTime, e.EndTime).Scan(&e.ID); err != nil {
		return wrapError(err, "create event", "event")
	}
	return nil
}

// Update writes every mutable event field
func (r *CalendarRepository) Update(ctx context.Context, e *models.CalendarEvent) error {
	query := `
		UPDATE calendar_events
		SET title = $2, description = $3, start_time = $4, end_time = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, e.ID, e.Title, e.Description, e.StartTime, e.EndTime)
	if err != nil {
		return wrapError(err, "update event", "event")
	}
	if tag.RowsAffected() == 0 {
		return wrapError(pgx.ErrNoRows, "update event", fmt.Sprintf("event %d", e.ID))
	}
	return nil
}

// Delete removes an event
func (r *CalendarRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return wrapError(err, "delete event", "event")
	}
	if tag.RowsAffected() == 0 {
		return wrapError(pgx.ErrNoRows, "delete event", fmt.Sprintf("event %d", id))
	}
	return nil
}
