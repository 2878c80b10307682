package postgres

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/Shivanand-hulikatti/event-portal/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, description, image_url, team_event, scheduled_at, team_size, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event. ID and CreatedAt must already be set.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Title, e.Description, e.ImageURL, e.TeamEvent, e.ScheduledAt, e.TeamSize, e.CreatedAt,
	)
	if err != nil {
		return mapError("insert event", err)
	}
	return nil
}

// List returns events ordered by scheduled time, optionally filtered by a
// case-insensitive title substring.
func (r *EventRepository) List(ctx context.Context, query string) ([]model.Event, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if query == "" {
		rows, err = r.db.Query(ctx,
			`SELECT `+eventColumns+` FROM events ORDER BY scheduled_at ASC, created_at ASC`)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+eventColumns+` FROM events
			 WHERE title ILIKE $1 ESCAPE '\'
			 ORDER BY scheduled_at ASC, created_at ASC`,
			repository.LikePattern(query))
	}
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or repository.ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id), &e)
	if err != nil {
		return nil, mapError("get event", err)
	}
	return &e, nil
}

// Update replaces the mutable fields of an existing event.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, image_url = $4, team_event = $5,
		     scheduled_at = $6, team_size = $7
		 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.ImageURL, e.TeamEvent, e.ScheduledAt, e.TeamSize,
	)
	if err != nil {
		return mapError("update event", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an event; its registrations go with it (ON DELETE CASCADE).
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return mapError("delete event", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row, e *model.Event) error {
	return row.Scan(&e.ID, &e.Title, &e.Description, &e.ImageURL, &e.TeamEvent,
		&e.ScheduledAt, &e.TeamSize, &e.CreatedAt)
}
