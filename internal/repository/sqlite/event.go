package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/Shivanand-hulikatti/event-portal/internal/repository"
)

const eventColumns = `id, title, description, image_url, team_event, scheduled_at, team_size, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event. ID and CreatedAt must already be set.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Description, e.ImageURL, e.TeamEvent,
		toMillis(e.ScheduledAt), e.TeamSize, toMillis(e.CreatedAt),
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
		rows *sql.Rows
		err  error
	)
	if query == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM events ORDER BY scheduled_at ASC, created_at ASC`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM events
			 WHERE title LIKE ? ESCAPE '\'
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
	err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id), &e)
	if err != nil {
		return nil, mapError("get event", err)
	}
	return &e, nil
}

// Update replaces the mutable fields of an existing event.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events
		 SET title = ?, description = ?, image_url = ?, team_event = ?,
		     scheduled_at = ?, team_size = ?
		 WHERE id = ?`,
		e.Title, e.Description, e.ImageURL, e.TeamEvent,
		toMillis(e.ScheduledAt), e.TeamSize, e.ID,
	)
	if err != nil {
		return mapError("update event", err)
	}
	return requireAffected(res)
}

// Delete removes an event; its registrations go with it (ON DELETE CASCADE).
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return mapError("delete event", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanEvent(row rowScanner, e *model.Event) error {
	var scheduledAt, createdAt int64
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.ImageURL, &e.TeamEvent,
		&scheduledAt, &e.TeamSize, &createdAt); err != nil {
		return err
	}
	e.ScheduledAt = fromMillis(scheduledAt)
	e.CreatedAt = fromMillis(createdAt)
	return nil
}
