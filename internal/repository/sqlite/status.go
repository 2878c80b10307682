package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
)

// StatusRepository persists the fire status singleton row.
type StatusRepository struct {
	db *sql.DB
}

// NewStatusRepository constructs a StatusRepository.
func NewStatusRepository(db *sql.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// Get returns the current status record.
func (r *StatusRepository) Get(ctx context.Context) (*model.AdminStatus, error) {
	s, err := scanStatus(r.db.QueryRowContext(ctx,
		`SELECT fire_active, version, updated_at FROM admin_status WHERE id = 1`))
	if err != nil {
		return nil, mapError("get status", err)
	}
	return s, nil
}

// Set stores a new fire status and bumps the record version.
func (r *StatusRepository) Set(ctx context.Context, fireActive bool) (*model.AdminStatus, error) {
	s, err := scanStatus(r.db.QueryRowContext(ctx,
		`UPDATE admin_status
		 SET fire_active = ?, version = version + 1, updated_at = ?
		 WHERE id = 1
		 RETURNING fire_active, version, updated_at`,
		fireActive, toMillis(time.Now()),
	))
	if err != nil {
		return nil, mapError("set status", err)
	}
	return s, nil
}

func scanStatus(row rowScanner) (*model.AdminStatus, error) {
	var (
		s         model.AdminStatus
		updatedAt int64
	)
	if err := row.Scan(&s.FireActive, &s.Version, &updatedAt); err != nil {
		return nil, err
	}
	s.UpdatedAt = fromMillis(updatedAt)
	return &s, nil
}
