package postgres

import (
	"context"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatusRepository persists the fire status singleton row.
type StatusRepository struct {
	db *pgxpool.Pool
}

// NewStatusRepository constructs a StatusRepository.
func NewStatusRepository(db *pgxpool.Pool) *StatusRepository {
	return &StatusRepository{db: db}
}

// Get returns the current status record.
func (r *StatusRepository) Get(ctx context.Context) (*model.AdminStatus, error) {
	var s model.AdminStatus
	err := r.db.QueryRow(ctx,
		`SELECT fire_active, version, updated_at FROM admin_status WHERE id = 1`,
	).Scan(&s.FireActive, &s.Version, &s.UpdatedAt)
	if err != nil {
		return nil, mapError("get status", err)
	}
	return &s, nil
}

// Set stores a new fire status and bumps the record version.
func (r *StatusRepository) Set(ctx context.Context, fireActive bool) (*model.AdminStatus, error) {
	var s model.AdminStatus
	err := r.db.QueryRow(ctx,
		`UPDATE admin_status
		 SET fire_active = $1, version = version + 1, updated_at = now()
		 WHERE id = 1
		 RETURNING fire_active, version, updated_at`,
		fireActive,
	).Scan(&s.FireActive, &s.Version, &s.UpdatedAt)
	if err != nil {
		return nil, mapError("set status", err)
	}
	return &s, nil
}
