package postgres

import (
	"context"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *pgxpool.Pool
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a student. A clash on email yields repository.ErrDuplicate.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO students (id, name, email, created_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.Name, s.Email, s.CreatedAt,
	)
	if err != nil {
		return mapError("insert student", err)
	}
	return nil
}

// GetByID returns a student or repository.ErrNotFound.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.CreatedAt)
	if err != nil {
		return nil, mapError("get student", err)
	}
	return &s, nil
}

// GetByEmail returns a student or repository.ErrNotFound.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	var s model.Student
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM students WHERE email = $1`, email,
	).Scan(&s.ID, &s.Name, &s.Email, &s.CreatedAt)
	if err != nil {
		return nil, mapError("get student by email", err)
	}
	return &s, nil
}
