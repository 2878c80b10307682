package sqlite

import (
	"context"
	"database/sql"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
)

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sql.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a student. A clash on email yields repository.ErrDuplicate.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO students (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, toMillis(s.CreatedAt),
	)
	if err != nil {
		return mapError("insert student", err)
	}
	return nil
}

// GetByID returns a student or repository.ErrNotFound.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*model.Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM students WHERE id = ?`, id))
	if err != nil {
		return nil, mapError("get student", err)
	}
	return s, nil
}

// GetByEmail returns a student or repository.ErrNotFound.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	s, err := scanStudent(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, created_at FROM students WHERE email = ?`, email))
	if err != nil {
		return nil, mapError("get student by email", err)
	}
	return s, nil
}

func scanStudent(row rowScanner) (*model.Student, error) {
	var (
		s         model.Student
		createdAt int64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Email, &createdAt); err != nil {
		return nil, err
	}
	s.CreatedAt = fromMillis(createdAt)
	return &s, nil
}
