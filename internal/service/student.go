package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/Shivanand-hulikatti/event-portal/internal/repository"
	"github.com/google/uuid"
)

// StudentService signs students in.
type StudentService struct {
	students StudentStore
	now      func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(students StudentStore) *StudentService {
	return &StudentService{students: students, now: time.Now}
}

// SignIn returns the student with the given email, creating it on first
// use. An existing student's name is left unchanged.
func (s *StudentService) SignIn(ctx context.Context, req model.SignInRequest) (*model.Student, error) {
	name := strings.TrimSpace(req.Name)
	email := model.NormalizeEmail(req.Email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if !isValidEmail(email) {
		return nil, fmt.Errorf("%w: email is not a valid email address", ErrInvalidRequest)
	}

	existing, err := s.students.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	student := &model.Student{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: s.now().UTC(),
	}
	if err := s.students.Create(ctx, student); err != nil {
		// Lost a race with a concurrent sign-in for the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return s.students.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("create student: %w", err)
	}
	return student, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "student", id)
	}
	return student, nil
}
