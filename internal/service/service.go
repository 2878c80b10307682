// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
)

// ErrInvalidRequest marks caller errors found before any store call.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound is returned when a referenced student or event does not exist.
var ErrNotFound = errors.New("not found")

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	List(ctx context.Context, query string) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
}

// StudentStore persists students.
type StudentStore interface {
	Create(ctx context.Context, s *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
}

// RegistrationStore is the storage surface the registration workflow reads
// and writes through.
type RegistrationStore interface {
	// Find returns the registration matching key, or repository.ErrNotFound.
	Find(ctx context.Context, eventID string, key model.Key) (*model.Registration, error)
	// MaxToken returns the highest issued token, 0 when none.
	MaxToken(ctx context.Context, eventID string) (int, error)
	// Insert stores a registration whose token is already assigned.
	Insert(ctx context.Context, reg *model.Registration) error
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
}

// TokenSequencer allocates the next token and inserts the registration in
// one atomic operation.
type TokenSequencer interface {
	InsertNext(ctx context.Context, reg *model.Registration) (int, error)
}

// StatusStore persists the fire status singleton.
type StatusStore interface {
	Get(ctx context.Context) (*model.AdminStatus, error)
	Set(ctx context.Context, fireActive bool) (*model.AdminStatus, error)
}

// ImageStore stores event images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Notifier tells organisers about new registrations.
type Notifier interface {
	NotifyRegistration(ctx context.Context, event *model.Event, reg *model.Registration) error
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".") &&
		!strings.HasPrefix(parts[1], ".") && !strings.HasSuffix(parts[1], ".")
}
