package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/google/uuid"
)

// MaxImageBytes caps uploaded event images.
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// EventService orchestrates the event catalogue and admin operations.
type EventService struct {
	events          EventStore
	regs            RegistrationStore
	images          ImageStore
	defaultTeamSize int
	now             func() time.Time
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, regs RegistrationStore, images ImageStore, defaultTeamSize int) *EventService {
	if defaultTeamSize < 1 {
		defaultTeamSize = DefaultTeamSize
	}
	return &EventService{
		events:          events,
		regs:            regs,
		images:          images,
		defaultTeamSize: defaultTeamSize,
		now:             time.Now,
	}
}

// List returns events ordered by schedule, filtered by title when query is
// non-empty.
func (s *EventService) List(ctx context.Context, query string) ([]model.Event, error) {
	events, err := s.events.List(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// Get returns a single event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidRequest)
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "event", id)
	}
	return event, nil
}

// Create validates the request and stores a new event.
func (s *EventService) Create(ctx context.Context, req model.EventRequest) (*model.Event, error) {
	event := &model.Event{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.apply(event, req); err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// Update replaces an event's editable fields. The image is kept.
func (s *EventService) Update(ctx context.Context, id string, req model.EventRequest) (*model.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(event, req); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, notFound(err, "event", id)
	}
	return event, nil
}

// Delete removes an event together with its registrations.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.events.Delete(ctx, id); err != nil {
		return notFound(err, "event", id)
	}
	return nil
}

// SetTeamMode switches an event between individual and team registration.
// The team size is reset to 1 either way.
func (s *EventService) SetTeamMode(ctx context.Context, id string, teamEvent bool) (*model.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	event.TeamEvent = teamEvent
	event.TeamSize = 1
	if err := s.events.Update(ctx, event); err != nil {
		return nil, notFound(err, "event", id)
	}
	return event, nil
}

// SetTeamSize sets the member limit for team registrations.
func (s *EventService) SetTeamSize(ctx context.Context, id string, size int) (*model.Event, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: team size must be at least 1", ErrInvalidRequest)
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	event.TeamSize = size
	if err := s.events.Update(ctx, event); err != nil {
		return nil, notFound(err, "event", id)
	}
	return event, nil
}

// SetImage stores an uploaded image and records its public URL on the event.
func (s *EventService) SetImage(ctx context.Context, id, contentType string, r io.Reader) (*model.Event, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", ErrInvalidRequest, contentType)
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("events", event.ID, uuid.NewString()+ext)
	url, err := s.images.Put(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	event.ImageURL = url
	if err := s.events.Update(ctx, event); err != nil {
		return nil, notFound(err, "event", id)
	}
	return event, nil
}

// Participants returns an event and its registrations ordered by token.
func (s *EventService) Participants(ctx context.Context, id string) (*model.Event, []model.Registration, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	regs, err := s.regs.ListByEvent(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list participants: %w", err)
	}
	return event, regs, nil
}

func (s *EventService) apply(event *model.Event, req model.EventRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduled_at is required", ErrInvalidRequest)
	}
	if req.TeamSize < 0 {
		return fmt.Errorf("%w: team size must not be negative", ErrInvalidRequest)
	}

	event.Title = title
	event.Description = strings.TrimSpace(req.Description)
	event.ScheduledAt = req.ScheduledAt.UTC()
	event.TeamEvent = req.TeamEvent
	switch {
	case !req.TeamEvent:
		event.TeamSize = 1
	case req.TeamSize == 0:
		event.TeamSize = s.defaultTeamSize
	default:
		event.TeamSize = req.TeamSize
	}
	return nil
}
