package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/logger"
	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/Shivanand-hulikatti/event-portal/internal/repository"
	"github.com/Shivanand-hulikatti/event-portal/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTeamSize is the member limit for team events with no size set.
	DefaultTeamSize = 4
	minTeamMembers  = 2
	notifyTimeout   = 5 * time.Second
)

// EventReader is the event lookup the workflow needs.
type EventReader interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// StudentReader is the student lookup the workflow needs.
type StudentReader interface {
	GetByID(ctx context.Context, id string) (*model.Student, error)
}

// RegistrationService runs the registration workflow for individuals and
// teams.
type RegistrationService struct {
	events          EventReader
	students        StudentReader
	regs            RegistrationStore
	seq             TokenSequencer
	notifier        Notifier
	metrics         *telemetry.Metrics
	log             *slog.Logger
	tracer          trace.Tracer
	defaultTeamSize int
	now             func() time.Time
	newID           func() string

	pending sync.WaitGroup
}

// RegistrationOption configures a RegistrationService.
type RegistrationOption func(*RegistrationService)

// WithTokenSequencer makes token allocation and insert one atomic step.
// Without it tokens are computed as max+1 and inserted separately.
func WithTokenSequencer(seq TokenSequencer) RegistrationOption {
	return func(s *RegistrationService) { s.seq = seq }
}

// WithNotifier sends organiser notifications after each registration.
func WithNotifier(n Notifier) RegistrationOption {
	return func(s *RegistrationService) { s.notifier = n }
}

// WithMetrics records outcomes and latency.
func WithMetrics(m *telemetry.Metrics) RegistrationOption {
	return func(s *RegistrationService) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) RegistrationOption {
	return func(s *RegistrationService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDefaultTeamSize sets the fallback member limit.
func WithDefaultTeamSize(n int) RegistrationOption {
	return func(s *RegistrationService) {
		if n > 0 {
			s.defaultTeamSize = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RegistrationOption {
	return func(s *RegistrationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewRegistrationService constructs a RegistrationService with its
// dependencies.
func NewRegistrationService(
	events EventReader,
	students StudentReader,
	regs RegistrationStore,
	opts ...RegistrationOption,
) *RegistrationService {
	s := &RegistrationService{
		events:          events,
		students:        students,
		regs:            regs,
		log:             logger.Discard(),
		tracer:          otel.Tracer("github.com/Shivanand-hulikatti/event-portal/internal/service"),
		defaultTeamSize: DefaultTeamSize,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register registers a student for an individual event.
//
// Caller errors (empty description, unknown ids, wrong event mode) are
// returned as ErrInvalidRequest or ErrNotFound before any registration
// lookup. Every other result, including store failures, is an Outcome.
func (s *RegistrationService) Register(ctx context.Context, eventID string, req model.RegisterRequest) (model.Outcome, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return model.Outcome{}, fmt.Errorf("%w: description is required", ErrInvalidRequest)
	}

	student, event, outcome, err := s.resolve(ctx, eventID, req.StudentID)
	if err != nil || outcome != nil {
		return deref(outcome), err
	}
	if event.TeamEvent {
		return model.Outcome{}, fmt.Errorf("%w: event %s requires a team registration", ErrInvalidRequest, event.ID)
	}

	reg := &model.Registration{
		EventID:     event.ID,
		StudentID:   student.ID,
		Email:       model.NormalizeEmail(student.Email),
		Name:        student.Name,
		Description: description,
	}
	return s.run(ctx, event, reg, nil), nil
}

// RegisterTeam registers a team, led by the requesting student, for a team
// event.
func (s *RegistrationService) RegisterTeam(ctx context.Context, eventID string, req model.TeamRegisterRequest) (model.Outcome, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return model.Outcome{}, fmt.Errorf("%w: description is required", ErrInvalidRequest)
	}
	teamName := strings.TrimSpace(req.TeamName)
	if teamName == "" {
		return model.Outcome{}, fmt.Errorf("%w: team name is required", ErrInvalidRequest)
	}

	student, event, outcome, err := s.resolve(ctx, eventID, req.StudentID)
	if err != nil || outcome != nil {
		return deref(outcome), err
	}
	if !event.TeamEvent {
		return model.Outcome{}, fmt.Errorf("%w: event %s does not accept teams", ErrInvalidRequest, event.ID)
	}

	reg := &model.Registration{
		EventID:     event.ID,
		StudentID:   student.ID,
		Email:       model.NormalizeEmail(student.Email),
		TeamName:    teamName,
		Description: description,
	}
	members := req.Members
	if members == nil {
		members = []string{}
	}
	return s.run(ctx, event, reg, members), nil
}

// Lookup returns the student's registration for an event, or ErrNotFound.
func (s *RegistrationService) Lookup(ctx context.Context, eventID, studentID string) (*model.Registration, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		return nil, notFound(err, "student", studentID)
	}
	reg, err := s.regs.Find(ctx, eventID, model.ByEmail(student.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no registration for student %s in event %s", ErrNotFound, studentID, eventID)
		}
		return nil, fmt.Errorf("lookup registration: %w", err)
	}
	return reg, nil
}

// ExistingToken reports whether a registration matching key exists for the
// event and returns its token.
func (s *RegistrationService) ExistingToken(ctx context.Context, eventID string, key model.Key) (int, bool, error) {
	reg, err := s.regs.Find(ctx, eventID, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("find registration by %s: %w", key.Kind, err)
	}
	return reg.Token, true, nil
}

// NextToken computes the event's next token as the current maximum plus one.
// It does not reserve the token.
func (s *RegistrationService) NextToken(ctx context.Context, eventID string) (int, error) {
	maxToken, err := s.regs.MaxToken(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("read max token: %w", err)
	}
	return maxToken + 1, nil
}

// resolve loads the student and event. A missing record is ErrNotFound; any
// other store failure becomes a registration_failed outcome.
func (s *RegistrationService) resolve(ctx context.Context, eventID, studentID string) (*model.Student, *model.Event, *model.Outcome, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, nil, nil, fmt.Errorf("%w: student_id is required", ErrInvalidRequest)
	}
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil, notFound(err, "student", studentID)
		}
		o := s.finish(ctx, eventID, model.RegistrationFailed(fmt.Errorf("get student: %w", err)), s.now())
		return nil, nil, &o, nil
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil, notFound(err, "event", eventID)
		}
		o := s.finish(ctx, eventID, model.RegistrationFailed(fmt.Errorf("get event: %w", err)), s.now())
		return nil, nil, &o, nil
	}
	return student, event, nil, nil
}

// run executes the duplicate checks, team validation, token allocation and
// insert for one attempt. members is nil for individual registrations.
func (s *RegistrationService) run(ctx context.Context, event *model.Event, reg *model.Registration, members []string) model.Outcome {
	start := s.now()
	team := members != nil

	mode := "individual"
	if team {
		mode = "team"
	}
	ctx, span := s.tracer.Start(ctx, "registration.register", trace.WithAttributes(
		attribute.String("event.id", event.ID),
		attribute.String("registration.mode", mode),
	))
	defer span.End()

	outcome := s.attempt(ctx, event, reg, members, team)

	span.SetAttributes(attribute.String("registration.status", string(outcome.Status)))
	if outcome.Token > 0 {
		span.SetAttributes(attribute.Int("registration.token", outcome.Token))
	}
	if outcome.Err != nil {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, "registration failed")
	}

	outcome = s.finish(ctx, event.ID, outcome, start)
	if outcome.Status == model.StatusRegistered {
		s.notify(ctx, event, reg)
	}
	return outcome
}

func (s *RegistrationService) attempt(ctx context.Context, event *model.Event, reg *model.Registration, members []string, team bool) model.Outcome {
	// 1. The email is already registered for this event.
	if tok, found, err := s.ExistingToken(ctx, event.ID, model.ByEmail(reg.Email)); err != nil {
		return model.RegistrationFailed(err)
	} else if found {
		return model.AlreadyRegistered(tok)
	}

	if team {
		// 2. Member count within [2, limit].
		names := cleanMembers(members)
		limit := event.TeamLimit(s.defaultTeamSize)
		if len(names) < minTeamMembers {
			return model.InvalidTeamSize(fmt.Sprintf("a team needs at least %d members, got %d", minTeamMembers, len(names)))
		}
		if len(names) > limit {
			return model.InvalidTeamSize(fmt.Sprintf("a team can have at most %d members, got %d", limit, len(names)))
		}
		reg.Name = strings.Join(names, ", ")

		// 3. The team name is taken.
		if tok, found, err := s.ExistingToken(ctx, event.ID, model.ByTeamName(reg.TeamName)); err != nil {
			return model.RegistrationFailed(err)
		} else if found {
			return model.AlreadyRegistered(tok)
		}
	}

	reg.ID = s.newID()
	reg.CreatedAt = s.now().UTC()

	// 4 + 5. Allocate the token and insert.
	var (
		token int
		err   error
	)
	if s.seq != nil {
		token, err = s.seq.InsertNext(ctx, reg)
	} else {
		token, err = s.NextToken(ctx, event.ID)
		if err != nil {
			return model.RegistrationFailed(err)
		}
		reg.Token = token
		err = s.regs.Insert(ctx, reg)
	}
	if err != nil {
		reg.Token = 0
		if errors.Is(err, repository.ErrDuplicate) {
			return s.resolveConflict(ctx, event.ID, reg, err)
		}
		return model.RegistrationFailed(fmt.Errorf("insert registration: %w", err))
	}

	// 6.
	reg.Token = token
	return model.Registered(token)
}

// resolveConflict turns a uniqueness violation into the registration that
// won the race. A conflict on the token alone has no winner to report.
func (s *RegistrationService) resolveConflict(ctx context.Context, eventID string, reg *model.Registration, cause error) model.Outcome {
	keys := []model.Key{model.ByEmail(reg.Email)}
	if reg.TeamName != "" {
		keys = append(keys, model.ByTeamName(reg.TeamName))
	}
	for _, key := range keys {
		tok, found, err := s.ExistingToken(ctx, eventID, key)
		if err != nil {
			return model.RegistrationFailed(err)
		}
		if found {
			return model.AlreadyRegistered(tok)
		}
	}
	return model.RegistrationFailed(fmt.Errorf("insert registration: %w", cause))
}

func (s *RegistrationService) finish(ctx context.Context, eventID string, o model.Outcome, start time.Time) model.Outcome {
	s.metrics.RecordRegistration(string(o.Status), s.now().Sub(start))

	attrs := []any{"event_id", eventID, "status", o.Status}
	switch o.Status {
	case model.StatusRegistered, model.StatusAlreadyRegistered:
		s.log.InfoContext(ctx, "registration attempt", append(attrs, "token", o.Token)...)
	case model.StatusInvalidTeamSize:
		s.log.InfoContext(ctx, "registration attempt", append(attrs, "reason", o.Reason)...)
	default:
		s.log.ErrorContext(ctx, "registration attempt", append(attrs, "error", o.Err)...)
	}
	return o
}

// notify tells organisers about reg in the background. The send outlives
// the request context but is bounded by notifyTimeout.
func (s *RegistrationService) notify(ctx context.Context, event *model.Event, reg *model.Registration) {
	if s.notifier == nil {
		return
	}
	ev, r := *event, *reg
	ctx = context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyRegistration(ctx, &ev, &r); err != nil {
			s.metrics.RecordNotifyFailure()
			s.log.WarnContext(ctx, "notify organisers", "event_id", ev.ID, "token", r.Token, "error", err)
		}
	}()
}

// Wait blocks until in-flight organiser notifications have finished or ctx
// is done.
func (s *RegistrationService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cleanMembers trims member names and drops blank entries.
func cleanMembers(raw []string) []string {
	names := make([]string, 0, len(raw))
	for _, m := range raw {
		if m = strings.TrimSpace(m); m != "" {
			names = append(names, m)
		}
	}
	return names
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return fmt.Errorf("get %s: %w", kind, err)
}

func deref(o *model.Outcome) model.Outcome {
	if o == nil {
		return model.Outcome{}
	}
	return *o
}
