package service_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/database"
	"github.com/Shivanand-hulikatti/event-portal/internal/model"
	"github.com/Shivanand-hulikatti/event-portal/internal/repository"
	"github.com/Shivanand-hulikatti/event-portal/internal/repository/sqlite"
	"github.com/google/uuid"
)

// stores bundles the SQLite-backed repositories used as the real store.
type stores struct {
	db       *sql.DB
	events   *sqlite.EventRepository
	students *sqlite.StudentRepository
	regs     *sqlite.RegistrationRepository
	status   *sqlite.StatusRepository
}

func openStores(t *testing.T) *stores {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &stores{
		db:       db,
		events:   sqlite.NewEventRepository(db),
		students: sqlite.NewStudentRepository(db),
		regs:     sqlite.NewRegistrationRepository(db),
		status:   sqlite.NewStatusRepository(db),
	}
}

func (s *stores) countRegistrations(t *testing.T, eventID string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM registrations WHERE event_id = ?`, eventID).Scan(&n); err != nil {
		t.Fatalf("count registrations: %v", err)
	}
	return n
}

type eventCreator interface {
	Create(ctx context.Context, e *model.Event) error
}

type studentCreator interface {
	Create(ctx context.Context, s *model.Student) error
}

func seedEvent(t *testing.T, repo eventCreator, team bool, size int) *model.Event {
	t.Helper()
	e := &model.Event{
		ID:          uuid.NewString(),
		Title:       "Campus Event",
		TeamEvent:   team,
		TeamSize:    size,
		ScheduledAt: time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC),
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), e); err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return e
}

func seedStudent(t *testing.T, repo studentCreator, name, email string) *model.Student {
	t.Helper()
	s := &model.Student{ID: uuid.NewString(), Name: name, Email: email, CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return s
}

// memEvents and memStudents are map-backed readers.
type memEvents struct{ byID map[string]*model.Event }

func (m *memEvents) Create(_ context.Context, e *model.Event) error {
	if m.byID == nil {
		m.byID = map[string]*model.Event{}
	}
	m.byID[e.ID] = e
	return nil
}

func (m *memEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.byID[id]; ok {
		return e, nil
	}
	return nil, repository.ErrNotFound
}

type memStudents struct {
	byID map[string]*model.Student
	err  error
}

func (m *memStudents) Create(_ context.Context, s *model.Student) error {
	if m.byID == nil {
		m.byID = map[string]*model.Student{}
	}
	m.byID[s.ID] = s
	return nil
}

func (m *memStudents) GetByID(_ context.Context, id string) (*model.Student, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

// memRegs is a registration store with no storage-level constraints unless
// unique is set, so the unguarded read-then-write path can be observed.
type memRegs struct {
	mu   sync.Mutex
	rows []model.Registration

	unique bool
	// staleFinds makes the first N Find calls miss, as if another request
	// inserted between the read and the write.
	staleFinds int
	// afterMaxToken, when set, runs after MaxToken has read but before it
	// returns.
	afterMaxToken func()
	findErr       error
	insertErr     error
	inserts       int
}

func (m *memRegs) Find(_ context.Context, eventID string, key model.Key) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.staleFinds > 0 {
		m.staleFinds--
		return nil, repository.ErrNotFound
	}
	for i := range m.rows {
		r := m.rows[i]
		if r.EventID != eventID {
			continue
		}
		if (key.Kind == model.KeyEmail && r.Email == key.Value) ||
			(key.Kind == model.KeyTeamName && r.TeamName != "" && r.TeamName == key.Value) {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRegs) MaxToken(_ context.Context, eventID string) (int, error) {
	m.mu.Lock()
	maxToken := 0
	for _, r := range m.rows {
		if r.EventID == eventID && r.Token > maxToken {
			maxToken = r.Token
		}
	}
	m.mu.Unlock()

	if m.afterMaxToken != nil {
		m.afterMaxToken()
	}
	return maxToken, nil
}

func (m *memRegs) Insert(_ context.Context, reg *model.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.unique {
		for _, r := range m.rows {
			if r.EventID != reg.EventID {
				continue
			}
			if r.Email == reg.Email || r.Token == reg.Token ||
				(reg.TeamName != "" && r.TeamName == reg.TeamName) {
				return repository.ErrDuplicate
			}
		}
	}
	m.rows = append(m.rows, *reg)
	return nil
}

func (m *memRegs) ListByEvent(_ context.Context, eventID string) ([]model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Registration
	for _, r := range m.rows {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRegs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// recordingNotifier captures notifications and optionally fails them.
type recordingNotifier struct {
	mu   sync.Mutex
	regs []model.Registration
	err  error
}

func (n *recordingNotifier) NotifyRegistration(_ context.Context, _ *model.Event, reg *model.Registration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.regs = append(n.regs, *reg)
	return n.err
}

var errStoreDown = errors.New("store unavailable")
