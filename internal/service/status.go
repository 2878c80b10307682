package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-portal/internal/model"
)

// StatusService serves the fire status through a read cache. A cached value
// is served for at most ttl after it was read or written; Set always writes
// through to the store.
type StatusService struct {
	store StatusStore
	ttl   time.Duration
	now   func() time.Time

	mu        sync.RWMutex
	cached    *model.AdminStatus
	fetchedAt time.Time
}

// NewStatusService constructs a StatusService. A zero ttl disables caching.
func NewStatusService(store StatusStore, ttl time.Duration) *StatusService {
	return &StatusService{store: store, ttl: ttl, now: time.Now}
}

// Get returns the current status, possibly up to ttl stale.
func (s *StatusService) Get(ctx context.Context) (model.AdminStatus, error) {
	if st, ok := s.fresh(); ok {
		return st, nil
	}

	st, err := s.store.Get(ctx)
	if err != nil {
		return model.AdminStatus{}, fmt.Errorf("get status: %w", err)
	}
	s.remember(st)
	return *st, nil
}

// Set stores a new fire status and refreshes the cache.
func (s *StatusService) Set(ctx context.Context, fireActive bool) (model.AdminStatus, error) {
	st, err := s.store.Set(ctx, fireActive)
	if err != nil {
		return model.AdminStatus{}, fmt.Errorf("set status: %w", err)
	}
	s.remember(st)
	return *st, nil
}

func (s *StatusService) fresh() (model.AdminStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached == nil || s.ttl <= 0 || s.now().Sub(s.fetchedAt) >= s.ttl {
		return model.AdminStatus{}, false
	}
	return *s.cached, true
}

func (s *StatusService) remember(st *model.AdminStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Never replace a newer version with an older read.
	if s.cached != nil && st.Version < s.cached.Version {
		s.fetchedAt = s.now()
		return
	}
	cp := *st
	s.cached = &cp
	s.fetchedAt = s.now()
}
