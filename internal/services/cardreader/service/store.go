package service

import (
	"context"
	"sync/atomic"
	"time"

	"readnfc/internal/services/cardreader/domain"
)

// Store is the single UID slot shared by the monitor (writer) and queries (readers)
// each write swaps a whole snapshot so readers never see a torn value
type Store struct {
	p   atomic.Pointer[domain.Snapshot]
	now func() time.Time
}

// NewStore returns an empty Store
func NewStore() *Store {
	s := &Store{now: time.Now}
	s.p.Store(&domain.Snapshot{})
	return s
}

// Set records a card UID
func (s *Store) Set(uid string) {
	s.p.Store(&domain.Snapshot{UID: uid, Since: s.now().UTC()})
}

// Clear records that no card is present
func (s *Store) Clear() {
	s.p.Store(&domain.Snapshot{Since: s.now().UTC()})
}

// Get returns the held UID or "" when no card is present
func (s *Store) Get() string { return s.p.Load().UID }

// Snapshot returns the full slot value
func (s *Store) Snapshot() domain.Snapshot { return *s.p.Load() }

// CurrentUID implements domain.QueryPort
func (s *Store) CurrentUID(_ context.Context) (string, bool) {
	v := s.Get()
	return v, v != ""
}
