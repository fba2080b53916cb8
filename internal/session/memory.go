package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory. It is the default
// store for a single-process run.
type MemoryStore struct {
	mu   sync.RWMutex
	snap Snapshot
	set  bool
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return Snapshot{}, ErrNoSession
	}
	out := s.snap
	out.Account = s.snap.Account.Clone()
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.Account = snap.Account.Clone()
	s.snap = snap
	s.set = true
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{}
	s.set = false
	return nil
}
