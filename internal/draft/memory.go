package draft

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the draft in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	draft WorkflowDraft
	now   func() time.Time
}

// NewMemoryStore creates a MemoryStore seeded with initial.
func NewMemoryStore(initial WorkflowDraft) *MemoryStore {
	return &MemoryStore{draft: initial, now: time.Now}
}

// Get returns the current draft.
func (s *MemoryStore) Get(ctx context.Context) (WorkflowDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, nil
}

// Merge applies p to the current draft.
func (s *MemoryStore) Merge(ctx context.Context, p Patch) (WorkflowDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.IsEmpty() {
		return s.draft, nil
	}
	s.draft = Apply(s.draft, p)
	s.draft.UpdatedAt = s.now().UTC()
	return s.draft, nil
}

// Reset discards the current draft.
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = WorkflowDraft{}
	return nil
}
