package journal

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps runs in memory.
type MemoryStore struct {
	runs   []*Run
	closed bool
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record implements Store.
func (s *MemoryStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	c := *run
	c.DroppedNames = append([]string(nil), run.DroppedNames...)
	s.runs = append(s.runs, &c)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, q Query) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	results := []*Run{}
	for _, r := range s.runs {
		if q.matches(r) {
			c := *r
			results = append(results, &c)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].StartedAt.After(results[j].StartedAt)
	})
	if len(results) > q.limit() {
		results = results[:q.limit()]
	}
	return results, nil
}

// Prune implements Store.
func (s *MemoryStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	kept := s.runs[:0]
	var removed int64
	for _, r := range s.runs {
		if r.StartedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.runs = kept
	return removed, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
