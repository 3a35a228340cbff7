package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counterKey struct {
	identity string
	endpoint string
}

// MemoryStore is an in-process CounterStore. Timestamps older than the
// retention are dropped, so retention must be at least the largest window
// any Gate checks against it.
type MemoryStore struct {
	mu        sync.Mutex
	retention time.Duration
	entries   map[counterKey][]time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	return &MemoryStore{
		retention: retention,
		entries:   make(map[counterKey][]time.Time),
	}
}

// Count returns how many entries for the pair are at or after since.
func (s *MemoryStore) Count(ctx context.Context, identity, endpoint string, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, at := range s.entries[counterKey{identity, endpoint}] {
		if !at.Before(since) {
			n++
		}
	}
	return n, nil
}

// Record appends at and drops expired entries of the same pair.
func (s *MemoryStore) Record(ctx context.Context, identity, endpoint string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := counterKey{identity, endpoint}
	s.entries[key] = append(prune(s.entries[key], at.Add(-s.retention)), at)
	return nil
}

// Prune drops expired entries of every pair and forgets pairs left empty.
func (s *MemoryStore) Prune(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-s.retention)
	for key, times := range s.entries {
		kept := prune(times, cutoff)
		if len(kept) == 0 {
			delete(s.entries, key)
			continue
		}
		s.entries[key] = kept
	}
}

// RunJanitor calls Prune every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Prune(now)
		}
	}
}

// Len reports the number of pairs currently tracked.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func prune(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, at := range times {
		if !at.Before(cutoff) {
			kept = append(kept, at)
		}
	}
	return kept
}
