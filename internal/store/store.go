// Package store keeps finished audit reports so they can be fetched again by ID.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/Bahjat/site-audit/backend/internal/model"
)

// ErrNotFound is returned by Get for an unknown report ID.
var ErrNotFound = errors.New("report not found")

var errMissingID = errors.New("report has no id")

// MemoryStore holds reports in process memory. Oldest reports are evicted once
// capacity is reached; a capacity of zero or less means unbounded.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	reports  map[string]*model.AuditReport
	order    []string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		reports:  make(map[string]*model.AuditReport),
	}
}

// Save stores report under its ID, replacing any earlier report with the same ID.
func (s *MemoryStore) Save(ctx context.Context, report *model.AuditReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if report == nil || report.ID == "" {
		return errMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[report.ID]; !ok {
		s.order = append(s.order, report.ID)
	}
	s.reports[report.ID] = report

	for s.capacity > 0 && len(s.order) > s.capacity {
		delete(s.reports, s.order[0])
		s.order = s.order[1:]
	}
	return nil
}

// Get returns the report stored under id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.AuditReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return report, nil
}
