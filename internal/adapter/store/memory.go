// Package store persists fused and custom records for the history listing.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
)

// Memory keeps history records in process. Contents are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	records []domain.HistoryRecord
	ids     map[string]struct{}
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

func (s *Memory) SaveFused(_ context.Context, rec domain.FusedRecord) error {
	hr, err := rec.HistoryRecord()
	if err != nil {
		return err
	}
	s.save(hr)
	return nil
}

func (s *Memory) SaveCustom(_ context.Context, rec domain.CustomRecord) error {
	hr, err := rec.HistoryRecord()
	if err != nil {
		return err
	}
	s.save(hr)
	return nil
}

// save ignores ids it has already seen; cache hits replay the same record.
func (s *Memory) save(hr domain.HistoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[hr.ID]; ok {
		return
	}
	s.ids[hr.ID] = struct{}{}
	s.records = append(s.records, hr)
}

// History returns up to limit records after skipping offset, newest first.
// Records with equal timestamps keep reverse insertion order.
func (s *Memory) History(_ context.Context, offset, limit int) ([]domain.HistoryRecord, error) {
	s.mu.RLock()
	sorted := make([]domain.HistoryRecord, len(s.records))
	for i, r := range s.records {
		sorted[len(s.records)-1-i] = r
	}
	s.mu.RUnlock()

	slices.SortStableFunc(sorted, func(a, b domain.HistoryRecord) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	if offset >= len(sorted) || limit <= 0 {
		return []domain.HistoryRecord{}, nil
	}
	end := min(offset+limit, len(sorted))
	return sorted[offset:end], nil
}
