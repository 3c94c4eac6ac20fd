package memory

import (
	"sort"
	"sync"

	"github.com/samijaber1/alcometer/internal/storage"
)

// Store is a thread-safe in-memory HistoryStorage. It keeps at most capacity
// records and evicts the oldest first.
type Store struct {
	mu       sync.RWMutex
	records  map[string]*storage.Record
	order    []string
	capacity int
}

// NewStore creates a new in-memory store; capacity <= 0 means unbounded
func NewStore(capacity int) *Store {
	return &Store{
		records:  make(map[string]*storage.Record),
		capacity: capacity,
	}
}

// StoreEstimation stores a copy of the record
func (s *Store) StoreEstimation(record *storage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *record
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = &rec

	for s.capacity > 0 && len(s.order) > s.capacity {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}

	return nil
}

// GetEstimation retrieves a record by ID
func (s *Store) GetEstimation(id string) (*storage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[id]
	if !exists {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

// QueryHistory returns matching records newest first
func (s *Store) QueryHistory(filter storage.HistoryFilter) ([]storage.Record, error) {
	s.mu.RLock()
	matched := make([]storage.Record, 0, len(s.records))
	for _, id := range s.order {
		rec := s.records[id]
		if filter.Matches(rec) {
			matched = append(matched, *rec)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	if filter.Offset > 0 {
		matched = matched[filter.Offset:]
	}
	if limit := filter.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Size returns the number of stored records
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}
