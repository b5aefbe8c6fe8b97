package memory

import (
	"context"
	"sync"

	"github.com/Snoopiam/sales-offer-sub000/internal/storage"
)

// Store is an in-memory KeyValueStore with an optional byte capacity. It is
// the default backend for standalone runs and the one the store tests use to
// provoke quota failures deterministically.
type Store struct {
	mu       sync.Mutex
	capacity int64 // total bytes across keys and values, 0 means unbounded
	data     map[string]string
}

func New(capacity int64) *Store {
	return &Store{
		capacity: capacity,
		data:     make(map[string]string),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

func (s *Store) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 {
		total := int64(len(key) + len(value))
		for k, v := range s.data {
			if k == key {
				continue
			}
			total += int64(len(k) + len(v))
		}
		if total > s.capacity {
			return storage.ErrQuotaExceeded
		}
	}

	s.data[key] = value
	return nil
}

// Len reports the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
