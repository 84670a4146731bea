package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/johnhkchen/solar-sim/internal/exposure"
)

var (
	// ErrNotFound is returned when no result is cached under a key.
	ErrNotFound = errors.New("no exposure result for key")
)

// Store caches seasonal exposure results by key.
type Store interface {
	Save(ctx context.Context, key string, result exposure.SeasonalExposure) error
	Get(ctx context.Context, key string) (exposure.SeasonalExposure, error)
}

type entry struct {
	result  exposure.SeasonalExposure
	savedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu sync.RWMutex

	data map[string]entry

	// retention configuration
	maxEntries int           // max number of cached results
	maxAge     time.Duration // optional max age for results

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save stores result under key and enforces retention.
func (s *MemoryStore) Save(_ context.Context, key string, result exposure.SeasonalExposure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.data[key] = entry{result: result, savedAt: now}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := now.Add(-s.maxAge)
		for k, e := range s.data {
			if e.savedAt.Before(cutoff) {
				delete(s.data, k)
			}
		}
	}

	// Enforce retention by count, oldest first.
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		var (
			oldestKey string
			oldest    time.Time
			found     bool
		)
		for k, e := range s.data {
			if !found || e.savedAt.Before(oldest) {
				oldestKey, oldest, found = k, e.savedAt, true
			}
		}
		delete(s.data, oldestKey)
	}
	return nil
}

// Get returns the result cached under key unless it has expired.
func (s *MemoryStore) Get(_ context.Context, key string) (exposure.SeasonalExposure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		return exposure.SeasonalExposure{}, ErrNotFound
	}
	if s.maxAge > 0 && s.now().Sub(e.savedAt) > s.maxAge {
		return exposure.SeasonalExposure{}, ErrNotFound
	}
	return e.result, nil
}

// Len reports how many results are held, including expired ones not yet evicted.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
