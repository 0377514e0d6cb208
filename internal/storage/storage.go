package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/giannisanni/movieratings/internal/models"
)

// Store memoizes movie metadata by normalized title.
type Store interface {
	Get(ctx context.Context, key string) (models.MovieMetadata, bool, error)
	Put(ctx context.Context, key string, meta models.MovieMetadata) error
	Close() error
}

type memoryEntry struct {
	meta     models.MovieMetadata
	storedAt time.Time
}

// MemoryStore keeps metadata in process memory.
type MemoryStore struct {
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store. A zero ttl keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (models.MovieMetadata, bool, error) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()
	if !exists {
		return models.MovieMetadata{}, false, nil
	}
	if s.expired(entry) {
		s.Delete(key)
		return models.MovieMetadata{}, false, nil
	}
	return entry.meta, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, meta models.MovieMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{meta: meta, storedAt: s.now()}
	return nil
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) expired(entry memoryEntry) bool {
	return s.ttl > 0 && s.now().Sub(entry.storedAt) > s.ttl
}

// Open returns the store for driver: "none" or "" (no memoization, nil
// store), "memory", "sqlite" or "postgres".
func Open(ctx context.Context, driver, dsn string, ttl time.Duration) (Store, error) {
	switch driver {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(ttl), nil
	case "sqlite", "postgres":
		s, err := OpenSQL(ctx, driver, dsn, ttl)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", driver)
	}
}
