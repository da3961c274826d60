package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// Store is an in-memory implementation of the simpleshare.KVStore interface.
// TTLs are enforced lazily: an entry past its deadline reads as absent and
// is dropped when encountered.
type Store struct {
	mu       sync.RWMutex
	values   map[string][]byte
	deadline map[string]time.Time
	now      func() time.Time
}

// New creates a new in-memory metadata store
func New() *Store {
	return &Store{
		values:   make(map[string][]byte),
		deadline: make(map[string]time.Time),
		now:      time.Now,
	}
}

// NewWithClock creates a store using the given time source. Intended for
// tests that simulate expiry.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// Get returns the value for key, or simpleshare.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dropIfDead(key) {
		return nil, simpleshare.ErrKeyNotFound
	}
	value, exists := s.values[key]
	if !exists {
		return nil, simpleshare.ErrKeyNotFound
	}
	// Return a copy to prevent external modifications
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put stores value under key with no expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	delete(s.deadline, key)
	return nil
}

// PutWithTTL stores value under key, dropping it after ttl.
func (s *Store) PutWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Put(ctx, key, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	s.deadline[key] = s.now().Add(ttl)
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	delete(s.deadline, key)
	return nil
}

// List returns all live keys with the given prefix in lexicographic order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0)
	for key := range s.values {
		if len(key) < len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		if s.dropIfDead(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// dropIfDead removes an entry whose TTL has passed. Caller holds the lock.
func (s *Store) dropIfDead(key string) bool {
	dl, ok := s.deadline[key]
	if !ok || s.now().Before(dl) {
		return false
	}
	delete(s.values, key)
	delete(s.deadline, key)
	return true
}
