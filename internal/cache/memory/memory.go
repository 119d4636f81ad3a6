package memory

import (
	"sync"

	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/models"
)

// Ensure MemoryStore implements interfaces.Store
var _ interfaces.Store = (*MemoryStore)(nil)

// MemoryStore is a map-backed store. It never evicts: entries stay until
// they are overwritten, deleted or the store is cleared.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*models.CacheEntry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*models.CacheEntry),
	}
}

// Get returns the entry stored under key
func (s *MemoryStore) Get(key string) (*models.CacheEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// Set replaces the entry stored under entry.Key
func (s *MemoryStore) Set(entry *models.CacheEntry) {
	if entry == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = entry
}

// Delete removes the entry stored under key
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Clear removes all entries
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*models.CacheEntry)
}

// Len returns the number of entries
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
