package noop

import (
	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/models"
)

// Ensure NoOpStore implements interfaces.Store
var _ interfaces.Store = (*NoOpStore)(nil)

// NoOpStore is a no-operation store used for disabled cache levels
type NoOpStore struct{}

// NewNoOpStore creates a new no-operation store instance
func NewNoOpStore() interfaces.Store {
	return &NoOpStore{}
}

// Get always returns a miss
func (n *NoOpStore) Get(key string) (*models.CacheEntry, bool) {
	return nil, false
}

// Set does nothing
func (n *NoOpStore) Set(entry *models.CacheEntry) {
	// No-op
}

// Delete does nothing
func (n *NoOpStore) Delete(key string) {
	// No-op
}

// Clear does nothing
func (n *NoOpStore) Clear() {
	// No-op
}

// Len is always zero
func (n *NoOpStore) Len() int {
	return 0
}
