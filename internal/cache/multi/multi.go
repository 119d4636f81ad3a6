package multi

import (
	"go.uber.org/zap"

	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/models"
)

// Ensure MultiStore implements interfaces.Store
var _ interfaces.Store = (*MultiStore)(nil)

// MultiStore implements a composite store that tries multiple store levels in order.
// Writes go to every level; a hit on a lower level can be propagated back to the
// levels above it.
type MultiStore struct {
	stores            []interfaces.Store
	logger            *zap.Logger
	enablePropagation bool
}

// NewMultiStore creates a new MultiStore instance with the provided levels, fastest first
func NewMultiStore(stores []interfaces.Store, logger *zap.Logger, enablePropagation bool) interfaces.Store {
	return &MultiStore{
		stores:            stores,
		logger:            logger,
		enablePropagation: enablePropagation,
	}
}

// Get retrieves the entry from the first level that has the key
func (ms *MultiStore) Get(key string) (*models.CacheEntry, bool) {
	if len(ms.stores) == 0 {
		ms.logger.Warn("No stores available for get operation", zap.String("key", key))
		return nil, false
	}

	for level, store := range ms.stores {
		entry, found := store.Get(key)
		if !found {
			continue
		}

		if ms.enablePropagation && level > 0 {
			ms.propagate(entry, level)
		}
		return entry, true
	}
	return nil, false
}

// propagate copies an entry found at level into every faster level
func (ms *MultiStore) propagate(entry *models.CacheEntry, level int) {
	for i := 0; i < level; i++ {
		ms.stores[i].Set(entry)
	}
	ms.logger.Debug("Propagated entry to upper store levels",
		zap.String("key", entry.Key),
		zap.Int("found_level", level))
}

// Set stores the entry in all levels
func (ms *MultiStore) Set(entry *models.CacheEntry) {
	if len(ms.stores) == 0 {
		ms.logger.Warn("No stores available for set operation")
		return
	}

	for _, store := range ms.stores {
		store.Set(entry)
	}
}

// Delete removes the key from all levels
func (ms *MultiStore) Delete(key string) {
	if len(ms.stores) == 0 {
		ms.logger.Warn("No stores available for delete operation", zap.String("key", key))
		return
	}

	for _, store := range ms.stores {
		store.Delete(key)
	}
}

// Clear empties all levels
func (ms *MultiStore) Clear() {
	for _, store := range ms.stores {
		store.Clear()
	}
}

// Len reports the entry count of the first level
func (ms *MultiStore) Len() int {
	if len(ms.stores) == 0 {
		return 0
	}
	return ms.stores[0].Len()
}

// GetStoreCount returns the number of levels in the multi-store
func (ms *MultiStore) GetStoreCount() int {
	return len(ms.stores)
}
