package interfaces

import (
	"go-market-cache/internal/models"
)

//go:generate mockgen -package=mock -source=store.go -destination=mock/store.go

// Store holds cache entries by key. Implementations never judge freshness:
// an entry is returned for as long as the store retains it, so that callers
// can fall back to stale data when a refresh fails.
type Store interface {
	Get(key string) (*models.CacheEntry, bool) // returns entry and found flag
	Set(entry *models.CacheEntry)
	Delete(key string)
	Clear()
	Len() int
}
