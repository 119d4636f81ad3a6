package l1

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
	"go.uber.org/zap"

	"go-market-cache/internal/config"
	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/metrics"
	"go-market-cache/internal/models"
	"go-market-cache/internal/scheduler"
)

// Ensure BigCache implements interfaces.Store
var _ interfaces.Store = (*BigCache)(nil)

const metricsInterval = 30 * time.Second

// BigCache implements the L1 store using BigCache. Entries live for the
// configured retention window regardless of their freshness TTL, so expired
// data stays available as a stale fallback.
type BigCache struct {
	cache            *bigcache.BigCache
	logger           *zap.Logger
	metricsScheduler *scheduler.Scheduler
}

// NewBigCache creates a new BigCache instance
func NewBigCache(bigcacheCfg *config.BigCacheConfig, logger *zap.Logger) (interfaces.Store, error) {
	cfg := bigcache.DefaultConfig(bigcacheCfg.Retention)
	cfg.Shards = bigcacheCfg.Shards
	cfg.HardMaxCacheSize = bigcacheCfg.Size // Size in MB
	cfg.MaxEntrySize = bigcacheCfg.MaxEntrySize
	cfg.MaxEntriesInWindow = 1000
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	bc := &BigCache{
		cache:  cache,
		logger: logger,
	}

	// Start periodic metrics collection
	bc.startMetricsCollection()

	return bc, nil
}

// Get retrieves the entry stored under key
func (bc *BigCache) Get(key string) (*models.CacheEntry, bool) {
	data, err := bc.cache.Get(key)
	if err != nil {
		if !errors.Is(err, bigcache.ErrEntryNotFound) {
			bc.logger.Warn("L1 cache get error", zap.String("key", key), zap.Error(err))
			metrics.RecordCacheError("l1", "read")
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		bc.logger.Warn("Failed to unmarshal L1 cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l1", "decode")
		_ = bc.cache.Delete(key) // Remove corrupted entry
		return nil, false
	}

	return &entry, true
}

// Set stores the entry under entry.Key
func (bc *BigCache) Set(entry *models.CacheEntry) {
	if entry == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		bc.logger.Error("Failed to marshal cache entry", zap.String("key", entry.Key), zap.Error(err))
		metrics.RecordCacheError("l1", "encode")
		return
	}

	if err := bc.cache.Set(entry.Key, data); err != nil {
		bc.logger.Error("Failed to set cache entry", zap.String("key", entry.Key), zap.Error(err))
		metrics.RecordCacheError("l1", "write")
		return
	}
}

// Delete removes entry from cache
func (bc *BigCache) Delete(key string) {
	_ = bc.cache.Delete(key)
}

// Clear removes all entries
func (bc *BigCache) Clear() {
	if err := bc.cache.Reset(); err != nil {
		bc.logger.Error("Failed to reset L1 cache", zap.Error(err))
		metrics.RecordCacheError("l1", "reset")
	}
}

// Len returns the number of stored entries
func (bc *BigCache) Len() int {
	return bc.cache.Len()
}

// Close closes the cache
func (bc *BigCache) Close() error {
	// Stop metrics collection
	bc.stopMetricsCollection()

	return bc.cache.Close()
}

// GetStats returns cache statistics for metrics
func (bc *BigCache) GetStats() (capacity, used int64) {
	stats := bc.cache.Stats()
	capacity = int64(bc.cache.Capacity())
	used = int64(stats.Hits + stats.Misses) // Approximate usage based on operations

	return capacity, used
}

// startMetricsCollection starts periodic metrics collection
func (bc *BigCache) startMetricsCollection() {
	bc.metricsScheduler = scheduler.New(metricsInterval, func(context.Context) {
		bc.updateMetrics()
	})
	bc.metricsScheduler.Start()

	// Initial collection
	bc.updateMetrics()

	bc.logger.Debug("Started L1 cache metrics collection")
}

// stopMetricsCollection stops periodic metrics collection
func (bc *BigCache) stopMetricsCollection() {
	if bc.metricsScheduler != nil {
		bc.metricsScheduler.Stop()
		bc.logger.Debug("Stopped L1 cache metrics collection")
	}
}

// updateMetrics updates cache metrics
func (bc *BigCache) updateMetrics() {
	capacity, used := bc.GetStats()
	metrics.UpdateL1CacheCapacity(capacity, used)
	metrics.UpdateCacheKeys("l1", int64(bc.cache.Len()))
}
