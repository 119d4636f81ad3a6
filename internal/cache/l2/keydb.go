package l2

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"go-market-cache/internal/config"
	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/metrics"
	"go-market-cache/internal/models"
)

// Ensure KeyDBCache implements interfaces.Store
var _ interfaces.Store = (*KeyDBCache)(nil)

const scanBatch = 500

// KeyDBCache implements the shared L2 store using Redis/KeyDB. Keys are
// namespaced by the configured prefix and expire after the retention window.
type KeyDBCache struct {
	client interfaces.KeyDbClient
	config *config.KeyDBConfig
	logger *zap.Logger
}

// NewKeyDBCache creates a new KeyDBCache instance with provided client
func NewKeyDBCache(cfg *config.KeyDBConfig, client interfaces.KeyDbClient, logger *zap.Logger) interfaces.Store {
	return &KeyDBCache{
		client: client,
		config: cfg,
		logger: logger,
	}
}

func (kc *KeyDBCache) key(key string) string {
	return kc.config.KeyPrefix + key
}

// Get retrieves the entry stored under key
func (kc *KeyDBCache) Get(key string) (*models.CacheEntry, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), kc.config.Connection.ReadTimeout)
	defer cancel()

	data, err := kc.client.Get(ctx, kc.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			kc.logger.Error("L2 cache get error", zap.String("key", key), zap.Error(err))
			metrics.RecordCacheError("l2", "read")
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		kc.logger.Error("Failed to unmarshal L2 cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l2", "decode")
		kc.Delete(key)
		return nil, false
	}

	return &entry, true
}

// Set stores the entry for the retention window
func (kc *KeyDBCache) Set(entry *models.CacheEntry) {
	if entry == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), kc.config.Connection.SendTimeout)
	defer cancel()

	data, err := json.Marshal(entry)
	if err != nil {
		kc.logger.Error("Failed to marshal L2 cache entry", zap.String("key", entry.Key), zap.Error(err))
		metrics.RecordCacheError("l2", "encode")
		return
	}

	if err := kc.client.Set(ctx, kc.key(entry.Key), data, kc.config.Retention).Err(); err != nil {
		kc.logger.Error("Failed to set L2 cache entry", zap.String("key", entry.Key), zap.Error(err))
		metrics.RecordCacheError("l2", "write")
		return
	}
}

// Delete removes entry from KeyDB cache
func (kc *KeyDBCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), kc.config.Connection.SendTimeout)
	defer cancel()

	if err := kc.client.Del(ctx, kc.key(key)).Err(); err != nil {
		kc.logger.Error("Failed to delete L2 cache entry", zap.String("key", key), zap.Error(err))
		metrics.RecordCacheError("l2", "delete")
	}
}

// Clear deletes every key under the prefix
func (kc *KeyDBCache) Clear() {
	deleted := 0
	err := kc.scan(func(keys []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), kc.config.Connection.SendTimeout)
		defer cancel()

		if err := kc.client.Del(ctx, keys...).Err(); err != nil {
			return err
		}
		deleted += len(keys)
		return nil
	})
	if err != nil {
		kc.logger.Error("Failed to clear L2 cache", zap.Int("deleted", deleted), zap.Error(err))
		metrics.RecordCacheError("l2", "clear")
		return
	}

	kc.logger.Info("Cleared L2 cache", zap.Int("deleted", deleted))
}

// Len counts the keys under the prefix. It walks the keyspace and is meant
// for diagnostics only.
func (kc *KeyDBCache) Len() int {
	count := 0
	err := kc.scan(func(keys []string) error {
		count += len(keys)
		return nil
	})
	if err != nil {
		kc.logger.Error("Failed to count L2 cache keys", zap.Error(err))
		metrics.RecordCacheError("l2", "scan")
	}

	metrics.UpdateCacheKeys("l2", int64(count))
	return count
}

// scan walks all keys under the prefix and hands each non-empty batch to fn
func (kc *KeyDBCache) scan(fn func(keys []string) error) error {
	var cursor uint64
	for {
		ctx, cancel := context.WithTimeout(context.Background(), kc.config.Connection.ReadTimeout)
		keys, next, err := kc.client.Scan(ctx, cursor, kc.config.KeyPrefix+"*", scanBatch).Result()
		cancel()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the KeyDB connection
func (kc *KeyDBCache) Close() error {
	return kc.client.Close()
}
