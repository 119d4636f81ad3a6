package cache_rules

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"go-market-cache/internal/models"
)

// CacheConfig answers tier and TTL lookups over a CacheRulesConfig
type CacheConfig struct {
	config *CacheRulesConfig
	logger *zap.Logger
}

// NewCacheConfig creates a new CacheConfig instance
func NewCacheConfig(config *CacheRulesConfig, logger *zap.Logger) *CacheConfig {
	if config == nil {
		panic("config cannot be nil")
	}
	return &CacheConfig{
		config: config,
		logger: logger,
	}
}

// GetTTLForTier returns the configured window for a tier, falling back to
// the built-in defaults when the tier is missing or non-positive.
func (cr *CacheConfig) GetTTLForTier(tier models.Tier) time.Duration {
	if ttl, ok := cr.config.TTLDefaults[tier]; ok && ttl > 0 {
		return ttl
	}
	return getFallbackTTL(tier)
}

// GetTierForOperation returns the tier for op. Unknown operations are
// treated as volatile.
func (cr *CacheConfig) GetTierForOperation(op models.Operation) models.Tier {
	if tier, exists := cr.config.Rules[op]; exists {
		return tier
	}

	if cr.logger != nil {
		cr.logger.Debug("Operation not found in cache rules, using short tier",
			zap.String("operation", string(op)))
	}
	return models.TierShort
}

// GetAllOperations returns all configured operations, sorted
func (cr *CacheConfig) GetAllOperations() []models.Operation {
	ops := make([]models.Operation, 0, len(cr.config.Rules))
	for op := range cr.config.Rules {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// getFallbackTTL provides fallback TTL values when config is not available
func getFallbackTTL(tier models.Tier) time.Duration {
	if tier == models.TierLong {
		return 300 * time.Second
	}
	return 60 * time.Second
}
