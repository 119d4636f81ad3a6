package cache_rules

import (
	"time"

	"go-market-cache/internal/models"
)

// TTLDefaults maps each volatility tier to its freshness window
type TTLDefaults map[models.Tier]time.Duration

// CacheRulesConfig represents the cache rules configuration
type CacheRulesConfig struct {
	TTLDefaults TTLDefaults                      `yaml:"ttl_defaults"`
	Rules       map[models.Operation]models.Tier `yaml:"rules"`
}

// DefaultCacheRules returns the built-in operation tiers and tier windows
func DefaultCacheRules() CacheRulesConfig {
	return CacheRulesConfig{
		TTLDefaults: TTLDefaults{
			models.TierShort: 60 * time.Second,
			models.TierLong:  300 * time.Second,
		},
		Rules: map[models.Operation]models.Tier{
			models.OperationTopCoins:        models.TierShort,
			models.OperationCoin:            models.TierShort,
			models.OperationPrices:          models.TierShort,
			models.OperationHistoryIntraday: models.TierShort,
			models.OperationHistory:         models.TierLong,
			models.OperationGlobal:          models.TierLong,
			models.OperationSearch:          models.TierLong,
		},
	}
}
