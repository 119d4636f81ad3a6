package cache_rules

import (
	"time"

	"go.uber.org/zap"

	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/models"
)

// Classifier implements the CacheRulesClassifier interface
type Classifier struct {
	logger    *zap.Logger
	configTTL *CacheConfig
}

// Ensure Classifier implements the CacheRulesClassifier interface
var _ interfaces.CacheRulesClassifier = (*Classifier)(nil)

// NewClassifier creates a new Classifier instance
func NewClassifier(logger *zap.Logger, configTTL *CacheConfig) *Classifier {
	return &Classifier{
		logger:    logger,
		configTTL: configTTL,
	}
}

// TierFor implements CacheRulesClassifier interface
func (c *Classifier) TierFor(op models.Operation) models.Tier {
	return c.configTTL.GetTierForOperation(op)
}

// TTLFor implements CacheRulesClassifier interface
func (c *Classifier) TTLFor(op models.Operation) time.Duration {
	return c.configTTL.GetTTLForTier(c.TierFor(op))
}
