package interfaces

import (
	"time"

	"go-market-cache/internal/models"
)

//go:generate mockgen -package=mock -source=cache_rules.go -destination=mock/cache_rules.go

// CacheRulesClassifier maps logical operations to freshness windows
type CacheRulesClassifier interface {
	// TierFor returns the volatility tier configured for an operation
	TierFor(op models.Operation) models.Tier
	// TTLFor returns how long a cached result of op is considered fresh
	TTLFor(op models.Operation) time.Duration
}
