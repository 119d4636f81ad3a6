package cache_rules

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"go-market-cache/internal/models"
)

func TestNewClassifier(t *testing.T) {
	logger := zaptest.NewLogger(t)
	defaults := DefaultCacheRules()
	cacheConfig := NewCacheConfig(&defaults, logger)

	classifier := NewClassifier(logger, cacheConfig)

	if classifier == nil {
		t.Fatal("NewClassifier returned nil")
	}
	if classifier.logger != logger {
		t.Error("Logger not set correctly")
	}
	if classifier.configTTL != cacheConfig {
		t.Error("ConfigTTL not set correctly")
	}
}

func TestClassifier_TTLFor(t *testing.T) {
	config := &CacheRulesConfig{
		TTLDefaults: TTLDefaults{
			models.TierShort: 30 * time.Second,
			models.TierLong:  10 * time.Minute,
		},
		Rules: map[models.Operation]models.Tier{
			models.OperationGlobal: models.TierLong,
			models.OperationCoin:   models.TierShort,
		},
	}
	classifier := NewClassifier(zaptest.NewLogger(t), NewCacheConfig(config, nil))

	tests := []struct {
		name         string
		op           models.Operation
		expectedTier models.Tier
		expectedTTL  time.Duration
	}{
		{"long tier operation", models.OperationGlobal, models.TierLong, 10 * time.Minute},
		{"short tier operation", models.OperationCoin, models.TierShort, 30 * time.Second},
		{"unconfigured operation", models.OperationSearch, models.TierShort, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.TierFor(tt.op); got != tt.expectedTier {
				t.Errorf("TierFor(%s) = %v, want %v", tt.op, got, tt.expectedTier)
			}
			if got := classifier.TTLFor(tt.op); got != tt.expectedTTL {
				t.Errorf("TTLFor(%s) = %v, want %v", tt.op, got, tt.expectedTTL)
			}
		})
	}
}

func TestClassifier_DefaultWindows(t *testing.T) {
	defaults := DefaultCacheRules()
	classifier := NewClassifier(nil, NewCacheConfig(&defaults, nil))

	if got := classifier.TTLFor(models.OperationTopCoins); got != 60*time.Second {
		t.Errorf("top_coins TTL = %v, want 60s", got)
	}
	if got := classifier.TTLFor(models.OperationGlobal); got != 300*time.Second {
		t.Errorf("global TTL = %v, want 300s", got)
	}
}
