package cache_rules

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadCacheRulesConfig loads cache rules from a standalone YAML file. It is
// used when the rules are kept outside the main config file.
func LoadCacheRulesConfig(rulesPath string, logger *zap.Logger) (*CacheConfig, error) {
	logger.Info("Loading cache rules config", zap.String("path", rulesPath))

	file, err := os.Open(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache rules file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var config CacheRulesConfig
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode YAML cache rules: %w", err)
	}

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("cache rules validation failed: %w", err)
	}

	logger.Info("Cache rules config loaded successfully",
		zap.Int("rules", len(config.Rules)))

	return NewCacheConfig(&config, logger), nil
}

// ValidateConfig validates the cache rules configuration structure
func ValidateConfig(config *CacheRulesConfig) error {
	if len(config.TTLDefaults) == 0 {
		return fmt.Errorf("missing ttl_defaults section")
	}

	if len(config.Rules) == 0 {
		return fmt.Errorf("missing rules section")
	}

	for tier, ttl := range config.TTLDefaults {
		if ttl <= 0 {
			return fmt.Errorf("ttl_defaults.%s must be positive, got %s", tier, ttl)
		}
	}

	return nil
}
