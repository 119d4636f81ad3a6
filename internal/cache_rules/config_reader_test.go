package cache_rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-market-cache/internal/models"
)

func createTempYAMLFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache_rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCacheRulesConfig_Success(t *testing.T) {
	logger := zaptest.NewLogger(t)

	validYAML := `
ttl_defaults:
  short: 30s
  long: 10m

rules:
  top_coins: short
  global: long
  search: long
`

	cacheConfig, err := LoadCacheRulesConfig(createTempYAMLFile(t, validYAML), logger)

	require.NoError(t, err)
	require.NotNil(t, cacheConfig)

	assert.Equal(t, 30*time.Second, cacheConfig.GetTTLForTier(models.TierShort))
	assert.Equal(t, 10*time.Minute, cacheConfig.GetTTLForTier(models.TierLong))
	assert.Equal(t, models.TierLong, cacheConfig.GetTierForOperation(models.OperationGlobal))
	assert.Equal(t, models.TierShort, cacheConfig.GetTierForOperation(models.OperationTopCoins))
	assert.Len(t, cacheConfig.GetAllOperations(), 3)
}

func TestLoadCacheRulesConfig_FileNotFound(t *testing.T) {
	logger := zaptest.NewLogger(t)

	config, err := LoadCacheRulesConfig("/nonexistent/file.yaml", logger)

	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to open cache rules file")
}

func TestLoadCacheRulesConfig_InvalidTier(t *testing.T) {
	logger := zaptest.NewLogger(t)

	invalidYAML := `
ttl_defaults:
  short: 30s
rules:
  coin: permanent
`

	config, err := LoadCacheRulesConfig(createTempYAMLFile(t, invalidYAML), logger)

	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "invalid cache tier")
}

func TestLoadCacheRulesConfig_MissingSections(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing ttl_defaults",
			yaml:    "rules:\n  coin: short\n",
			wantErr: "missing ttl_defaults section",
		},
		{
			name:    "missing rules",
			yaml:    "ttl_defaults:\n  short: 30s\n",
			wantErr: "missing rules section",
		},
		{
			name:    "non-positive window",
			yaml:    "ttl_defaults:\n  short: 0s\nrules:\n  coin: short\n",
			wantErr: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadCacheRulesConfig(createTempYAMLFile(t, tt.yaml), logger)

			assert.Error(t, err)
			assert.Nil(t, config)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
