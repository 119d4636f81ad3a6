package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go-market-cache/internal/auth"
	"go-market-cache/internal/cache/noop"
	"go-market-cache/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market_cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// --config exports CACHE_CONFIG_FILE; restore it afterwards
	t.Setenv("CACHE_CONFIG_FILE", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigValidateCommand(t *testing.T) {
	t.Setenv("MARKET_API_BASE_URL", "")
	t.Setenv("MARKET_API_KEY", "")
	t.Setenv("ADMIN_JWT_SECRET", "")

	t.Run("valid file", func(t *testing.T) {
		path := writeConfig(t, `
provider:
  base_url: https://api.example.com/api/v3
  api_key_header: x-api-key
  timeout: 5s
  max_page_size: 100
  vs_currency: usd
l1:
  backend: memory
`)
		out, err := execute(t, "--config", path, "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration is valid")
		assert.Contains(t, out, "https://api.example.com/api/v3 (usd)")
	})

	t.Run("invalid backend", func(t *testing.T) {
		path := writeConfig(t, `
l1:
  backend: disk
`)
		_, err := execute(t, "--config", path, "config", "validate")
		assert.Error(t, err)
	})
}

func TestAdminTokenCommand(t *testing.T) {
	t.Setenv("MARKET_API_BASE_URL", "")
	t.Setenv("MARKET_API_KEY", "")

	t.Run("issues verifiable token", func(t *testing.T) {
		t.Setenv("ADMIN_JWT_SECRET", "s3cret")
		path := writeConfig(t, "")

		out, err := execute(t, "--config", path, "admin-token", "--subject", "ci", "--ttl", "5m")
		require.NoError(t, err)

		claims, err := auth.Verify(strings.TrimSpace(out), "s3cret", auth.ScopeCacheAdmin)
		require.NoError(t, err)
		assert.Equal(t, "ci", claims.Subject)
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
	})

	t.Run("requires a secret", func(t *testing.T) {
		t.Setenv("ADMIN_JWT_SECRET", "")
		path := writeConfig(t, "")

		_, err := execute(t, "--config", path, "admin-token")
		assert.Error(t, err)
	})
}

func TestGetKeyDBURL(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("KEYDB_URL", "redis://env:6379")
		assert.Equal(t, "redis://env:6379", GetKeyDBURL(logger))
	})

	t.Run("connection file", func(t *testing.T) {
		t.Setenv("KEYDB_URL", "")
		path := filepath.Join(t.TempDir(), ".keydb-url")
		require.NoError(t, os.WriteFile(path, []byte("  redis://file:6379\n"), 0o600))
		t.Setenv("CACHE_KEYDB_URL_FILE", path)

		assert.Equal(t, "redis://file:6379", GetKeyDBURL(logger))
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("KEYDB_URL", "")
		t.Setenv("CACHE_KEYDB_URL_FILE", filepath.Join(t.TempDir(), "missing"))

		assert.Equal(t, defaultKeyDBURL, GetKeyDBURL(logger))
	})
}

func TestCompositionRoot_MemoryStore(t *testing.T) {
	t.Setenv("MARKET_API_BASE_URL", "")
	t.Setenv("MARKET_API_KEY", "")
	t.Setenv("ADMIN_JWT_SECRET", "")
	t.Setenv("CACHE_RULES_FILE", "")
	t.Setenv("CACHE_CONFIG_FILE", writeConfig(t, "l2:\n  enabled: false\n"))

	root, err := NewCompositionRoot(zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, root.Cleanup()) }()

	assert.Nil(t, root.L2Store)
	assert.Same(t, root.L1Store, root.Store)
	assert.Equal(t, models.TierShort, root.CacheRules.TierFor(models.OperationCoin))
	assert.NotNil(t, root.HTTPServer)
	assert.Equal(t, 0, root.Market.Stats().Entries)
}

func TestCompositionRoot_DisabledL1(t *testing.T) {
	t.Setenv("MARKET_API_BASE_URL", "")
	t.Setenv("MARKET_API_KEY", "")
	t.Setenv("ADMIN_JWT_SECRET", "")
	t.Setenv("CACHE_RULES_FILE", "")
	t.Setenv("CACHE_CONFIG_FILE", writeConfig(t, "l1:\n  backend: none\n"))

	root, err := NewCompositionRoot(zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { assert.NoError(t, root.Cleanup()) }()

	assert.IsType(t, &noop.NoOpStore{}, root.Store)
}

func TestRenderCoins(t *testing.T) {
	rank := 1
	var buf bytes.Buffer

	err := renderCoins(&buf, []models.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 43250.5, MarketCap: 8.5e11, TotalVolume: 2.1e10, MarketCapRank: &rank},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "BTC")
	assert.Contains(t, lines[1], "$43,250.50")
	assert.Contains(t, lines[1], "$850.00B")
}
