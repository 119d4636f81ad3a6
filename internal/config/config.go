package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"go-market-cache/internal/cache_rules"
)

const (
	DefaultConfigPath   = "/app/market_cache.yaml"
	DefaultBaseURL      = "https://api.coingecko.com/api/v3"
	DefaultAPIKeyHeader = "x-cg-demo-api-key"
)

// Config represents the main configuration structure
type Config struct {
	Provider   ProviderConfig               `yaml:"provider"`
	CacheRules cache_rules.CacheRulesConfig `yaml:"cache_rules"`
	L1         L1Config                     `yaml:"l1"`
	L2         KeyDBConfig                  `yaml:"l2"`
	MultiCache MultiCacheConfig             `yaml:"multi_cache"`
	Warmer     WarmerConfig                 `yaml:"warmer"`
	Server     ServerConfig                 `yaml:"server"`
	Admin      AdminConfig                  `yaml:"admin"`
}

// ProviderConfig describes the upstream market data API
type ProviderConfig struct {
	BaseURL       string        `yaml:"base_url" validate:"required,url"`
	APIKey        string        `yaml:"api_key"`
	APIKeyHeader  string        `yaml:"api_key_header" validate:"required"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxPageSize   int           `yaml:"max_page_size" validate:"min=1,max=250"`
	MaxConcurrent int           `yaml:"max_concurrent" validate:"min=0"`
	VsCurrency    string        `yaml:"vs_currency" validate:"required,lowercase"`
}

// L1Config selects the in-process store
type L1Config struct {
	Backend  string         `yaml:"backend" validate:"oneof=memory bigcache none"`
	BigCache BigCacheConfig `yaml:"bigcache"`
}

// BigCacheConfig configures the bigcache backend. Retention is how long an
// entry survives in the store and must exceed the longest TTL tier for stale
// fallback to work.
type BigCacheConfig struct {
	Size         int           `yaml:"size" validate:"min=1"` // MB
	Shards       int           `yaml:"shards" validate:"min=1"`
	MaxEntrySize int           `yaml:"max_entry_size" validate:"min=1"`
	Retention    time.Duration `yaml:"retention" validate:"gt=0"`
}

// KeyDBConfig configures the shared KeyDB/Redis store
type KeyDBConfig struct {
	Enabled    bool             `yaml:"enabled"`
	KeyPrefix  string           `yaml:"key_prefix"`
	Retention  time.Duration    `yaml:"retention" validate:"gt=0"`
	Connection ConnectionConfig `yaml:"connection"`
	Keepalive  KeepaliveConfig  `yaml:"keepalive"`
}

type ConnectionConfig struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gt=0"`
	SendTimeout    time.Duration `yaml:"send_timeout" validate:"gt=0"`
	ReadTimeout    time.Duration `yaml:"read_timeout" validate:"gt=0"`
}

type KeepaliveConfig struct {
	PoolSize       int           `yaml:"pool_size" validate:"min=1"`
	MaxIdleTimeout time.Duration `yaml:"max_idle_timeout"`
}

type MultiCacheConfig struct {
	EnablePropagation bool `yaml:"enable_propagation"`
}

// WarmerConfig configures periodic refresh of popular keys
type WarmerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Interval    time.Duration `yaml:"interval"`
	TopLimit    int           `yaml:"top_limit" validate:"min=0,max=250"`
	CoinIDs     []string      `yaml:"coin_ids"`
	Concurrency int           `yaml:"concurrency" validate:"min=0"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	SocketPath string `yaml:"socket_path"`
}

// AdminConfig guards administrative endpoints. An empty secret leaves them open.
type AdminConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads configuration from file path
func LoadConfig(configPath string, logger *zap.Logger) (*Config, error) {
	logger.Info("Loading configuration", zap.String("path", configPath))

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var config Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML config: %w", err)
	}

	// Apply defaults
	config.applyDefaults()
	return &config, nil
}

// Load resolves the config file from CACHE_CONFIG_FILE, falls back to
// built-in defaults when the default file is absent, then applies
// environment overrides and validates the result.
func Load(logger *zap.Logger) (*Config, error) {
	path := os.Getenv("CACHE_CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	var cfg *Config
	if _, err := os.Stat(path); err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		logger.Info("Config file not found, using defaults", zap.String("path", path))
		cfg = Default()
	} else {
		cfg, err = LoadConfig(path, logger)
		if err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides overrides file values with environment variables
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("MARKET_API_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("MARKET_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("ADMIN_JWT_SECRET"); v != "" {
		c.Admin.JWTSecret = v
	}
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if err := cache_rules.ValidateConfig(&c.CacheRules); err != nil {
		return err
	}

	if c.Warmer.Enabled && c.Warmer.Interval <= 0 {
		return errors.New("warmer.interval must be positive when the warmer is enabled")
	}

	longest := c.longestTTL()
	if c.L1.Backend == "bigcache" && c.L1.BigCache.Retention < longest {
		return fmt.Errorf("l1.bigcache.retention %s is shorter than the longest ttl %s", c.L1.BigCache.Retention, longest)
	}
	if c.L2.Enabled && c.L2.Retention < longest {
		return fmt.Errorf("l2.retention %s is shorter than the longest ttl %s", c.L2.Retention, longest)
	}

	return nil
}

func (c *Config) longestTTL() time.Duration {
	var longest time.Duration
	for _, ttl := range c.CacheRules.TTLDefaults {
		if ttl > longest {
			longest = ttl
		}
	}
	return longest
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = DefaultBaseURL
	}
	if c.Provider.APIKeyHeader == "" {
		c.Provider.APIKeyHeader = DefaultAPIKeyHeader
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 10 * time.Second
	}
	if c.Provider.MaxPageSize == 0 {
		c.Provider.MaxPageSize = 250
	}
	if c.Provider.VsCurrency == "" {
		c.Provider.VsCurrency = "usd"
	}

	defaults := cache_rules.DefaultCacheRules()
	if c.CacheRules.TTLDefaults == nil {
		c.CacheRules.TTLDefaults = cache_rules.TTLDefaults{}
	}
	for tier, ttl := range defaults.TTLDefaults {
		if _, ok := c.CacheRules.TTLDefaults[tier]; !ok {
			c.CacheRules.TTLDefaults[tier] = ttl
		}
	}
	if c.CacheRules.Rules == nil {
		c.CacheRules.Rules = defaults.Rules
	} else {
		for op, tier := range defaults.Rules {
			if _, ok := c.CacheRules.Rules[op]; !ok {
				c.CacheRules.Rules[op] = tier
			}
		}
	}

	if c.L1.Backend == "" {
		c.L1.Backend = "memory"
	}
	if c.L1.BigCache.Size == 0 {
		c.L1.BigCache.Size = 64
	}
	if c.L1.BigCache.Shards == 0 {
		c.L1.BigCache.Shards = 64
	}
	if c.L1.BigCache.MaxEntrySize == 0 {
		c.L1.BigCache.MaxEntrySize = 64 * 1024
	}
	if c.L1.BigCache.Retention == 0 {
		c.L1.BigCache.Retention = 24 * time.Hour
	}

	if c.L2.KeyPrefix == "" {
		c.L2.KeyPrefix = "market-cache:"
	}
	if c.L2.Retention == 0 {
		c.L2.Retention = 24 * time.Hour
	}
	if c.L2.Connection.ConnectTimeout == 0 {
		c.L2.Connection.ConnectTimeout = time.Second
	}
	if c.L2.Connection.SendTimeout == 0 {
		c.L2.Connection.SendTimeout = time.Second
	}
	if c.L2.Connection.ReadTimeout == 0 {
		c.L2.Connection.ReadTimeout = time.Second
	}
	if c.L2.Keepalive.PoolSize == 0 {
		c.L2.Keepalive.PoolSize = 10
	}
	if c.L2.Keepalive.MaxIdleTimeout == 0 {
		c.L2.Keepalive.MaxIdleTimeout = 10 * time.Second
	}

	if c.Warmer.Interval == 0 {
		c.Warmer.Interval = 45 * time.Second
	}
	if c.Warmer.TopLimit == 0 {
		c.Warmer.TopLimit = 100
	}
	if c.Warmer.Concurrency == 0 {
		c.Warmer.Concurrency = 4
	}

	if c.Server.ListenAddr == "" && c.Server.SocketPath == "" {
		c.Server.ListenAddr = ":8080"
	}

	if c.Admin.TokenTTL == 0 {
		c.Admin.TokenTTL = time.Hour
	}
}
