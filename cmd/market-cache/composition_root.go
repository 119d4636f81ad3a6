package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"go-market-cache/internal/cache"
	"go-market-cache/internal/cache/l1"
	"go-market-cache/internal/cache/l2"
	"go-market-cache/internal/cache/memory"
	"go-market-cache/internal/cache/multi"
	"go-market-cache/internal/cache/noop"
	"go-market-cache/internal/cache_rules"
	"go-market-cache/internal/config"
	"go-market-cache/internal/fetchcache"
	"go-market-cache/internal/httpserver"
	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/market"
	"go-market-cache/internal/warmer"
)

// CompositionRoot holds all application dependencies and provides a centralized
// place for dependency injection and resource cleanup.
type CompositionRoot struct {
	// Configuration
	Config     *config.Config
	Logger     *zap.Logger
	CacheRules interfaces.CacheRulesClassifier

	// Cache components
	L1Store    interfaces.Store
	L2Store    interfaces.Store
	Store      interfaces.Store
	KeyBuilder interfaces.KeyBuilder

	// Services
	FetchCache *fetchcache.FetchCache
	Market     *market.Service
	Warmer     *warmer.Warmer
	HTTPServer *httpserver.Server
}

// NewCompositionRoot creates and wires all application dependencies.
//
// Initialization order:
// 1. Configuration (defines how components should be configured)
// 2. Cache rules (defines TTL tiers)
// 3. Stores (L1, optional L2, combined)
// 4. Services (FetchCache, market service, warmer)
// 5. HTTP Server
func NewCompositionRoot(logger *zap.Logger) (*CompositionRoot, error) {
	root := &CompositionRoot{Logger: logger}

	if err := root.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := root.loadCacheRules(); err != nil {
		return nil, fmt.Errorf("failed to load cache rules: %w", err)
	}

	if err := root.initStores(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache stores: %w", err)
	}

	if err := root.initServices(); err != nil {
		_ = root.Cleanup()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	root.HTTPServer = httpserver.NewServer(root.Market, root.Config.Admin.JWTSecret, root.Logger)

	return root, nil
}

// loadConfig loads the application configuration
func (r *CompositionRoot) loadConfig() error {
	cfg, err := config.Load(r.Logger)
	if err != nil {
		return err
	}
	r.Config = cfg
	return nil
}

// loadCacheRules uses the rules embedded in the main config unless
// CACHE_RULES_FILE points at a dedicated rules file
func (r *CompositionRoot) loadCacheRules() error {
	var rules *cache_rules.CacheConfig

	if rulesPath := os.Getenv("CACHE_RULES_FILE"); rulesPath != "" {
		loaded, err := cache_rules.LoadCacheRulesConfig(rulesPath, r.Logger)
		if err != nil {
			return err
		}
		rules = loaded
	} else {
		rules = cache_rules.NewCacheConfig(&r.Config.CacheRules, r.Logger)
	}

	r.CacheRules = cache_rules.NewClassifier(r.Logger, rules)
	return nil
}

// initStores initializes the L1 store, the optional L2 store and the
// combined store the FetchCache writes to
func (r *CompositionRoot) initStores() error {
	switch r.Config.L1.Backend {
	case "bigcache":
		store, err := l1.NewBigCache(&r.Config.L1.BigCache, r.Logger)
		if err != nil {
			return err
		}
		r.L1Store = store
		r.Logger.Info("BigCache (L1) initialized", zap.Int("size_mb", r.Config.L1.BigCache.Size))
	case "none":
		// Requests still coalesce but every miss goes upstream
		r.L1Store = noop.NewNoOpStore()
		r.Logger.Info("L1 store disabled")
	default:
		r.L1Store = memory.NewMemoryStore()
		r.Logger.Info("Memory store (L1) initialized")
	}

	r.KeyBuilder = cache.NewKeyBuilder()

	if !r.Config.L2.Enabled {
		r.Logger.Info("KeyDB (L2) disabled")
		r.Store = r.L1Store
		return nil
	}

	keydbURL := GetKeyDBURL(r.Logger)
	client, err := l2.NewRedisKeyDbClient(&r.Config.L2, keydbURL, r.Logger)
	if err != nil {
		r.Logger.Warn("Failed to connect to KeyDB, continuing without L2",
			zap.String("keydb_url", keydbURL),
			zap.Error(err))
		r.Store = r.L1Store
		return nil
	}

	r.L2Store = l2.NewKeyDBCache(&r.Config.L2, client, r.Logger)
	r.Store = multi.NewMultiStore(
		[]interfaces.Store{r.L1Store, r.L2Store},
		r.Logger,
		r.Config.MultiCache.EnablePropagation,
	)
	r.Logger.Info("KeyDB (L2) initialized", zap.String("keydb_url", keydbURL))
	return nil
}

// initServices initializes the FetchCache and everything built on it
func (r *CompositionRoot) initServices() error {
	provider := r.Config.Provider

	fc, err := fetchcache.New(
		r.Store,
		r.KeyBuilder,
		&http.Client{Transport: http.DefaultTransport},
		clock.New(),
		r.Logger,
		fetchcache.Options{
			BaseURL:       provider.BaseURL,
			APIKey:        provider.APIKey,
			APIKeyHeader:  provider.APIKeyHeader,
			Timeout:       provider.Timeout,
			MaxConcurrent: provider.MaxConcurrent,
		},
	)
	if err != nil {
		return err
	}
	r.FetchCache = fc

	r.Market = market.NewService(r.FetchCache, r.CacheRules, &r.Config.Provider, r.Logger)
	r.Warmer = warmer.New(r.Market, r.Config.Warmer, r.Logger)
	return nil
}

// Cleanup performs cleanup of all resources
func (r *CompositionRoot) Cleanup() error {
	var errs []error

	for name, store := range map[string]interfaces.Store{"L1": r.L1Store, "L2": r.L2Store} {
		if closer, ok := store.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %s store: %w", name, err))
			}
		}
	}

	// Sync logger; stderr sync fails harmlessly on some platforms
	if r.Logger != nil {
		_ = r.Logger.Sync()
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
