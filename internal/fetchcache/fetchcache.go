package fetchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/metrics"
	"go-market-cache/internal/models"
	"go-market-cache/internal/utils"
)

// Ensure FetchCache implements interfaces.Fetcher
var _ interfaces.Fetcher = (*FetchCache)(nil)

const (
	DefaultTimeout = 10 * time.Second

	maxBodySize = 16 << 20
)

// Options configures the upstream side of a FetchCache
type Options struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	Timeout      time.Duration
	// MaxConcurrent bounds upstream calls across keys; 0 means unbounded
	MaxConcurrent int
}

// FetchCache is a read-through cache in front of a JSON HTTP API. Concurrent
// misses for one key share a single upstream call, and a failed refresh falls
// back to the last stored payload for that key however old it is.
type FetchCache struct {
	store      interfaces.Store
	keyBuilder interfaces.KeyBuilder
	client     interfaces.HTTPDoer
	clock      clock.Clock
	logger     *zap.Logger

	baseURL      string
	apiKey       string
	apiKeyHeader string
	timeout      time.Duration
	sem          *semaphore.Weighted

	group singleflight.Group

	mu       sync.Mutex
	inflight map[string]uint64 // key -> generation of its flight

	// genMu orders writes against Clear; gen changes on every Clear so that
	// flights started before it do not repopulate the store.
	genMu sync.RWMutex
	gen   uint64
}

// New creates a FetchCache
func New(
	store interfaces.Store,
	keyBuilder interfaces.KeyBuilder,
	client interfaces.HTTPDoer,
	clk clock.Clock,
	logger *zap.Logger,
	opts Options,
) (*FetchCache, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if keyBuilder == nil {
		return nil, errors.New("key builder cannot be nil")
	}
	if client == nil {
		return nil, errors.New("http client cannot be nil")
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	fc := &FetchCache{
		store:        store,
		keyBuilder:   keyBuilder,
		client:       client,
		clock:        clk,
		logger:       logger,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		apiKey:       opts.APIKey,
		apiKeyHeader: opts.APIKeyHeader,
		timeout:      timeout,
		inflight:     make(map[string]uint64),
	}
	if opts.MaxConcurrent > 0 {
		fc.sem = semaphore.NewWeighted(int64(opts.MaxConcurrent))
	}

	return fc, nil
}

// Get returns the payload for query, fetching it when no entry younger than
// ttl exists. If ctx ends first Get returns ctx.Err(); the upstream call keeps
// running for any other waiters and still populates the cache.
func (fc *FetchCache) Get(ctx context.Context, query models.Query, ttl time.Duration) (json.RawMessage, error) {
	key, err := fc.keyBuilder.Build(&query)
	if err != nil {
		return nil, fmt.Errorf("failed to build cache key: %w", err)
	}

	op := string(query.Operation)
	metrics.RecordCacheRequest(op)

	if entry, ok := fc.store.Get(key); ok && entry.IsFresh(fc.clock.Now(), ttl) {
		metrics.RecordCacheHit(op)
		return entry.Payload, nil
	}
	metrics.RecordCacheMiss(op)

	if fc.isPending(key) {
		metrics.RecordCoalesced(op)
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := fc.group.DoChan(key, func() (interface{}, error) {
		return fc.refresh(flightCtx, key, query, ttl)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(json.RawMessage), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Clear drops every stored entry and detaches in-flight calls so the next
// Get for their keys starts afresh.
func (fc *FetchCache) Clear() {
	fc.genMu.Lock()
	fc.gen++
	fc.store.Clear()
	fc.genMu.Unlock()

	fc.mu.Lock()
	for key := range fc.inflight {
		fc.group.Forget(key)
	}
	fc.inflight = make(map[string]uint64)
	fc.mu.Unlock()
	metrics.UpdatePendingRequests(0)

	fc.logger.Info("Market cache cleared")
}

// Size returns the number of stored entries, fresh or stale
func (fc *FetchCache) Size() int {
	return fc.store.Len()
}

// Pending returns the number of keys with an upstream call in flight
func (fc *FetchCache) Pending() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.inflight)
}

// refresh runs once per flight. Panics are turned into errors so waiters are
// always released.
func (fc *FetchCache) refresh(ctx context.Context, key string, query models.Query, ttl time.Duration) (payload interface{}, err error) {
	fc.genMu.RLock()
	gen := fc.gen
	fc.genMu.RUnlock()

	fc.track(key, gen)
	defer fc.untrack(key, gen)

	defer func() {
		if r := recover(); r != nil {
			fc.logger.Error("Upstream fetch panicked", zap.String("key", key), zap.Any("panic", r))
			payload, err = nil, fmt.Errorf("upstream fetch for %s panicked: %v", key, r)
		}
	}()

	// A flight that finished just before this one was started may already
	// have stored a fresh entry.
	if entry, ok := fc.store.Get(key); ok && entry.IsFresh(fc.clock.Now(), ttl) {
		return entry.Payload, nil
	}

	ctx, cancel := context.WithTimeout(ctx, fc.timeout)
	defer cancel()

	op := string(query.Operation)
	data, fetchErr := fc.fetch(ctx, query)
	if fetchErr != nil {
		kind := ErrorKind(fetchErr)
		metrics.RecordUpstreamError(op, kind)

		if entry, ok := fc.store.Get(key); ok {
			fc.logger.Warn("Upstream failed, serving stale market data",
				zap.String("key", key),
				zap.String("operation", op),
				zap.String("kind", kind),
				zap.Duration("age", entry.Age(fc.clock.Now())),
				zap.Error(fetchErr))
			metrics.RecordStaleServed(op, kind)
			return entry.Payload, nil
		}

		fc.logger.Warn("Upstream failed with no cached fallback",
			zap.String("key", key),
			zap.String("operation", op),
			zap.String("kind", kind),
			zap.Error(fetchErr))
		return nil, fetchErr
	}

	fc.put(gen, key, data)
	return data, nil
}

// fetch performs the upstream GET and classifies failures
func (fc *FetchCache) fetch(ctx context.Context, query models.Query) (json.RawMessage, error) {
	reqURL := fc.buildURL(query)

	if fc.sem != nil {
		if err := fc.sem.Acquire(ctx, 1); err != nil {
			return nil, &TimeoutError{URL: reqURL, Timeout: fc.timeout}
		}
		defer fc.sem.Release(1)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if fc.apiKey != "" && fc.apiKeyHeader != "" {
		req.Header.Set(fc.apiKeyHeader, fc.apiKey)
	}

	observe := metrics.TimeUpstreamCall(string(query.Operation))
	resp, err := fc.client.Do(req)
	observe()
	if err != nil {
		return nil, fc.transportError(reqURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		drain(resp.Body)
		return nil, &RateLimitError{
			URL:        reqURL,
			RetryAfter: utils.ParseRetryAfter(resp.Header.Get("Retry-After"), fc.clock.Now()),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drain(resp.Body)
		return nil, &HTTPError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fc.transportError(reqURL, err)
	}

	payload, err := utils.ExtractPayload(body, query.Shape)
	if err != nil {
		return nil, &ValidationError{URL: reqURL, Reason: err}
	}

	return payload, nil
}

// put stores a payload unless a Clear happened since the flight began.
// StoredAt never moves backwards for a key.
func (fc *FetchCache) put(gen uint64, key string, payload json.RawMessage) {
	fc.genMu.RLock()
	defer fc.genMu.RUnlock()

	if gen != fc.gen {
		fc.logger.Debug("Dropping result of flight started before clear", zap.String("key", key))
		return
	}

	storedAt := fc.clock.Now()
	if prev, ok := fc.store.Get(key); ok && storedAt.Before(prev.StoredAt) {
		storedAt = prev.StoredAt
	}

	fc.store.Set(&models.CacheEntry{
		Key:      key,
		Payload:  payload,
		StoredAt: storedAt,
	})
}

func (fc *FetchCache) transportError(reqURL string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{URL: reqURL, Timeout: fc.timeout}
	}
	return &NetworkError{URL: reqURL, Err: err}
}

func (fc *FetchCache) buildURL(query models.Query) string {
	u := fc.baseURL + "/" + strings.Trim(query.Endpoint, "/")
	if len(query.Params) == 0 {
		return u
	}

	values := make(url.Values, len(query.Params))
	for name, value := range query.Params {
		values.Set(name, value)
	}
	return u + "?" + values.Encode()
}

func (fc *FetchCache) isPending(key string) bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	_, ok := fc.inflight[key]
	return ok
}

func (fc *FetchCache) track(key string, gen uint64) {
	fc.mu.Lock()
	fc.inflight[key] = gen
	n := len(fc.inflight)
	fc.mu.Unlock()
	metrics.UpdatePendingRequests(n)
}

// untrack only removes the registration made by the same flight; a flight
// detached by Clear must not unregister its successor.
func (fc *FetchCache) untrack(key string, gen uint64) {
	fc.mu.Lock()
	if current, ok := fc.inflight[key]; ok && current == gen {
		delete(fc.inflight, key)
	}
	n := len(fc.inflight)
	fc.mu.Unlock()
	metrics.UpdatePendingRequests(n)
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
}
