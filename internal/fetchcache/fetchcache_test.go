package fetchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"go-market-cache/internal/cache"
	"go-market-cache/internal/cache/memory"
	"go-market-cache/internal/interfaces/mock"
	"go-market-cache/internal/models"
	"go-market-cache/internal/utils"
)

const ttl = 60 * time.Second

var globalQuery = models.Query{
	Operation: models.OperationGlobal,
	Endpoint:  "global",
	Shape:     models.ShapeEnvelope,
}

var coinQuery = models.Query{
	Operation: models.OperationCoin,
	Endpoint:  "coins/bitcoin",
	Params:    map[string]string{"localization": "false"},
	Shape:     models.ShapeObject,
}

// upstream is a fake provider whose response can be swapped between calls
type upstream struct {
	calls   atomic.Int32
	mu      sync.Mutex
	respond http.HandlerFunc
}

func (u *upstream) set(h http.HandlerFunc) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.respond = h
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
	u.mu.Lock()
	h := u.respond
	u.mu.Unlock()
	h(w, r)
}

func jsonBody(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newUpstream(t *testing.T, h http.HandlerFunc) (*upstream, *httptest.Server) {
	t.Helper()
	up := &upstream{respond: h}
	server := httptest.NewServer(up)
	t.Cleanup(server.Close)
	return up, server
}

func newTestCache(t *testing.T, baseURL string, client *http.Client, opts Options) (*FetchCache, *clock.Mock, *memory.MemoryStore) {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	store := memory.NewMemoryStore()

	opts.BaseURL = baseURL
	fc, err := New(store, cache.NewKeyBuilder(), client, clk, zaptest.NewLogger(t), opts)
	require.NoError(t, err)

	return fc, clk, store
}

func TestNew_Validation(t *testing.T) {
	store := memory.NewMemoryStore()
	kb := cache.NewKeyBuilder()
	client := http.DefaultClient

	tests := []struct {
		name   string
		create func() (*FetchCache, error)
	}{
		{"nil store", func() (*FetchCache, error) {
			return New(nil, kb, client, nil, nil, Options{BaseURL: "https://api.example.com"})
		}},
		{"nil key builder", func() (*FetchCache, error) {
			return New(store, nil, client, nil, nil, Options{BaseURL: "https://api.example.com"})
		}},
		{"nil client", func() (*FetchCache, error) {
			return New(store, kb, nil, nil, nil, Options{BaseURL: "https://api.example.com"})
		}},
		{"relative base url", func() (*FetchCache, error) {
			return New(store, kb, client, nil, nil, Options{BaseURL: "/api/v3"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, err := tt.create()
			assert.Error(t, err)
			assert.Nil(t, fc)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	fc, err := New(memory.NewMemoryStore(), cache.NewKeyBuilder(), http.DefaultClient, nil, nil,
		Options{BaseURL: "https://api.example.com/api/v3/"})

	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, fc.timeout)
	assert.Equal(t, "https://api.example.com/api/v3", fc.baseURL)
	assert.Nil(t, fc.sem)
}

func TestGet_FreshHitDoesNotCallUpstream(t *testing.T) {
	up, server := newUpstream(t, jsonBody(http.StatusOK, `{"id":"bitcoin","symbol":"btc"}`))
	fc, clk, _ := newTestCache(t, server.URL, server.Client(), Options{})

	first, err := fc.Get(context.Background(), coinQuery, ttl)
	require.NoError(t, err)

	clk.Add(ttl - time.Second)

	second, err := fc.Get(context.Background(), coinQuery, ttl)
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, int32(1), up.calls.Load())
	assert.Equal(t, 1, fc.Size())
}

func TestGet_ExpiredEntryIsRefetched(t *testing.T) {
	up, server := newUpstream(t, jsonBody(http.StatusOK, `{"id":"bitcoin","current_price":1}`))
	fc, clk, store := newTestCache(t, server.URL, server.Client(), Options{})

	_, err := fc.Get(context.Background(), coinQuery, ttl)
	require.NoError(t, err)

	up.set(jsonBody(http.StatusOK, `{"id":"bitcoin","current_price":2}`))
	clk.Add(ttl)

	payload, err := fc.Get(context.Background(), coinQuery, ttl)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"bitcoin","current_price":2}`, string(payload))
	assert.Equal(t, int32(2), up.calls.Load())

	entry, ok := store.Get("coins/bitcoin?localization=false")
	require.True(t, ok)
	assert.Equal(t, clk.Now(), entry.StoredAt)
}

func TestGet_CoalescesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	up, server := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		jsonBody(http.StatusOK, `{"data":{"active_cryptocurrencies":12000}}`)(w, r)
	})
	fc, _, _ := newTestCache(t, server.URL, server.Client(), Options{})

	const callers = 20
	results := make([]json.RawMessage, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = fc.Get(context.Background(), globalQuery, ttl)
		}(i)
	}

	assert.Eventually(t, func() bool { return up.calls.Load() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, fc.Pending())
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), up.calls.Load())
	assert.Equal(t, 0, fc.Pending())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.JSONEq(t, `{"active_cryptocurrencies":12000}`, string(results[i]))
	}
}

func TestGet_StaleOnRateLimit(t *testing.T) {
	up, server := newUpstream(t, jsonBody(http.StatusOK, `{"data":{"markets":900}}`))
	fc, clk, _ := newTestCache(t, server.URL, server.Client(), Options{})

	_, err := fc.Get(context.Background(), globalQuery, ttl)
	require.NoError(t, err)

	up.set(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	clk.Add(10 * time.Minute)

	payload, err := fc.Get(context.Background(), globalQuery, ttl)

	require.NoError(t, err)
	assert.JSONEq(t, `{"markets":900}`, string(payload))
	assert.Equal(t, int32(2), up.calls.Load())
}

func TestGet_StaleOnServerError(t *testing.T) {
	up, server := newUpstream(t, jsonBody(http.StatusOK, `[{"id":"bitcoin"}]`))
	fc, clk, _ := newTestCache(t, server.URL, server.Client(), Options{})

	query := models.Query{Operation: models.OperationTopCoins, Endpoint: "coins/markets", Shape: models.ShapeArray}
	_, err := fc.Get(context.Background(), query, ttl)
	require.NoError(t, err)

	up.set(jsonBody(http.StatusBadGateway, `bad gateway`))
	clk.Add(2 * ttl)

	payload, err := fc.Get(context.Background(), query, ttl)

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"bitcoin"}]`, string(payload))
}

func TestGet_RateLimitWithoutFallback(t *testing.T) {
	_, server := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	fc, _, _ := newTestCache(t, server.URL, server.Client(), Options{})

	payload, err := fc.Get(context.Background(), globalQuery, ttl)

	assert.Nil(t, payload)
	var rateLimitErr *RateLimitError
	require.ErrorAs(t, err, &rateLimitErr)
	assert.Equal(t, 30*time.Second, rateLimitErr.RetryAfter)
	assert.Equal(t, 0, fc.Pending())
}

func TestGet_HTTPErrorWithoutFallback(t *testing.T) {
	_, server := newUpstream(t, jsonBody(http.StatusNotFound, `{"error":"coin not found"}`))
	fc, _, _ := newTestCache(t, server.URL, server.Client(), Options{})

	_, err := fc.Get(context.Background(), coinQuery, ttl)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestGet_NetworkErrorWithoutFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mock.NewMockHTTPDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Return(nil, errors.New("dial tcp: connection refused"))

	fc, err := New(memory.NewMemoryStore(), cache.NewKeyBuilder(), doer, clock.NewMock(), zaptest.NewLogger(t),
		Options{BaseURL: "https://api.example.com"})
	require.NoError(t, err)

	payload, err := fc.Get(context.Background(), coinQuery, ttl)

	assert.Nil(t, payload)
	var networkErr *NetworkError
	require.ErrorAs(t, err, &networkErr)
	assert.Equal(t, KindNetwork, ErrorKind(err))
}

func TestGet_StaleOnNetworkError(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mock.NewMockHTTPDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection reset by peer"))

	clk := clock.NewMock()
	store := memory.NewMemoryStore()
	store.Set(&models.CacheEntry{
		Key:      "coins/bitcoin?localization=false",
		Payload:  json.RawMessage(`{"id":"bitcoin"}`),
		StoredAt: clk.Now().Add(-time.Hour),
	})

	fc, err := New(store, cache.NewKeyBuilder(), doer, clk, zaptest.NewLogger(t),
		Options{BaseURL: "https://api.example.com"})
	require.NoError(t, err)

	payload, err := fc.Get(context.Background(), coinQuery, ttl)

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"bitcoin"}`, string(payload))
}

func TestGet_TimeoutWithoutFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mock.NewMockHTTPDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	fc, err := New(memory.NewMemoryStore(), cache.NewKeyBuilder(), doer, clock.NewMock(), zaptest.NewLogger(t),
		Options{BaseURL: "https://api.example.com", Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = fc.Get(context.Background(), coinQuery, ttl)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 20*time.Millisecond, timeoutErr.Timeout)
}

func TestGet_ValidationRejectsNullBody(t *testing.T) {
	up, server := newUpstream(t, jsonBody(http.StatusOK, `null`))
	fc, _, _ := newTestCache(t, server.URL, server.Client(), Options{})

	payload, err := fc.Get(context.Background(), coinQuery, ttl)

	assert.Nil(t, payload)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ErrorIs(t, err, utils.ErrEmptyBody)
	assert.Equal(t, 0, fc.Size())

	// A later valid response is cached normally
	up.set(jsonBody(http.StatusOK, `{"id":"bitcoin"}`))
	_, err = fc.Get(context.Background(), coinQuery, ttl)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.Size())
}

func TestGet_ValidationRejectsWrongShape(t *testing.T) {
	_, server := newUpstream(t, jsonBody(http.StatusOK, `{"status":{"error_code":429}}`))
	fc, _, _ := newTestCache(t, server.URL, server.Client(), Options{})

	query := models.Query{Operation: models.OperationTopCoins, Endpoint: "coins/markets", Shape: models.ShapeArray}
	_, err := fc.Get(context.Background(), query, ttl)

	assert.Equal(t, KindValidation, ErrorKind(err))
	assert.Equal(t, 0, fc.Size())
}

func TestGet_EnvelopeIsUnwrappedBeforeCaching(t *testing.T) {
	_, server := newUpstream(t, jsonBody(http.StatusOK, `{"data":{"active_cryptocurrencies":5}}`))
	fc, _, store := newTestCache(t, server.URL, server.Client(), Options{})

	payload, err := fc.Get(context.Background(), globalQuery, ttl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"active_cryptocurrencies":5}`, string(payload))

	entry, ok := store.Get("global")
	require.True(t, ok)
	assert.JSONEq(t, `{"active_cryptocurrencies":5}`, string(entry.Payload))
}

func TestGet_SendsParamsAndAPIKey(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	_, server := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("x-cg-demo-api-key")
		jsonBody(http.StatusOK, `[]`)(w, r)
	})
	fc, _, _ := newTestCache(t, server.URL+"/api/v3", server.Client(), Options{
		APIKey:       "demo-key",
		APIKeyHeader: "x-cg-demo-api-key",
	})

	query := models.Query{
		Operation: models.OperationTopCoins,
		Endpoint:  "coins/markets",
		Params:    map[string]string{"vs_currency": "usd", "per_page": "10"},
		Shape:     models.ShapeArray,
	}
	_, err := fc.Get(context.Background(), query, ttl)

	require.NoError(t, err)
	assert.Equal(t, "/api/v3/coins/markets", gotPath)
	assert.Equal(t, "per_page=10&vs_currency=usd", gotQuery)
	assert.Equal(t, "demo-key", gotKey)
}

func TestGet_CallerCancellationDoesNotAbortFlight(t *testing.T) {
	release := make(chan struct{})
	up, server := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		jsonBody(http.StatusOK, `{"id":"bitcoin"}`)(w, r)
	})
	fc, _, _ := newTestCache(t, server.URL, server.Client(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := fc.Get(ctx, coinQuery, ttl)
		done <- err
	}()

	assert.Eventually(t, func() bool { return up.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	assert.Eventually(t, func() bool { return fc.Pending() == 0 && fc.Size() == 1 }, time.Second, time.Millisecond)

	payload, err := fc.Get(context.Background(), coinQuery, ttl)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"bitcoin"}`, string(payload))
	assert.Equal(t, int32(1), up.calls.Load())
}

func TestGet_PanicReleasesWaiters(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mock.NewMockHTTPDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		panic("transport exploded")
	})

	fc, err := New(memory.NewMemoryStore(), cache.NewKeyBuilder(), doer, clock.NewMock(), zaptest.NewLogger(t),
		Options{BaseURL: "https://api.example.com"})
	require.NoError(t, err)

	_, err = fc.Get(context.Background(), coinQuery, ttl)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
	assert.Equal(t, 0, fc.Pending())
}

func TestGet_MaxConcurrentBoundsUpstreamCalls(t *testing.T) {
	var active, peak atomic.Int32
	_, server := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		active.Add(-1)
		jsonBody(http.StatusOK, `{"ok":true}`)(w, r)
	})
	fc, _, _ := newTestCache(t, server.URL, server.Client(), Options{MaxConcurrent: 1})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			query := models.Query{Operation: models.OperationCoin, Endpoint: fmt.Sprintf("coins/c%d", i), Shape: models.ShapeObject}
			_, err := fc.Get(context.Background(), query, ttl)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load())
	assert.Equal(t, 3, fc.Size())
}

func TestClear(t *testing.T) {
	up, server := newUpstream(t, jsonBody(http.StatusOK, `{"id":"bitcoin"}`))
	fc, _, _ := newTestCache(t, server.URL, server.Client(), Options{})

	_, err := fc.Get(context.Background(), coinQuery, ttl)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.Size())

	fc.Clear()
	assert.Equal(t, 0, fc.Size())
	assert.Equal(t, 0, fc.Pending())

	_, err = fc.Get(context.Background(), coinQuery, ttl)
	require.NoError(t, err)
	assert.Equal(t, int32(2), up.calls.Load())
}

func TestClear_DropsResultOfEarlierFlight(t *testing.T) {
	release := make(chan struct{})
	up, server := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		jsonBody(http.StatusOK, `{"id":"bitcoin"}`)(w, r)
	})
	fc, _, _ := newTestCache(t, server.URL, server.Client(), Options{})

	done := make(chan error, 1)
	go func() {
		_, err := fc.Get(context.Background(), coinQuery, ttl)
		done <- err
	}()

	assert.Eventually(t, func() bool { return up.calls.Load() == 1 }, time.Second, time.Millisecond)
	fc.Clear()
	close(release)

	// The waiter still receives the result, but it is not stored
	require.NoError(t, <-done)
	assert.Equal(t, 0, fc.Size())
}

func TestPut_StoredAtNeverMovesBackwards(t *testing.T) {
	fc, clk, store := newTestCache(t, "https://api.example.com", http.DefaultClient, Options{})

	future := clk.Now().Add(time.Hour)
	store.Set(&models.CacheEntry{Key: "global", Payload: json.RawMessage(`{}`), StoredAt: future})

	fc.put(fc.gen, "global", json.RawMessage(`{"markets":1}`))

	entry, ok := store.Get("global")
	require.True(t, ok)
	assert.Equal(t, future, entry.StoredAt)
	assert.JSONEq(t, `{"markets":1}`, string(entry.Payload))

	clk.Add(2 * time.Hour)
	fc.put(fc.gen, "global", json.RawMessage(`{"markets":2}`))

	entry, _ = store.Get("global")
	assert.Equal(t, clk.Now(), entry.StoredAt)
}

func TestGet_InvalidQuery(t *testing.T) {
	fc, _, _ := newTestCache(t, "https://api.example.com", http.DefaultClient, Options{})

	_, err := fc.Get(context.Background(), models.Query{Endpoint: " / "}, ttl)

	assert.Error(t, err)
}

func TestGet_KeyBuilderErrorSkipsUpstream(t *testing.T) {
	ctrl := gomock.NewController(t)
	keyBuilder := mock.NewMockKeyBuilder(ctrl)
	client := mock.NewMockHTTPDoer(ctrl)

	keyBuilder.EXPECT().Build(gomock.Any()).Return("", errors.New("bad key"))
	client.EXPECT().Do(gomock.Any()).Times(0)

	fc, err := New(memory.NewMemoryStore(), keyBuilder, client, clock.NewMock(), zaptest.NewLogger(t),
		Options{BaseURL: "https://api.example.com"})
	require.NoError(t, err)

	_, err = fc.Get(context.Background(), globalQuery, ttl)

	assert.ErrorContains(t, err, "bad key")
	assert.Equal(t, 0, fc.Pending())
}
