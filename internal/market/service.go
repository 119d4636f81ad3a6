package market

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"go-market-cache/internal/config"
	"go-market-cache/internal/fetchcache"
	"go-market-cache/internal/interfaces"
	"go-market-cache/internal/models"
)

// Ensure Service implements interfaces.MarketData
var _ interfaces.MarketData = (*Service)(nil)

const (
	DefaultTopLimit  = 10
	MinSearchLength  = 2
	MaxSearchResults = 20
	MinHistoryDays   = 1
	MaxHistoryDays   = 365
)

// Service answers market queries through a Fetcher. It never returns errors:
// any failure is logged and degrades to an empty result.
type Service struct {
	fetcher     interfaces.Fetcher
	rules       interfaces.CacheRulesClassifier
	logger      *zap.Logger
	vsCurrency  string
	maxPageSize int
}

// NewService creates a new market data service
func NewService(fetcher interfaces.Fetcher, rules interfaces.CacheRulesClassifier, providerCfg *config.ProviderConfig, logger *zap.Logger) *Service {
	vsCurrency := strings.ToLower(providerCfg.VsCurrency)
	if vsCurrency == "" {
		vsCurrency = "usd"
	}
	maxPageSize := providerCfg.MaxPageSize
	if maxPageSize <= 0 {
		maxPageSize = 250
	}

	return &Service{
		fetcher:     fetcher,
		rules:       rules,
		logger:      logger,
		vsCurrency:  vsCurrency,
		maxPageSize: maxPageSize,
	}
}

// TopCoins returns up to limit coins ordered by market cap. A non-positive
// limit means the default; larger limits are capped at the page size.
func (s *Service) TopCoins(ctx context.Context, limit int) []models.Coin {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	query := models.Query{
		Operation: models.OperationTopCoins,
		Endpoint:  "coins/markets",
		Params: map[string]string{
			"vs_currency":             s.vsCurrency,
			"order":                   "market_cap_desc",
			"per_page":                strconv.Itoa(limit),
			"page":                    "1",
			"sparkline":               "false",
			"price_change_percentage": "24h",
		},
		Shape: models.ShapeArray,
	}

	var raw []marketCoin
	if !s.fetch(ctx, query, &raw) {
		return []models.Coin{}
	}

	coins := make([]models.Coin, 0, len(raw))
	for i := range raw {
		if coin, ok := raw[i].toModel(); ok {
			coins = append(coins, coin)
		}
	}
	if dropped := len(raw) - len(coins); dropped > 0 {
		s.logger.Debug("Dropped invalid coins", zap.Int("dropped", dropped))
	}

	return coins
}

// Coin returns one coin by provider id, or nil
func (s *Service) Coin(ctx context.Context, id string) *models.Coin {
	id = normalizeID(id)
	if id == "" {
		return nil
	}

	query := models.Query{
		Operation: models.OperationCoin,
		Endpoint:  "coins/" + url.PathEscape(id),
		Params: map[string]string{
			"localization":   "false",
			"tickers":        "false",
			"market_data":    "true",
			"community_data": "false",
			"developer_data": "false",
			"sparkline":      "false",
		},
		Shape: models.ShapeObject,
	}

	var raw coinDetail
	if !s.fetch(ctx, query, &raw) {
		return nil
	}

	coin, ok := raw.toModel(s.vsCurrency)
	if !ok {
		s.logger.Warn("Discarding invalid coin", zap.String("id", id))
		return nil
	}
	return coin
}

// Global returns the aggregate market snapshot, or nil
func (s *Service) Global(ctx context.Context) *models.GlobalMarket {
	query := models.Query{
		Operation: models.OperationGlobal,
		Endpoint:  "global",
		Shape:     models.ShapeEnvelope,
	}

	var raw globalData
	if !s.fetch(ctx, query, &raw) {
		return nil
	}

	global, ok := raw.toModel(s.vsCurrency)
	if !ok {
		s.logger.Warn("Discarding invalid global market snapshot")
		return nil
	}
	return global
}

// Search finds coins by name or symbol. Queries shorter than two characters
// return nothing without touching the cache.
func (s *Service) Search(ctx context.Context, text string) []models.SearchResult {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinSearchLength {
		return []models.SearchResult{}
	}

	query := models.Query{
		Operation: models.OperationSearch,
		Endpoint:  "search",
		Params:    map[string]string{"query": text},
		Shape:     models.ShapeObject,
	}

	var raw searchResponse
	if !s.fetch(ctx, query, &raw) {
		return []models.SearchResult{}
	}

	results := make([]models.SearchResult, 0, min(len(raw.Coins), MaxSearchResults))
	for _, c := range raw.Coins {
		if !hasIdentity(c.ID, c.Symbol, c.Name) {
			continue
		}
		results = append(results, models.SearchResult{
			ID:            c.ID,
			Name:          c.Name,
			Symbol:        c.Symbol,
			MarketCapRank: c.MarketCapRank,
			Thumb:         c.Thumb,
		})
		if len(results) == MaxSearchResults {
			break
		}
	}

	return results
}

// History returns the price series of a coin over days, clamped to [1, 365].
// Up to one day is sampled hourly, longer ranges daily.
func (s *Service) History(ctx context.Context, id string, days int) []models.PricePoint {
	id = normalizeID(id)
	if id == "" {
		return []models.PricePoint{}
	}

	days = ClampDays(days)
	op, interval := models.OperationHistory, "daily"
	if days <= 1 {
		op, interval = models.OperationHistoryIntraday, "hourly"
	}

	query := models.Query{
		Operation: op,
		Endpoint:  "coins/" + url.PathEscape(id) + "/market_chart",
		Params: map[string]string{
			"vs_currency": s.vsCurrency,
			"days":        strconv.Itoa(days),
			"interval":    interval,
		},
		Shape: models.ShapeObject,
	}

	var raw marketChart
	if !s.fetch(ctx, query, &raw) {
		return []models.PricePoint{}
	}

	return raw.toModel()
}

// Prices returns current quotes keyed by coin id. Ids are matched
// case-insensitively; coins without a positive price are left out.
func (s *Service) Prices(ctx context.Context, ids []string) map[string]models.PriceQuote {
	quotes := make(map[string]models.PriceQuote)

	normalized := normalizeIDs(ids)
	if len(normalized) == 0 {
		return quotes
	}

	query := models.Query{
		Operation: models.OperationPrices,
		Endpoint:  "simple/price",
		Params: map[string]string{
			"ids":                 strings.Join(normalized, ","),
			"vs_currencies":       s.vsCurrency,
			"include_market_cap":  "true",
			"include_24hr_change": "true",
		},
		Shape: models.ShapeObject,
	}

	var raw simplePrice
	if !s.fetch(ctx, query, &raw) {
		return quotes
	}

	for _, id := range normalized {
		values, ok := raw[id]
		if !ok {
			continue
		}
		price := values.get(s.vsCurrency)
		if !positive(price) {
			continue
		}
		quotes[id] = models.PriceQuote{
			Price:     *price,
			Change24h: values.get(s.vsCurrency + "_24h_change"),
			MarketCap: values.get(s.vsCurrency + "_market_cap"),
		}
	}

	return quotes
}

// ClearCache drops all cached market data
func (s *Service) ClearCache() {
	s.fetcher.Clear()
}

// CacheSize returns the number of cached responses
func (s *Service) CacheSize() int {
	return s.fetcher.Size()
}

// PendingRequests returns the number of upstream calls in flight
func (s *Service) PendingRequests() int {
	return s.fetcher.Pending()
}

func (s *Service) Stats() models.CacheStats {
	return models.CacheStats{
		Entries: s.CacheSize(),
		Pending: s.PendingRequests(),
	}
}

// fetch loads query through the cache and decodes it into out. Failures are
// logged here and reported as false.
func (s *Service) fetch(ctx context.Context, query models.Query, out interface{}) bool {
	payload, err := s.fetcher.Get(ctx, query, s.rules.TTLFor(query.Operation))
	if err != nil {
		s.logger.Warn("Market data unavailable",
			zap.String("operation", string(query.Operation)),
			zap.String("endpoint", query.Endpoint),
			zap.String("kind", fetchcache.ErrorKind(err)),
			zap.Error(err))
		return false
	}

	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.Warn("Failed to decode market data",
			zap.String("operation", string(query.Operation)),
			zap.String("endpoint", query.Endpoint),
			zap.Error(err))
		return false
	}

	return true
}

// ClampDays limits a history range to [1, 365]
func ClampDays(days int) int {
	if days < MinHistoryDays {
		return MinHistoryDays
	}
	if days > MaxHistoryDays {
		return MaxHistoryDays
	}
	return days
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = normalizeID(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
