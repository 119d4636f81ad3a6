package interfaces

import (
	"context"

	"go-market-cache/internal/models"
)

//go:generate mockgen -package=mock -source=market.go -destination=mock/market.go

// MarketData exposes market queries that never fail: on any upstream or
// validation problem they return an empty slice or nil.
type MarketData interface {
	TopCoins(ctx context.Context, limit int) []models.Coin
	Coin(ctx context.Context, id string) *models.Coin
	Global(ctx context.Context) *models.GlobalMarket
	Search(ctx context.Context, query string) []models.SearchResult
	History(ctx context.Context, id string, days int) []models.PricePoint
	Prices(ctx context.Context, ids []string) map[string]models.PriceQuote
	ClearCache()
	Stats() models.CacheStats
}
