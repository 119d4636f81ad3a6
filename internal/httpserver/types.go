package httpserver

import (
	"go-market-cache/internal/format"
	"go-market-cache/internal/models"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CoinDisplay holds the formatted strings for a coin
type CoinDisplay struct {
	Price             string `json:"price"`
	MarketCap         string `json:"market_cap"`
	Volume            string `json:"volume"`
	Change24h         string `json:"change_24h"`
	CirculatingSupply string `json:"circulating_supply"`
	MaxSupply         string `json:"max_supply"`
}

// CoinView is a coin plus its display strings
type CoinView struct {
	models.Coin
	Display CoinDisplay `json:"display"`
}

// CoinsResponse represents the response for the top coins list
type CoinsResponse struct {
	Success bool       `json:"success"`
	Coins   []CoinView `json:"coins"`
}

// CoinResponse represents the response for a single coin
type CoinResponse struct {
	Success bool     `json:"success"`
	Coin    CoinView `json:"coin"`
}

// GlobalDisplay holds the formatted strings for the global snapshot
type GlobalDisplay struct {
	TotalMarketCap string `json:"total_market_cap"`
	TotalVolume    string `json:"total_volume"`
	Change24h      string `json:"change_24h"`
}

// GlobalResponse represents the response for the global snapshot
type GlobalResponse struct {
	Success bool                `json:"success"`
	Global  models.GlobalMarket `json:"global"`
	Display GlobalDisplay       `json:"display"`
}

// SearchResponse represents the response for a coin search
type SearchResponse struct {
	Success bool                  `json:"success"`
	Query   string                `json:"query"`
	Results []models.SearchResult `json:"results"`
}

// HistoryResponse represents the response for a price series
type HistoryResponse struct {
	Success bool                `json:"success"`
	ID      string              `json:"id"`
	Days    int                 `json:"days"`
	Points  []models.PricePoint `json:"points"`
}

// PriceView is a quote plus its display strings
type PriceView struct {
	models.PriceQuote
	Display PriceDisplay `json:"display"`
}

// PriceDisplay holds the formatted strings for a quote
type PriceDisplay struct {
	Price     string `json:"price"`
	Change24h string `json:"change_24h"`
	MarketCap string `json:"market_cap"`
}

// PricesResponse represents the response for a batch price lookup
type PricesResponse struct {
	Success bool                 `json:"success"`
	Prices  map[string]PriceView `json:"prices"`
}

// CacheStatsResponse represents the response for cache diagnostics
type CacheStatsResponse struct {
	Success bool `json:"success"`
	Entries int  `json:"entries"`
	Pending int  `json:"pending"`
}

// CacheClearResponse represents the response for a cache clear
type CacheClearResponse struct {
	Success bool `json:"success"`
	Cleared int  `json:"cleared"`
}

func newCoinView(c models.Coin) CoinView {
	return CoinView{
		Coin: c,
		Display: CoinDisplay{
			Price:             format.Price(c.CurrentPrice),
			MarketCap:         format.LargeNumber(c.MarketCap),
			Volume:            format.LargeNumber(c.TotalVolume),
			Change24h:         format.PercentagePtr(c.PriceChangePercentage24h),
			CirculatingSupply: format.SupplyPtr(c.CirculatingSupply),
			MaxSupply:         format.SupplyPtr(c.MaxSupply),
		},
	}
}

func newPriceView(q models.PriceQuote) PriceView {
	return PriceView{
		PriceQuote: q,
		Display: PriceDisplay{
			Price:     format.Price(q.Price),
			Change24h: format.PercentagePtr(q.Change24h),
			MarketCap: format.LargeNumberPtr(q.MarketCap),
		},
	}
}
