package models

import "time"

// Coin is a ranked market asset
type Coin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image,omitempty"`
	CurrentPrice             float64  `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	MarketCapRank            *int     `json:"market_cap_rank,omitempty"`
	TotalVolume              float64  `json:"total_volume"`
	High24h                  *float64 `json:"high_24h,omitempty"`
	Low24h                   *float64 `json:"low_24h,omitempty"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h,omitempty"`
	CirculatingSupply        *float64 `json:"circulating_supply,omitempty"`
	TotalSupply              *float64 `json:"total_supply,omitempty"`
	MaxSupply                *float64 `json:"max_supply,omitempty"`
	LastUpdated              string   `json:"last_updated,omitempty"`
}

// GlobalMarket is a snapshot of aggregate market totals
type GlobalMarket struct {
	ActiveCryptocurrencies    int                `json:"active_cryptocurrencies"`
	Markets                   int                `json:"markets"`
	TotalMarketCap            float64            `json:"total_market_cap"`
	TotalVolume               float64            `json:"total_volume"`
	MarketCapPercentage       map[string]float64 `json:"market_cap_percentage,omitempty"`
	MarketCapChangePercentage float64            `json:"market_cap_change_percentage_24h"`
	UpdatedAt                 time.Time          `json:"updated_at"`
}

// SearchResult is a coin matched by a text search
type SearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank,omitempty"`
	Thumb         string `json:"thumb,omitempty"`
}

// PricePoint is one sample of a historical price series
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// PriceQuote is the current price of a coin in the configured currency
type PriceQuote struct {
	Price     float64  `json:"price"`
	Change24h *float64 `json:"change_24h,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`
}
