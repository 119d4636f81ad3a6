package market

import (
	"strings"
	"time"

	"go-market-cache/internal/models"
)

// Wire formats of the CoinGecko v3 endpoints used by Service. Every numeric
// field is a pointer because the provider sends null for unknown values.

type marketCoin struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	TotalVolume              *float64 `json:"total_volume"`
	High24h                  *float64 `json:"high_24h"`
	Low24h                   *float64 `json:"low_24h"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	CirculatingSupply        *float64 `json:"circulating_supply"`
	TotalSupply              *float64 `json:"total_supply"`
	MaxSupply                *float64 `json:"max_supply"`
	LastUpdated              string   `json:"last_updated"`
}

type currencyValues map[string]*float64

type coinDetail struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Image         struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketData *struct {
		CurrentPrice             currencyValues `json:"current_price"`
		MarketCap                currencyValues `json:"market_cap"`
		TotalVolume              currencyValues `json:"total_volume"`
		High24h                  currencyValues `json:"high_24h"`
		Low24h                   currencyValues `json:"low_24h"`
		PriceChangePercentage24h *float64       `json:"price_change_percentage_24h"`
		CirculatingSupply        *float64       `json:"circulating_supply"`
		TotalSupply              *float64       `json:"total_supply"`
		MaxSupply                *float64       `json:"max_supply"`
	} `json:"market_data"`
	LastUpdated string `json:"last_updated"`
}

type globalData struct {
	ActiveCryptocurrencies          int                `json:"active_cryptocurrencies"`
	Markets                         int                `json:"markets"`
	TotalMarketCap                  currencyValues     `json:"total_market_cap"`
	TotalVolume                     currencyValues     `json:"total_volume"`
	MarketCapPercentage             map[string]float64 `json:"market_cap_percentage"`
	MarketCapChangePercentage24hUSD float64            `json:"market_cap_change_percentage_24h_usd"`
	UpdatedAt                       int64              `json:"updated_at"`
}

type searchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		MarketCapRank *int   `json:"market_cap_rank"`
		Thumb         string `json:"thumb"`
	} `json:"coins"`
}

type marketChart struct {
	Prices [][]*float64 `json:"prices"`
}

// simplePrice is keyed by coin id, then by currency or "<currency>_<field>"
type simplePrice map[string]currencyValues

func (v currencyValues) get(currency string) *float64 {
	if v == nil {
		return nil
	}
	return v[currency]
}

func valueOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func positive(p *float64) bool {
	return p != nil && *p > 0
}

func hasIdentity(id, symbol, name string) bool {
	return strings.TrimSpace(id) != "" && strings.TrimSpace(symbol) != "" && strings.TrimSpace(name) != ""
}

func (c *marketCoin) toModel() (models.Coin, bool) {
	if !hasIdentity(c.ID, c.Symbol, c.Name) || !positive(c.CurrentPrice) {
		return models.Coin{}, false
	}

	return models.Coin{
		ID:                       c.ID,
		Symbol:                   c.Symbol,
		Name:                     c.Name,
		Image:                    c.Image,
		CurrentPrice:             *c.CurrentPrice,
		MarketCap:                valueOrZero(c.MarketCap),
		MarketCapRank:            c.MarketCapRank,
		TotalVolume:              valueOrZero(c.TotalVolume),
		High24h:                  c.High24h,
		Low24h:                   c.Low24h,
		PriceChangePercentage24h: c.PriceChangePercentage24h,
		CirculatingSupply:        c.CirculatingSupply,
		TotalSupply:              c.TotalSupply,
		MaxSupply:                c.MaxSupply,
		LastUpdated:              c.LastUpdated,
	}, true
}

func (c *coinDetail) toModel(currency string) (*models.Coin, bool) {
	if !hasIdentity(c.ID, c.Symbol, c.Name) || c.MarketData == nil {
		return nil, false
	}

	md := c.MarketData
	price := md.CurrentPrice.get(currency)
	if !positive(price) {
		return nil, false
	}

	image := c.Image.Large
	if image == "" {
		image = c.Image.Small
	}

	return &models.Coin{
		ID:                       c.ID,
		Symbol:                   c.Symbol,
		Name:                     c.Name,
		Image:                    image,
		CurrentPrice:             *price,
		MarketCap:                valueOrZero(md.MarketCap.get(currency)),
		MarketCapRank:            c.MarketCapRank,
		TotalVolume:              valueOrZero(md.TotalVolume.get(currency)),
		High24h:                  md.High24h.get(currency),
		Low24h:                   md.Low24h.get(currency),
		PriceChangePercentage24h: md.PriceChangePercentage24h,
		CirculatingSupply:        md.CirculatingSupply,
		TotalSupply:              md.TotalSupply,
		MaxSupply:                md.MaxSupply,
		LastUpdated:              c.LastUpdated,
	}, true
}

func (g *globalData) toModel(currency string) (*models.GlobalMarket, bool) {
	totalMarketCap := g.TotalMarketCap.get(currency)
	if g.ActiveCryptocurrencies <= 0 || !positive(totalMarketCap) {
		return nil, false
	}

	return &models.GlobalMarket{
		ActiveCryptocurrencies:    g.ActiveCryptocurrencies,
		Markets:                   g.Markets,
		TotalMarketCap:            *totalMarketCap,
		TotalVolume:               valueOrZero(g.TotalVolume.get(currency)),
		MarketCapPercentage:       g.MarketCapPercentage,
		MarketCapChangePercentage: g.MarketCapChangePercentage24hUSD,
		UpdatedAt:                 time.Unix(g.UpdatedAt, 0).UTC(),
	}, true
}

func (m *marketChart) toModel() []models.PricePoint {
	points := make([]models.PricePoint, 0, len(m.Prices))
	for _, sample := range m.Prices {
		if len(sample) < 2 || !positive(sample[0]) || !positive(sample[1]) {
			continue
		}
		points = append(points, models.PricePoint{
			Timestamp: time.UnixMilli(int64(*sample[0])).UTC(),
			Price:     *sample[1],
		})
	}
	return points
}
