package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"go-market-cache/internal/format"
	"go-market-cache/internal/market"
)

// defaultHistoryDays is used when the days parameter is absent
const defaultHistoryDays = 7

// handleTopCoins handles GET /api/v1/coins?limit=
func (s *Server) handleTopCoins(w http.ResponseWriter, r *http.Request) {
	limit, ok := s.intParam(w, r, "limit", market.DefaultTopLimit)
	if !ok {
		return
	}

	coins := s.market.TopCoins(r.Context(), limit)
	views := make([]CoinView, 0, len(coins))
	for _, c := range coins {
		views = append(views, newCoinView(c))
	}

	s.writeResponse(w, &CoinsResponse{Success: true, Coins: views})
}

// handleCoin handles GET /api/v1/coins/{id}
func (s *Server) handleCoin(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	coin := s.market.Coin(r.Context(), id)
	if coin == nil {
		s.writeErrorResponse(w, "Coin not found", http.StatusNotFound)
		return
	}

	s.writeResponse(w, &CoinResponse{Success: true, Coin: newCoinView(*coin)})
}

// handleHistory handles GET /api/v1/coins/{id}/history?days=
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	days, ok := s.intParam(w, r, "days", defaultHistoryDays)
	if !ok {
		return
	}

	s.writeResponse(w, &HistoryResponse{
		Success: true,
		ID:      id,
		Days:    market.ClampDays(days),
		Points:  s.market.History(r.Context(), id, days),
	})
}

// handleGlobal handles GET /api/v1/global
func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	global := s.market.Global(r.Context())
	if global == nil {
		s.writeErrorResponse(w, "Global market data unavailable", http.StatusNotFound)
		return
	}

	s.writeResponse(w, &GlobalResponse{
		Success: true,
		Global:  *global,
		Display: GlobalDisplay{
			TotalMarketCap: format.LargeNumber(global.TotalMarketCap),
			TotalVolume:    format.LargeNumber(global.TotalVolume),
			Change24h:      format.Percentage(global.MarketCapChangePercentage),
		},
	})
}

// handleSearch handles GET /api/v1/search?q=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.writeResponse(w, &SearchResponse{
		Success: true,
		Query:   q,
		Results: s.market.Search(r.Context(), q),
	})
}

// handlePrices handles GET /api/v1/prices?ids=a,b,c
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if strings.TrimSpace(raw) == "" {
		s.writeErrorResponse(w, "Missing ids parameter", http.StatusBadRequest)
		return
	}

	quotes := s.market.Prices(r.Context(), strings.Split(raw, ","))
	views := make(map[string]PriceView, len(quotes))
	for id, q := range quotes {
		views[id] = newPriceView(q)
	}

	s.writeResponse(w, &PricesResponse{Success: true, Prices: views})
}

// intParam reads an optional integer query parameter, writing a 400 on junk
func (s *Server) intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.writeErrorResponse(w, "Invalid "+name+" parameter", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}
