package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"go-market-cache/internal/auth"
)

// handleCacheStats reports entry and in-flight counts
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.market.Stats()
	s.writeResponse(w, &CacheStatsResponse{
		Success: true,
		Entries: stats.Entries,
		Pending: stats.Pending,
	})
}

// handleCacheClear drops every cached response
func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	before := s.market.Stats()
	s.market.ClearCache()

	s.logger.Info("Cache cleared over HTTP",
		zap.String("request_id", RequestID(r.Context())),
		zap.Int("entries", before.Entries))

	s.writeResponse(w, &CacheClearResponse{
		Success: true,
		Cleared: before.Entries,
	})
}

// requireAdmin rejects requests without a valid admin bearer token
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminSecret == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			s.writeErrorResponse(w, "Missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.Verify(token, s.adminSecret, auth.ScopeCacheAdmin)
		if err != nil {
			s.logger.Warn("Rejected admin token",
				zap.String("request_id", RequestID(r.Context())),
				zap.Error(err))
			s.writeErrorResponse(w, "Invalid token", http.StatusForbidden)
			return
		}

		s.logger.Debug("Admin request authorized", zap.String("subject", claims.Subject))
		next.ServeHTTP(w, r)
	})
}
