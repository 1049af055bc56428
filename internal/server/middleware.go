package server

import (
	"net"
	"net/http"
	"strconv"

	"fetcharr/internal/domain/logger"
	"fetcharr/internal/ratelimit"
)

// globalLimit sheds load across all clients before any per-address bookkeeping.
func (s *Server) globalLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, response{Message: "The server is busy. Please try again shortly."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// addressLimit enforces the per-address ledger. Rejections happen before any process starts.
//
// Ledger failures are logged and the request proceeds.
func (s *Server) addressLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := clientAddr(r)
		dec, err := s.ledger.Allow(r.Context(), addr, s.now())
		if err != nil {
			logger.Pl.E("Rate limit ledger unavailable for %s: %v", addr, err)
			next.ServeHTTP(w, r)
			return
		}

		if dec.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(dec.Remaining, 0)))
		}
		if !dec.Allowed {
			if dec.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(dec.RetryAfter.Seconds())))
			}
			logger.Pl.W("Rate limited %s on %s", addr, r.URL.Path)
			writeError(w, "", ratelimit.ErrRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr returns the host part of RemoteAddr.
//
// With trust-proxy enabled, middleware.RealIP has already rewritten RemoteAddr.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
