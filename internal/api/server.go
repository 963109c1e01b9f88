// Package api provides the HTTP server for the coupon marketplace.
// Routes are thin adapters: decode the request, call the economy engine,
// map the domain error to a status code. No business rules live here.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealgrove/dealgrove/internal/app/economy"
	"github.com/dealgrove/dealgrove/internal/domain"
)

// identityHeader carries the caller's opaque identity. There is no other
// authentication layer; holding the token is holding the account.
const identityHeader = "X-User-ID"

// Server is the marketplace HTTP API server.
type Server struct {
	engine         *economy.Engine
	metricsEnabled bool
}

// NewServer creates a new API server over the given engine.
func NewServer(engine *economy.Engine) *Server {
	return &Server{engine: engine}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/account", s.handleCreateAccount)
		r.Get("/account", s.handleGetAccount)

		r.Post("/coupon", s.handlePublishCoupon)
		r.Get("/coupon", s.handleListCoupons)
		r.Get("/coupon/{couponID}", s.handleGetCoupon)
		r.Post("/coupon/{couponID}/vote", s.handleCastVote)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// identity extracts the caller identity header, or fails the request with
// 401 when it is absent.
func identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(identityHeader)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "missing "+identityHeader+" header")
		return "", false
	}
	return id, true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// writeDomainError maps a domain error to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrCouponNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientReputation):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAccountExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+identityHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
