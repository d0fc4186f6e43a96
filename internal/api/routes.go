package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/healthz", handler.HealthCheck).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/prices", handler.GetPrices).Methods(http.MethodGet)
	api.HandleFunc("/market-caps", handler.GetMarketCaps).Methods(http.MethodGet)
	api.HandleFunc("/metrics", handler.GetMetrics).Methods(http.MethodGet)
	api.HandleFunc("/scores", handler.GetScores).Methods(http.MethodGet)
	api.HandleFunc("/trends", handler.GetTrends).Methods(http.MethodGet)
	api.HandleFunc("/news", handler.GetNews).Methods(http.MethodGet)
	api.HandleFunc("/trials", handler.GetTrials).Methods(http.MethodGet)
	api.HandleFunc("/export", handler.Export).Methods(http.MethodGet)
	api.HandleFunc("/sources", handler.GetSources).Methods(http.MethodGet)
	api.HandleFunc("/refresh", handler.Refresh).Methods(http.MethodPost)
	api.HandleFunc("/stream", handler.Stream).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

