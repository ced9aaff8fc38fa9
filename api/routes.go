package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/references", listReferencesHandler(cfg))

	r.Route("/references/{id}", func(r chi.Router) {
		r.Delete("/", deleteReferenceHandler(cfg))
		r.Post("/analyze", analyzeHandler(cfg))
		r.Get("/regions", regionsHandler(cfg))
		r.Get("/motifs", motifsHandler(cfg))
		r.Post("/motifs/recluster", reclusterHandler(cfg))
		r.Get("/call-response", pairsHandler(cfg))
		r.Get("/call-response/lanes", lanesHandler(cfg))
		r.Get("/fills", fillsHandler(cfg))
		r.Get("/subregions", subregionsHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:     "ok",
			Version:    "0.1.0",
			UptimeS:    int64(time.Since(cfg.StartTime).Seconds()),
			References: len(cfg.Store.List()),
		})
	}
}

func listReferencesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, ReferencesResponse{ReferenceIDs: cfg.Store.List()})
	}
}

func deleteReferenceHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !cfg.Store.Has(id) {
			WriteError(w, http.StatusNotFound, "reference not found", "NOT_FOUND")
			return
		}
		cfg.Store.Delete(id)
		w.WriteHeader(http.StatusNoContent)
	}
}
