// Package api exposes the orchestrator over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/developforgood/pantheon/internal/airtable"
	"github.com/developforgood/pantheon/internal/jobs"
	"github.com/developforgood/pantheon/internal/pipeline"
	"github.com/developforgood/pantheon/internal/storage"
)

// BaseLister lists the tabular bases the token can reach. Implemented by
// airtable.Client.
type BaseLister interface {
	ListBases(ctx context.Context) ([]airtable.Base, error)
}

// Server holds shared state for all API handlers.
type Server struct {
	Store    storage.Gateway
	Registry *jobs.Registry
	Source   airtable.Gateway
	Bases    BaseLister
	Importer *pipeline.Importer
	Exporter *pipeline.Exporter
}

// NewRouter builds the chi router with all API routes.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Source browsing
		r.Get("/airtable/bases", s.ListBases)

		// Pipelines (async)
		r.Post("/imports/{baseID}", s.RunImport)
		r.Post("/exports/{cycleID}", s.RunExport)

		// Jobs
		r.Get("/jobs", s.ListJobs)
		r.Get("/jobs/{id}", s.GetJob)
		r.Patch("/jobs/{id}", s.EditJob)
		r.Post("/jobs/cancel/{id}", s.CancelJob)

		// Cycles
		r.Get("/cycles", s.ListCycles)
		r.Get("/cycles/{id}", s.GetCycle)
		r.Delete("/cycles/{id}", s.DeleteCycle)
		r.Get("/cycles/{id}/volunteers", s.ListCycleVolunteers)
		r.Get("/cycles/{id}/stats", s.GetCycleStats)
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
