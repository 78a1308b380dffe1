package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/revisio/revisio-api/internal/api/middleware"
)

// NewRouter assembles the HTTP routes: one kind-scoped series subtree per
// item kind, sharing the same handler implementation, plus a health probe.
func NewRouter(flashcards, choices, tables *SeriesHandler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			return
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/flashcard-series", flashcards.Routes())
		r.Mount("/choice-series", choices.Routes())
		r.Mount("/table-series", tables.Routes())
	})

	return r
}
