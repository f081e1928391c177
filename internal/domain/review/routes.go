package review

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns review router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.GetByListing)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/submit", h.Submit)
	r.Post("/{id}/rating", h.Rate)
	r.Get("/{id}/rating", h.GetRating)
	return r
}
