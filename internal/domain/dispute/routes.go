package dispute

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns dispute router
func (h *Handler) Routes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.File)
	r.Get("/{id}", h.GetByID)

	// Admin-only moderation surface
	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Get("/", h.List)
		r.Post("/{id}/start-review", h.StartReview)
		r.Post("/{id}/resolve", h.Resolve)
	})

	return r
}
