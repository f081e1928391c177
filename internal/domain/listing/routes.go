package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns listing router
func (h *Handler) Routes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/claim", h.Claim)
	r.Post("/{id}/cancel", h.Cancel)

	// Admin-only reaper triggers
	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/expire-stale", h.ExpireStale)
		r.Post("/reclaim-overdue", h.ReclaimOverdue)
	})

	return r
}
