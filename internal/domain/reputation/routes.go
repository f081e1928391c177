package reputation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns reputation router
func (h *Handler) Routes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/{userID}", h.Get)
	r.Get("/{userID}/suspension", h.Suspension)

	// Admin-only abuse controls
	r.Group(func(r chi.Router) {
		r.Use(adminMiddleware)
		r.Post("/{userID}/strikes", h.Strike)
		r.Post("/{userID}/suspend", h.Suspend)
		r.Post("/decay-strikes", h.DecayStrikes)
	})

	return r
}
