package reputation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scriptswap/scriptswap-api/internal/pkg/response"
	"github.com/scriptswap/scriptswap-api/internal/pkg/validator"
)

// Handler exposes reputation and abuse-control endpoints
type Handler struct {
	svc *Service
}

// NewHandler creates a new reputation handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// StrikeRequest issues a disciplinary strike
type StrikeRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// Get returns the derived reputation aggregate for a reviewer
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	rep, err := h.svc.GetReputation(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, rep)
}

// Strike issues a strike against a reviewer (admin)
func (h *Handler) Strike(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	var req StrikeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	strike, err := h.svc.IssueStrike(r.Context(), userID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, strike)
}

// Suspend suspends a reviewer for 30 days (admin)
func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	suspension, err := h.svc.Suspend(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, suspension)
}

// Suspension reports current suspension state
func (h *Handler) Suspension(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	suspended, err := h.svc.IsSuspended(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"is_suspended": suspended})
}

// DecayStrikes runs strike decay on demand (admin; the worker also runs it)
func (h *Handler) DecayStrikes(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.DecayExpiredStrikes(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"decayed": count})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "user_not_found", "user not found")
	case errors.Is(err, ErrEmptyReason):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
