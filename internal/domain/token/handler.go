package token

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/scriptswap/scriptswap-api/internal/middleware"
	"github.com/scriptswap/scriptswap-api/internal/pkg/response"
)

// Handler exposes the token ledger surface
type Handler struct {
	svc *Service
}

// NewHandler creates a new token handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Balance returns the caller's derived balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"balance": balance})
}

// Transactions lists the caller's ledger history
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transactions, err := h.svc.ListTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*TransactionResponse, 0, len(transactions))
	for i := range transactions {
		out = append(out, transactions[i].ToResponse())
	}

	response.OK(w, out)
}

// SignupGrant grants the one-time signup bonus to the caller
func (h *Handler) SignupGrant(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	t, err := h.svc.EnsureSignupGrant(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			response.BadRequest(w, "invalid grant request")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, t.ToResponse())
}
