package listing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scriptswap/scriptswap-api/internal/middleware"
	"github.com/scriptswap/scriptswap-api/internal/pkg/response"
	"github.com/scriptswap/scriptswap-api/internal/pkg/validator"
)

// Handler exposes listing endpoints
type Handler struct {
	svc *Service
}

// NewHandler creates a new listing handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create posts a new listing
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	l, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, l.ToResponse())
}

// GetByID returns a listing
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid listing id")
		return
	}

	l, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, l.ToResponse())
}

// List returns filtered listings
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := &Filter{}
	if s := q.Get("status"); s != "" {
		status := Status(s)
		filter.Status = &status
	}
	if g := q.Get("genre"); g != "" {
		filter.Genre = &g
	}
	if f := q.Get("format"); f != "" {
		filter.Format = &f
	}
	if o := q.Get("owner"); o != "" {
		ownerID, err := uuid.Parse(o)
		if err != nil {
			response.BadRequest(w, "invalid owner id")
			return
		}
		filter.OwnerUserID = &ownerID
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	listings, total, err := h.svc.List(r.Context(), filter, &Pagination{Page: page, Limit: limit})
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*ListingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ToResponse())
	}

	pages := (total + limit - 1) / limit
	response.WithMeta(w, out, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	})
}

// Claim takes ownership of an open listing
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid listing id")
		return
	}

	l, rv, err := h.svc.Claim(r.Context(), id, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"listing": l.ToResponse(),
		"review":  rv.ToResponse(),
	})
}

// Cancel withdraws an open listing
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid listing id")
		return
	}

	l, err := h.svc.Cancel(r.Context(), id, userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, l.ToResponse())
}

// ExpireStale runs the stale-listing reaper on demand (admin)
func (h *Handler) ExpireStale(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.ExpireStale(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"expired": count})
}

// ReclaimOverdue runs the overdue-review reaper on demand (admin)
func (h *Handler) ReclaimOverdue(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.ReclaimOverdue(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"reclaimed": count})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrListingNotFound):
		response.NotFound(w, "listing_not_found", "listing not found")
	case errors.Is(err, ErrListingNotOpen):
		response.Conflict(w, "listing_not_open", "listing is not open")
	case errors.Is(err, ErrNotListingOwner):
		response.Forbidden(w, "only the owner may act on this listing")
	case errors.Is(err, ErrOwnListing):
		response.Conflict(w, "own_listing", "cannot claim your own listing")
	case errors.Is(err, ErrReviewerSuspended):
		response.Error(w, http.StatusForbidden, "reviewer_suspended", "reviewer is suspended")
	case errors.Is(err, ErrAlreadyReviewed):
		response.Conflict(w, "already_reviewed", "reviewer already has a review for this listing")
	case errors.Is(err, ErrInsufficientBalance):
		response.Conflict(w, "insufficient_balance", "insufficient token balance to post")
	default:
		response.InternalError(w)
	}
}
