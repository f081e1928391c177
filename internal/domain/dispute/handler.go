package dispute

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scriptswap/scriptswap-api/internal/domain/review"
	"github.com/scriptswap/scriptswap-api/internal/middleware"
	"github.com/scriptswap/scriptswap-api/internal/pkg/response"
	"github.com/scriptswap/scriptswap-api/internal/pkg/validator"
)

// Handler exposes dispute endpoints
type Handler struct {
	svc *Service
}

// NewHandler creates a new dispute handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// File opens a dispute against a review
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
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

	d, err := h.svc.File(r.Context(), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, d.ToResponse())
}

// GetByID returns a dispute
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid dispute id")
		return
	}

	d, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, d.ToResponse())
}

// List returns disputes with an optional status filter (admin)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var status *Status
	if s := q.Get("status"); s != "" {
		st := Status(s)
		status = &st
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	disputes, total, err := h.svc.List(r.Context(), status, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*DisputeResponse, 0, len(disputes))
	for _, d := range disputes {
		out = append(out, d.ToResponse())
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

// StartReview moves an open dispute to under_review (admin)
func (h *Handler) StartReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid dispute id")
		return
	}

	d, err := h.svc.StartReview(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, d.ToResponse())
}

// Resolve closes a dispute (admin)
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	resolverID := middleware.GetUserID(r.Context())
	if resolverID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid dispute id")
		return
	}

	var req ResolveRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	d, err := h.svc.Resolve(r.Context(), id, resolverID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, d.ToResponse())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDisputeNotFound):
		response.NotFound(w, "dispute_not_found", "dispute not found")
	case errors.Is(err, ErrAlreadyFiled):
		response.Conflict(w, "dispute_already_filed", "a dispute has already been filed for this review")
	case errors.Is(err, ErrNotResolvable):
		response.Conflict(w, "dispute_not_resolvable", "dispute is not in a resolvable state")
	case errors.Is(err, ErrNotDisputable):
		response.Conflict(w, "review_not_disputable", "only submitted reviews can be disputed")
	case errors.Is(err, ErrNotListingOwner):
		response.Forbidden(w, "only the listing owner may file a dispute")
	case errors.Is(err, ErrEmptyReason):
		response.BadRequest(w, "dispute reason cannot be empty")
	case errors.Is(err, review.ErrReviewNotFound):
		response.NotFound(w, "review_not_found", "review not found")
	default:
		response.InternalError(w)
	}
}
