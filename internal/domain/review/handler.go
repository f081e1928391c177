package review

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/scriptswap/scriptswap-api/internal/middleware"
	"github.com/scriptswap/scriptswap-api/internal/pkg/response"
	"github.com/scriptswap/scriptswap-api/internal/pkg/validator"
)

// Handler exposes review and rating endpoints
type Handler struct {
	svc *Service
}

// NewHandler creates a new review handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// GetByID returns a review
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid review id")
		return
	}

	rv, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, rv.ToResponse())
}

// GetByListing returns the review bound to a listing
func (h *Handler) GetByListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(r.URL.Query().Get("listing_id"))
	if err != nil {
		response.BadRequest(w, "invalid listing_id")
		return
	}

	rv, err := h.svc.GetByListing(r.Context(), listingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, rv.ToResponse())
}

// Submit finalizes an in-progress review with the full rubric
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid review id")
		return
	}

	var in SubmitInput
	if err := response.DecodeJSON(r.Body, &in); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(in); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	rv, err := h.svc.Submit(r.Context(), id, userID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, rv.ToResponse())
}

// Rate records the listing owner's rating of a submitted review
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid review id")
		return
	}

	var req CreateRatingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	rating, err := h.svc.CreateRating(r.Context(), id, userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, rating.ToResponse())
}

// GetRating returns the rating attached to a review
func (h *Handler) GetRating(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid review id")
		return
	}

	rating, err := h.svc.GetRatingByReview(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, rating.ToResponse())
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrReviewNotFound):
		response.NotFound(w, "review_not_found", "review not found")
	case errors.Is(err, ErrRatingNotFound):
		response.NotFound(w, "rating_not_found", "rating not found")
	case errors.Is(err, ErrNotSubmittable):
		response.Conflict(w, "review_not_submittable", "review is not in progress")
	case errors.Is(err, ErrNotRatable):
		response.Conflict(w, "review_not_ratable", "only submitted reviews can be rated")
	case errors.Is(err, ErrAlreadyRated):
		response.Conflict(w, "already_rated", "review already rated")
	case errors.Is(err, ErrNotReviewer), errors.Is(err, ErrNotListingOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrInvalidRubricScore):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
