package review

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/scriptswap/scriptswap-api/internal/domain/token"
	"github.com/scriptswap/scriptswap-api/internal/pkg/events"
)

// ReviewerPayout is what a reviewer earns for a submitted review. It mirrors
// the escrow held when the listing was posted.
const ReviewerPayout = 1

// Service handles review lifecycle and ratings
type Service struct {
	repo      *Repository
	tokens    *token.Service
	publisher *events.Publisher
}

// NewService creates a new review service
func NewService(repo *Repository, tokens *token.Service, publisher *events.Publisher) *Service {
	return &Service{repo: repo, tokens: tokens, publisher: publisher}
}

// GetByID returns a review
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	return rv, nil
}

// GetByListing returns the review bound to a listing
func (s *Service) GetByListing(ctx context.Context, listingID uuid.UUID) (*Review, error) {
	rv, err := s.repo.GetByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	return rv, nil
}

// Submit moves a review from in_progress to submitted and pays the reviewer
// out of escrow in the same transaction. The transition is a conditional
// update keyed on current status: a review in any other state fails with
// ErrNotSubmittable and nothing is written.
func (s *Service) Submit(ctx context.Context, reviewID, callerID uuid.UUID, in SubmitInput) (*Review, error) {
	for _, d := range []DimensionInput{in.StoryStructure, in.Characters, in.Dialogue, in.CraftVoice} {
		if d.Score < 1 || d.Score > 5 {
			return nil, ErrInvalidRubricScore
		}
	}

	meta, err := s.repo.GetMeta(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrReviewNotFound
	}
	if meta.ReviewerUserID != callerID {
		return nil, ErrNotReviewer
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ok, err := s.repo.SubmitTx(ctx, tx, reviewID, in)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotSubmittable
	}

	_, err = s.tokens.CreateTransactionTx(ctx, tx, token.CreateParams{
		IdempotencyKey: token.PayoutKey(meta.ListingID),
		DebitUserID:    token.SystemAccount,
		CreditUserID:   meta.ReviewerUserID,
		Amount:         ReviewerPayout,
		Reason:         token.ReasonListingPayout,
		ReferenceType:  "listing",
		ReferenceID:    meta.ListingID,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publisher.Publish(ctx, events.ReviewSubmitted, map[string]interface{}{
		"review_id":  reviewID.String(),
		"listing_id": meta.ListingID.String(),
		"reviewer":   meta.ReviewerUserID.String(),
		"owner":      meta.OwnerUserID.String(),
	})

	return s.GetByID(ctx, reviewID)
}

// GetMeta returns ownership and status metadata for a review
func (s *Service) GetMeta(ctx context.Context, reviewID uuid.UUID) (*Meta, error) {
	meta, err := s.repo.GetMeta(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrReviewNotFound
	}
	return meta, nil
}

// HasDuplicateReview reports whether the reviewer has ever had a review row
// against the listing. Reviews deleted by the overdue reaper no longer count,
// which leaves re-claiming after a reap permitted.
func (s *Service) HasDuplicateReview(ctx context.Context, listingID, reviewerUserID uuid.UUID) (bool, error) {
	return s.repo.HasAnyForListing(ctx, listingID, reviewerUserID)
}

// CreateRating records the listing owner's one-shot rating of a submitted
// review. A second rating for the same review fails with ErrAlreadyRated.
func (s *Service) CreateRating(ctx context.Context, reviewID, raterID uuid.UUID, req CreateRatingRequest) (*Rating, error) {
	meta, err := s.repo.GetMeta(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, ErrReviewNotFound
	}
	if meta.Status != StatusSubmitted {
		return nil, ErrNotRatable
	}
	if meta.OwnerUserID != raterID {
		return nil, ErrNotListingOwner
	}

	rating := &Rating{
		ID:          uuid.New(),
		ReviewID:    reviewID,
		RaterUserID: raterID,
		Score:       req.Score,
	}
	if req.Comment != "" {
		rating.Comment = sql.NullString{String: req.Comment, Valid: true}
	}

	if err := s.repo.CreateRating(ctx, rating); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.ReviewRated, map[string]interface{}{
		"review_id": reviewID.String(),
		"reviewer":  meta.ReviewerUserID.String(),
		"score":     req.Score,
	})

	created, err := s.repo.GetRatingByReview(ctx, reviewID)
	if err != nil {
		log.Error().Err(err).Str("review_id", reviewID.String()).Msg("Failed to reload rating")
		return rating, nil
	}
	return created, nil
}

// GetRatingByReview returns the rating for a review
func (s *Service) GetRatingByReview(ctx context.Context, reviewID uuid.UUID) (*Rating, error) {
	rating, err := s.repo.GetRatingByReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rating == nil {
		return nil, ErrRatingNotFound
	}
	return rating, nil
}
