package dispute

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/scriptswap/scriptswap-api/internal/domain/reputation"
	"github.com/scriptswap/scriptswap-api/internal/domain/review"
	"github.com/scriptswap/scriptswap-api/internal/pkg/events"
)

// Service handles dispute lifecycle
type Service struct {
	repo       *Repository
	reviews    *review.Service
	reputation *reputation.Service
	publisher  *events.Publisher
}

// NewService creates a new dispute service
func NewService(repo *Repository, reviews *review.Service, rep *reputation.Service, publisher *events.Publisher) *Service {
	return &Service{repo: repo, reviews: reviews, reputation: rep, publisher: publisher}
}

// File opens a dispute against a submitted review. Only the owner of the
// listing the review was written for may file, and only once per review.
func (s *Service) File(ctx context.Context, filerID uuid.UUID, req CreateRequest) (*Dispute, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	reviewID, err := uuid.Parse(req.ReviewID)
	if err != nil {
		return nil, review.ErrReviewNotFound
	}

	meta, err := s.reviews.GetMeta(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if meta.OwnerUserID != filerID {
		return nil, ErrNotListingOwner
	}
	if meta.Status != review.StatusSubmitted {
		return nil, ErrNotDisputable
	}

	d := &Dispute{
		ID:            uuid.New(),
		ReviewID:      reviewID,
		FiledByUserID: filerID,
		Reason:        reason,
		Status:        StatusOpen,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, d.ID)
}

// GetByID returns a dispute
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Dispute, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDisputeNotFound
	}
	return d, nil
}

// GetByReview returns the dispute filed against a review
func (s *Service) GetByReview(ctx context.Context, reviewID uuid.UUID) (*Dispute, error) {
	d, err := s.repo.GetByReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDisputeNotFound
	}
	return d, nil
}

// List returns disputes with an optional status filter
func (s *Service) List(ctx context.Context, status *Status, limit, offset int) ([]*Dispute, int, error) {
	return s.repo.List(ctx, status, limit, offset)
}

// StartReview marks an open dispute as under moderator review
func (s *Service) StartReview(ctx context.Context, id uuid.UUID) (*Dispute, error) {
	ok, err := s.repo.StartReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		d, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if d == nil {
			return nil, ErrDisputeNotFound
		}
		return nil, ErrNotResolvable
	}
	return s.GetByID(ctx, id)
}

// Resolve closes a dispute. An upheld resolution issues a strike against the
// reviewer; the third active strike suspends them. Terminal disputes cannot
// be resolved again.
func (s *Service) Resolve(ctx context.Context, id, resolverID uuid.UUID, req ResolveRequest) (*Dispute, error) {
	outcome := Status(req.Resolution)
	if outcome != StatusUpheld && outcome != StatusDismissed {
		return nil, ErrNotResolvable
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDisputeNotFound
	}

	ok, err := s.repo.Resolve(ctx, id, outcome, req.Note, resolverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotResolvable
	}

	if outcome == StatusUpheld {
		s.escalate(ctx, d)
	}

	s.publisher.Publish(ctx, events.DisputeResolved, map[string]interface{}{
		"dispute_id": id.String(),
		"review_id":  d.ReviewID.String(),
		"resolution": string(outcome),
	})

	return s.GetByID(ctx, id)
}

// escalate issues a strike for an upheld dispute and suspends the reviewer
// once they cross the active-strike threshold. Escalation failures are
// logged, not returned: the dispute resolution itself already committed.
func (s *Service) escalate(ctx context.Context, d *Dispute) {
	meta, err := s.reviews.GetMeta(ctx, d.ReviewID)
	if err != nil {
		log.Error().Err(err).Str("dispute_id", d.ID.String()).Msg("Failed to load review for strike escalation")
		return
	}

	if _, err := s.reputation.IssueStrike(ctx, meta.ReviewerUserID, "upheld dispute "+d.ID.String()); err != nil {
		log.Error().Err(err).Str("dispute_id", d.ID.String()).Msg("Failed to issue strike")
		return
	}

	count, err := s.reputation.ActiveStrikeCount(ctx, meta.ReviewerUserID)
	if err != nil {
		log.Error().Err(err).Str("reviewer", meta.ReviewerUserID.String()).Msg("Failed to count active strikes")
		return
	}
	if count < reputation.AutoSuspendThreshold {
		return
	}

	suspended, err := s.reputation.IsSuspended(ctx, meta.ReviewerUserID)
	if err != nil {
		log.Error().Err(err).Str("reviewer", meta.ReviewerUserID.String()).Msg("Failed to check suspension")
		return
	}
	if suspended {
		return
	}

	if _, err := s.reputation.Suspend(ctx, meta.ReviewerUserID); err != nil {
		log.Error().Err(err).Str("reviewer", meta.ReviewerUserID.String()).Msg("Failed to suspend reviewer")
	}
}
