package reputation

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/scriptswap/scriptswap-api/internal/domain/user"
	"github.com/scriptswap/scriptswap-api/internal/pkg/events"
)

// Service aggregates reviewer reputation and manages strikes and suspensions.
// Escalation policy (how many strikes force a suspension) lives with callers;
// this component only records and reports.
type Service struct {
	repo      *Repository
	users     *user.Repository
	publisher *events.Publisher
}

// NewService creates a new reputation service
func NewService(repo *Repository, users *user.Repository, publisher *events.Publisher) *Service {
	return &Service{repo: repo, users: users, publisher: publisher}
}

// GetReputation recomputes the reviewer's aggregate from storage
func (s *Service) GetReputation(ctx context.Context, userID uuid.UUID) (*Reputation, error) {
	avg, total, err := s.repo.RatingAggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	strikes, err := s.repo.ActiveStrikeCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	suspended, err := s.repo.IsSuspended(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Reputation{
		UserID:            userID,
		AverageRating:     avg,
		TotalReviews:      total,
		ActiveStrikeCount: strikes,
		IsSuspended:       suspended,
	}, nil
}

// IssueStrike records an active strike expiring in 90 days
func (s *Service) IssueStrike(ctx context.Context, reviewerUserID uuid.UUID, reason string) (*Strike, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrEmptyReason
	}

	exists, err := s.users.Exists(ctx, reviewerUserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	strike := NewStrike(reviewerUserID, reason)
	if err := s.repo.InsertStrike(ctx, strike); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.StrikeIssued, map[string]interface{}{
		"reviewer": reviewerUserID.String(),
		"reason":   reason,
	})

	return strike, nil
}

// ActiveStrikeCount counts active, unexpired strikes
func (s *Service) ActiveStrikeCount(ctx context.Context, reviewerUserID uuid.UUID) (int, error) {
	return s.repo.ActiveStrikeCount(ctx, reviewerUserID)
}

// DecayExpiredStrikes deactivates every strike past its expiry. Safe to run
// repeatedly and concurrently.
func (s *Service) DecayExpiredStrikes(ctx context.Context) (int64, error) {
	return s.repo.DecayExpiredStrikes(ctx)
}

// Suspend records a 30-day suspension for a reviewer
func (s *Service) Suspend(ctx context.Context, reviewerUserID uuid.UUID) (*Suspension, error) {
	exists, err := s.users.Exists(ctx, reviewerUserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	suspension := NewSuspension(reviewerUserID)
	if err := s.repo.InsertSuspension(ctx, suspension); err != nil {
		return nil, err
	}
	return suspension, nil
}

// IsSuspended reports current suspension state
func (s *Service) IsSuspended(ctx context.Context, reviewerUserID uuid.UUID) (bool, error) {
	return s.repo.IsSuspended(ctx, reviewerUserID)
}
