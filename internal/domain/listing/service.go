package listing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/scriptswap/scriptswap-api/internal/domain/reputation"
	"github.com/scriptswap/scriptswap-api/internal/domain/review"
	"github.com/scriptswap/scriptswap-api/internal/domain/token"
	"github.com/scriptswap/scriptswap-api/internal/pkg/events"
	"github.com/scriptswap/scriptswap-api/internal/pkg/scriptvault"
)

// Service drives the listing state machine. All racing transitions are
// conditional updates on the status column; rows-affected decides the winner.
type Service struct {
	repo       *Repository
	reviews    *review.Repository
	tokens     *token.Service
	reputation *reputation.Service
	publisher  *events.Publisher
	vault      *scriptvault.Client
}

// NewService creates a new listing service. vault may be nil when ScriptVault
// sync is disabled.
func NewService(repo *Repository, reviews *review.Repository, tokens *token.Service, rep *reputation.Service, publisher *events.Publisher, vault *scriptvault.Client) *Service {
	return &Service{
		repo:       repo,
		reviews:    reviews,
		tokens:     tokens,
		reputation: rep,
		publisher:  publisher,
		vault:      vault,
	}
}

// Create posts a listing and escrows the posting cost in one transaction.
// The balance precondition runs first: the ledger itself never rejects a
// movement, callers do.
func (s *Service) Create(ctx context.Context, ownerUserID uuid.UUID, req CreateRequest) (*Listing, error) {
	if err := s.tokens.CheckDebit(ctx, ownerUserID, PostingCost); err != nil {
		if errors.Is(err, token.ErrInsufficientBalance) {
			return nil, ErrInsufficientBalance
		}
		return nil, err
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project_id: %w", err)
	}
	scriptID, err := uuid.Parse(req.ScriptID)
	if err != nil {
		return nil, fmt.Errorf("invalid script_id: %w", err)
	}

	l := &Listing{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		ProjectID:   projectID,
		ScriptID:    scriptID,
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Format:      req.Format,
		PageCount:   req.PageCount,
		Status:      StatusOpen,
		ExpiresAt:   time.Now().Add(PostingTTL),
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.repo.CreateTx(ctx, tx, l); err != nil {
		return nil, err
	}

	if _, err := s.tokens.CreateTransactionTx(ctx, tx, token.CreateParams{
		IdempotencyKey: token.EscrowKey(l.ID),
		DebitUserID:    ownerUserID,
		CreditUserID:   token.SystemAccount,
		Amount:         PostingCost,
		Reason:         token.ReasonListingEscrow,
		ReferenceType:  "listing",
		ReferenceID:    l.ID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.repo.GetByID(ctx, l.ID)
}

// GetByID returns a listing
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	return l, nil
}

// List returns filtered listings
func (s *Service) List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Listing, int, error) {
	return s.repo.List(ctx, filter, pagination)
}

// Claim atomically takes ownership of an open listing and opens its review.
// Either the claim and the review both land, or neither does. Concurrent
// claimers are serialized by the conditional update alone: the loser sees
// zero rows affected and gets ErrListingNotOpen.
func (s *Service) Claim(ctx context.Context, id, reviewerUserID uuid.UUID) (*Listing, *review.Review, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if l == nil {
		return nil, nil, ErrListingNotFound
	}
	if l.OwnerUserID == reviewerUserID {
		return nil, nil, ErrOwnListing
	}

	suspended, err := s.reputation.IsSuspended(ctx, reviewerUserID)
	if err != nil {
		return nil, nil, err
	}
	if suspended {
		return nil, nil, ErrReviewerSuspended
	}

	duplicate, err := s.reviews.HasAnyForListing(ctx, id, reviewerUserID)
	if err != nil {
		return nil, nil, err
	}
	if duplicate {
		return nil, nil, ErrAlreadyReviewed
	}

	deadline := time.Now().Add(ReviewWindow)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	won, err := s.repo.ClaimTx(ctx, tx, id, reviewerUserID, deadline)
	if err != nil {
		return nil, nil, err
	}
	if !won {
		return nil, nil, ErrListingNotOpen
	}

	rv, err := s.reviews.CreateInProgressTx(ctx, tx, id, reviewerUserID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}

	// Script access and event emission are fire-and-forget: the claim stands
	// even when either call fails.
	if s.vault != nil {
		if err := s.vault.ApproveViewer(ctx, l.ScriptID, reviewerUserID); err != nil {
			log.Error().Err(err).
				Str("listing_id", id.String()).
				Str("reviewer_id", reviewerUserID.String()).
				Msg("ScriptVault viewer approval failed")
		}
	}
	s.publisher.Publish(ctx, events.ListingClaimed, map[string]interface{}{
		"listing_id": id.String(),
		"owner":      l.OwnerUserID.String(),
		"reviewer":   reviewerUserID.String(),
		"review_id":  rv.ID.String(),
	})

	claimed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return claimed, rv, nil
}

// Cancel is owner-only and permitted only while the listing is open. A
// claimed listing must run its course or be reaped. Escrow is refunded in
// the cancellation transaction.
func (s *Service) Cancel(ctx context.Context, id, callerID uuid.UUID) (*Listing, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	won, err := s.repo.CancelTx(ctx, tx, id, callerID)
	if err != nil {
		return nil, err
	}
	if !won {
		// Distinguish the failure for a stable error code.
		l, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if l == nil {
			return nil, ErrListingNotFound
		}
		if !l.CanBeCancelledBy(callerID) {
			return nil, ErrNotListingOwner
		}
		return nil, ErrListingNotOpen
	}

	if _, err := s.tokens.CreateTransactionTx(ctx, tx, token.CreateParams{
		IdempotencyKey: token.RefundKey(id),
		DebitUserID:    token.SystemAccount,
		CreditUserID:   callerID,
		Amount:         PostingCost,
		Reason:         token.ReasonRefund,
		ReferenceType:  "listing",
		ReferenceID:    id,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.repo.GetByID(ctx, id)
}

// ExpireStale flips every open listing past its posting deadline to expired
// and refunds each escrow, all in one transaction. Returns count affected.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	expired, err := s.repo.ExpireStaleTx(ctx, tx)
	if err != nil {
		return 0, err
	}

	for _, e := range expired {
		if _, err := s.tokens.CreateTransactionTx(ctx, tx, token.CreateParams{
			IdempotencyKey: token.RefundKey(e.ID),
			DebitUserID:    token.SystemAccount,
			CreditUserID:   e.OwnerUserID,
			Amount:         PostingCost,
			Reason:         token.ReasonRefund,
			ReferenceType:  "listing",
			ReferenceID:    e.ID,
		}); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return len(expired), nil
}

// ReclaimOverdue reopens every claimed listing whose review deadline has
// passed, deleting its in_progress review in the same per-listing
// transaction. Submitted reviews are never touched: the delete is filtered
// on status, and a listing whose delete affects nothing is skipped.
func (s *Service) ReclaimOverdue(ctx context.Context) (int, error) {
	ids, err := s.repo.ListOverdueIDs(ctx)
	if err != nil {
		return 0, err
	}

	reclaimed := 0
	for _, id := range ids {
		ok, err := s.reclaimOne(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("listing_id", id.String()).Msg("Failed to reclaim overdue listing")
			continue
		}
		if ok {
			reclaimed++
		}
	}
	return reclaimed, nil
}

func (s *Service) reclaimOne(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Delete first: if the review was submitted between listing and here,
	// zero rows match and the listing stays claimed (fulfilled).
	deleted, err := s.reviews.DeleteInProgressByListingTx(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if deleted == 0 {
		return false, nil
	}

	won, err := s.repo.ReclaimTx(ctx, tx, id)
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}

	return true, tx.Commit()
}
