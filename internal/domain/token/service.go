package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Service implements the token ledger contract. The ledger itself never
// enforces non-negativity; CheckDebit is the precondition callers must run
// before debiting a real user.
type Service struct {
	repo *Repository
}

// NewService creates a new token service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// CreateTransaction records one double-entry movement. A repeated call with
// the same idempotency key returns the original movement without writing.
func (s *Service) CreateTransaction(ctx context.Context, p CreateParams) (*Transaction, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	// Look-before-insert keeps the common retry path cheap; the unique index
	// still backs the race window.
	if existing, err := s.repo.GetByIdempotencyKey(ctx, p.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	t := newTransaction(p)
	if err := s.repo.Insert(ctx, t); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return s.repo.GetByIdempotencyKey(ctx, p.IdempotencyKey)
		}
		return nil, err
	}
	return s.repo.GetByIdempotencyKey(ctx, p.IdempotencyKey)
}

// CreateTransactionTx records a movement inside an external transaction, for
// transitions that must be atomic with a lifecycle write (claim, submit).
// Idempotency collisions propagate as ErrDuplicateKey; the caller decides
// whether that aborts its transaction.
func (s *Service) CreateTransactionTx(ctx context.Context, tx *sqlx.Tx, p CreateParams) (*Transaction, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	t := newTransaction(p)
	if err := s.repo.InsertTx(ctx, tx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetBalance derives the user's balance from the ledger.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.GetBalance(ctx, userID)
}

// CheckDebit verifies the non-negative precondition for a debit. The SYSTEM
// account is exempt.
func (s *Service) CheckDebit(ctx context.Context, userID uuid.UUID, amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if userID == SystemAccount {
		return nil
	}

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}
	return nil
}

// EnsureSignupGrant grants the one-time signup bonus. Safe to call any number
// of times: the deterministic key makes the grant at-most-once.
func (s *Service) EnsureSignupGrant(ctx context.Context, userID uuid.UUID) (*Transaction, error) {
	key := SignupGrantKey(userID)

	if existing, err := s.repo.GetByIdempotencyKey(ctx, key); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	return s.CreateTransaction(ctx, CreateParams{
		IdempotencyKey: key,
		DebitUserID:    SystemAccount,
		CreditUserID:   userID,
		Amount:         SignupGrantAmount,
		Reason:         ReasonSignupGrant,
	})
}

// ListTransactions returns paginated movement history for a user.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	return s.repo.ListByUser(ctx, userID, Pagination{Limit: limit, Offset: offset})
}

// SignupGrantKey derives the deterministic idempotency key for a signup grant.
func SignupGrantKey(userID uuid.UUID) string {
	return fmt.Sprintf("signup_grant_%s", userID)
}

// EscrowKey derives the idempotency key for a listing's escrow hold.
func EscrowKey(listingID uuid.UUID) string {
	return fmt.Sprintf("listing_escrow_%s", listingID)
}

// PayoutKey derives the idempotency key for a listing's reviewer payout.
func PayoutKey(listingID uuid.UUID) string {
	return fmt.Sprintf("listing_payout_%s", listingID)
}

// RefundKey derives the idempotency key for a listing's escrow refund.
func RefundKey(listingID uuid.UUID) string {
	return fmt.Sprintf("refund_%s", listingID)
}

func validateParams(p CreateParams) error {
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.IdempotencyKey == "" {
		return fmt.Errorf("%w: empty idempotency key", ErrInvalidAmount)
	}
	if p.DebitUserID == p.CreditUserID {
		return ErrSameAccount
	}
	return nil
}

func newTransaction(p CreateParams) *Transaction {
	t := &Transaction{
		ID:             uuid.New(),
		IdempotencyKey: p.IdempotencyKey,
		DebitUserID:    p.DebitUserID,
		CreditUserID:   p.CreditUserID,
		Amount:         p.Amount,
		Reason:         p.Reason,
	}
	if p.ReferenceType != "" {
		t.ReferenceType = sql.NullString{String: p.ReferenceType, Valid: true}
	}
	if p.ReferenceID != uuid.Nil {
		t.ReferenceID = uuid.NullUUID{UUID: p.ReferenceID, Valid: true}
	}
	return t
}
