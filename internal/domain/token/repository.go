package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}

// Repository provides append-only ledger access.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new token repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const transactionColumns = `
	id, idempotency_key, debit_user_id, credit_user_id, amount, reason,
	reference_type, reference_id, created_at
`

// Insert appends one ledger row, writing the database-assigned created_at
// back into t. An idempotency key collision maps to ErrDuplicateKey so the
// service can return the original movement.
func (r *Repository) Insert(ctx context.Context, t *Transaction) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.insert(ctx2, r.db, t)
}

// InsertTx appends one ledger row within an external transaction. The caller
// owns commit and rollback.
func (r *Repository) InsertTx(ctx context.Context, tx *sqlx.Tx, t *Transaction) error {
	return r.insert(ctx, tx, t)
}

func (r *Repository) insert(ctx context.Context, execer sqlx.ExtContext, t *Transaction) error {
	err := execer.QueryRowxContext(ctx, `
		INSERT INTO token_transactions (
			id, idempotency_key, debit_user_id, credit_user_id, amount, reason,
			reference_type, reference_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, t.ID, t.IdempotencyKey, t.DebitUserID, t.CreditUserID, t.Amount, t.Reason,
		t.ReferenceType, t.ReferenceID).Scan(&t.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, t.IdempotencyKey)
		}
		return fmt.Errorf("%w: insert transaction: %v", ErrInternal, err)
	}
	return nil
}

// GetByIdempotencyKey returns the movement recorded under key, or nil.
func (r *Repository) GetByIdempotencyKey(ctx context.Context, key string) (*Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var t Transaction
	err := r.db.GetContext(ctx2, &t, `
		SELECT `+transactionColumns+` FROM token_transactions WHERE idempotency_key = $1
	`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get by idempotency key: %v", ErrInternal, err)
	}
	return &t, nil
}

// GetBalance derives a user's balance from the ledger: SUM(credit) - SUM(debit).
func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var balance int
	err := r.db.GetContext(ctx2, &balance, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE credit_user_id = $1), 0) -
			COALESCE(SUM(amount) FILTER (WHERE debit_user_id = $1), 0)
		FROM token_transactions
		WHERE credit_user_id = $1 OR debit_user_id = $1
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: get balance: %v", ErrInternal, err)
	}
	return balance, nil
}

// ListByUser returns movements touching either side of a user's account.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, pagination Pagination) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := pagination.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions := make([]Transaction, 0)
	err := r.db.SelectContext(ctx2, &transactions, `
		SELECT `+transactionColumns+` FROM token_transactions
		WHERE debit_user_id = $1 OR credit_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, pagination.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions: %v", ErrInternal, err)
	}
	return transactions, nil
}
