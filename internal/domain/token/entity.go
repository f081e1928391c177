package token

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Reason classifies a ledger movement.
type Reason string

const (
	ReasonSignupGrant   Reason = "signup_grant"
	ReasonListingEscrow Reason = "listing_escrow"
	ReasonListingPayout Reason = "listing_payout"
	ReasonRefund        Reason = "refund"
)

// SystemAccount is the sentinel counterparty for grants, escrow and payouts.
// Its balance is unbounded and may go negative; it is exempt from the
// non-negative precondition real users are held to.
var SystemAccount = uuid.Nil

// SignupGrantAmount is the one-time token grant every new account receives.
const SignupGrantAmount = 3

// Transaction is an immutable double-entry ledger row. Balances are always
// derived from the ledger, never stored.
type Transaction struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	IdempotencyKey string         `db:"idempotency_key" json:"idempotency_key"`
	DebitUserID    uuid.UUID      `db:"debit_user_id" json:"debit_user_id"`
	CreditUserID   uuid.UUID      `db:"credit_user_id" json:"credit_user_id"`
	Amount         int            `db:"amount" json:"amount"`
	Reason         Reason         `db:"reason" json:"reason"`
	ReferenceType  sql.NullString `db:"reference_type" json:"-"`
	ReferenceID    uuid.NullUUID  `db:"reference_id" json:"-"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// TransactionResponse for API responses
type TransactionResponse struct {
	ID             string  `json:"id"`
	IdempotencyKey string  `json:"idempotency_key"`
	DebitUserID    string  `json:"debit_user_id"`
	CreditUserID   string  `json:"credit_user_id"`
	Amount         int     `json:"amount"`
	Reason         string  `json:"reason"`
	ReferenceType  *string `json:"reference_type,omitempty"`
	ReferenceID    *string `json:"reference_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// ToResponse converts entity to response
func (t *Transaction) ToResponse() *TransactionResponse {
	resp := &TransactionResponse{
		ID:             t.ID.String(),
		IdempotencyKey: t.IdempotencyKey,
		DebitUserID:    t.DebitUserID.String(),
		CreditUserID:   t.CreditUserID.String(),
		Amount:         t.Amount,
		Reason:         string(t.Reason),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
	if t.ReferenceType.Valid {
		resp.ReferenceType = &t.ReferenceType.String
	}
	if t.ReferenceID.Valid {
		s := t.ReferenceID.UUID.String()
		resp.ReferenceID = &s
	}
	return resp
}

// CreateParams describes one ledger movement.
type CreateParams struct {
	IdempotencyKey string
	DebitUserID    uuid.UUID
	CreditUserID   uuid.UUID
	Amount         int
	Reason         Reason
	ReferenceType  string
	ReferenceID    uuid.UUID
}
