package dispute

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

// Repository handles dispute data access
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new dispute repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new dispute. A second filing for the same review by the
// same user trips the unique index and maps to ErrAlreadyFiled.
func (r *Repository) Create(ctx context.Context, d *Dispute) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO feedback_disputes (id, review_id, filed_by_user_id, reason, status)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, d.ID, d.ReviewID, d.FiledByUserID, d.Reason, d.Status)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrAlreadyFiled
		}
		return fmt.Errorf("insert dispute: %w", err)
	}
	return nil
}

// GetByID returns a dispute by id, nil when absent
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Dispute, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var d Dispute
	err := r.db.GetContext(ctx, &d, `SELECT * FROM feedback_disputes WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dispute: %w", err)
	}
	return &d, nil
}

// GetByReview returns the dispute filed against a review, nil when absent
func (r *Repository) GetByReview(ctx context.Context, reviewID uuid.UUID) (*Dispute, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var d Dispute
	err := r.db.GetContext(ctx, &d, `SELECT * FROM feedback_disputes WHERE review_id = $1`, reviewID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get dispute by review: %w", err)
	}
	return &d, nil
}

// List returns disputes, optionally filtered by status, newest first
func (r *Repository) List(ctx context.Context, status *Status, limit, offset int) ([]*Dispute, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	where := ""
	args := []interface{}{}
	if status != nil {
		where = " WHERE status = $1"
		args = append(args, *status)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM feedback_disputes"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count disputes: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT * FROM feedback_disputes%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	disputes := []*Dispute{}
	if err := r.db.SelectContext(ctx, &disputes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list disputes: %w", err)
	}
	return disputes, total, nil
}

// StartReview moves an open dispute to under_review. Returns false when the
// dispute was not open, so a concurrent resolve wins cleanly.
func (r *Repository) StartReview(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE feedback_disputes
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, StatusUnderReview, id, StatusOpen)
	if err != nil {
		return false, fmt.Errorf("start dispute review: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("start dispute review rows: %w", err)
	}
	return rows > 0, nil
}

// Resolve closes a dispute with a terminal status. The update is conditional
// on the dispute still being open or under_review; a resolved dispute is
// immutable and the call reports false.
func (r *Repository) Resolve(ctx context.Context, id uuid.UUID, outcome Status, note string, resolvedBy uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE feedback_disputes
		SET status = $1,
		    resolution_note = NULLIF($2, ''),
		    resolved_by_user_id = $3,
		    resolved_at = NOW(),
		    updated_at = NOW()
		WHERE id = $4 AND status IN ($5, $6)`

	result, err := r.db.ExecContext(ctx, query, outcome, note, resolvedBy, id, StatusOpen, StatusUnderReview)
	if err != nil {
		return false, fmt.Errorf("resolve dispute: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve dispute rows: %w", err)
	}
	return rows > 0, nil
}
