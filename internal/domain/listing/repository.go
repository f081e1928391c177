package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines listing data access
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new listing repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const listingColumns = `
	id, owner_user_id, project_id, script_id, title, description, genre, format,
	page_count, status, claimed_by_user_id, review_deadline, expires_at,
	created_at, updated_at
`

// CreateTx inserts a new listing inside the posting transaction
func (r *Repository) CreateTx(ctx context.Context, tx *sqlx.Tx, l *Listing) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO feedback_listings (
			id, owner_user_id, project_id, script_id, title, description,
			genre, format, page_count, status, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, l.ID, l.OwnerUserID, l.ProjectID, l.ScriptID, l.Title, l.Description,
		l.Genre, l.Format, l.PageCount, l.Status, l.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// GetByID returns a listing by ID, or nil
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	var l Listing
	err := r.db.GetContext(ctx, &l, `SELECT `+listingColumns+` FROM feedback_listings WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &l, err
}

// List returns filtered, paginated listings plus a total count
func (r *Repository) List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Listing, int, error) {
	where := " WHERE 1=1"
	args := make([]interface{}, 0, 6)
	idx := 1

	if filter != nil {
		if filter.Status != nil {
			where += fmt.Sprintf(" AND status = $%d", idx)
			args = append(args, *filter.Status)
			idx++
		}
		if filter.Genre != nil && *filter.Genre != "" {
			where += fmt.Sprintf(" AND genre = $%d", idx)
			args = append(args, *filter.Genre)
			idx++
		}
		if filter.Format != nil && *filter.Format != "" {
			where += fmt.Sprintf(" AND format = $%d", idx)
			args = append(args, *filter.Format)
			idx++
		}
		if filter.OwnerUserID != nil {
			where += fmt.Sprintf(" AND owner_user_id = $%d", idx)
			args = append(args, *filter.OwnerUserID)
			idx++
		}
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM feedback_listings`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	limit := 20
	page := 1
	if pagination != nil {
		if pagination.Limit > 0 {
			limit = pagination.Limit
		}
		if pagination.Page > 0 {
			page = pagination.Page
		}
	}
	offset := (page - 1) * limit

	query := `SELECT ` + listingColumns + ` FROM feedback_listings` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	listings := make([]*Listing, 0)
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select listings: %w", err)
	}

	return listings, total, nil
}

// ClaimTx is the open -> claimed compare-and-swap. Exactly one concurrent
// claimer sees a row affected; everyone else must report "already claimed".
func (r *Repository) ClaimTx(ctx context.Context, tx *sqlx.Tx, id, reviewerUserID uuid.UUID, deadline time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE feedback_listings
		SET status = 'claimed', claimed_by_user_id = $2, review_deadline = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'open'
	`, id, reviewerUserID, deadline)
	if err != nil {
		return false, fmt.Errorf("claim listing: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// CancelTx is the owner-only open -> cancelled compare-and-swap
func (r *Repository) CancelTx(ctx context.Context, tx *sqlx.Tx, id, ownerUserID uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE feedback_listings
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND owner_user_id = $2 AND status = 'open'
	`, id, ownerUserID)
	if err != nil {
		return false, fmt.Errorf("cancel listing: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ExpiredListing identifies a listing expired by the stale reaper
type ExpiredListing struct {
	ID          uuid.UUID `db:"id"`
	OwnerUserID uuid.UUID `db:"owner_user_id"`
}

// ExpireStaleTx flips every open listing past its posting deadline to
// expired and returns the affected rows so escrow can be refunded in the
// same transaction. Idempotent: expired listings no longer match.
func (r *Repository) ExpireStaleTx(ctx context.Context, tx *sqlx.Tx) ([]ExpiredListing, error) {
	expired := make([]ExpiredListing, 0)
	err := tx.SelectContext(ctx, &expired, `
		UPDATE feedback_listings
		SET status = 'expired', updated_at = NOW()
		WHERE status = 'open' AND expires_at < NOW()
		RETURNING id, owner_user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("expire stale listings: %w", err)
	}
	return expired, nil
}

// ListOverdueIDs returns claimed listings whose review deadline has passed
// and whose review is still in_progress. A listing with a submitted review is
// fulfilled and stays claimed forever; the reaper never touches it.
func (r *Repository) ListOverdueIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := r.db.SelectContext(ctx, &ids, `
		SELECT l.id FROM feedback_listings l
		WHERE l.status = 'claimed' AND l.review_deadline < NOW()
		  AND EXISTS (
			SELECT 1 FROM feedback_reviews rv
			WHERE rv.listing_id = l.id AND rv.status = 'in_progress'
		  )
	`)
	if err != nil {
		return nil, fmt.Errorf("list overdue listings: %w", err)
	}
	return ids, nil
}

// ReclaimTx reopens one overdue claimed listing. The deadline is re-checked
// inside the conditional update so a submission racing the reaper wins.
func (r *Repository) ReclaimTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE feedback_listings
		SET status = 'open', claimed_by_user_id = NULL, review_deadline = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'claimed' AND review_deadline < NOW()
	`, id)
	if err != nil {
		return false, fmt.Errorf("reclaim listing: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// BeginTx starts a transaction on the underlying store
func (r *Repository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}
