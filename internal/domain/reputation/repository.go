package reputation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles strike and suspension storage plus the rating aggregate
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new reputation repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// InsertStrike records an active strike
func (r *Repository) InsertStrike(ctx context.Context, s *Strike) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviewer_strikes (id, reviewer_user_id, reason, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.ReviewerUserID, s.Reason, s.IsActive, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert strike: %w", err)
	}
	return nil
}

// ActiveStrikeCount counts strikes that are active and unexpired
func (r *Repository) ActiveStrikeCount(ctx context.Context, reviewerUserID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM reviewer_strikes
		WHERE reviewer_user_id = $1 AND is_active = true AND expires_at > NOW()
	`, reviewerUserID)
	return count, err
}

// DecayExpiredStrikes flips expired strikes inactive. Idempotent: a second
// run affects zero rows.
func (r *Repository) DecayExpiredStrikes(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reviewer_strikes SET is_active = false
		WHERE is_active = true AND expires_at <= NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("decay strikes: %w", err)
	}
	return res.RowsAffected()
}

// InsertSuspension records an active suspension
func (r *Repository) InsertSuspension(ctx context.Context, s *Suspension) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviewer_suspensions (id, reviewer_user_id, is_active, lifted_at)
		VALUES ($1, $2, $3, $4)
	`, s.ID, s.ReviewerUserID, s.IsActive, s.LiftedAt)
	if err != nil {
		return fmt.Errorf("insert suspension: %w", err)
	}
	return nil
}

// IsSuspended reports whether any active, unlifted suspension exists
func (r *Repository) IsSuspended(ctx context.Context, reviewerUserID uuid.UUID) (bool, error) {
	var suspended bool
	err := r.db.GetContext(ctx, &suspended, `
		SELECT EXISTS(
			SELECT 1 FROM reviewer_suspensions
			WHERE reviewer_user_id = $1 AND is_active = true AND lifted_at > NOW()
		)
	`, reviewerUserID)
	return suspended, err
}

// RatingAggregate returns the mean and count of ratings received across a
// reviewer's reviews. The average is NULL when no ratings exist.
func (r *Repository) RatingAggregate(ctx context.Context, reviewerUserID uuid.UUID) (*float64, int, error) {
	var row struct {
		Average sql.NullFloat64 `db:"average"`
		Total   int             `db:"total"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT AVG(rr.score) AS average, COUNT(rr.id) AS total
		FROM reviewer_ratings rr
		JOIN feedback_reviews rv ON rv.id = rr.review_id
		WHERE rv.reviewer_user_id = $1
	`, reviewerUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("rating aggregate: %w", err)
	}
	if !row.Average.Valid {
		return nil, row.Total, nil
	}
	return &row.Average.Float64, row.Total, nil
}

// NewStrike builds a strike expiring after StrikeTTL
func NewStrike(reviewerUserID uuid.UUID, reason string) *Strike {
	return &Strike{
		ID:             uuid.New(),
		ReviewerUserID: reviewerUserID,
		Reason:         reason,
		IsActive:       true,
		ExpiresAt:      time.Now().Add(StrikeTTL),
	}
}

// NewSuspension builds a suspension lifting after SuspensionTTL
func NewSuspension(reviewerUserID uuid.UUID) *Suspension {
	return &Suspension{
		ID:             uuid.New(),
		ReviewerUserID: reviewerUserID,
		IsActive:       true,
		LiftedAt:       time.Now().Add(SuspensionTTL),
	}
}
