package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository handles review and rating database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new review repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const reviewColumns = `
	id, listing_id, reviewer_user_id,
	story_structure_score, story_structure_comment,
	characters_score, characters_comment,
	dialogue_score, dialogue_comment,
	craft_voice_score, craft_voice_comment,
	overall_comment, status, created_at, updated_at
`

// GetByID returns a review by ID, or nil
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	var rv Review
	err := r.db.GetContext(ctx, &rv, `SELECT `+reviewColumns+` FROM feedback_reviews WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &rv, err
}

// GetByListing returns the review bound to a listing, or nil. At most one
// review exists per listing at any time.
func (r *Repository) GetByListing(ctx context.Context, listingID uuid.UUID) (*Review, error) {
	var rv Review
	err := r.db.GetContext(ctx, &rv, `SELECT `+reviewColumns+` FROM feedback_reviews WHERE listing_id = $1`, listingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &rv, err
}

// GetMeta returns the review joined with its listing's owner and script, or nil
func (r *Repository) GetMeta(ctx context.Context, reviewID uuid.UUID) (*Meta, error) {
	var m Meta
	err := r.db.GetContext(ctx, &m, `
		SELECT rv.id, rv.listing_id, rv.reviewer_user_id, rv.status,
		       l.owner_user_id, l.script_id
		FROM feedback_reviews rv
		JOIN feedback_listings l ON l.id = rv.listing_id
		WHERE rv.id = $1
	`, reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &m, err
}

// CreateInProgressTx inserts the in_progress review paired with a claim.
// Runs inside the claim's transaction; the caller owns commit and rollback.
func (r *Repository) CreateInProgressTx(ctx context.Context, tx *sqlx.Tx, listingID, reviewerUserID uuid.UUID) (*Review, error) {
	rv := &Review{
		ID:             uuid.New(),
		ListingID:      listingID,
		ReviewerUserID: reviewerUserID,
		Status:         StatusInProgress,
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO feedback_reviews (id, listing_id, reviewer_user_id, status)
		VALUES ($1, $2, $3, $4)
	`, rv.ID, rv.ListingID, rv.ReviewerUserID, rv.Status)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return rv, nil
}

// DeleteInProgressByListingTx removes a listing's in_progress review when the
// claim is reaped. The status filter guards submitted work from deletion.
func (r *Repository) DeleteInProgressByListingTx(ctx context.Context, tx *sqlx.Tx, listingID uuid.UUID) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM feedback_reviews WHERE listing_id = $1 AND status = 'in_progress'
	`, listingID)
	if err != nil {
		return 0, fmt.Errorf("delete in_progress review: %w", err)
	}
	return res.RowsAffected()
}

// HasAnyForListing reports whether a reviewer has any review row, in any
// status, against a listing.
func (r *Repository) HasAnyForListing(ctx context.Context, listingID, reviewerUserID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM feedback_reviews WHERE listing_id = $1 AND reviewer_user_id = $2
		)
	`, listingID, reviewerUserID)
	return exists, err
}

// SubmitTx is the in_progress -> submitted compare-and-swap. Returns false
// when the review is absent or not submittable; the caller inspects the flag,
// not an error.
func (r *Repository) SubmitTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, in SubmitInput) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE feedback_reviews SET
			story_structure_score = $2, story_structure_comment = $3,
			characters_score = $4, characters_comment = $5,
			dialogue_score = $6, dialogue_comment = $7,
			craft_voice_score = $8, craft_voice_comment = $9,
			overall_comment = $10,
			status = 'submitted',
			updated_at = NOW()
		WHERE id = $1 AND status = 'in_progress'
	`, id,
		in.StoryStructure.Score, nullable(in.StoryStructure.Comment),
		in.Characters.Score, nullable(in.Characters.Comment),
		in.Dialogue.Score, nullable(in.Dialogue.Comment),
		in.CraftVoice.Score, nullable(in.CraftVoice.Comment),
		nullable(in.OverallComment),
	)
	if err != nil {
		return false, fmt.Errorf("submit review: %w", err)
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

// --- Ratings ---

// CreateRating inserts a rating. A second rating for the same review trips
// the unique index and maps to ErrAlreadyRated.
func (r *Repository) CreateRating(ctx context.Context, rating *Rating) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviewer_ratings (id, review_id, rater_user_id, score, comment)
		VALUES ($1, $2, $3, $4, $5)
	`, rating.ID, rating.ReviewID, rating.RaterUserID, rating.Score, rating.Comment)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyRated
		}
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

// GetRatingByReview returns the rating for a review, or nil
func (r *Repository) GetRatingByReview(ctx context.Context, reviewID uuid.UUID) (*Rating, error) {
	var rating Rating
	err := r.db.GetContext(ctx, &rating, `
		SELECT id, review_id, rater_user_id, score, comment, created_at
		FROM reviewer_ratings WHERE review_id = $1
	`, reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &rating, err
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
