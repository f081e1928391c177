package reputation

import (
	"time"

	"github.com/google/uuid"
)

const (
	// StrikeTTL is how long a strike stays active before it decays.
	StrikeTTL = 90 * 24 * time.Hour

	// SuspensionTTL is how long a suspension holds before it lifts.
	SuspensionTTL = 30 * 24 * time.Hour

	// AutoSuspendThreshold is the active strike count at which callers are
	// expected to suspend a reviewer.
	AutoSuspendThreshold = 3
)

// Strike is a time-limited disciplinary mark against a reviewer.
type Strike struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ReviewerUserID uuid.UUID `db:"reviewer_user_id" json:"reviewer_user_id"`
	Reason         string    `db:"reason" json:"reason"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	ExpiresAt      time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Suspension is a temporary full loss of reviewing eligibility.
type Suspension struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ReviewerUserID uuid.UUID `db:"reviewer_user_id" json:"reviewer_user_id"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	LiftedAt       time.Time `db:"lifted_at" json:"lifted_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Reputation is the derived aggregate for a reviewer. It is recomputed from
// the ratings and strikes tables on every read, never cached.
type Reputation struct {
	UserID            uuid.UUID `json:"user_id"`
	AverageRating     *float64  `json:"average_rating"` // nil when unrated
	TotalReviews      int       `json:"total_reviews"`
	ActiveStrikeCount int       `json:"active_strike_count"`
	IsSuspended       bool      `json:"is_suspended"`
}
