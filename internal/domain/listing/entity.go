package listing

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents listing status
type Status string

const (
	StatusOpen      Status = "open"
	StatusClaimed   Status = "claimed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

const (
	// PostingTTL is how long an open listing stays claimable.
	PostingTTL = 30 * 24 * time.Hour

	// ReviewWindow is the reviewer's deadline once a listing is claimed.
	ReviewWindow = 7 * 24 * time.Hour

	// PostingCost is the escrow a writer puts up when posting.
	PostingCost = 1
)

// Listing is a writer's posted request for feedback on a script. It is never
// physically deleted; cancel and expiry are status transitions.
type Listing struct {
	ID          uuid.UUID `db:"id"`
	OwnerUserID uuid.UUID `db:"owner_user_id"`
	ProjectID   uuid.UUID `db:"project_id"`
	ScriptID    uuid.UUID `db:"script_id"`

	Title       string `db:"title"`
	Description string `db:"description"`
	Genre       string `db:"genre"`
	Format      string `db:"format"`
	PageCount   int    `db:"page_count"`

	Status           Status        `db:"status"`
	ClaimedByUserID  uuid.NullUUID `db:"claimed_by_user_id"`
	ReviewDeadline   sql.NullTime  `db:"review_deadline"`
	ExpiresAt        time.Time     `db:"expires_at"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsOpen returns true if the listing is claimable
func (l *Listing) IsOpen() bool {
	return l.Status == StatusOpen
}

// CanBeCancelledBy checks owner-only cancellation
func (l *Listing) CanBeCancelledBy(userID uuid.UUID) bool {
	return l.OwnerUserID == userID
}

// ListingResponse for API responses
type ListingResponse struct {
	ID              string  `json:"id"`
	OwnerUserID     string  `json:"owner_user_id"`
	ProjectID       string  `json:"project_id"`
	ScriptID        string  `json:"script_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Genre           string  `json:"genre"`
	Format          string  `json:"format"`
	PageCount       int     `json:"page_count"`
	Status          string  `json:"status"`
	ClaimedByUserID *string `json:"claimed_by_user_id,omitempty"`
	ReviewDeadline  *string `json:"review_deadline,omitempty"`
	ExpiresAt       string  `json:"expires_at"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// ToResponse converts entity to response
func (l *Listing) ToResponse() *ListingResponse {
	resp := &ListingResponse{
		ID:          l.ID.String(),
		OwnerUserID: l.OwnerUserID.String(),
		ProjectID:   l.ProjectID.String(),
		ScriptID:    l.ScriptID.String(),
		Title:       l.Title,
		Description: l.Description,
		Genre:       l.Genre,
		Format:      l.Format,
		PageCount:   l.PageCount,
		Status:      string(l.Status),
		ExpiresAt:   l.ExpiresAt.Format(time.RFC3339),
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
	if l.ClaimedByUserID.Valid {
		s := l.ClaimedByUserID.UUID.String()
		resp.ClaimedByUserID = &s
	}
	if l.ReviewDeadline.Valid {
		s := l.ReviewDeadline.Time.Format(time.RFC3339)
		resp.ReviewDeadline = &s
	}
	return resp
}
