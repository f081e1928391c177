package dispute

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents dispute state
type Status string

const (
	StatusOpen        Status = "open"
	StatusUnderReview Status = "under_review"
	StatusUpheld      Status = "upheld"
	StatusDismissed   Status = "dismissed"
)

// Dispute is a listing owner's challenge against a submitted review
type Dispute struct {
	ID               uuid.UUID      `db:"id"`
	ReviewID         uuid.UUID      `db:"review_id"`
	FiledByUserID    uuid.UUID      `db:"filed_by_user_id"`
	Reason           string         `db:"reason"`
	Status           Status         `db:"status"`
	ResolutionNote   sql.NullString `db:"resolution_note"`
	ResolvedByUserID uuid.NullUUID  `db:"resolved_by_user_id"`
	ResolvedAt       sql.NullTime   `db:"resolved_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// IsResolvable reports whether the dispute can still receive a resolution
func (d *Dispute) IsResolvable() bool {
	return d.Status == StatusOpen || d.Status == StatusUnderReview
}

// DisputeResponse is the API shape of a dispute
type DisputeResponse struct {
	ID               uuid.UUID  `json:"id"`
	ReviewID         uuid.UUID  `json:"review_id"`
	FiledByUserID    uuid.UUID  `json:"filed_by_user_id"`
	Reason           string     `json:"reason"`
	Status           Status     `json:"status"`
	ResolutionNote   *string    `json:"resolution_note,omitempty"`
	ResolvedByUserID *uuid.UUID `json:"resolved_by_user_id,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ToResponse converts a dispute to its API shape
func (d *Dispute) ToResponse() *DisputeResponse {
	resp := &DisputeResponse{
		ID:            d.ID,
		ReviewID:      d.ReviewID,
		FiledByUserID: d.FiledByUserID,
		Reason:        d.Reason,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
	}
	if d.ResolutionNote.Valid {
		resp.ResolutionNote = &d.ResolutionNote.String
	}
	if d.ResolvedByUserID.Valid {
		id := d.ResolvedByUserID.UUID
		resp.ResolvedByUserID = &id
	}
	if d.ResolvedAt.Valid {
		t := d.ResolvedAt.Time
		resp.ResolvedAt = &t
	}
	return resp
}
