package review

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents review status
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
)

// Review is a reviewer's work product for one listing. It is created
// atomically with a successful claim and mutated once on submission.
type Review struct {
	ID             uuid.UUID `db:"id"`
	ListingID      uuid.UUID `db:"listing_id"`
	ReviewerUserID uuid.UUID `db:"reviewer_user_id"`

	// Rubric dimensions
	StoryStructureScore   sql.NullInt32  `db:"story_structure_score"`
	StoryStructureComment sql.NullString `db:"story_structure_comment"`
	CharactersScore       sql.NullInt32  `db:"characters_score"`
	CharactersComment     sql.NullString `db:"characters_comment"`
	DialogueScore         sql.NullInt32  `db:"dialogue_score"`
	DialogueComment       sql.NullString `db:"dialogue_comment"`
	CraftVoiceScore       sql.NullInt32  `db:"craft_voice_score"`
	CraftVoiceComment     sql.NullString `db:"craft_voice_comment"`
	OverallComment        sql.NullString `db:"overall_comment"`

	Status    Status    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Rating is a rater's one-shot feedback on a submitted review. The unique
// review_id column enforces rate-once.
type Rating struct {
	ID          uuid.UUID      `db:"id"`
	ReviewID    uuid.UUID      `db:"review_id"`
	RaterUserID uuid.UUID      `db:"rater_user_id"`
	Score       int            `db:"score"`
	Comment     sql.NullString `db:"comment"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Meta carries the review's relationships needed for permission checks.
type Meta struct {
	ID             uuid.UUID `db:"id"`
	ListingID      uuid.UUID `db:"listing_id"`
	ReviewerUserID uuid.UUID `db:"reviewer_user_id"`
	OwnerUserID    uuid.UUID `db:"owner_user_id"`
	ScriptID       uuid.UUID `db:"script_id"`
	Status         Status    `db:"status"`
}

// DimensionResponse is one rubric dimension in API responses
type DimensionResponse struct {
	Score   *int   `json:"score,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// ReviewResponse for API responses
type ReviewResponse struct {
	ID             string            `json:"id"`
	ListingID      string            `json:"listing_id"`
	ReviewerUserID string            `json:"reviewer_user_id"`
	StoryStructure DimensionResponse `json:"story_structure"`
	Characters     DimensionResponse `json:"characters"`
	Dialogue       DimensionResponse `json:"dialogue"`
	CraftVoice     DimensionResponse `json:"craft_voice"`
	OverallComment string            `json:"overall_comment,omitempty"`
	Status         string            `json:"status"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}

// ToResponse converts entity to response
func (r *Review) ToResponse() *ReviewResponse {
	return &ReviewResponse{
		ID:             r.ID.String(),
		ListingID:      r.ListingID.String(),
		ReviewerUserID: r.ReviewerUserID.String(),
		StoryStructure: dimension(r.StoryStructureScore, r.StoryStructureComment),
		Characters:     dimension(r.CharactersScore, r.CharactersComment),
		Dialogue:       dimension(r.DialogueScore, r.DialogueComment),
		CraftVoice:     dimension(r.CraftVoiceScore, r.CraftVoiceComment),
		OverallComment: r.OverallComment.String,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
	}
}

func dimension(score sql.NullInt32, comment sql.NullString) DimensionResponse {
	d := DimensionResponse{Comment: comment.String}
	if score.Valid {
		v := int(score.Int32)
		d.Score = &v
	}
	return d
}

// RatingResponse for API responses
type RatingResponse struct {
	ID          string `json:"id"`
	ReviewID    string `json:"review_id"`
	RaterUserID string `json:"rater_user_id"`
	Score       int    `json:"score"`
	Comment     string `json:"comment,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// ToResponse converts entity to response
func (r *Rating) ToResponse() *RatingResponse {
	return &RatingResponse{
		ID:          r.ID.String(),
		ReviewID:    r.ReviewID.String(),
		RaterUserID: r.RaterUserID.String(),
		Score:       r.Score,
		Comment:     r.Comment.String,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}
