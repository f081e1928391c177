package dispute

// CreateRequest files a dispute against a review
type CreateRequest struct {
	ReviewID string `json:"review_id" validate:"required,uuid"`
	Reason   string `json:"reason" validate:"required,min=10,max=2000"`
}

// ResolveRequest closes a dispute with a terminal outcome
type ResolveRequest struct {
	Resolution string `json:"resolution" validate:"required,dispute_resolution"`
	Note       string `json:"note" validate:"omitempty,max=2000"`
}
