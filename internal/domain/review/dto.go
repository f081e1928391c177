package review

// DimensionInput is one rubric dimension on submission
type DimensionInput struct {
	Score   int    `json:"score" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=4000"`
}

// SubmitInput carries the full rubric for a submission
type SubmitInput struct {
	StoryStructure DimensionInput `json:"story_structure" validate:"required"`
	Characters     DimensionInput `json:"characters" validate:"required"`
	Dialogue       DimensionInput `json:"dialogue" validate:"required"`
	CraftVoice     DimensionInput `json:"craft_voice" validate:"required"`
	OverallComment string         `json:"overall_comment" validate:"max=8000"`
}

// CreateRatingRequest rates a submitted review
type CreateRatingRequest struct {
	Score   int    `json:"score" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}
