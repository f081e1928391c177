package listing

import "github.com/google/uuid"

// CreateRequest posts a new feedback listing
type CreateRequest struct {
	ProjectID   string `json:"project_id" validate:"required,uuid"`
	ScriptID    string `json:"script_id" validate:"required,uuid"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
	Genre       string `json:"genre" validate:"required,genre"`
	Format      string `json:"format" validate:"required,format"`
	PageCount   int    `json:"page_count" validate:"required,gte=1,lte=500"`
}

// Filter represents listing search filters
type Filter struct {
	Status      *Status
	Genre       *string
	Format      *string
	OwnerUserID *uuid.UUID
}

// Pagination for listing pages
type Pagination struct {
	Page  int
	Limit int
}
