package reviews

import (
	"time"

	"github.com/google/uuid"
)

// CreateInput is one reviewer's rating of a listing.
type CreateInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

// ViewItem is a stored review joined with its author's display name.
type ViewItem struct {
	ID           uuid.UUID `json:"id"`
	ReviewerID   uuid.UUID `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Aggregate summarizes a listing's ratings: the average rounded to one
// decimal place and the count per star.
type Aggregate struct {
	Average float64       `json:"average"`
	Count   int64         `json:"count"`
	PerStar map[int]int64 `json:"per_star"`
}

// ViewPage is one window of reviews plus the whole-listing aggregate.
type ViewPage struct {
	Reviews   []ViewItem
	Aggregate Aggregate
	Total     int64
}
