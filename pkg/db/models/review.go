package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is one reviewer's rating of a listing. The (book, reviewer) pair is
// unique; a second submission surfaces as a constraint violation.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BookID     uuid.UUID `gorm:"column:book_id;type:uuid;not null;index:reviews_book_id_idx;uniqueIndex:reviews_book_reviewer_key" json:"book_id"`
	ReviewerID uuid.UUID `gorm:"column:reviewer_id;type:uuid;not null;uniqueIndex:reviews_book_reviewer_key" json:"reviewer_id"`
	Rating     int       `gorm:"column:rating;not null" json:"rating"`
	Comment    *string   `gorm:"column:comment" json:"comment,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
