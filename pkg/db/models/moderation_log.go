package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusshelf/campusshelf-backend/pkg/enums"
)

// ModerationLog is the append-only audit record for moderator actions.
// Writes are best-effort: a failed log write never rolls back the action it
// describes. The only reader is the admin activity feed.
type ModerationLog struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ModeratorID    uuid.UUID              `gorm:"column:moderator_id;type:uuid;not null" json:"moderator_id"`
	BookID         uuid.UUID              `gorm:"column:book_id;type:uuid;not null;index:moderation_logs_book_id_idx" json:"book_id"`
	BookTitle      string                 `gorm:"column:book_title;not null" json:"book_title"`
	Action         enums.ModerationAction `gorm:"column:action;not null" json:"action"`
	PreviousStatus enums.BookStatus       `gorm:"column:previous_status;not null" json:"previous_status"`
	NewStatus      *enums.BookStatus      `gorm:"column:new_status" json:"new_status,omitempty"`
	Notes          *string                `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
