package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage is a feedback submission from an authenticated user.
type ContactMessage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:contact_messages_user_id_idx" json:"user_id"`
	Subject   string    `gorm:"column:subject;not null" json:"subject"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	Resolved  bool      `gorm:"column:resolved;not null;default:false" json:"resolved"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
