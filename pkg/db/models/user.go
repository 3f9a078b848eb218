package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusshelf/campusshelf-backend/pkg/enums"
)

// User mirrors the profile rows managed by the campus identity service. The
// API never creates or authenticates users; it reads these rows for seller
// phone snapshots, display names, and role checks.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Email     string         `gorm:"column:email;not null;uniqueIndex:users_email_key" json:"email"`
	Phone     *string        `gorm:"column:phone" json:"phone,omitempty"`
	Campus    *string        `gorm:"column:campus" json:"campus,omitempty"`
	Role      enums.UserRole `gorm:"column:role;not null;default:'student'" json:"role"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
