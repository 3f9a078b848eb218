package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a per-user staging line referencing a listing. One row per
// (user, book); re-adding the same book bumps Quantity instead of inserting.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:cart_items_user_book_key;index:cart_items_user_id_idx" json:"user_id"`
	BookID    uuid.UUID `gorm:"column:book_id;type:uuid;not null;uniqueIndex:cart_items_user_book_key" json:"book_id"`
	Quantity  int       `gorm:"column:quantity;not null;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
