package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem links a user to a saved listing.
type WishlistItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:wishlist_items_user_id_idx;uniqueIndex:wishlist_items_user_book_key" json:"user_id"`
	BookID    uuid.UUID `gorm:"column:book_id;type:uuid;not null;index:wishlist_items_book_id_idx;uniqueIndex:wishlist_items_user_book_key" json:"book_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
