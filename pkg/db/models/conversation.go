package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the unique chat channel for one (book, buyer, seller)
// triple, created lazily on the buyer's first contact attempt.
type Conversation struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BookID        uuid.UUID `gorm:"column:book_id;type:uuid;not null;uniqueIndex:conversations_book_buyer_key" json:"book_id"`
	BuyerID       uuid.UUID `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:conversations_book_buyer_key;index:conversations_buyer_id_idx" json:"buyer_id"`
	SellerID      uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index:conversations_seller_id_idx" json:"seller_id"`
	LastMessageAt time.Time `gorm:"column:last_message_at;not null" json:"last_message_at"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
