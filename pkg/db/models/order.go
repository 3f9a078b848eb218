package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campusshelf/campusshelf-backend/pkg/enums"
)

// Order tracks one buyer/seller handshake over a single listing. Price,
// BookTitle and SellerPhone are snapshots taken at creation time; later
// profile or listing edits do not touch them. The confirmation timestamps
// are each written exactly once, on the transition that sets them.
//
// BookID is nulled when a moderator deletes the listing; the order row and
// its title snapshot survive as purchase history.
//
// At most one active (initiated or buyer_confirmed) order may exist per
// (buyer, book); a partial unique index enforces this in the store.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuyerID          uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index:orders_buyer_id_idx" json:"buyer_id"`
	SellerID         uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index:orders_seller_id_idx" json:"seller_id"`
	BookID           *uuid.UUID        `gorm:"column:book_id;type:uuid;index:orders_book_id_idx" json:"book_id,omitempty"`
	BookTitle        string            `gorm:"column:book_title;not null" json:"book_title"`
	Price            decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Status           enums.OrderStatus `gorm:"column:status;not null;default:'initiated'" json:"status"`
	BuyerPhone       *string           `gorm:"column:buyer_phone" json:"buyer_phone,omitempty"`
	BuyerNotes       *string           `gorm:"column:buyer_notes" json:"buyer_notes,omitempty"`
	SellerPhone      *string           `gorm:"column:seller_phone" json:"seller_phone,omitempty"`
	BuyerConfirmedAt *time.Time        `gorm:"column:buyer_confirmed_at" json:"buyer_confirmed_at,omitempty"`
	SellerConfirmedAt *time.Time       `gorm:"column:seller_confirmed_at" json:"seller_confirmed_at,omitempty"`
	CancelledAt      *time.Time        `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
