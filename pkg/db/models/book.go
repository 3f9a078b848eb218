package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/campusshelf/campusshelf-backend/pkg/enums"
)

// Book is a listing offered for sale by a seller. Listings are created in
// pending status and only become visible to other users after moderation.
type Book struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SellerID    uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index:books_seller_id_idx" json:"seller_id"`
	Title       string              `gorm:"column:title;not null" json:"title"`
	Author      string              `gorm:"column:author;not null" json:"author"`
	ISBN        *string             `gorm:"column:isbn" json:"isbn,omitempty"`
	Description string              `gorm:"column:description" json:"description"`
	Category    enums.BookCategory  `gorm:"column:category;not null" json:"category"`
	Condition   enums.BookCondition `gorm:"column:condition;not null" json:"condition"`
	Price       decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	ImageURLs   pq.StringArray      `gorm:"column:image_urls;type:text[];not null" json:"image_urls"`
	Status      enums.BookStatus    `gorm:"column:status;not null;default:'pending';index:books_status_idx" json:"status"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
