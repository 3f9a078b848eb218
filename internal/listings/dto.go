package listings

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

// CreateBookInput carries the seller-provided listing fields.
type CreateBookInput struct {
	Title       string
	Author      string
	ISBN        string
	Description string
	Category    string
	Condition   string
	Price       decimal.Decimal
	ImageURLs   []string
}

// UpdateBookInput holds the optional fields a seller may change while the
// listing is still pending. Nil means leave unchanged.
type UpdateBookInput struct {
	Title       *string
	Author      *string
	ISBN        *string
	Description *string
	Category    *string
	Condition   *string
	Price       *decimal.Decimal
	ImageURLs   []string
}

// ListFilters narrows the public browse query.
type ListFilters struct {
	Query     string
	Category  *enums.BookCategory
	Condition *enums.BookCondition
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Status    *enums.BookStatus
	SellerID  *uuid.UUID
	SortBy    string
	SortDir   string
}

// BookPage is one window of listings plus the total row count.
type BookPage struct {
	Books []models.Book
	Total int64
}

// Meta builds pagination metadata for the page.
func (p BookPage) Meta(params pagination.Params) pagination.Meta {
	return pagination.MetaFor(params, p.Total)
}

// SellerSummary is the public slice of a seller profile shown on a listing.
type SellerSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Campus *string   `json:"campus,omitempty"`
}

// BookDetail is a single listing with its seller and related titles.
type BookDetail struct {
	Book    models.Book    `json:"book"`
	Seller  *SellerSummary `json:"seller,omitempty"`
	Related []models.Book  `json:"related"`
}
