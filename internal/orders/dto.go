package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
)

// CheckoutInput carries the buyer-provided fields for a new order.
type CheckoutInput struct {
	BookID     uuid.UUID
	BuyerPhone string
	BuyerNotes string
}

// ListFilters narrows a party's order history.
type ListFilters struct {
	// Role is buyer, seller, or all.
	Role   string
	Status *enums.OrderStatus
}

// Party identifies the other side of an order as seen by the requester.
// Phone carries the snapshot that belongs to the other side, never both.
type Party struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone *string   `json:"phone,omitempty"`
}

// View is the role-relative shape of an order. The stored row keeps both
// phone snapshots; the view only exposes the counterparty's.
type View struct {
	ID                uuid.UUID         `json:"id"`
	Status            enums.OrderStatus `json:"status"`
	Price             decimal.Decimal   `json:"price"`
	Role              string            `json:"role"`
	Book              *models.Book      `json:"book,omitempty"`
	BookTitle         string            `json:"book_title"`
	Counterparty      Party             `json:"counterparty"`
	Notes             *string           `json:"notes,omitempty"`
	BuyerConfirmedAt  *time.Time        `json:"buyer_confirmed_at,omitempty"`
	SellerConfirmedAt *time.Time        `json:"seller_confirmed_at,omitempty"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Page is one window of order rows plus the total count.
type Page struct {
	Orders []models.Order
	Total  int64
}

// ViewPage is the role-shaped equivalent of Page.
type ViewPage struct {
	Orders []View
	Total  int64
}

const (
	// RoleBuyer and RoleSeller name the requester's side of an order.
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAll    = "all"
)
