package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
)

// Line pairs a cart row with its listing.
type Line struct {
	Item models.CartItem
	Book models.Book
}

// ViewItem is one purchasable cart line in the user-facing view.
type ViewItem struct {
	ID        uuid.UUID       `json:"id"`
	Book      models.Book     `json:"book"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// View is the rendered cart: purchasable lines plus a count of lines whose
// listing is no longer approved.
type View struct {
	Items            []ViewItem      `json:"items"`
	ItemCount        int             `json:"item_count"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	UnavailableCount int             `json:"unavailable_count"`
}
