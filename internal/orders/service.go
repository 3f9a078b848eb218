package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db"
	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/logger"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

const activeOrderConstraint = "orders_active_buyer_book_key"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type cartCleaner interface {
	DeleteByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) error
}

// BookMarker flips a listing to sold inside the seller-confirm transaction.
type BookMarker interface {
	MarkSold(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo   Repository
	Tx     txRunner
	Books  bookFinder
	Users  userFinder
	Cart   cartCleaner
	Marker BookMarker
	Logger *logger.Logger
}

// Service drives the two-party order lifecycle.
type Service interface {
	Checkout(ctx context.Context, buyerID uuid.UUID, input CheckoutInput) (*View, error)
	Transition(ctx context.Context, orderID, actorID uuid.UUID, action enums.OrderAction) (*View, error)
	Get(ctx context.Context, orderID, requesterID uuid.UUID) (*View, error)
	List(ctx context.Context, requesterID uuid.UUID, filters ListFilters, params pagination.Params) (*ViewPage, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	books  bookFinder
	users  userFinder
	cart   cartCleaner
	marker BookMarker
	logg   *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if params.Marker == nil {
		params.Marker = NewBookMarker()
	}
	return &service{
		repo:   params.Repo,
		tx:     params.Tx,
		books:  params.Books,
		users:  params.Users,
		cart:   params.Cart,
		marker: params.Marker,
		logg:   params.Logger,
	}, nil
}

// Checkout opens an order against an approved listing. The partial unique
// index on active (buyer, book) pairs is the concurrency guard; a violation
// is translated into a conflict carrying the existing order id.
func (s *service) Checkout(ctx context.Context, buyerID uuid.UUID, input CheckoutInput) (*View, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.BookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}

	book, err := s.books.FindByID(ctx, input.BookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if book.Status != enums.BookStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not available for purchase")
	}
	if book.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot order your own listing")
	}

	order := &models.Order{
		BuyerID:   buyerID,
		SellerID:  book.SellerID,
		BookID:    &book.ID,
		BookTitle: book.Title,
		Price:     book.Price,
		Status:    enums.OrderStatusInitiated,
	}
	if phone := strings.TrimSpace(input.BuyerPhone); phone != "" {
		order.BuyerPhone = &phone
	}
	if notes := strings.TrimSpace(input.BuyerNotes); notes != "" {
		order.BuyerNotes = &notes
	}
	if seller, err := s.users.FindByID(ctx, book.SellerID); err == nil && seller.Phone != nil {
		phone := *seller.Phone
		order.SellerPhone = &phone
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		if db.IsUniqueViolation(err, activeOrderConstraint) {
			details := map[string]any{}
			if existing, findErr := s.repo.FindActiveByBuyerAndBook(ctx, buyerID, book.ID); findErr == nil {
				details["order_id"] = existing.ID.String()
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an active order already exists for this listing").WithDetails(details)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	// Best effort: a stale cart line must not fail the checkout.
	if s.cart != nil {
		if err := s.cart.DeleteByUserAndBook(ctx, buyerID, book.ID); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "checkout.cart_cleanup_failed")
		}
	}

	return s.buildView(ctx, created, buyerID)
}

func (s *service) Transition(ctx context.Context, orderID, actorID uuid.UUID, action enums.OrderAction) (*View, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be buyer_confirm, seller_confirm, or cancel")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.BuyerID != actorID && order.SellerID != actorID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		now := time.Now().UTC()
		updates := map[string]any{}

		switch action {
		case enums.OrderActionBuyerConfirm:
			if order.BuyerID != actorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer can confirm receipt")
			}
			if order.Status != enums.OrderStatusInitiated {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be buyer-confirmed in its current state")
			}
			updates["status"] = enums.OrderStatusBuyerConfirmed
			updates["buyer_confirmed_at"] = now
			order.Status = enums.OrderStatusBuyerConfirmed
			order.BuyerConfirmedAt = &now

		case enums.OrderActionSellerConfirm:
			if order.SellerID != actorID {
				return pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can confirm handover")
			}
			if order.Status != enums.OrderStatusBuyerConfirmed {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be seller-confirmed in its current state")
			}
			updates["status"] = enums.OrderStatusCompleted
			updates["seller_confirmed_at"] = now
			order.Status = enums.OrderStatusCompleted
			order.SellerConfirmedAt = &now
			// the listing may have been deleted by a moderator mid-handshake
			if order.BookID != nil {
				if err := s.marker.MarkSold(ctx, tx, *order.BookID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark book sold")
				}
			}

		case enums.OrderActionCancel:
			if order.Status == enums.OrderStatusCompleted {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "completed orders cannot be cancelled")
			}
			if order.Status == enums.OrderStatusCancelled {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already cancelled")
			}
			updates["status"] = enums.OrderStatusCancelled
			updates["cancelled_at"] = now
			order.Status = enums.OrderStatusCancelled
			order.CancelledAt = &now
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, updated, actorID)
}

func (s *service) Get(ctx context.Context, orderID, requesterID uuid.UUID) (*View, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != requesterID && order.SellerID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	return s.buildView(ctx, order, requesterID)
}

func (s *service) List(ctx context.Context, requesterID uuid.UUID, filters ListFilters, params pagination.Params) (*ViewPage, error) {
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	switch filters.Role {
	case RoleBuyer, RoleSeller, RoleAll, "":
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be buyer, seller, or all")
	}

	page, err := s.repo.List(ctx, requesterID, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	counterpartyIDs := make([]uuid.UUID, 0, len(page.Orders))
	for _, order := range page.Orders {
		counterpartyIDs = append(counterpartyIDs, counterpartyID(order, requesterID))
	}
	names, err := s.users.FindByIDs(ctx, counterpartyIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load counterparties")
	}

	views := make([]View, 0, len(page.Orders))
	for _, order := range page.Orders {
		view := shapeView(order, requesterID, nil)
		if user, ok := names[view.Counterparty.ID]; ok {
			view.Counterparty.Name = user.Name
		}
		views = append(views, view)
	}
	return &ViewPage{Orders: views, Total: page.Total}, nil
}

func (s *service) buildView(ctx context.Context, order *models.Order, requesterID uuid.UUID) (*View, error) {
	var book *models.Book
	if order.BookID != nil {
		if loaded, err := s.books.FindByID(ctx, *order.BookID); err == nil {
			book = loaded
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
		}
	}

	view := shapeView(*order, requesterID, book)
	if user, err := s.users.FindByID(ctx, view.Counterparty.ID); err == nil {
		view.Counterparty.Name = user.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load counterparty")
	}
	return &view, nil
}

// shapeView computes the role-relative projection. Shaping happens per
// request; nothing role-specific is ever stored.
func shapeView(order models.Order, requesterID uuid.UUID, book *models.Book) View {
	view := View{
		ID:                order.ID,
		Status:            order.Status,
		Price:             order.Price,
		Book:              book,
		BookTitle:         order.BookTitle,
		Notes:             order.BuyerNotes,
		BuyerConfirmedAt:  order.BuyerConfirmedAt,
		SellerConfirmedAt: order.SellerConfirmedAt,
		CancelledAt:       order.CancelledAt,
		CreatedAt:         order.CreatedAt,
	}
	if order.BuyerID == requesterID {
		view.Role = RoleBuyer
		view.Counterparty = Party{ID: order.SellerID, Phone: order.SellerPhone}
	} else {
		view.Role = RoleSeller
		view.Counterparty = Party{ID: order.BuyerID, Phone: order.BuyerPhone}
	}
	return view
}

func counterpartyID(order models.Order, requesterID uuid.UUID) uuid.UUID {
	if order.BuyerID == requesterID {
		return order.SellerID
	}
	return order.BuyerID
}

type bookMarkerImpl struct{}

// NewBookMarker exposes the default sold-flag implementation.
func NewBookMarker() BookMarker {
	return bookMarkerImpl{}
}

func (bookMarkerImpl) MarkSold(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required to mark book sold")
	}
	res := tx.WithContext(ctx).Exec(`
		UPDATE books
		SET status = 'sold', updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, bookID)
	if res.Error != nil {
		return res.Error
	}
	return nil
}
