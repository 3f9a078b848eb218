package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
)

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo  Repository
	Books bookFinder
}

// Service exposes cart staging operations.
type Service interface {
	Add(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*models.CartItem, error)
	SetQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, lineID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	GetView(ctx context.Context, userID uuid.UUID) (*View, error)
}

type service struct {
	repo  Repository
	books bookFinder
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	return &service{repo: params.Repo, books: params.Books}, nil
}

// Add stages quantity copies of a listing; adding an already-staged listing
// accumulates onto the existing line instead of creating a second one.
func (s *service) Add(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if book.Status != enums.BookStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not available for purchase")
	}
	if book.SellerID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot add your own listing to the cart")
	}

	if err := s.repo.AddOrIncrement(ctx, userID, bookID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart line")
	}

	line, err := s.repo.FindLine(ctx, userID, bookID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart line")
	}
	return line, nil
}

func (s *service) SetQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	line, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateQuantity(ctx, line.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	line.Quantity = quantity
	return line, nil
}

func (s *service) Remove(ctx context.Context, userID, lineID uuid.UUID) error {
	line, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteLine(ctx, line.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// GetView drops lines whose listing left the approved state and surfaces how
// many were dropped so the client can explain the shrinkage.
func (s *service) GetView(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	lines, err := s.repo.ListLines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	view := &View{Items: []ViewItem{}, Subtotal: decimal.Zero}
	for _, line := range lines {
		if line.Book.Status != enums.BookStatusApproved {
			view.UnavailableCount++
			continue
		}
		lineTotal := line.Book.Price.Mul(decimal.NewFromInt(int64(line.Item.Quantity)))
		view.Items = append(view.Items, ViewItem{
			ID:        line.Item.ID,
			Book:      line.Book,
			Quantity:  line.Item.Quantity,
			LineTotal: lineTotal,
		})
		view.ItemCount += line.Item.Quantity
		view.Subtotal = view.Subtotal.Add(lineTotal)
	}
	return view, nil
}

func (s *service) ownedLine(ctx context.Context, userID, lineID uuid.UUID) (*models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line id required")
	}
	line, err := s.repo.FindLineByID(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if line.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart line belongs to another user")
	}
	return line, nil
}
