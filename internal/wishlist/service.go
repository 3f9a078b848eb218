package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db"
	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

const wishlistConstraint = "wishlist_items_user_book_key"

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// ViewItem is one saved listing as returned to the owner.
type ViewItem struct {
	ID      uuid.UUID   `json:"id"`
	Book    models.Book `json:"book"`
	SavedAt time.Time   `json:"saved_at"`
}

// ViewPage is one window of saved listings plus the total count.
type ViewPage struct {
	Items []ViewItem
	Total int64
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo  Repository
	Books bookFinder
}

// Service manages a user's saved listings.
type Service interface {
	Add(ctx context.Context, userID, bookID uuid.UUID) (*models.WishlistItem, error)
	Remove(ctx context.Context, userID, bookID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ViewPage, error)
}

type service struct {
	repo  Repository
	books bookFinder
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if params.Books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	return &service{repo: params.Repo, books: params.Books}, nil
}

func (s *service) Add(ctx context.Context, userID, bookID uuid.UUID) (*models.WishlistItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if book.SellerID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot save your own listing")
	}
	if book.Status != enums.BookStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not available")
	}

	item, err := s.repo.Create(ctx, &models.WishlistItem{UserID: userID, BookID: bookID})
	if err != nil {
		if db.IsUniqueViolation(err, wishlistConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "listing is already in your wishlist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save wishlist item")
	}
	return item, nil
}

// Remove is keyed by book rather than wishlist row id; removing something
// that was never saved is a 404.
func (s *service) Remove(ctx context.Context, userID, bookID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if bookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}

	affected, err := s.repo.DeleteByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing is not in your wishlist")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ViewPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	entries, total, err := s.repo.ListEntries(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}

	items := make([]ViewItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, ViewItem{
			ID:      entry.Item.ID,
			Book:    entry.Book,
			SavedAt: entry.Item.CreatedAt,
		})
	}
	return &ViewPage{Items: items, Total: total}, nil
}
