package wishlist

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

// Entry pairs a wishlist row with its listing.
type Entry struct {
	Item models.WishlistItem
	Book models.Book
}

// Repository defines persistence for wishlist rows.
type Repository interface {
	Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error)
	DeleteByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (int64, error)
	ListEntries(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Entry, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wishlist repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) DeleteByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&models.WishlistItem{})
	return result.RowsAffected, result.Error
}

// ListEntries returns the saved rows newest first; only approved listings
// are joined in, so sold or removed books silently drop off the page.
func (r *repository) ListEntries(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]Entry, int64, error) {
	params = params.Normalize()

	base := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Joins("JOIN books ON books.id = wishlist_items.book_id").
		Where("wishlist_items.user_id = ?", userID).
		Where("books.status = ?", "approved")

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.WishlistItem
	err := base.
		Select("wishlist_items.*").
		Order("wishlist_items.created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	bookIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		bookIDs = append(bookIDs, item.BookID)
	}
	books := make(map[uuid.UUID]models.Book, len(bookIDs))
	if len(bookIDs) > 0 {
		var rows []models.Book
		if err := r.db.WithContext(ctx).Where("id IN ?", bookIDs).Find(&rows).Error; err != nil {
			return nil, 0, err
		}
		for _, book := range rows {
			books[book.ID] = book
		}
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{Item: item, Book: books[item.BookID]})
	}
	return entries, total, nil
}
