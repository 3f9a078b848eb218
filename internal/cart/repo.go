package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
)

// Repository defines persistence operations over cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	AddOrIncrement(ctx context.Context, userID, bookID uuid.UUID, quantity int) error
	FindLine(ctx context.Context, userID, bookID uuid.UUID) (*models.CartItem, error)
	FindLineByID(ctx context.Context, lineID uuid.UUID) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	DeleteByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	ListLines(ctx context.Context, userID uuid.UUID) ([]Line, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// AddOrIncrement upserts the (user, book) line in one statement so two rapid
// adds never race into duplicate rows.
func (r *repository) AddOrIncrement(ctx context.Context, userID, bookID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Exec(`
INSERT INTO cart_items (id, user_id, book_id, quantity, created_at, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT (user_id, book_id)
DO UPDATE SET quantity = cart_items.quantity + ?, updated_at = CURRENT_TIMESTAMP`,
		uuid.New(), userID, bookID, quantity, quantity).Error
}

func (r *repository) FindLine(ctx context.Context, userID, bookID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindLineByID(ctx context.Context, lineID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ?", lineID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) DeleteByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

func (r *repository) ListLines(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []Line{}, nil
	}

	bookIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		bookIDs = append(bookIDs, item.BookID)
	}

	var books []models.Book
	err = r.db.WithContext(ctx).
		Where("id IN ?", bookIDs).
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Book, len(books))
	for _, book := range books {
		byID[book.ID] = book
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{Item: item, Book: byID[item.BookID]})
	}
	return lines, nil
}
