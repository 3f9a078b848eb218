package listings

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

// Repository defines persistence operations over the books table. Moderation
// reuses it for status changes and deletes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*BookPage, error)
	ListRelated(ctx context.Context, category enums.BookCategory, exclude uuid.UUID, limit int) ([]models.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[enums.BookStatus]int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a listings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) (*BookPage, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Book{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", *filters.SellerID)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(COALESCE(isbn, '')) LIKE ?)", pattern, pattern, pattern)
	}
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Condition != nil {
		query = query.Where("condition = ?", *filters.Condition)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var books []models.Book
	err := query.
		Order(sortClause(filters)).
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&books).Error
	if err != nil {
		return nil, err
	}

	return &BookPage{Books: books, Total: total}, nil
}

func (r *repository) ListRelated(ctx context.Context, category enums.BookCategory, exclude uuid.UUID, limit int) ([]models.Book, error) {
	var books []models.Book
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.BookStatusApproved).
		Where("category = ?", category).
		Where("id <> ?", exclude).
		Order("created_at DESC").
		Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Book{}).Error
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.BookStatus]int64, error) {
	type row struct {
		Status enums.BookStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Select("status", "COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.BookStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func sortClause(filters ListFilters) string {
	column := "created_at"
	if filters.SortBy == "price" {
		column = "price"
	}
	direction := "DESC"
	if strings.EqualFold(filters.SortDir, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}
