package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

// Repository defines persistence for review rows.
type Repository interface {
	Create(ctx context.Context, review *models.Review) (*models.Review, error)
	ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) ([]models.Review, int64, error)
	RatingsByBook(ctx context.Context, bookID uuid.UUID) ([]int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reviews repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *repository) ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) ([]models.Review, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("book_id = ?", bookID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := query.
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// RatingsByBook returns every rating for the listing; the aggregate is
// computed over all of them, not just the requested page.
func (r *repository) RatingsByBook(ctx context.Context, bookID uuid.UUID) ([]int, error) {
	var ratings []int
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("book_id = ?", bookID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
