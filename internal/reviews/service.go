package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db"
	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

const (
	reviewConstraint = "reviews_book_reviewer_key"

	maxCommentLength = 1000
)

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type userFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// ServiceParams groups dependencies for the reviews service.
type ServiceParams struct {
	Repo  Repository
	Books bookFinder
	Users userFinder
}

// Service manages ratings on listings.
type Service interface {
	Create(ctx context.Context, bookID, reviewerID uuid.UUID, input CreateInput) (*models.Review, error)
	ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*ViewPage, error)
}

type service struct {
	repo  Repository
	books bookFinder
	users userFinder
}

// NewService builds a reviews service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if params.Books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	return &service{repo: params.Repo, books: params.Books, users: params.Users}, nil
}

func (s *service) Create(ctx context.Context, bookID, reviewerID uuid.UUID, input CreateInput) (*models.Review, error) {
	if reviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(input.Comment)
	if utf8.RuneCountInString(comment) > maxCommentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment exceeds 1000 characters")
	}

	book, err := s.visibleBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.SellerID == reviewerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot review your own listing")
	}

	review := &models.Review{
		BookID:     bookID,
		ReviewerID: reviewerID,
		Rating:     input.Rating,
	}
	if comment != "" {
		review.Comment = &comment
	}

	created, err := s.repo.Create(ctx, review)
	if err != nil {
		if db.IsUniqueViolation(err, reviewConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "you have already reviewed this listing")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return created, nil
}

func (s *service) ListByBook(ctx context.Context, bookID uuid.UUID, params pagination.Params) (*ViewPage, error) {
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if _, err := s.visibleBook(ctx, bookID); err != nil {
		return nil, err
	}

	reviews, total, err := s.repo.ListByBook(ctx, bookID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	ratings, err := s.repo.RatingsByBook(ctx, bookID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ratings")
	}

	reviewerIDs := make([]uuid.UUID, 0, len(reviews))
	for _, review := range reviews {
		reviewerIDs = append(reviewerIDs, review.ReviewerID)
	}
	authors, err := s.users.FindByIDs(ctx, reviewerIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviewers")
	}

	items := make([]ViewItem, 0, len(reviews))
	for _, review := range reviews {
		item := ViewItem{
			ID:         review.ID,
			ReviewerID: review.ReviewerID,
			Rating:     review.Rating,
			Comment:    review.Comment,
			CreatedAt:  review.CreatedAt,
		}
		if user, ok := authors[review.ReviewerID]; ok {
			item.ReviewerName = user.Name
		}
		items = append(items, item)
	}

	return &ViewPage{
		Reviews:   items,
		Aggregate: aggregate(ratings),
		Total:     total,
	}, nil
}

// visibleBook hides listings that never went public.
func (s *service) visibleBook(ctx context.Context, bookID uuid.UUID) (*models.Book, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if book.Status != enums.BookStatusApproved && book.Status != enums.BookStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
	}
	return book, nil
}

func aggregate(ratings []int) Aggregate {
	agg := Aggregate{PerStar: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	if len(ratings) == 0 {
		return agg
	}

	var sum int
	for _, rating := range ratings {
		sum += rating
		if rating >= 1 && rating <= 5 {
			agg.PerStar[rating]++
		}
	}
	agg.Count = int64(len(ratings))
	agg.Average = math.Round(float64(sum)/float64(len(ratings))*10) / 10
	return agg
}
