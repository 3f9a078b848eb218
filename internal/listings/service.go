package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

const relatedBooksLimit = 4

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceParams groups dependencies for the listings service.
type ServiceParams struct {
	Repo  Repository
	Users userFinder
}

// Service exposes listing management and browsing.
type Service interface {
	Create(ctx context.Context, sellerID uuid.UUID, input CreateBookInput) (*models.Book, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*BookPage, error)
	Get(ctx context.Context, bookID, requesterID uuid.UUID) (*BookDetail, error)
	Update(ctx context.Context, bookID, requesterID uuid.UUID, input UpdateBookInput) (*models.Book, error)
	MyListings(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*BookPage, error)
}

type service struct {
	repo  Repository
	users userFinder
}

// NewService builds a listings service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: params.Repo, users: params.Users}, nil
}

func (s *service) Create(ctx context.Context, sellerID uuid.UUID, input CreateBookInput) (*models.Book, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	details := map[string]string{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		details["title"] = "is required"
	}
	author := strings.TrimSpace(input.Author)
	if author == "" {
		details["author"] = "is required"
	}

	isbn := normalizeISBN(input.ISBN)
	if input.ISBN != "" && isbn == "" {
		details["isbn"] = "must be 10 or 13 digits"
	}

	category, err := enums.ParseBookCategory(input.Category)
	if err != nil {
		details["category"] = "must be one of academic competitive literature reference"
	}
	condition, err := enums.ParseBookCondition(input.Condition)
	if err != nil {
		details["condition"] = "must be one of new like_new good fair"
	}

	if !input.Price.IsPositive() {
		details["price"] = "must be greater than 0"
	}
	if len(input.ImageURLs) == 0 {
		details["image_urls"] = "at least one image is required"
	}

	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	book := &models.Book{
		SellerID:    sellerID,
		Title:       title,
		Author:      author,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		Condition:   condition,
		Price:       input.Price,
		ImageURLs:   input.ImageURLs,
		Status:      enums.BookStatusPending,
	}
	if isbn != "" {
		book.ISBN = &isbn
	}

	created, err := s.repo.Create(ctx, book)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return created, nil
}

// List serves the public catalog: only approved listings are visible.
func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*BookPage, error) {
	approved := enums.BookStatusApproved
	filters.Status = &approved
	filters.SellerID = nil

	page, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, bookID, requesterID uuid.UUID) (*BookDetail, error) {
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}

	book, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	if book.Status != enums.BookStatusApproved && book.SellerID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing is not available")
	}

	detail := &BookDetail{Book: *book, Related: []models.Book{}}

	if seller, err := s.users.FindByID(ctx, book.SellerID); err == nil {
		detail.Seller = &SellerSummary{ID: seller.ID, Name: seller.Name, Campus: seller.Campus}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}

	related, err := s.repo.ListRelated(ctx, book.Category, book.ID, relatedBooksLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load related books")
	}
	detail.Related = related

	return detail, nil
}

func (s *service) Update(ctx context.Context, bookID, requesterID uuid.UUID, input UpdateBookInput) (*models.Book, error) {
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}
	if requesterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	book, err := s.repo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if book.SellerID != requesterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller can edit a listing")
	}
	if book.Status != enums.BookStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending listings can be edited")
	}

	updates, err := buildUpdates(input)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return book, nil
	}

	if err := s.repo.Update(ctx, book.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
	}

	updated, err := s.repo.FindByID(ctx, book.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload listing")
	}
	return updated, nil
}

func (s *service) MyListings(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*BookPage, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	filters := ListFilters{SellerID: &sellerID}
	page, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list own books")
	}
	return page, nil
}

func buildUpdates(input UpdateBookInput) (map[string]any, error) {
	details := map[string]string{}
	updates := map[string]any{}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			details["title"] = "is required"
		} else {
			updates["title"] = title
		}
	}
	if input.Author != nil {
		author := strings.TrimSpace(*input.Author)
		if author == "" {
			details["author"] = "is required"
		} else {
			updates["author"] = author
		}
	}
	if input.ISBN != nil {
		if *input.ISBN == "" {
			updates["isbn"] = nil
		} else if isbn := normalizeISBN(*input.ISBN); isbn == "" {
			details["isbn"] = "must be 10 or 13 digits"
		} else {
			updates["isbn"] = isbn
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		category, err := enums.ParseBookCategory(*input.Category)
		if err != nil {
			details["category"] = "must be one of academic competitive literature reference"
		} else {
			updates["category"] = category
		}
	}
	if input.Condition != nil {
		condition, err := enums.ParseBookCondition(*input.Condition)
		if err != nil {
			details["condition"] = "must be one of new like_new good fair"
		} else {
			updates["condition"] = condition
		}
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			details["price"] = "must be greater than 0"
		} else {
			updates["price"] = *input.Price
		}
	}
	if input.ImageURLs != nil {
		if len(input.ImageURLs) == 0 {
			details["image_urls"] = "at least one image is required"
		} else {
			updates["image_urls"] = pq.StringArray(input.ImageURLs)
		}
	}

	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return updates, nil
}

// normalizeISBN strips hyphens and spaces and accepts 10 or 13 digit codes.
// Returns "" when the input does not normalize to a valid ISBN.
func normalizeISBN(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if len(cleaned) != 10 && len(cleaned) != 13 {
		return ""
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return cleaned
}
