package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/internal/listings"
	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/logger"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

const recentActivityLimit = 10

type bookStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters listings.ListFilters, params pagination.Params) (*listings.BookPage, error)
	CountByStatus(ctx context.Context) (map[enums.BookStatus]int64, error)
}

type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

type orderCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type conversationCounter interface {
	CountConversations(ctx context.Context) (int64, error)
}

// ServiceParams groups dependencies for the moderation service.
type ServiceParams struct {
	Repo          Repository
	Books         bookStore
	Users         userCounter
	Orders        orderCounter
	Conversations conversationCounter
	Logger        *logger.Logger
}

// Service is the moderator surface: the review queue, verdicts, listing
// removal, and the dashboard snapshot.
type Service interface {
	ListBooks(ctx context.Context, status *enums.BookStatus, params pagination.Params) (*listings.BookPage, error)
	Moderate(ctx context.Context, moderatorID, bookID uuid.UUID, input DecisionInput) (*models.Book, error)
	Delete(ctx context.Context, moderatorID, bookID uuid.UUID, notes string) error
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo          Repository
	books         bookStore
	users         userCounter
	orders        orderCounter
	conversations conversationCounter
	logg          *logger.Logger
}

// NewService builds a moderation service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("moderation repository required")
	}
	if params.Books == nil {
		return nil, fmt.Errorf("book store required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user counter required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order counter required")
	}
	if params.Conversations == nil {
		return nil, fmt.Errorf("conversation counter required")
	}
	return &service{
		repo:          params.Repo,
		books:         params.Books,
		users:         params.Users,
		orders:        params.Orders,
		conversations: params.Conversations,
		logg:          params.Logger,
	}, nil
}

// ListBooks is the moderator view of the catalogue: unfiltered by default,
// narrowed to one status when asked. Pending is the review queue.
func (s *service) ListBooks(ctx context.Context, status *enums.BookStatus, params pagination.Params) (*listings.BookPage, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be pending, approved, rejected, or sold")
	}

	page, err := s.books.List(ctx, listings.ListFilters{Status: status}, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}
	return page, nil
}

func (s *service) Moderate(ctx context.Context, moderatorID, bookID uuid.UUID, input DecisionInput) (*models.Book, error) {
	if moderatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if bookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}

	var newStatus enums.BookStatus
	switch input.Action {
	case enums.ModerationActionApproved:
		newStatus = enums.BookStatusApproved
	case enums.ModerationActionRejected:
		newStatus = enums.BookStatusRejected
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be approved or rejected")
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	if book.Status != enums.BookStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending listings can be moderated")
	}

	previous := book.Status
	if err := s.books.Update(ctx, book.ID, map[string]any{"status": newStatus}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update book status")
	}
	book.Status = newStatus

	s.writeLog(ctx, &models.ModerationLog{
		ModeratorID:    moderatorID,
		BookID:         book.ID,
		BookTitle:      book.Title,
		Action:         input.Action,
		PreviousStatus: previous,
		NewStatus:      &newStatus,
		Notes:          optionalNotes(input.Notes),
	})
	return book, nil
}

// Delete removes a listing outright. Cart, chat, wishlist and review rows
// cascade away; order rows keep their title snapshot with a nulled book
// reference. The audit entry is written before the row disappears so the
// title survives in the activity feed.
func (s *service) Delete(ctx context.Context, moderatorID, bookID uuid.UUID, notes string) error {
	if moderatorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if bookID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "book id required")
	}

	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	s.writeLog(ctx, &models.ModerationLog{
		ModeratorID:    moderatorID,
		BookID:         book.ID,
		BookTitle:      book.Title,
		Action:         enums.ModerationActionDeleted,
		PreviousStatus: book.Status,
		Notes:          optionalNotes(notes),
	})

	if err := s.books.Delete(ctx, book.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete book")
	}
	return nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	bookCounts, err := s.books.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count books")
	}
	orderCounts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	conversationCount, err := s.conversations.CountConversations(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count conversations")
	}
	recent, err := s.repo.RecentLogs(ctx, recentActivityLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent activity")
	}

	books := make(map[string]int64, len(bookCounts))
	for status, count := range bookCounts {
		books[string(status)] = count
	}

	return &Stats{
		Books:             books,
		Orders:            orderCounts,
		Users:             userCount,
		OpenConversations: conversationCount,
		RecentActivity:    recent,
	}, nil
}

// writeLog is best effort: the moderation action already happened and a
// failed audit write must not undo it.
func (s *service) writeLog(ctx context.Context, entry *models.ModerationLog) {
	if err := s.repo.CreateLog(ctx, entry); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "moderation.audit_write_failed")
	}
}

func optionalNotes(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}
