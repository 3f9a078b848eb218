package chat

import (
	"context"
	"errors"
	"fmt"
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
	maxMessageLength       = 2000
	conversationConstraint = "conversations_book_buyer_key"
)

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type userFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// ServiceParams groups dependencies for the chat service.
type ServiceParams struct {
	Repo  Repository
	Books bookFinder
	Users userFinder
}

// Service handles buyer-seller conversations around a listing.
type Service interface {
	Open(ctx context.Context, buyerID uuid.UUID, input OpenInput) (*models.Conversation, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*SummaryPage, error)
	Messages(ctx context.Context, conversationID, requesterID uuid.UUID, params pagination.Params) (*MessagePage, error)
	Send(ctx context.Context, conversationID, senderID uuid.UUID, text string) (*models.Message, error)
}

type service struct {
	repo  Repository
	books bookFinder
	users userFinder
}

// NewService builds a chat service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("chat repository required")
	}
	if params.Books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	return &service{repo: params.Repo, books: params.Books, users: params.Users}, nil
}

// Open finds or creates the conversation for (book, buyer). Repeated opens
// return the existing channel rather than erroring; only the listing's
// seller is refused.
func (s *service) Open(ctx context.Context, buyerID uuid.UUID, input OpenInput) (*models.Conversation, error) {
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
	if book.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot open a conversation on your own listing")
	}
	if book.Status != enums.BookStatusApproved && book.Status != enums.BookStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not available")
	}

	if existing, err := s.repo.FindConversation(ctx, book.ID, buyerID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}

	conv := &models.Conversation{
		BookID:   book.ID,
		BuyerID:  buyerID,
		SellerID: book.SellerID,
	}
	created, err := s.repo.CreateConversation(ctx, conv)
	if err != nil {
		// Two concurrent opens race on the unique pair; the loser re-reads.
		if db.IsUniqueViolation(err, conversationConstraint) {
			if existing, findErr := s.repo.FindConversation(ctx, book.ID, buyerID); findErr == nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create conversation")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*SummaryPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	conversations, total, err := s.repo.ListConversations(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversations")
	}

	convIDs := make([]uuid.UUID, 0, len(conversations))
	bookIDs := make([]uuid.UUID, 0, len(conversations))
	partyIDs := make([]uuid.UUID, 0, len(conversations))
	for _, conv := range conversations {
		convIDs = append(convIDs, conv.ID)
		bookIDs = append(bookIDs, conv.BookID)
		if conv.BuyerID == userID {
			partyIDs = append(partyIDs, conv.SellerID)
		} else {
			partyIDs = append(partyIDs, conv.BuyerID)
		}
	}

	unread, err := s.repo.UnreadCounts(ctx, userID, convIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}
	last, err := s.repo.LastMessages(ctx, convIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last messages")
	}
	books, err := s.repo.BooksByIDs(ctx, bookIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load books")
	}
	parties, err := s.users.FindByIDs(ctx, partyIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load participants")
	}

	summaries := make([]Summary, 0, len(conversations))
	for _, conv := range conversations {
		summary := Summary{
			ID:            conv.ID,
			UnreadCount:   unread[conv.ID],
			LastMessageAt: conv.LastMessageAt,
		}
		if book, ok := books[conv.BookID]; ok {
			copied := book
			summary.Book = &copied
		}
		if msg, ok := last[conv.ID]; ok {
			copied := msg
			summary.LastMessage = &copied
		}
		partyID := conv.BuyerID
		if conv.BuyerID == userID {
			partyID = conv.SellerID
		}
		summary.Counterparty = Participant{ID: partyID}
		if user, ok := parties[partyID]; ok {
			summary.Counterparty.Name = user.Name
		}
		summaries = append(summaries, summary)
	}

	return &SummaryPage{Conversations: summaries, Total: total}, nil
}

// Messages returns one page of a conversation, oldest first, and marks the
// counterparty's messages read as a side effect of opening it.
func (s *service) Messages(ctx context.Context, conversationID, requesterID uuid.UUID, params pagination.Params) (*MessagePage, error) {
	conv, err := s.authorizedConversation(ctx, conversationID, requesterID)
	if err != nil {
		return nil, err
	}

	messages, total, err := s.repo.ListMessages(ctx, conv.ID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	if err := s.repo.MarkRead(ctx, conv.ID, requesterID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark messages read")
	}

	return &MessagePage{Messages: messages, Total: total}, nil
}

func (s *service) Send(ctx context.Context, conversationID, senderID uuid.UUID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message text required")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message text exceeds 2000 characters")
	}

	conv, err := s.authorizedConversation(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
	}
	created, err := s.repo.AppendMessage(ctx, message)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append message")
	}
	return created, nil
}

// authorizedConversation loads the conversation and hides its existence
// from non-participants.
func (s *service) authorizedConversation(ctx context.Context, conversationID, userID uuid.UUID) (*models.Conversation, error) {
	if conversationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "conversation id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	conv, err := s.repo.FindConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}
	if conv.BuyerID != userID && conv.SellerID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
	}
	return conv, nil
}
