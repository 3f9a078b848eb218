package chat

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

type stubChatRepo struct {
	conversations map[uuid.UUID]*models.Conversation
	messages      map[uuid.UUID]*models.Message
	books         map[uuid.UUID]*models.Book
	markReadCalls []uuid.UUID
	clock         int64
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{
		conversations: make(map[uuid.UUID]*models.Conversation),
		messages:      make(map[uuid.UUID]*models.Message),
		books:         make(map[uuid.UUID]*models.Book),
	}
}

func (s *stubChatRepo) CreateConversation(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	if conv.LastMessageAt.IsZero() {
		conv.LastMessageAt = time.Now().UTC()
	}
	s.conversations[conv.ID] = conv
	return conv, nil
}

func (s *stubChatRepo) FindConversation(ctx context.Context, bookID, buyerID uuid.UUID) (*models.Conversation, error) {
	for _, conv := range s.conversations {
		if conv.BookID == bookID && conv.BuyerID == buyerID {
			copied := *conv
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubChatRepo) FindConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	if conv, ok := s.conversations[id]; ok {
		copied := *conv
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubChatRepo) ListConversations(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Conversation, int64, error) {
	var rows []models.Conversation
	for _, conv := range s.conversations {
		if conv.BuyerID == userID || conv.SellerID == userID {
			rows = append(rows, *conv)
		}
	}
	return rows, int64(len(rows)), nil
}

func (s *stubChatRepo) AppendMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		s.clock++
		message.CreatedAt = time.Unix(0, s.clock).UTC()
	}
	s.messages[message.ID] = message
	if conv, ok := s.conversations[message.ConversationID]; ok {
		conv.LastMessageAt = message.CreatedAt
	}
	return message, nil
}

func (s *stubChatRepo) ListMessages(ctx context.Context, conversationID uuid.UUID, params pagination.Params) ([]models.Message, int64, error) {
	var rows []models.Message
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID {
			rows = append(rows, *msg)
		}
	}
	return rows, int64(len(rows)), nil
}

func (s *stubChatRepo) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	s.markReadCalls = append(s.markReadCalls, conversationID)
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID && msg.SenderID != readerID {
			msg.Read = true
		}
	}
	return nil
}

func (s *stubChatRepo) UnreadCounts(ctx context.Context, readerID uuid.UUID, conversationIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64)
	for _, msg := range s.messages {
		if msg.SenderID != readerID && !msg.Read {
			counts[msg.ConversationID]++
		}
	}
	return counts, nil
}

func (s *stubChatRepo) LastMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]models.Message, error) {
	last := make(map[uuid.UUID]models.Message)
	for _, msg := range s.messages {
		current, ok := last[msg.ConversationID]
		if !ok || msg.CreatedAt.After(current.CreatedAt) {
			last[msg.ConversationID] = *msg
		}
	}
	return last, nil
}

func (s *stubChatRepo) BooksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Book, error) {
	books := make(map[uuid.UUID]models.Book)
	for _, id := range ids {
		if book, ok := s.books[id]; ok {
			books[id] = *book
		}
	}
	return books, nil
}

func (s *stubChatRepo) CountConversations(ctx context.Context) (int64, error) {
	return int64(len(s.conversations)), nil
}

type stubChatBooks struct {
	books map[uuid.UUID]*models.Book
}

func (s *stubChatBooks) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	if book, ok := s.books[id]; ok {
		return book, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubChatUsers struct {
	users map[uuid.UUID]*models.User
}

func (s *stubChatUsers) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	found := make(map[uuid.UUID]models.User)
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			found[id] = *user
		}
	}
	return found, nil
}

type chatFixture struct {
	repo  *stubChatRepo
	users *stubChatUsers
	svc   Service
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		repo:  newStubChatRepo(),
		users: &stubChatUsers{users: make(map[uuid.UUID]*models.User)},
	}
	svc, err := NewService(ServiceParams{
		Repo:  f.repo,
		Books: &stubChatBooks{books: f.repo.books},
		Users: f.users,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *chatFixture) seedBook(seller uuid.UUID, status enums.BookStatus) *models.Book {
	book := &models.Book{ID: uuid.New(), SellerID: seller, Title: "Algorithms", Status: status}
	f.repo.books[book.ID] = book
	return book
}

func TestOpenIsIdempotentPerBuyerAndBook(t *testing.T) {
	f := newChatFixture(t)
	seller := uuid.New()
	buyer := uuid.New()
	book := f.seedBook(seller, enums.BookStatusApproved)

	first, err := f.svc.Open(context.Background(), buyer, OpenInput{BookID: book.ID})
	require.NoError(t, err)
	assert.Equal(t, seller, first.SellerID)

	second, err := f.svc.Open(context.Background(), buyer, OpenInput{BookID: book.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.repo.conversations, 1)
}

func TestOpenRejectsSellerOnOwnListing(t *testing.T) {
	f := newChatFixture(t)
	seller := uuid.New()
	book := f.seedBook(seller, enums.BookStatusApproved)

	_, err := f.svc.Open(context.Background(), seller, OpenInput{BookID: book.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestOpenRejectsPendingListing(t *testing.T) {
	f := newChatFixture(t)
	book := f.seedBook(uuid.New(), enums.BookStatusPending)

	_, err := f.svc.Open(context.Background(), uuid.New(), OpenInput{BookID: book.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestSendValidatesLength(t *testing.T) {
	f := newChatFixture(t)
	seller := uuid.New()
	buyer := uuid.New()
	book := f.seedBook(seller, enums.BookStatusApproved)
	conv, err := f.svc.Open(context.Background(), buyer, OpenInput{BookID: book.ID})
	require.NoError(t, err)

	_, err = f.svc.Send(context.Background(), conv.ID, buyer, "   ")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = f.svc.Send(context.Background(), conv.ID, buyer, strings.Repeat("a", maxMessageLength+1))
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSendCountsCharactersNotBytes(t *testing.T) {
	f := newChatFixture(t)
	seller := uuid.New()
	buyer := uuid.New()
	book := f.seedBook(seller, enums.BookStatusApproved)
	conv, err := f.svc.Open(context.Background(), buyer, OpenInput{BookID: book.ID})
	require.NoError(t, err)

	// multibyte text at exactly the limit is fine even though its byte
	// length is far larger
	sent, err := f.svc.Send(context.Background(), conv.ID, buyer, strings.Repeat("क", maxMessageLength))
	require.NoError(t, err)
	assert.Equal(t, maxMessageLength, utf8.RuneCountInString(sent.Text))

	_, err = f.svc.Send(context.Background(), conv.ID, buyer, strings.Repeat("क", maxMessageLength+1))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestSendHidesConversationFromStrangers(t *testing.T) {
	f := newChatFixture(t)
	seller := uuid.New()
	buyer := uuid.New()
	book := f.seedBook(seller, enums.BookStatusApproved)
	conv, err := f.svc.Open(context.Background(), buyer, OpenInput{BookID: book.ID})
	require.NoError(t, err)

	_, err = f.svc.Send(context.Background(), conv.ID, uuid.New(), "is this available?")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestMessagesMarksCounterpartyRead(t *testing.T) {
	f := newChatFixture(t)
	seller := uuid.New()
	buyer := uuid.New()
	book := f.seedBook(seller, enums.BookStatusApproved)
	conv, err := f.svc.Open(context.Background(), buyer, OpenInput{BookID: book.ID})
	require.NoError(t, err)

	sent, err := f.svc.Send(context.Background(), conv.ID, buyer, "is this available?")
	require.NoError(t, err)
	assert.False(t, sent.Read)

	page, err := f.svc.Messages(context.Background(), conv.ID, seller, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, []uuid.UUID{conv.ID}, f.repo.markReadCalls)
	assert.True(t, f.repo.messages[sent.ID].Read)
}

func TestListBuildsSummariesWithUnreadCounts(t *testing.T) {
	f := newChatFixture(t)
	seller := uuid.New()
	buyer := uuid.New()
	f.users.users[buyer] = &models.User{ID: buyer, Name: "Arjun"}
	f.users.users[seller] = &models.User{ID: seller, Name: "Priya"}
	book := f.seedBook(seller, enums.BookStatusApproved)

	conv, err := f.svc.Open(context.Background(), buyer, OpenInput{BookID: book.ID})
	require.NoError(t, err)
	_, err = f.svc.Send(context.Background(), conv.ID, buyer, "is this available?")
	require.NoError(t, err)
	_, err = f.svc.Send(context.Background(), conv.ID, buyer, "happy to pick up today")
	require.NoError(t, err)

	page, err := f.svc.List(context.Background(), seller, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Conversations, 1)

	summary := page.Conversations[0]
	assert.Equal(t, conv.ID, summary.ID)
	assert.Equal(t, int64(2), summary.UnreadCount)
	assert.Equal(t, "Arjun", summary.Counterparty.Name)
	require.NotNil(t, summary.Book)
	assert.Equal(t, book.ID, summary.Book.ID)
	require.NotNil(t, summary.LastMessage)
	assert.Equal(t, "happy to pick up today", summary.LastMessage.Text)
}
