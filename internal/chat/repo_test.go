package chat

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

func setupChatTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	conversations := `
CREATE TABLE IF NOT EXISTS conversations (
  id TEXT PRIMARY KEY,
  book_id TEXT NOT NULL,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  last_message_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (book_id, buyer_id)
);`
	messages := `
CREATE TABLE IF NOT EXISTS messages (
  id TEXT PRIMARY KEY,
  conversation_id TEXT NOT NULL,
  sender_id TEXT NOT NULL,
  text TEXT NOT NULL,
  read BOOLEAN NOT NULL DEFAULT FALSE,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(conversations).Error)
	require.NoError(t, db.Exec(messages).Error)
	return db
}

func seedConversation(t *testing.T, repo Repository, buyer, seller uuid.UUID) *models.Conversation {
	t.Helper()

	conv, err := repo.CreateConversation(context.Background(), &models.Conversation{
		BookID:   uuid.New(),
		BuyerID:  buyer,
		SellerID: seller,
	})
	require.NoError(t, err)
	return conv
}

func TestRepositoryConversationPairIsUnique(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	buyer := uuid.New()
	bookID := uuid.New()

	_, err := repo.CreateConversation(context.Background(), &models.Conversation{
		BookID: bookID, BuyerID: buyer, SellerID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = repo.CreateConversation(context.Background(), &models.Conversation{
		BookID: bookID, BuyerID: buyer, SellerID: uuid.New(),
	})
	require.Error(t, err)
}

func TestRepositoryAppendMessageBumpsConversation(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	buyer := uuid.New()
	seller := uuid.New()
	conv := seedConversation(t, repo, buyer, seller)

	msg, err := repo.AppendMessage(context.Background(), &models.Message{
		ConversationID: conv.ID,
		SenderID:       buyer,
		Text:           "is this available?",
		CreatedAt:      time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	reloaded, err := repo.FindConversationByID(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, msg.CreatedAt, reloaded.LastMessageAt, time.Second)
}

func TestRepositoryMarkReadLeavesOwnMessagesAlone(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	buyer := uuid.New()
	seller := uuid.New()
	conv := seedConversation(t, repo, buyer, seller)

	fromBuyer, err := repo.AppendMessage(context.Background(), &models.Message{
		ConversationID: conv.ID, SenderID: buyer, Text: "hello",
	})
	require.NoError(t, err)
	fromSeller, err := repo.AppendMessage(context.Background(), &models.Message{
		ConversationID: conv.ID, SenderID: seller, Text: "hi",
	})
	require.NoError(t, err)

	require.NoError(t, repo.MarkRead(context.Background(), conv.ID, seller))

	messages, _, err := repo.ListMessages(context.Background(), conv.ID, pagination.Params{})
	require.NoError(t, err)
	byID := make(map[uuid.UUID]models.Message, len(messages))
	for _, msg := range messages {
		byID[msg.ID] = msg
	}
	assert.True(t, byID[fromBuyer.ID].Read)
	assert.False(t, byID[fromSeller.ID].Read)
}

func TestRepositoryUnreadCounts(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	buyer := uuid.New()
	seller := uuid.New()
	conv := seedConversation(t, repo, buyer, seller)
	other := seedConversation(t, repo, uuid.New(), seller)

	for i := 0; i < 3; i++ {
		_, err := repo.AppendMessage(context.Background(), &models.Message{
			ConversationID: conv.ID, SenderID: buyer, Text: "ping",
		})
		require.NoError(t, err)
	}
	_, err := repo.AppendMessage(context.Background(), &models.Message{
		ConversationID: conv.ID, SenderID: seller, Text: "pong",
	})
	require.NoError(t, err)

	counts, err := repo.UnreadCounts(context.Background(), seller, []uuid.UUID{conv.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[conv.ID])
	assert.Zero(t, counts[other.ID])
}

func TestRepositoryLastMessagesPicksNewestPerConversation(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	buyer := uuid.New()
	seller := uuid.New()
	conv := seedConversation(t, repo, buyer, seller)
	other := seedConversation(t, repo, uuid.New(), seller)
	excluded := seedConversation(t, repo, uuid.New(), uuid.New())

	base := time.Now().UTC().Truncate(time.Second)
	for i, text := range []string{"first", "second", "third"} {
		_, err := repo.AppendMessage(context.Background(), &models.Message{
			ConversationID: conv.ID, SenderID: buyer, Text: text,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := repo.AppendMessage(context.Background(), &models.Message{
		ConversationID: other.ID, SenderID: seller, Text: "only one",
		CreatedAt: base,
	})
	require.NoError(t, err)
	_, err = repo.AppendMessage(context.Background(), &models.Message{
		ConversationID: excluded.ID, SenderID: uuid.New(), Text: "elsewhere",
		CreatedAt: base,
	})
	require.NoError(t, err)

	last, err := repo.LastMessages(context.Background(), []uuid.UUID{conv.ID, other.ID})
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "third", last[conv.ID].Text)
	assert.Equal(t, "only one", last[other.ID].Text)
	_, found := last[excluded.ID]
	assert.False(t, found)
}

func TestRepositoryListConversationsOrdersByActivity(t *testing.T) {
	db := setupChatTestDB(t)
	repo := NewRepository(db)
	me := uuid.New()

	older := seedConversation(t, repo, me, uuid.New())
	newer := seedConversation(t, repo, uuid.New(), me)
	seedConversation(t, repo, uuid.New(), uuid.New())

	base := time.Now().UTC()
	require.NoError(t, db.Model(&models.Conversation{}).Where("id = ?", older.ID).
		Update("last_message_at", base.Add(-time.Hour)).Error)
	require.NoError(t, db.Model(&models.Conversation{}).Where("id = ?", newer.ID).
		Update("last_message_at", base).Error)

	conversations, total, err := repo.ListConversations(context.Background(), me, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, conversations, 2)
	assert.Equal(t, newer.ID, conversations[0].ID)
	assert.Equal(t, older.ID, conversations[1].ID)
}
