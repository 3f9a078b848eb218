package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

// Repository defines persistence for conversations and their messages.
type Repository interface {
	CreateConversation(ctx context.Context, conv *models.Conversation) (*models.Conversation, error)
	FindConversation(ctx context.Context, bookID, buyerID uuid.UUID) (*models.Conversation, error)
	FindConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Conversation, int64, error)
	AppendMessage(ctx context.Context, message *models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID, params pagination.Params) ([]models.Message, int64, error)
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error
	UnreadCounts(ctx context.Context, readerID uuid.UUID, conversationIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	LastMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]models.Message, error)
	BooksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Book, error)
	CountConversations(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a chat repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateConversation(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	if conv.LastMessageAt.IsZero() {
		conv.LastMessageAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *repository) FindConversation(ctx context.Context, bookID, buyerID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND buyer_id = ?", bookID, buyerID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *repository) FindConversationByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *repository) ListConversations(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Conversation, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var conversations []models.Conversation
	err := query.
		Order("last_message_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&conversations).Error
	if err != nil {
		return nil, 0, err
	}
	return conversations, total, nil
}

// AppendMessage inserts the message and bumps the conversation's
// last_message_at in the same transaction, keeping inbox ordering
// consistent with what the reader will actually see.
func (r *repository) AppendMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Update("last_message_at", message.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (r *repository) ListMessages(ctx context.Context, conversationID uuid.UUID, params pagination.Params) ([]models.Message, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ?", conversationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	err := query.
		Order("created_at ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (r *repository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read = ?", conversationID, readerID, false).
		Update("read", true).Error
}

func (r *repository) UnreadCounts(ctx context.Context, readerID uuid.UUID, conversationIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}

	type row struct {
		ConversationID uuid.UUID
		Count          int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("conversation_id", "COUNT(*) AS count").
		Where("conversation_id IN ?", conversationIDs).
		Where("sender_id <> ? AND read = ?", readerID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.ConversationID] = r.Count
	}
	return counts, nil
}

// LastMessages resolves each conversation's newest message through a
// per-conversation MAX(created_at) subquery, so inbox assembly stays
// proportional to the page of conversations rather than their histories.
func (r *repository) LastMessages(ctx context.Context, conversationIDs []uuid.UUID) (map[uuid.UUID]models.Message, error) {
	last := make(map[uuid.UUID]models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return last, nil
	}

	newest := r.db.Model(&models.Message{}).
		Select("conversation_id", "MAX(created_at) AS last_at").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Joins("JOIN (?) newest ON newest.conversation_id = messages.conversation_id AND newest.last_at = messages.created_at", newest).
		Order("messages.created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	// Equal timestamps can match more than one row; the later scan wins,
	// matching insertion order.
	for _, msg := range messages {
		last[msg.ConversationID] = msg
	}
	return last, nil
}

func (r *repository) BooksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Book, error) {
	books := make(map[uuid.UUID]models.Book, len(ids))
	if len(ids) == 0 {
		return books, nil
	}

	var rows []models.Book
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, book := range rows {
		books[book.ID] = book
	}
	return books, nil
}

func (r *repository) CountConversations(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Count(&total).Error
	return total, err
}
