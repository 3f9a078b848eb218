package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a conversation. Read is flipped when the other
// party opens the conversation, not on delivery.
type Message struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:uuid;not null;index:messages_conversation_id_idx" json:"conversation_id"`
	SenderID       uuid.UUID `gorm:"column:sender_id;type:uuid;not null" json:"sender_id"`
	Text           string    `gorm:"column:text;not null" json:"text"`
	Read           bool      `gorm:"column:read;not null;default:false" json:"read"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
