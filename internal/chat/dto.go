package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
)

// OpenInput starts (or resumes) a conversation about a listing.
type OpenInput struct {
	BookID uuid.UUID
}

// Participant is the other side of a conversation.
type Participant struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Summary is one row of the inbox: the conversation plus enough context to
// render it without further requests.
type Summary struct {
	ID            uuid.UUID       `json:"id"`
	Book          *models.Book    `json:"book,omitempty"`
	Counterparty  Participant     `json:"counterparty"`
	LastMessage   *models.Message `json:"last_message,omitempty"`
	UnreadCount   int64           `json:"unread_count"`
	LastMessageAt time.Time       `json:"last_message_at"`
}

// SummaryPage is one inbox window plus the total conversation count.
type SummaryPage struct {
	Conversations []Summary
	Total         int64
}

// MessagePage is one window of a conversation's messages, oldest first.
type MessagePage struct {
	Messages []models.Message
	Total    int64
}
