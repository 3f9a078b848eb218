package moderation

import (
	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
)

// DecisionInput is a moderator's verdict on a pending listing.
type DecisionInput struct {
	Action enums.ModerationAction
	Notes  string
}

// Stats is the admin dashboard snapshot.
type Stats struct {
	Books             map[string]int64       `json:"books"`
	Orders            map[string]int64       `json:"orders"`
	Users             int64                  `json:"users"`
	OpenConversations int64                  `json:"open_conversations"`
	RecentActivity    []models.ModerationLog `json:"recent_activity"`
}
