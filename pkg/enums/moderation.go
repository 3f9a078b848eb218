package enums

import "fmt"

// ModerationAction is the audit-log verb recorded when a moderator acts on a
// listing.
type ModerationAction string

const (
	ModerationActionApproved ModerationAction = "approved"
	ModerationActionRejected ModerationAction = "rejected"
	ModerationActionDeleted  ModerationAction = "deleted"
)

var validModerationActions = []ModerationAction{
	ModerationActionApproved,
	ModerationActionRejected,
	ModerationActionDeleted,
}

// String implements fmt.Stringer.
func (a ModerationAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ModerationAction.
func (a ModerationAction) IsValid() bool {
	for _, candidate := range validModerationActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseModerationAction converts raw input into a ModerationAction.
func ParseModerationAction(value string) (ModerationAction, error) {
	for _, candidate := range validModerationActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid moderation action %q", value)
}
