package enums

import "fmt"

// UserRole distinguishes ordinary marketplace users from moderators. Roles are
// assigned by the identity service and carried in its access tokens.
type UserRole string

const (
	UserRoleStudent   UserRole = "student"
	UserRoleModerator UserRole = "moderator"
)

var validUserRoles = []UserRole{
	UserRoleStudent,
	UserRoleModerator,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
