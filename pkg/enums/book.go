package enums

import "fmt"

// BookCategory represents the canonical catalog categories.
type BookCategory string

const (
	BookCategoryAcademic    BookCategory = "academic"
	BookCategoryCompetitive BookCategory = "competitive"
	BookCategoryLiterature  BookCategory = "literature"
	BookCategoryReference   BookCategory = "reference"
)

var validBookCategories = []BookCategory{
	BookCategoryAcademic,
	BookCategoryCompetitive,
	BookCategoryLiterature,
	BookCategoryReference,
}

// String implements fmt.Stringer.
func (c BookCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known BookCategory.
func (c BookCategory) IsValid() bool {
	for _, candidate := range validBookCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseBookCategory converts raw input into a BookCategory.
func ParseBookCategory(value string) (BookCategory, error) {
	for _, candidate := range validBookCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid book category %q", value)
}

// BookCondition grades the physical state of a listed copy.
type BookCondition string

const (
	BookConditionNew     BookCondition = "new"
	BookConditionLikeNew BookCondition = "like_new"
	BookConditionGood    BookCondition = "good"
	BookConditionFair    BookCondition = "fair"
)

var validBookConditions = []BookCondition{
	BookConditionNew,
	BookConditionLikeNew,
	BookConditionGood,
	BookConditionFair,
}

// String implements fmt.Stringer.
func (c BookCondition) String() string {
	return string(c)
}

// IsValid reports whether the value is a known BookCondition.
func (c BookCondition) IsValid() bool {
	for _, candidate := range validBookConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseBookCondition converts raw input into a BookCondition.
func ParseBookCondition(value string) (BookCondition, error) {
	for _, candidate := range validBookConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid book condition %q", value)
}

// BookStatus tracks a listing through moderation and sale.
type BookStatus string

const (
	BookStatusPending  BookStatus = "pending"
	BookStatusApproved BookStatus = "approved"
	BookStatusRejected BookStatus = "rejected"
	BookStatusSold     BookStatus = "sold"
)

var validBookStatuses = []BookStatus{
	BookStatusPending,
	BookStatusApproved,
	BookStatusRejected,
	BookStatusSold,
}

// String implements fmt.Stringer.
func (s BookStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookStatus.
func (s BookStatus) IsValid() bool {
	for _, candidate := range validBookStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBookStatus converts raw input into a BookStatus.
func ParseBookStatus(value string) (BookStatus, error) {
	for _, candidate := range validBookStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid book status %q", value)
}
