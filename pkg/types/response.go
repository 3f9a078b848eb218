package types

import "github.com/campusshelf/campusshelf-backend/pkg/pagination"

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ListEnvelope is the success payload for paginated collections.
type ListEnvelope struct {
	Data       any             `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
