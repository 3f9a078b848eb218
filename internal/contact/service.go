package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

const (
	maxSubjectLength = 200
	maxBodyLength    = 5000
)

// CreateInput is one feedback submission.
type CreateInput struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Page is one window of contact messages plus the total count.
type Page struct {
	Messages []models.ContactMessage
	Total    int64
}

// ServiceParams groups dependencies for the contact service.
type ServiceParams struct {
	Repo Repository
}

// Service handles user feedback and its moderator-facing queue.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.ContactMessage, error)
	List(ctx context.Context, resolved *bool, params pagination.Params) (*Page, error)
	Resolve(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error)
}

type service struct {
	repo Repository
}

// NewService builds a contact service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("contact repository required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*models.ContactMessage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	subject := strings.TrimSpace(input.Subject)
	body := strings.TrimSpace(input.Message)
	details := map[string]string{}
	if subject == "" {
		details["subject"] = "subject is required"
	} else if len(subject) > maxSubjectLength {
		details["subject"] = "subject exceeds 200 characters"
	}
	if body == "" {
		details["message"] = "message is required"
	} else if len(body) > maxBodyLength {
		details["message"] = "message exceeds 5000 characters"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid contact submission").WithDetails(details)
	}

	created, err := s.repo.Create(ctx, &models.ContactMessage{
		UserID:  userID,
		Subject: subject,
		Message: body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contact message")
	}
	return created, nil
}

func (s *service) List(ctx context.Context, resolved *bool, params pagination.Params) (*Page, error) {
	messages, total, err := s.repo.List(ctx, resolved, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contact messages")
	}
	return &Page{Messages: messages, Total: total}, nil
}

// Resolve is idempotent in effect but loud about it: resolving twice is a
// state conflict so moderators notice stale queue views.
func (s *service) Resolve(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact id required")
	}

	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contact message not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load contact message")
	}
	if message.Resolved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "contact message is already resolved")
	}

	if err := s.repo.MarkResolved(ctx, message.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve contact message")
	}
	message.Resolved = true
	return message, nil
}
