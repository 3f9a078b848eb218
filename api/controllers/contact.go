package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/campusshelf/campusshelf-backend/api/responses"
	"github.com/campusshelf/campusshelf-backend/api/validators"
	"github.com/campusshelf/campusshelf-backend/internal/contact"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/logger"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

type contactPayload struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactCreate records a feedback submission from the caller.
func ContactCreate(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		userID, err := currentUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload contactPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		message, err := svc.Create(ctx, userID, contact.CreateInput{
			Subject: payload.Subject,
			Message: payload.Message,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// ContactList is the moderator queue of submissions, filterable by resolved
// state.
func ContactList(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var resolved *bool
		if raw := strings.TrimSpace(r.URL.Query().Get("resolved")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "resolved must be true or false"))
				return
			}
			resolved = &value
		}

		page, err := svc.List(ctx, resolved, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, page.Messages, pagination.MetaFor(params, page.Total))
	}
}

// ContactResolve closes out a submission.
func ContactResolve(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		contactID, err := pathUUID(r, "contactId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		message, err := svc.Resolve(ctx, contactID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, message)
	}
}
