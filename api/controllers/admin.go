package controllers

import (
	"net/http"
	"strings"

	"github.com/campusshelf/campusshelf-backend/api/responses"
	"github.com/campusshelf/campusshelf-backend/api/validators"
	"github.com/campusshelf/campusshelf-backend/internal/moderation"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/logger"
)

type moderationDecisionPayload struct {
	Action string `json:"action"`
	Notes  string `json:"notes"`
}

type deleteListingPayload struct {
	Notes string `json:"notes"`
}

// AdminBooksList is the moderator catalogue view, filterable by status.
func AdminBooksList(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var status *enums.BookStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			value := enums.BookStatus(raw)
			status = &value
		}

		page, err := svc.ListBooks(ctx, status, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, page.Books, page.Meta(params))
	}
}

// AdminBooksModerate records an approve or reject verdict on a pending
// listing.
func AdminBooksModerate(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}

		moderatorID, err := currentUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookID, err := pathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload moderationDecisionPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		book, err := svc.Moderate(ctx, moderatorID, bookID, moderation.DecisionInput{
			Action: enums.ModerationAction(strings.TrimSpace(payload.Action)),
			Notes:  strings.TrimSpace(payload.Notes),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// AdminBooksDelete removes a listing outright.
func AdminBooksDelete(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}

		moderatorID, err := currentUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookID, err := pathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload deleteListingPayload
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		if err := svc.Delete(ctx, moderatorID, bookID, strings.TrimSpace(payload.Notes)); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// AdminStats is the dashboard snapshot.
func AdminStats(svc moderation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "moderation service unavailable"))
			return
		}

		stats, err := svc.Stats(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
