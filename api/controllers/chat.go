package controllers

import (
	"net/http"

	"github.com/campusshelf/campusshelf-backend/api/responses"
	"github.com/campusshelf/campusshelf-backend/api/validators"
	"github.com/campusshelf/campusshelf-backend/internal/chat"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/logger"
	"github.com/campusshelf/campusshelf-backend/pkg/pagination"
)

type openConversationPayload struct {
	BookID string `json:"book_id"`
}

type sendMessagePayload struct {
	Text string `json:"text"`
}

// ChatList is the caller's inbox, most recently active first.
func ChatList(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := currentUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.List(ctx, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, page.Conversations, pagination.MetaFor(params, page.Total))
	}
}

// ChatOpen finds or creates the conversation for a listing.
func ChatOpen(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := currentUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload openConversationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		raw, err := validators.ParsePathUUID(payload.BookID, "book_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		conv, err := svc.Open(ctx, userID, chat.OpenInput{BookID: mustUUID(raw)})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, conv)
	}
}

// ChatMessages pages through one conversation, marking it read.
func ChatMessages(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := currentUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		conversationID, err := pathUUID(r, "conversationId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.Messages(ctx, conversationID, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, page.Messages, pagination.MetaFor(params, page.Total))
	}
}

// ChatSend posts a message into a conversation the caller belongs to.
func ChatSend(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		userID, err := currentUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		conversationID, err := pathUUID(r, "conversationId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload sendMessagePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		message, err := svc.Send(ctx, conversationID, userID, payload.Text)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}
