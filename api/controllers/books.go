package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/campusshelf/campusshelf-backend/api/responses"
	"github.com/campusshelf/campusshelf-backend/api/validators"
	"github.com/campusshelf/campusshelf-backend/internal/listings"
	"github.com/campusshelf/campusshelf-backend/pkg/enums"
	pkgerrors "github.com/campusshelf/campusshelf-backend/pkg/errors"
	"github.com/campusshelf/campusshelf-backend/pkg/logger"
)

type createBookPayload struct {
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ISBN        string          `json:"isbn"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
	Price       decimal.Decimal `json:"price"`
	ImageURLs   []string        `json:"image_urls"`
}

type updateBookPayload struct {
	Title       *string          `json:"title"`
	Author      *string          `json:"author"`
	ISBN        *string          `json:"isbn"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Condition   *string          `json:"condition"`
	Price       *decimal.Decimal `json:"price"`
	ImageURLs   []string         `json:"image_urls"`
}

// BooksList is the public catalogue: approved listings only, filterable and
// sortable.
func BooksList(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filters, err := parseBookFilters(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.List(ctx, filters, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, page.Books, page.Meta(params))
	}
}

// BooksGet returns one listing with its seller summary and related titles.
func BooksGet(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		bookID, err := pathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.Get(ctx, bookID, optionalUserID(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// BooksCreate submits a new listing into the moderation queue.
func BooksCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		userID, err := currentUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createBookPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		book, err := svc.Create(ctx, userID, listings.CreateBookInput{
			Title:       payload.Title,
			Author:      payload.Author,
			ISBN:        payload.ISBN,
			Description: payload.Description,
			Category:    payload.Category,
			Condition:   payload.Condition,
			Price:       payload.Price,
			ImageURLs:   payload.ImageURLs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, book)
	}
}

// BooksUpdate edits a listing; only the seller may edit and only while the
// listing is still pending.
func BooksUpdate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
			return
		}

		userID, err := currentUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		bookID, err := pathUUID(r, "bookId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateBookPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		book, err := svc.Update(ctx, bookID, userID, listings.UpdateBookInput{
			Title:       payload.Title,
			Author:      payload.Author,
			ISBN:        payload.ISBN,
			Description: payload.Description,
			Category:    payload.Category,
			Condition:   payload.Condition,
			Price:       payload.Price,
			ImageURLs:   payload.ImageURLs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, book)
	}
}

// BooksMine lists the caller's own listings across every status.
func BooksMine(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listings service unavailable"))
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

		page, err := svc.MyListings(ctx, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteList(w, page.Books, page.Meta(params))
	}
}

func parseBookFilters(r *http.Request) (listings.ListFilters, error) {
	query := r.URL.Query()
	filters := listings.ListFilters{
		Query:   strings.TrimSpace(query.Get("q")),
		SortBy:  strings.TrimSpace(query.Get("sort_by")),
		SortDir: strings.TrimSpace(query.Get("sort_dir")),
	}

	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		category := enums.BookCategory(raw)
		if !category.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown category")
		}
		filters.Category = &category
	}
	if raw := strings.TrimSpace(query.Get("condition")); raw != "" {
		condition := enums.BookCondition(raw)
		if !condition.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "unknown condition")
		}
		filters.Condition = &condition
	}
	if raw := strings.TrimSpace(query.Get("min_price")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil || value.IsNegative() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "min_price must be a non-negative number")
		}
		filters.MinPrice = &value
	}
	if raw := strings.TrimSpace(query.Get("max_price")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil || value.IsNegative() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "max_price must be a non-negative number")
		}
		filters.MaxPrice = &value
	}
	return filters, nil
}
