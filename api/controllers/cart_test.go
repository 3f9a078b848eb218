package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/campusshelf/campusshelf-backend/api/middleware"
	"github.com/campusshelf/campusshelf-backend/internal/cart"
	"github.com/campusshelf/campusshelf-backend/pkg/db/models"
)

type stubCartService struct {
	lastQuantity int
	line         *models.CartItem
	err          error
}

func (s *stubCartService) Add(ctx context.Context, userID, bookID uuid.UUID, quantity int) (*models.CartItem, error) {
	s.lastQuantity = quantity
	return s.line, s.err
}

func (s *stubCartService) SetQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*models.CartItem, error) {
	return s.line, s.err
}

func (s *stubCartService) Remove(ctx context.Context, userID, lineID uuid.UUID) error {
	return s.err
}

func (s *stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.err
}

func (s *stubCartService) GetView(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	return &cart.View{}, s.err
}

func authedCartRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart", strings.NewReader(body))
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func TestCartAddAcceptsQuantity(t *testing.T) {
	svc := &stubCartService{line: &models.CartItem{ID: uuid.New(), Quantity: 2}}
	handler := CartAdd(svc, nil)

	req := authedCartRequest(`{"book_id":"` + uuid.NewString() + `","quantity":2}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastQuantity != 2 {
		t.Fatalf("expected quantity 2 to reach the service got %d", svc.lastQuantity)
	}
}

func TestCartAddDefaultsQuantityToOne(t *testing.T) {
	svc := &stubCartService{line: &models.CartItem{ID: uuid.New(), Quantity: 1}}
	handler := CartAdd(svc, nil)

	req := authedCartRequest(`{"book_id":"` + uuid.NewString() + `"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.lastQuantity != 1 {
		t.Fatalf("expected default quantity 1 got %d", svc.lastQuantity)
	}
}

func TestCartAddRejectsMalformedBookID(t *testing.T) {
	handler := CartAdd(&stubCartService{}, nil)

	req := authedCartRequest(`{"book_id":"nope"}`)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
