package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	cartsvc "github.com/travelia-app/travelia-backend/internal/cart"
	"github.com/travelia-app/travelia-backend/internal/session"
	"github.com/travelia-app/travelia-backend/pkg/travel"
)

type stubCartService struct {
	cartsvc.Service

	calls      int
	lastLineID string
	lastQty    int
}

func (s *stubCartService) SetQuantity(_ context.Context, _ session.Session, lineID string, quantity int) (*cartsvc.View, error) {
	s.calls++
	s.lastLineID = lineID
	s.lastQty = quantity
	return &cartsvc.View{Lines: []travel.CartLine{}, Selected: []string{}}, nil
}

func postQuantity(t *testing.T, svc cartsvc.Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Post("/cart/{cartID}/quantity", CartSetQuantity(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/cart/1/quantity", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCartSetQuantityForwardsZero(t *testing.T) {
	svc := &stubCartService{}

	rec := postQuantity(t, svc, `{"quantity":0}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.calls != 1 {
		t.Fatalf("expected the service called once, got %d", svc.calls)
	}
	if svc.lastLineID != "1" || svc.lastQty != 0 {
		t.Fatalf("expected (1, 0) forwarded for the service to clamp, got (%s, %d)", svc.lastLineID, svc.lastQty)
	}
}

func TestCartSetQuantityForwardsNegative(t *testing.T) {
	svc := &stubCartService{}

	rec := postQuantity(t, svc, `{"quantity":-3}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.calls != 1 || svc.lastQty != -3 {
		t.Fatalf("expected -3 forwarded, got calls=%d qty=%d", svc.calls, svc.lastQty)
	}
}

func TestCartSetQuantityRejectsUnknownFields(t *testing.T) {
	svc := &stubCartService{}

	rec := postQuantity(t, svc, `{"quantity":2,"bogus":true}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown fields, got %d", rec.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("expected the service untouched, got %d calls", svc.calls)
	}
}
