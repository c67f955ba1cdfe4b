package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	chatService "github.com/brightsmile-dental/concierge/backend/internal/service/chat"
	leadService "github.com/brightsmile-dental/concierge/backend/internal/service/lead"
)

func TestRouterStreamUnavailableWithoutAI(t *testing.T) {
	router := NewRouter(chatService.NewService(), nil, leadService.NewService(nil, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/stream/some-session?message=hi", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRouterSessionEndpointWired(t *testing.T) {
	router := NewRouter(chatService.NewService(), nil, leadService.NewService(nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/api/session", bytes.NewReader([]byte(`{"widgetId":"widget-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := NewRouter(chatService.NewService(), nil, leadService.NewService(nil, nil))

	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS header on preflight response")
	}
}
