package cerr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bueroportal/bueroportal/pkg/storage"
)

func TestIsCode(t *testing.T) {
	err := NewError(NotFound, "task not found", nil)
	wrapped := fmt.Errorf("loading: %w", err)

	if !IsCode(wrapped, NotFound) {
		t.Error("IsCode must unwrap to the coded error")
	}
	if IsCode(wrapped, InvalidArgument) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(errors.New("plain"), NotFound) {
		t.Error("IsCode matched a plain error")
	}
}

func TestWrapStorageReadError(t *testing.T) {
	err := WrapStorageReadError("task", fmt.Errorf("x: %w", storage.ErrNotFound))
	if !IsCode(err, NotFound) {
		t.Errorf("expected NotFound for missing document, got %v", err)
	}
	err = WrapStorageReadError("task", errors.New("disk on fire"))
	if !IsCode(err, Internal) {
		t.Errorf("expected Internal for other failures, got %v", err)
	}
}

func TestMiddlewareRendersStagedResponse(t *testing.T) {
	h := NewJSONResponseChiMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetJSONResponse(r.Context(), map[string]string{"ok": "ja"})
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("unexpected content type %q", got)
	}
	if rec.Body.String() != "{\"ok\":\"ja\"}\n" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestMiddlewareRendersStagedStatus(t *testing.T) {
	h := NewJSONResponseChiMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetJSONResponseStatus(r.Context(), http.StatusCreated, map[string]string{"id": "1"})
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestMiddlewareRendersCodedError(t *testing.T) {
	h := NewJSONResponseChiMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetNewJSONError(r.Context(), FailedPrecondition, "Pflichtfelder fehlen", nil)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusPreconditionFailed {
		t.Errorf("expected 412, got %d", rec.Code)
	}
	want := "{\"code\":\"FailedPrecondition\",\"message\":\"Pflichtfelder fehlen\"}\n"
	if rec.Body.String() != want {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestMiddlewareMasksUnknownErrors(t *testing.T) {
	h := NewJSONResponseChiMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetJSONError(r.Context(), errors.New("secret internals"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if body != "{\"code\":\"Unknown\",\"message\":\"unknown error\"}\n" {
		t.Errorf("unexpected body %q", body)
	}
}
