package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestFromErrorPassesThroughAppError(t *testing.T) {
	err := NewBadRequest("title is required")

	got := FromError(err)
	if got.Code != "BAD_REQUEST" {
		t.Fatalf("expected BAD_REQUEST, got %s", got.Code)
	}
	if got.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", got.StatusCode)
	}
	if got.Message != "title is required" {
		t.Fatalf("unexpected message: %s", got.Message)
	}
}

func TestFromErrorWrapsGenericError(t *testing.T) {
	raw := errors.New("boom")

	got := FromError(raw)
	if got.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", got.Code)
	}
	if !errors.Is(got, raw) {
		t.Fatal("expected wrapped error to match errors.Is")
	}
}

func TestFromErrorNil(t *testing.T) {
	if FromError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestWithInternalKeepsOriginal(t *testing.T) {
	raw := errors.New("db down")
	err := ErrNotFound.WithInternal(raw)

	if err.Code != ErrNotFound.Code {
		t.Fatalf("expected NOT_FOUND, got %s", err.Code)
	}
	if ErrNotFound.Internal != nil {
		t.Fatal("expected shared sentinel to remain untouched")
	}
	if !errors.Is(err, raw) {
		t.Fatal("expected internal error to unwrap")
	}
}

func TestNewConflict(t *testing.T) {
	err := NewConflict("category name already in use")
	if err.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", err.StatusCode)
	}
}
