package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := Wrap(ErrExternal, "anthropic", "generate", "request failed", base)
	if !errors.Is(err, ErrExternal) {
		t.Fatalf("expected ErrExternal marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "store", "upsert", "", nil)
	if !errors.Is(err, ErrExternal) {
		t.Fatalf("expected default ErrExternal marker, got %v", err)
	}
}

func TestDegradable(t *testing.T) {
	if !Degradable(Wrap(ErrUnavailable, "anthropic", "generate", "api key missing", nil)) {
		t.Fatal("unavailable errors should be degradable")
	}
	if Degradable(Wrap(ErrNotFound, "store", "get", "", nil)) {
		t.Fatal("not-found errors should not be degradable")
	}
}
