package errcode

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromResponsePrefersDetailField(t *testing.T) {
	err := FromResponse(http.StatusBadRequest, []byte(`{"detail":"title is required"}`))
	if err.Kind != KindValidation {
		t.Fatalf("expected validation kind, got %s", err.Kind)
	}
	if err.Message != "title is required" {
		t.Fatalf("expected backend detail, got %q", err.Message)
	}
}

func TestFromResponseFallsBackToErrorField(t *testing.T) {
	err := FromResponse(http.StatusConflict, []byte(`{"error":"resume limit reached"}`))
	if err.Kind != KindConflict {
		t.Fatalf("expected conflict kind, got %s", err.Kind)
	}
	if err.Message != "resume limit reached" {
		t.Fatalf("expected backend error text, got %q", err.Message)
	}
}

func TestFromResponseStatusDefaults(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindForbidden},
		{http.StatusNotFound, KindNotFound},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindTransport},
	}
	for _, tc := range cases {
		err := FromResponse(tc.status, nil)
		if err.Kind != tc.kind {
			t.Fatalf("status %d: expected %s, got %s", tc.status, tc.kind, err.Kind)
		}
		if err.Message == "" {
			t.Fatalf("status %d: expected a default message", tc.status)
		}
	}
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	wrapped := fmt.Errorf("load resume: %w", New(KindNotFound, "no such resume"))
	if !errors.Is(wrapped, New(KindNotFound, "")) {
		t.Fatal("expected errors.Is to match by kind")
	}
	if errors.Is(wrapped, New(KindAuth, "")) {
		t.Fatal("did not expect a kind mismatch to match")
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatal("expected Is helper to match by kind")
	}
}

func TestTransportKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Transport(cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to survive unwrapping")
	}
}
