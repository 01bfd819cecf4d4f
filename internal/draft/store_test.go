package draft

import (
	"context"
	"testing"

	"aiInterview/internal/errcode"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	layout := []byte(`{"sidebar":[],"main":[{"id":"a","component":"summary","kind":"Summary"}]}`)
	if err := s.Put(ctx, 42, "classic-default", layout); err != nil {
		t.Fatalf("put: %v", err)
	}

	snap, err := s.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snap.TemplateID != "classic-default" {
		t.Fatalf("unexpected template %s", snap.TemplateID)
	}
	if string(snap.Layout) != string(layout) {
		t.Fatalf("layout mismatch:\ngot  %s\nwant %s", snap.Layout, layout)
	}
	if snap.SavedAt.IsZero() {
		t.Fatal("saved_at not set")
	}
}

func TestPutOverwritesExistingSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, 42, "classic-default", []byte(`{"main":[]}`)); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := s.Put(ctx, 42, "sidebar-darkblue", []byte(`{"sidebar":[],"main":[]}`)); err != nil {
		t.Fatalf("second put: %v", err)
	}

	snap, err := s.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if snap.TemplateID != "sidebar-darkblue" {
		t.Fatalf("snapshot not overwritten, template %s", snap.TemplateID)
	}

	snaps, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected a single snapshot per resume, got %d", len(snaps))
	}
}

func TestGetMissingSnapshot(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), 999)
	if !errcode.Is(err, errcode.KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, 1, "classic-default", []byte(`{"main":[]}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Get(ctx, 1); !errcode.Is(err, errcode.KindNotFound) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}
