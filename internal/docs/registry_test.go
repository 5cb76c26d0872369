package docs

import (
	"context"
	"errors"
	"testing"
	"time"

	"studentdocs.org/internal/throttle"
)

func newTestRegistry() (*Registry, *throttle.Limiter) {
	limiter := throttle.New(10, time.Minute)
	return NewRegistry(NewMemoryStore(), limiter), limiter
}

func TestAddSetsOwnerAndID(t *testing.T) {
	reg, _ := newTestRegistry()
	ctx := context.Background()

	doc, err := reg.Add(ctx, "user-a", "hw1.pdf", "user-a_1_hw1.pdf")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if doc.OwnerID != "user-a" {
		t.Fatalf("owner must come from the caller identity, got %q", doc.OwnerID)
	}
	if len(doc.ID) != 36 {
		t.Fatalf("expected UUID document id, got %q", doc.ID)
	}
	if doc.UploadedAt.IsZero() {
		t.Fatal("expected upload timestamp")
	}

	if _, err := reg.Add(ctx, "", "x.pdf", "x"); err == nil {
		t.Fatal("expected error for missing owner")
	}
}

func TestListForOwnerScoping(t *testing.T) {
	reg, _ := newTestRegistry()
	ctx := context.Background()

	first, _ := reg.Add(ctx, "user-a", "a1.pdf", "s-a1")
	second, _ := reg.Add(ctx, "user-a", "a2.pdf", "s-a2")
	if _, err := reg.Add(ctx, "user-b", "b1.pdf", "s-b1"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	list, err := reg.ListForOwner(ctx, "user-a")
	if err != nil {
		t.Fatalf("ListForOwner: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(list))
	}
	// Insertion order is preserved.
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("unexpected order: %v", list)
	}
	for _, d := range list {
		if d.OwnerID != "user-a" {
			t.Fatalf("foreign document leaked into listing: %+v", d)
		}
	}

	empty, err := reg.ListForOwner(ctx, "user-c")
	if err != nil {
		t.Fatalf("ListForOwner empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %v", empty)
	}
}

func TestFetchForDownloadNotFound(t *testing.T) {
	reg, _ := newTestRegistry()

	_, err := reg.FetchForDownload(context.Background(), "missing-id", "user-a", "192.0.2.1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchForDownloadOwnershipEnforced(t *testing.T) {
	reg, limiter := newTestRegistry()
	ctx := context.Background()

	doc, err := reg.Add(ctx, "user-a", "hw1.pdf", "s-hw1")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// A foreign requester gets Forbidden and the probe counts as abuse.
	_, err = reg.FetchForDownload(ctx, doc.ID, "user-b", "192.0.2.9")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if n := limiter.Failures("192.0.2.9"); n != 1 {
		t.Fatalf("expected ownership probe to record a failure, got %d", n)
	}

	// The owner fetches the same record untouched.
	got, err := reg.FetchForDownload(ctx, doc.ID, "user-a", "192.0.2.9")
	if err != nil {
		t.Fatalf("owner fetch: %v", err)
	}
	if got.StoredName != "s-hw1" {
		t.Fatalf("unexpected document: %+v", got)
	}
}
