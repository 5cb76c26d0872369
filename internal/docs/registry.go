// Package docs stores document metadata and enforces owner scoping: listings
// are filtered at the query boundary and single-record fetches compare the
// stored owner against the caller before any content is released.
package docs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"studentdocs.org/internal/audit"
	"studentdocs.org/internal/throttle"
)

// Store persists document metadata. ListByOwner must apply the owner filter
// structurally (in the query), never as a post-filter.
type Store interface {
	Create(ctx context.Context, d *Document) error
	Find(ctx context.Context, id string) (*Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Document, error)
}

// Registry wraps a Store with the ownership rules. Cross-owner probes feed
// the shared failure limiter: an authenticated user guessing foreign document
// ids is an abuse signal, not just a denied request.
type Registry struct {
	store   Store
	limiter *throttle.Limiter
}

func NewRegistry(store Store, limiter *throttle.Limiter) *Registry {
	return &Registry{store: store, limiter: limiter}
}

// Add records a freshly uploaded document. The owner id always comes from the
// authenticated caller, never from client input, and is set exactly once.
// Document ids are random UUIDs so they cannot be guessed or enumerated.
func (r *Registry) Add(ctx context.Context, ownerID, originalName, storedName string) (*Document, error) {
	if ownerID == "" {
		return nil, errors.New("docs: owner is required")
	}
	doc := &Document{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		OriginalName: originalName,
		StoredName:   storedName,
		UploadedAt:   time.Now().UTC(),
	}
	if err := r.store.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListForOwner returns the owner's documents in insertion order.
func (r *Registry) ListForOwner(ctx context.Context, ownerID string) ([]Document, error) {
	if ownerID == "" {
		return nil, errors.New("docs: owner is required")
	}
	return r.store.ListByOwner(ctx, ownerID)
}

// FetchForDownload looks up a document and verifies the requester owns it.
// A missing id yields ErrNotFound; an existing document owned by someone else
// yields ErrForbidden, an audit record and a throttle failure for the client
// address.
func (r *Registry) FetchForDownload(ctx context.Context, docID, requesterID, clientAddr string) (*Document, error) {
	doc, err := r.store.Find(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != requesterID {
		_ = audit.LogEvent(ctx, "docs.download.denied", map[string]any{
			"owner":       doc.OwnerID,
			"requester":   requesterID,
			"document_id": docID,
			"address":     clientAddr,
		})
		r.limiter.RecordFailure(ctx, clientAddr)
		return nil, ErrForbidden
	}
	return doc, nil
}
