package docs

import "time"

// Document is the metadata record for one uploaded file. Records are
// immutable after creation and are never exposed without owner scoping.
// The owner id stays out of response payloads.
type Document struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"-"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `json:"stored_name"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
