package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"studentdocs.org/internal/audit"
	"studentdocs.org/internal/auth"
	"studentdocs.org/internal/docs"
	"studentdocs.org/internal/storage"
	"studentdocs.org/internal/upload"
)

type uploadResponse struct {
	Message  string         `json:"message"`
	Document *docs.Document `json:"document"`
}

func (a *API) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := a.registry.ListForOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []docs.Document{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) handleDocumentUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if err := upload.ValidatePDF(file, header.Header.Get("Content-Type"), header.Filename); err != nil {
		if errors.Is(err, upload.ErrUnsupportedMediaType) {
			writeError(w, r, http.StatusBadRequest, "only PDF files are allowed")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	safeName := upload.SanitizeFilename(header.Filename)
	storedName := upload.StoredName(user.ID, time.Now().UTC(), safeName)

	if _, err := a.files.Save(storedName, file); err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to store file")
		return
	}

	doc, err := a.registry.Add(r.Context(), user.ID, safeName, storedName)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to record document")
		return
	}

	_ = audit.LogEvent(r.Context(), "docs.uploaded", map[string]any{
		"document_id": doc.ID,
		"stored_name": doc.StoredName,
	})

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:  "File uploaded successfully",
		Document: doc,
	})
}

func (a *API) handleDocumentDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	fileID := strings.TrimSpace(r.URL.Query().Get("file_id"))
	if fileID == "" {
		writeError(w, r, http.StatusBadRequest, "file_id is required")
		return
	}

	doc, err := a.registry.FetchForDownload(r.Context(), fileID, user.ID, clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, docs.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "file not found")
		case errors.Is(err, docs.ErrForbidden):
			writeError(w, r, http.StatusForbidden, "not authorized to download this file")
		default:
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	f, err := a.files.Open(doc.StoredName)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Metadata row without bytes on disk; treat as absent.
			writeError(w, r, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", upload.MediaTypePDF)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", doc.OriginalName))
	http.ServeContent(w, r, doc.OriginalName, doc.UploadedAt, f)
}
