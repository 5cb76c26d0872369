// Package upload verifies inbound files before acceptance. The declared MIME
// type, the binary signature and the filename extension must all agree with
// the expected content kind; any single check failing rejects the upload.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// MediaTypePDF is the only content kind the portal accepts.
const MediaTypePDF = "application/pdf"

const pdfExtension = ".pdf"

// pdfSignature is the fixed magic header every PDF begins with.
var pdfSignature = []byte("%PDF")

// ErrUnsupportedMediaType indicates at least one content check failed.
var ErrUnsupportedMediaType = errors.New("upload: unsupported media type")

// ValidatePDF checks the declared content type, the leading signature bytes
// and the filename extension. The stream position is restored to the start so
// the same stream can be persisted unmodified.
func ValidatePDF(file io.ReadSeeker, declaredType, declaredName string) error {
	mediaType, _, err := mime.ParseMediaType(declaredType)
	if err != nil || mediaType != MediaTypePDF {
		return ErrUnsupportedMediaType
	}

	header := make([]byte, len(pdfSignature))
	n, readErr := io.ReadFull(file, header)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("upload: rewind stream: %w", err)
	}
	if readErr != nil || n != len(pdfSignature) || !bytes.Equal(header, pdfSignature) {
		return ErrUnsupportedMediaType
	}

	if !strings.EqualFold(filepath.Ext(declaredName), pdfExtension) {
		return ErrUnsupportedMediaType
	}
	return nil
}

// SanitizeFilename strips path components and unsafe characters from a
// client-supplied filename. The result is safe to join onto a storage
// directory: no separators, no parent references, no leading dots.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	safe := b.String()
	for strings.Contains(safe, "..") {
		safe = strings.ReplaceAll(safe, "..", ".")
	}
	safe = strings.TrimLeft(safe, ".-_")
	if safe == "" {
		return "file"
	}
	return safe
}

// StoredName builds the server-chosen on-disk name. Namespacing with the
// owner id and upload timestamp prevents collisions and keeps stored names
// unpredictable from original names alone.
func StoredName(ownerID string, ts time.Time, safeName string) string {
	return fmt.Sprintf("%s_%d_%s", ownerID, ts.Unix(), safeName)
}
