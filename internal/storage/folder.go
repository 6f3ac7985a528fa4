package storage

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fathimasithara01/caseflow/internal/apperr"
)

const (
	DefaultCategory   = "general"
	DefaultEntityType = "general"
)

// mediaSubfolder maps a declared content type onto the fixed storage
// sub-folder layout. Unknown types land in "others".
func mediaSubfolder(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return "images"
	case ct == "application/pdf":
		return "pdfs"
	case ct == "application/msword",
		strings.Contains(ct, "wordprocessingml"):
		return "word"
	case ct == "application/vnd.ms-excel",
		strings.Contains(ct, "spreadsheetml"),
		ct == "text/csv":
		return "spreadsheets"
	case strings.HasPrefix(ct, "text/"):
		return "text"
	default:
		return "others"
	}
}

// DeriveFolder computes the object-store folder for an upload. The layout is
// stable and shared with other consumers of the bucket, so it must not change:
// tenants/{tenant}/{category}/{entityType}/{images|pdfs|word|spreadsheets|text|others}
func DeriveFolder(tenantID, contentType, category, entityType string) (string, error) {
	if strings.TrimSpace(tenantID) == "" {
		return "", apperr.Validation("firm id is required for uploads")
	}
	if category == "" {
		category = DefaultCategory
	}
	if entityType == "" {
		entityType = DefaultEntityType
	}
	return fmt.Sprintf("tenants/%s/%s/%s/%s", tenantID, category, entityType, mediaSubfolder(contentType)), nil
}

// CleanFileName builds a collision-resistant object name from a user-supplied
// filename: {unixMillis}_{6-byte-hex}_{sanitized stem}{.ext}. User input never
// reaches the storage path unsanitized.
func CleanFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	stem := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	stem = sanitizeStem(stem)
	if stem == "" {
		stem = "file"
	}

	id := uuid.New()
	suffix := hex.EncodeToString(id[:6])

	return fmt.Sprintf("%d_%s_%s%s", time.Now().UnixMilli(), suffix, stem, ext)
}

func sanitizeStem(stem string) string {
	var b strings.Builder
	lastUnderscore := true // collapse leading separators too
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
