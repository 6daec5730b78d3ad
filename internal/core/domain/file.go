package domain

import (
	"fmt"
	"strings"
)

// RawFile is one file-bearing message as reported by the message source.
// Immutable; identified by MessageID, unique within its channel.
type RawFile struct {
	// MessageID is the source message identifier
	MessageID int64 `json:"message_id"`

	// FileName is the human-readable name attached to the media
	FileName string `json:"file_name"`

	// MimeType is the source-reported MIME type (may be empty or wrong)
	MimeType string `json:"mime_type,omitempty"`

	// SizeBytes is the source-reported size (0 when unknown)
	SizeBytes int64 `json:"size_bytes,omitempty"`
}

// FileFormat is an accepted file extension.
type FileFormat string

const (
	FormatFB2 FileFormat = ".fb2"
	FormatZip FileFormat = ".zip"
)

// MimeType returns the content type stored alongside the blob.
func (f FileFormat) MimeType() string {
	switch f {
	case FormatFB2:
		return "application/fb2+xml"
	case FormatZip:
		return "application/zip"
	default:
		return ""
	}
}

// FormatFor classifies a filename into an accepted format. Only .fb2 and
// .zip (including .fb2.zip, which is a zip) are processable; everything else
// reports false.
func FormatFor(fileName string) (FileFormat, bool) {
	lower := strings.ToLower(strings.TrimSpace(fileName))
	switch {
	case strings.HasSuffix(lower, ".fb2.zip"), strings.HasSuffix(lower, ".zip"):
		return FormatZip, true
	case strings.HasSuffix(lower, ".fb2"):
		return FormatFB2, true
	default:
		return "", false
	}
}

// BlobKey derives the deterministic storage key for a message's file.
func BlobKey(messageID int64, format FileFormat) string {
	return fmt.Sprintf("%d%s", messageID, format)
}

// technicalMarkers flag auxiliary assets (thumbnails, covers, previews)
// posted alongside primary content.
var technicalMarkers = []string{"thumb", "cover", "preview", "poster"}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// IsTechnicalName reports whether a filename matches a known auxiliary-asset
// pattern. Technical files are skipped before any catalog query is issued.
func IsTechnicalName(fileName string) bool {
	lower := strings.ToLower(strings.TrimSpace(fileName))
	if lower == "" {
		return true
	}
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	for _, marker := range technicalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
