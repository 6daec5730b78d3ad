package domain

import "time"

// Book is one catalog entry. Title and author drive the fuzzy matching; the
// file_* fields are set exactly once, when a reconciliation pass attaches a
// source file to the entry.
type Book struct {
	// ID is the catalog identifier
	ID int64 `json:"id"`

	// Title is the work's title as imported
	Title string `json:"title"`

	// Author is the work's author as imported
	Author string `json:"author"`

	// PublicationYear is optional import metadata
	PublicationYear *int `json:"publication_year,omitempty"`

	// FileURL is the blob-store URL of the attached file ("" when none)
	FileURL string `json:"file_url,omitempty"`

	// FileSizeBytes is the attached file's size
	FileSizeBytes int64 `json:"file_size_bytes,omitempty"`

	// FileFormat is the attached file's extension (".fb2" or ".zip")
	FileFormat string `json:"file_format,omitempty"`

	// SourceFileID is the blob key of the attached file
	SourceFileID string `json:"source_file_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasFile reports whether a file is already attached to this entry.
func (b *Book) HasFile() bool {
	return b.FileURL != ""
}

// FileAttachment carries the fields written to a catalog entry on commit.
type FileAttachment struct {
	URL          string
	SizeBytes    int64
	Format       string
	SourceFileID string
}
