package driven

import "context"

// BlobInfo describes an existing stored object.
type BlobInfo struct {
	Key         string
	SizeBytes   int64
	ContentType string
	URL         string
}

// BlobStore is the engine's boundary to object storage. Keys are
// deterministic per message (domain.BlobKey), which is what makes the
// existence check in the pipeline meaningful.
type BlobStore interface {
	// Head returns metadata for a stored object.
	// Returns domain.ErrNotFound when the key does not exist.
	Head(ctx context.Context, key string) (*BlobInfo, error)

	// Put stores an object and returns its public URL
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Remove deletes an object; used as compensating cleanup after a
	// failed commit
	Remove(ctx context.Context, key string) error

	// Ping checks if the blob backend is healthy
	Ping(ctx context.Context) error
}
