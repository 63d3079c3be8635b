package service

import (
	"context"
	"time"

	"github.com/homedger-dev/homedger/shared/domain"
)

// BlobStore persists opaque byte artifacts and serves them by URL.
type BlobStore interface {
	// Save stores data under key and returns the public URL for it.
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes a single blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, key string) error

	// List returns metadata for every blob under the given key prefix.
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
}

// BlobInfo is the listing metadata the garbage collector needs.
type BlobInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// AttachmentRepository persists attachment metadata records.
type AttachmentRepository interface {
	CreateAttachment(ctx context.Context, a *domain.Attachment) error
	GetAttachment(ctx context.Context, id domain.AttachmentId) (*domain.Attachment, error)
	ListAttachments(ctx context.Context, assoc domain.Association) ([]*domain.Attachment, error)
	DeleteAttachment(ctx context.Context, id domain.AttachmentId) error

	// AllStorageKeys returns every blob key referenced by any attachment,
	// including thumbnail keys. Used by the blob garbage collector.
	AllStorageKeys(ctx context.Context) ([]string, error)
}
