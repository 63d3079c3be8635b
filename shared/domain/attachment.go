package domain

import "time"

// Association links an attachment to the entity it was uploaded for.
// The pipeline forwards whichever ids the caller supplied without
// checking referential integrity; that is the owning tables' job.
type Association struct {
	PurchaseId *PurchaseId
	LineItemId *LineItemId
	RoomId     *RoomId
}

// DocumentMetadata is only populated for the house-document upload path.
type DocumentMetadata struct {
	Category    HouseDocumentType
	Title       string
	Description string
	ExpiresAt   *time.Time
}

// Attachment is the persisted record produced by one ingestion.
// FileUrl and ThumbnailUrl point at the optimized artifacts in blob
// storage, never at the original upload. FileSizeBytes is the size of
// the bytes actually stored, which normally is at most the upload size
// but may equal or exceed it when optimization was skipped or degraded.
type Attachment struct {
	Id            AttachmentId
	Association   Association
	FileUrl       string
	ThumbnailUrl  *string
	StorageKey    string  // blob key of the stored artifact, not exposed over the API
	ThumbnailKey  *string // blob key of the thumbnail, when present
	FileName      string
	FileType      FileType
	FileSizeBytes int64
	Document      *DocumentMetadata
	CreatedAt     time.Time
}

// OptimizationResult is the transient outcome of one optimizer run.
// It lives entirely within a single ingestion request.
type OptimizationResult struct {
	Data          []byte
	Thumbnail     []byte // nil when no thumbnail was produced
	OriginalSize  int64
	OptimizedSize int64
	ThumbnailSize int64 // 0 when no thumbnail
	Format        string // encoded output format: "jpeg", "png", "pdf", ...
	Width         int    // 0 for non-image artifacts
	Height        int
}
