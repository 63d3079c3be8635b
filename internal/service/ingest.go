package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/homedger-dev/homedger/internal/optimize"
	"github.com/homedger-dev/homedger/shared/domain"
	"github.com/homedger-dev/homedger/shared/errors"
	"github.com/homedger-dev/homedger/shared/logger"
)

const blobPrefix = "attachments/"

// IngestRequest carries one upload through the pipeline.
type IngestRequest struct {
	Data        []byte
	MimeType    string
	FileName    string
	FileType    domain.FileType
	Association domain.Association
	Document    *domain.DocumentMetadata
}

// Ingestor orchestrates classify -> optimize -> persist for one upload.
// Each call is an independent, stateless unit of work; concurrent
// ingestions share nothing mutable.
type Ingestor struct {
	blobs  BlobStore
	repo   AttachmentRepository
	images *optimize.ImageOptimizer
	pdfs   *optimize.PdfOptimizer // nil when the conversion service is not configured
}

func NewIngestor(blobs BlobStore, repo AttachmentRepository, images *optimize.ImageOptimizer, pdfs *optimize.PdfOptimizer) *Ingestor {
	return &Ingestor{blobs: blobs, repo: repo, images: images, pdfs: pdfs}
}

// Ingest runs the full pipeline and returns the persisted Attachment.
// Every optimization failure degrades to storing the original upload;
// only a failure to persist surfaces as an error.
func (s *Ingestor) Ingest(ctx context.Context, req IngestRequest) (*domain.Attachment, error) {
	// Generated before any network call so storage keys are deterministic
	// per ingestion; concurrent uploads of identical content never collide.
	id := uuid.New().String()

	kind := optimize.Classify(req.MimeType)

	start := time.Now()
	outcome := s.runOptimizer(ctx, kind, req)
	optimizationDuration.WithLabelValues(kind.Kind.String()).Observe(time.Since(start).Seconds())

	ext := outputExtension(kind, outcome, req.FileName)
	fileKey := blobPrefix + id + ext
	fileUrl, err := s.blobs.Save(ctx, fileKey, outcome.Data, contentTypeFor(outcome.Format, req.MimeType))
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment bytes: %w", err)
	}

	var thumbUrl, thumbKey *string
	if outcome.Thumbnail != nil {
		key := blobPrefix + id + "_thumb.jpg"
		url, err := s.blobs.Save(ctx, key, outcome.Thumbnail, "image/jpeg")
		if err != nil {
			// Thumbnail is a secondary artifact; never fail the upload over it.
			logger.Log.Warn("failed to store thumbnail", "attachmentId", id, "error", err)
		} else {
			thumbUrl, thumbKey = &url, &key
		}
	}

	attachment := &domain.Attachment{
		Id:            id,
		Association:   req.Association,
		FileUrl:       fileUrl,
		ThumbnailUrl:  thumbUrl,
		StorageKey:    fileKey,
		ThumbnailKey:  thumbKey,
		FileName:      req.FileName,
		FileType:      req.FileType,
		FileSizeBytes: outcome.OptimizedSize,
		Document:      req.Document,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.CreateAttachment(ctx, attachment); err != nil {
		// Don't leave unreferenced blobs behind; the GC would get them
		// eventually, but cleaning up now is cheap.
		s.discardBlobs(ctx, fileKey, thumbKey)
		return nil, fmt.Errorf("failed to persist attachment record: %w", err)
	}

	s.recordOutcome(kind, outcome)
	logger.Log.Info("ingested attachment",
		"attachmentId", id,
		"kind", kind.Kind.String(),
		"fileName", req.FileName,
		"originalSize", outcome.OriginalSize,
		"storedSize", outcome.OptimizedSize,
		"compressionRatio", optimize.CompressionRatio(outcome.OriginalSize, outcome.OptimizedSize),
		"degraded", outcome.Degraded,
		"thumbnail", outcome.Thumbnail != nil,
	)

	return attachment, nil
}

// runOptimizer picks the optimizer for the classified kind and runs it
// under the fallback policy. PDFs take the passthrough path when the
// conversion capability is off.
func (s *Ingestor) runOptimizer(ctx context.Context, kind optimize.FileKind, req IngestRequest) optimize.Outcome {
	switch kind.Kind {
	case optimize.KindImage:
		return optimize.WithFallback(req.Data, "image", func() (*domain.OptimizationResult, error) {
			return s.images.Optimize(req.Data, req.MimeType)
		})
	case optimize.KindPdf:
		if s.pdfs == nil {
			return optimize.Passthrough(req.Data)
		}
		return optimize.WithFallback(req.Data, "pdf", func() (*domain.OptimizationResult, error) {
			return s.pdfs.Optimize(ctx, req.Data, req.FileName)
		})
	default:
		return optimize.Passthrough(req.Data)
	}
}

func (s *Ingestor) recordOutcome(kind optimize.FileKind, outcome optimize.Outcome) {
	label := "optimized"
	switch {
	case outcome.Degraded:
		label = "degraded"
	case outcome.Format == "":
		label = "passthrough"
	}
	ingestionsTotal.WithLabelValues(kind.Kind.String(), label).Inc()
	if saved := outcome.OriginalSize - outcome.OptimizedSize; saved > 0 {
		optimizationSavedBytes.Observe(float64(saved))
	}
}

func (s *Ingestor) discardBlobs(ctx context.Context, fileKey string, thumbKey *string) {
	if err := s.blobs.Delete(ctx, fileKey); err != nil {
		logger.Log.Warn("failed to discard orphaned blob", "key", fileKey, "error", err)
	}
	if thumbKey != nil {
		if err := s.blobs.Delete(ctx, *thumbKey); err != nil {
			logger.Log.Warn("failed to discard orphaned thumbnail", "key", *thumbKey, "error", err)
		}
	}
}

// GetAttachment returns one attachment record.
func (s *Ingestor) GetAttachment(ctx context.Context, id domain.AttachmentId) (*domain.Attachment, error) {
	return s.repo.GetAttachment(ctx, id)
}

// ListAttachments returns the records matching the given association.
func (s *Ingestor) ListAttachments(ctx context.Context, assoc domain.Association) ([]*domain.Attachment, error) {
	if assoc.PurchaseId == nil && assoc.LineItemId == nil && assoc.RoomId == nil {
		return nil, &errors.ErrorWithStatusCode{Message: "An association id is required", StatusCode: 400}
	}
	return s.repo.ListAttachments(ctx, assoc)
}

// DeleteAttachment removes the record and its blobs.
func (s *Ingestor) DeleteAttachment(ctx context.Context, id domain.AttachmentId) error {
	attachment, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAttachment(ctx, id); err != nil {
		return err
	}
	s.discardBlobs(ctx, attachment.StorageKey, attachment.ThumbnailKey)
	return nil
}

// outputExtension picks the stored file's extension from the encoded result
// for images, .pdf for PDFs, and the original extension otherwise (including
// degraded outcomes, which carry the original bytes).
func outputExtension(kind optimize.FileKind, outcome optimize.Outcome, fileName string) string {
	switch outcome.Format {
	case "jpeg":
		return ".jpg"
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	case "pdf":
		return ".pdf"
	}
	if kind.Kind == optimize.KindPdf {
		return ".pdf"
	}
	return filepath.Ext(fileName)
}

func contentTypeFor(format, declaredMime string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "pdf":
		return "application/pdf"
	}
	return declaredMime
}
