package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/homedger-dev/homedger/shared/domain"
	internal_errors "github.com/homedger-dev/homedger/shared/errors"
)

func (s *Storage) CreateAttachment(ctx context.Context, a *domain.Attachment) error {
	var docCategory, docTitle, docDescription sql.NullString
	var docExpiresAt sql.NullTime
	if a.Document != nil {
		docCategory = sql.NullString{String: string(a.Document.Category), Valid: true}
		docTitle = sql.NullString{String: a.Document.Title, Valid: a.Document.Title != ""}
		docDescription = sql.NullString{String: a.Document.Description, Valid: a.Document.Description != ""}
		if a.Document.ExpiresAt != nil {
			docExpiresAt = sql.NullTime{Time: *a.Document.ExpiresAt, Valid: true}
		}
	}

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO attachments(
		id, purchase_id, line_item_id, room_id,
		file_url, thumbnail_url, storage_key, thumbnail_key,
		file_name, file_type, file_size_bytes,
		document_category, document_title, document_description, document_expires_at,
		created_at)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		a.Id, a.Association.PurchaseId, a.Association.LineItemId, a.Association.RoomId,
		a.FileUrl, a.ThumbnailUrl, a.StorageKey, a.ThumbnailKey,
		a.FileName, string(a.FileType), a.FileSizeBytes,
		docCategory, docTitle, docDescription, docExpiresAt,
		a.CreatedAt)
	return err
}

const attachmentColumns = `
	id, purchase_id, line_item_id, room_id,
	file_url, thumbnail_url, storage_key, thumbnail_key,
	file_name, file_type, file_size_bytes,
	document_category, document_title, document_description, document_expires_at,
	created_at`

func scanAttachment(row interface{ Scan(...any) error }) (*domain.Attachment, error) {
	var a domain.Attachment
	var fileType string
	var docCategory, docTitle, docDescription sql.NullString
	var docExpiresAt sql.NullTime

	err := row.Scan(
		&a.Id, &a.Association.PurchaseId, &a.Association.LineItemId, &a.Association.RoomId,
		&a.FileUrl, &a.ThumbnailUrl, &a.StorageKey, &a.ThumbnailKey,
		&a.FileName, &fileType, &a.FileSizeBytes,
		&docCategory, &docTitle, &docDescription, &docExpiresAt,
		&a.CreatedAt)
	if err != nil {
		return nil, err
	}

	a.FileType = domain.FileType(fileType)
	if docCategory.Valid {
		doc := &domain.DocumentMetadata{
			Category:    domain.HouseDocumentType(docCategory.String),
			Title:       docTitle.String,
			Description: docDescription.String,
		}
		if docExpiresAt.Valid {
			t := docExpiresAt.Time
			doc.ExpiresAt = &t
		}
		a.Document = doc
	}

	return &a, nil
}

func (s *Storage) GetAttachment(ctx context.Context, id domain.AttachmentId) (*domain.Attachment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+attachmentColumns+` FROM attachments WHERE id = $1`, id)

	a, err := scanAttachment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal_errors.NotFound("Attachment not found")
		}
		return nil, err
	}
	return a, nil
}

// ListAttachments returns records matching any supplied association id.
// Ordering between attachments of the same parent is by creation time for
// display stability only; callers must not rely on it.
func (s *Storage) ListAttachments(ctx context.Context, assoc domain.Association) ([]*domain.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT`+attachmentColumns+`
	FROM attachments
	WHERE ($1::bigint IS NOT NULL AND purchase_id = $1)
	   OR ($2::bigint IS NOT NULL AND line_item_id = $2)
	   OR ($3::bigint IS NOT NULL AND room_id = $3)
	ORDER BY created_at, id`,
		assoc.PurchaseId, assoc.LineItemId, assoc.RoomId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*domain.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (s *Storage) DeleteAttachment(ctx context.Context, id domain.AttachmentId) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return internal_errors.NotFound("Attachment not found")
	}
	return nil
}

// AllStorageKeys returns every blob key any attachment references,
// thumbnails included. Used by the blob garbage collector.
func (s *Storage) AllStorageKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT storage_key, thumbnail_key FROM attachments`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var storageKey string
		var thumbnailKey sql.NullString
		if err := rows.Scan(&storageKey, &thumbnailKey); err != nil {
			return nil, err
		}
		keys = append(keys, storageKey)
		if thumbnailKey.Valid {
			keys = append(keys, thumbnailKey.String)
		}
	}
	return keys, rows.Err()
}

// Ping verifies database connectivity for readiness probes.
func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}
