package api

import (
	"time"

	"github.com/homedger-dev/homedger/shared/domain"
)

// CreateAttachmentRequest is populated from the multipart form fields of an
// upload. The file part itself is handled separately by the handler; enum
// values are checked against the domain types, not duplicated in tags.
type CreateAttachmentRequest struct {
	FileType          string `validate:"required"`
	PurchaseId        *int64
	LineItemId        *int64
	RoomId            *int64
	HouseDocumentType string
	DocumentTitle     string
	DocumentDesc      string
	ExpiresAt         string `validate:"omitempty,datetime=2006-01-02"`
}

type DocumentMetadataResponse struct {
	Category    string     `json:"category"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type AttachmentResponse struct {
	Id            string                    `json:"id"`
	PurchaseId    *int64                    `json:"purchase_id,omitempty"`
	LineItemId    *int64                    `json:"line_item_id,omitempty"`
	RoomId        *int64                    `json:"room_id,omitempty"`
	FileUrl       string                    `json:"file_url"`
	ThumbnailUrl  *string                   `json:"thumbnail_url,omitempty"`
	FileName      string                    `json:"file_name"`
	FileType      string                    `json:"file_type"`
	FileSizeBytes int64                     `json:"file_size_bytes"`
	Document      *DocumentMetadataResponse `json:"document,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

type AttachmentListResponse struct {
	Attachments []AttachmentResponse `json:"attachments"`
}

func NewAttachmentResponse(a *domain.Attachment) AttachmentResponse {
	resp := AttachmentResponse{
		Id:            a.Id,
		PurchaseId:    a.Association.PurchaseId,
		LineItemId:    a.Association.LineItemId,
		RoomId:        a.Association.RoomId,
		FileUrl:       a.FileUrl,
		ThumbnailUrl:  a.ThumbnailUrl,
		FileName:      a.FileName,
		FileType:      string(a.FileType),
		FileSizeBytes: a.FileSizeBytes,
		CreatedAt:     a.CreatedAt,
	}
	if a.Document != nil {
		resp.Document = &DocumentMetadataResponse{
			Category:    string(a.Document.Category),
			Title:       a.Document.Title,
			Description: a.Document.Description,
			ExpiresAt:   a.Document.ExpiresAt,
		}
	}
	return resp
}
