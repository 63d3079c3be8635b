package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homedger-dev/homedger/internal/service"
	"github.com/homedger-dev/homedger/shared/api"
	"github.com/homedger-dev/homedger/shared/domain"
	"github.com/homedger-dev/homedger/shared/utils"
	"github.com/homedger-dev/homedger/shared/validation"
)

// CreateAttachment ingests one uploaded file and returns the persisted
// attachment record. Optimization failures degrade silently; the response
// is 200 even when the original bytes were stored as-is.
func (h *Handler) CreateAttachment(w http.ResponseWriter, r *http.Request) {
	maxRequestSize := validation.CalculateMaxRequestSize(h.cfg.Public.MaxUploadSizeBytes, 1<<20)
	if err := validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		if errors.Is(err, validation.ErrPayloadTooLarge) {
			maxSizeMB := validation.FormatSizeMB(h.cfg.Public.MaxUploadSizeBytes)
			http.Error(w, fmt.Sprintf("Upload exceeds the limit of %.0f MB", maxSizeMB), http.StatusBadRequest)
			return
		}
		http.Error(w, "Malformed multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, validation.ErrMissingFile.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	body := api.CreateAttachmentRequest{
		FileType:          r.FormValue("fileType"),
		HouseDocumentType: r.FormValue("houseDocumentType"),
		DocumentTitle:     r.FormValue("documentTitle"),
		DocumentDesc:      r.FormValue("documentDescription"),
		ExpiresAt:         r.FormValue("expiresAt"),
	}
	for _, assoc := range []struct {
		field string
		dst   **int64
	}{
		{"purchaseId", &body.PurchaseId},
		{"lineItemId", &body.LineItemId},
		{"roomId", &body.RoomId},
	} {
		if raw := r.FormValue(assoc.field); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid %s: must be an integer", assoc.field), http.StatusBadRequest)
				return
			}
			*assoc.dst = &id
		}
	}

	if err := utils.ValidateStruct(&body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	fileType, err := validation.ValidateFileType(body.FileType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := buildDocumentMetadata(&body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mimeType, err := validation.DetectMimeType(header)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateUploadMime(mimeType,
		h.cfg.Public.AllowedImageMimeTypes, h.cfg.Public.AllowedDocumentMimeTypes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
		return
	}

	req := service.IngestRequest{
		Data:     data,
		MimeType: mimeType,
		FileName: header.Filename,
		FileType: fileType,
		Association: domain.Association{
			PurchaseId: body.PurchaseId,
			LineItemId: body.LineItemId,
			RoomId:     body.RoomId,
		},
		Document: doc,
	}

	attachment, err := h.ingestor.Ingest(r.Context(), req)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.NewAttachmentResponse(attachment))
}

// buildDocumentMetadata assembles the optional house-document fields.
// Returns nil unless the upload declared a document category.
func buildDocumentMetadata(body *api.CreateAttachmentRequest) (*domain.DocumentMetadata, error) {
	if body.HouseDocumentType == "" {
		return nil, nil
	}

	category, err := validation.ValidateHouseDocumentType(body.HouseDocumentType)
	if err != nil {
		return nil, err
	}

	doc := &domain.DocumentMetadata{
		Category:    category,
		Title:       validation.SanitizeText(body.DocumentTitle),
		Description: validation.SanitizeText(body.DocumentDesc),
	}
	if body.ExpiresAt != "" {
		// Format already validated by the datetime tag.
		if t, err := time.Parse("2006-01-02", body.ExpiresAt); err == nil {
			doc.ExpiresAt = &t
		}
	}
	return doc, nil
}

func (h *Handler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attachment")

	attachment, err := h.ingestor.GetAttachment(r.Context(), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.NewAttachmentResponse(attachment))
}

func (h *Handler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	var assoc domain.Association
	for _, q := range []struct {
		param string
		dst   **int64
	}{
		{"purchaseId", &assoc.PurchaseId},
		{"lineItemId", &assoc.LineItemId},
		{"roomId", &assoc.RoomId},
	} {
		if raw := r.URL.Query().Get(q.param); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid %s: must be an integer", q.param), http.StatusBadRequest)
				return
			}
			*q.dst = &id
		}
	}

	attachments, err := h.ingestor.ListAttachments(r.Context(), assoc)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := api.AttachmentListResponse{Attachments: make([]api.AttachmentResponse, len(attachments))}
	for i, a := range attachments {
		response.Attachments[i] = api.NewAttachmentResponse(a)
	}
	writeJSON(w, response)
}

func (h *Handler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attachment")

	if err := h.ingestor.DeleteAttachment(r.Context(), id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
