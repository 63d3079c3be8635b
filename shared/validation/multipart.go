package validation

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// ValidateAndParseMultipart validates request size and parses the multipart form.
// MaxBytesReader is the security boundary: it stops reading once the limit is
// exceeded, so an oversized upload cannot exhaust server resources no matter
// what Content-Length claims.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: request body exceeds %d bytes", ErrPayloadTooLarge, maxSize)
		}
		return fmt.Errorf("failed to parse multipart form: %w", err)
	}

	return nil
}

// CalculateMaxRequestSize returns the maximum request size including overhead
// buffer for form fields and multipart framing.
func CalculateMaxRequestSize(maxFileSize int64, bufferSize int64) int64 {
	return maxFileSize + bufferSize
}

// FormatSizeMB converts bytes to megabytes for user-facing error messages.
func FormatSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

// DetectMimeType resolves the MIME type of an uploaded file, preferring the
// declared Content-Type and falling back to the filename extension when the
// declaration is missing or generic.
func DetectMimeType(fileHeader *multipart.FileHeader) (string, error) {
	mimeType := fileHeader.Header.Get("Content-Type")

	if mimeType == "" || mimeType == "application/octet-stream" {
		ext := filepath.Ext(fileHeader.Filename)
		if detected := mime.TypeByExtension(ext); detected != "" {
			mimeType = detected
		}
	}

	if mimeType == "" {
		return "", fmt.Errorf("could not detect MIME type for file: %s", fileHeader.Filename)
	}

	// Strip parameters like "; charset=binary" so classification sees a bare type.
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}

	return mimeType, nil
}

// BuildAllowedMimeMap merges the configured image and document MIME lists.
func BuildAllowedMimeMap(imageMimes, documentMimes []string) map[string]bool {
	allowed := make(map[string]bool)
	for _, m := range imageMimes {
		allowed[m] = true
	}
	for _, m := range documentMimes {
		allowed[m] = true
	}
	return allowed
}
