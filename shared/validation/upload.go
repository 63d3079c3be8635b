package validation

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/homedger-dev/homedger/shared/domain"
)

var strict = bluemonday.StrictPolicy()

// SanitizeText strips any markup from user-supplied free text fields
// (document titles and descriptions) before they reach storage.
func SanitizeText(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// ValidateFileType checks the declared upload intent against the closed enum.
func ValidateFileType(raw string) (domain.FileType, error) {
	ft := domain.FileType(raw)
	if !ft.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileType, raw)
	}
	return ft, nil
}

// ValidateHouseDocumentType checks the optional house-document category.
func ValidateHouseDocumentType(raw string) (domain.HouseDocumentType, error) {
	dt := domain.HouseDocumentType(raw)
	if !dt.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentType, raw)
	}
	return dt, nil
}

// ValidateUploadMime checks the detected MIME type against the configured
// allow lists. The optimizer tolerates anything, but interactive uploads
// are restricted to types the product can actually display.
func ValidateUploadMime(mimeType string, imageMimes, documentMimes []string) error {
	if !BuildAllowedMimeMap(imageMimes, documentMimes)[mimeType] {
		return fmt.Errorf("%w: %s", ErrInvalidMimeType, mimeType)
	}
	return nil
}
