package validation

import "errors"

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrInvalidMimeType is returned when an uploaded file has a disallowed MIME type
var ErrInvalidMimeType = errors.New("invalid MIME type")

// ErrMissingFile is returned when the multipart form has no file part
var ErrMissingFile = errors.New("missing file")

// ErrInvalidFileType is returned when the declared fileType enum value is unknown
var ErrInvalidFileType = errors.New("invalid file type")

// ErrInvalidDocumentType is returned when the houseDocumentType enum value is unknown
var ErrInvalidDocumentType = errors.New("invalid house document type")
