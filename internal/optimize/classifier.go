package optimize

import "strings"

// Kind is the closed set of pipeline routes for an upload.
type Kind int

const (
	// KindOther takes the passthrough path: stored as-is, no optimizer.
	KindOther Kind = iota
	KindImage
	KindPdf
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPdf:
		return "pdf"
	default:
		return "other"
	}
}

// FileKind is the classifier's tagged output. ImageSubtype is only set for
// KindImage (e.g. "jpeg", "png").
type FileKind struct {
	Kind         Kind
	ImageSubtype string
}

// Classify routes a declared MIME type to an optimizer. Any image/* except
// SVG is an image; application/pdf is a pdf; everything else, including
// unknown types, falls through to passthrough. Never fails.
func Classify(mimeType string) FileKind {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	if subtype, ok := strings.CutPrefix(mimeType, "image/"); ok && mimeType != "image/svg+xml" {
		return FileKind{Kind: KindImage, ImageSubtype: subtype}
	}
	if mimeType == "application/pdf" {
		return FileKind{Kind: KindPdf}
	}
	return FileKind{Kind: KindOther}
}
