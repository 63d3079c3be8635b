package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		mimeType    string
		wantKind    Kind
		wantSubtype string
	}{
		{"jpeg", "image/jpeg", KindImage, "jpeg"},
		{"png", "image/png", KindImage, "png"},
		{"webp", "image/webp", KindImage, "webp"},
		{"heic", "image/heic", KindImage, "heic"},
		{"svg is not optimized", "image/svg+xml", KindOther, ""},
		{"pdf", "application/pdf", KindPdf, ""},
		{"word document", "application/msword", KindOther, ""},
		{"unknown type", "application/octet-stream", KindOther, ""},
		{"empty", "", KindOther, ""},
		{"case insensitive", "IMAGE/JPEG", KindImage, "jpeg"},
		{"surrounding whitespace", " application/pdf ", KindPdf, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.mimeType)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantSubtype, got.ImageSubtype)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, "pdf", KindPdf.String())
	assert.Equal(t, "other", KindOther.String())
}
