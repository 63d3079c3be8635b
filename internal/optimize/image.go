package optimize

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	// Register decoders for formats imaging does not handle natively.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/homedger-dev/homedger/shared/domain"
	"github.com/homedger-dev/homedger/shared/logger"
)

// DecodeError means the uploaded bytes are not a valid image for the
// declared type. The fallback policy turns it into a passthrough store.
type DecodeError struct {
	MimeType string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s image: %v", e.MimeType, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type ImageOptions struct {
	MaxWidth          int
	MaxHeight         int
	ThumbnailSize     int // square, center-cropped
	JpegQuality       int
	ThumbnailQuality  int
	GenerateThumbnail bool
}

func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		MaxWidth:          1920,
		MaxHeight:         1920,
		ThumbnailSize:     400,
		JpegQuality:       80,
		ThumbnailQuality:  70,
		GenerateThumbnail: true,
	}
}

type ImageOptimizer struct {
	opts ImageOptions
}

func NewImageOptimizer(opts ImageOptions) *ImageOptimizer {
	return &ImageOptimizer{opts: opts}
}

// Optimize decodes, auto-orients, resizes and recompresses an image, and
// derives a square thumbnail. Output dimensions and format are read back
// from the encoded result rather than assumed.
func (o *ImageOptimizer) Optimize(data []byte, mimeType string) (*domain.OptimizationResult, error) {
	// Input format drives the output-format rule below.
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{MimeType: mimeType, Err: err}
	}

	// Orientation metadata must be applied before any resize or the
	// rotation is lost in the re-encoded output.
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{MimeType: mimeType, Err: err}
	}

	bounds := img.Bounds()
	if bounds.Dx() > o.opts.MaxWidth || bounds.Dy() > o.opts.MaxHeight {
		// Fit preserves aspect ratio and never upscales.
		img = imaging.Fit(img, o.opts.MaxWidth, o.opts.MaxHeight, imaging.Lanczos)
	}

	optimized, err := o.encode(img, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode optimized image: %w", err)
	}

	// Read the encoded result back; the encoder may have changed both
	// format and dimensions relative to what we asked for.
	outCfg, outFormat, err := image.DecodeConfig(bytes.NewReader(optimized))
	if err != nil {
		return nil, fmt.Errorf("failed to read back encoded image: %w", err)
	}

	result := &domain.OptimizationResult{
		Data:          optimized,
		OriginalSize:  int64(len(data)),
		OptimizedSize: int64(len(optimized)),
		Format:        outFormat,
		Width:         outCfg.Width,
		Height:        outCfg.Height,
	}

	if o.opts.GenerateThumbnail {
		// Thumbnail failure is never fatal; the attachment simply has none.
		thumb, err := o.thumbnail(img)
		if err != nil {
			logger.Log.Warn("thumbnail generation failed", "error", err)
		} else {
			result.Thumbnail = thumb
			result.ThumbnailSize = int64(len(thumb))
		}
	}

	return result, nil
}

// encode applies the output-format rule: PNG stays PNG at maximum
// compression, everything else becomes JPEG. The corpus stack has no
// WEBP or AVIF encoders, so those inputs also re-encode to JPEG.
func (o *ImageOptimizer) encode(img image.Image, inputFormat string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	if inputFormat == "png" {
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(o.opts.JpegQuality))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// thumbnail center-crops to a fixed square and always encodes JPEG, for
// universal display compatibility regardless of the main output format.
func (o *ImageOptimizer) thumbnail(img image.Image) ([]byte, error) {
	thumb := imaging.Fill(img, o.opts.ThumbnailSize, o.opts.ThumbnailSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(o.opts.ThumbnailQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CompressionRatio returns the whole-percent space saving, for logs and
// metrics only. Negative when the "optimized" bytes grew.
func CompressionRatio(originalSize, optimizedSize int64) int {
	if originalSize == 0 {
		return 0
	}
	return int(math.Round((1 - float64(optimizedSize)/float64(originalSize)) * 100))
}
