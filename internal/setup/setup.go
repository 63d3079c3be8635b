// Package setup initializes and wires all application dependencies.
package setup

import (
	"context"
	"time"

	"github.com/homedger-dev/homedger/internal/convert"
	"github.com/homedger-dev/homedger/internal/handler"
	"github.com/homedger-dev/homedger/internal/optimize"
	"github.com/homedger-dev/homedger/internal/service"
	"github.com/homedger-dev/homedger/internal/storage/pg"
	"github.com/homedger-dev/homedger/internal/storage/s3"
	"github.com/homedger-dev/homedger/shared/config"
	"github.com/homedger-dev/homedger/shared/jwt"
	"github.com/homedger-dev/homedger/shared/logger"
	"github.com/homedger-dev/homedger/shared/middleware"
)

// Dependencies holds all initialized application dependencies.
type Dependencies struct {
	Storage        *pg.Storage
	Blobs          *s3.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	GC             *service.BlobGarbageCollector
}

// SetupDependencies initializes everything the server needs.
func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := s3.New(ctx, cfg.Public.S3, s3.Credentials{
		AccessKey: cfg.Private.S3AccessKey,
		SecretKey: cfg.Private.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}

	images := optimize.NewImageOptimizer(imageOptions(cfg))

	// The PDF optimizer only exists when the external conversion service is
	// configured; without it PDFs take the passthrough path.
	var pdfs *optimize.PdfOptimizer
	if cfg.ConversionConfigured() {
		var clientOpts []convert.Option
		if d := cfg.Public.Pdf.PollInterval.Std(); d > 0 {
			clientOpts = append(clientOpts, convert.WithPollInterval(d))
		}
		client := convert.NewClient(cfg.Private.ConversionBaseURL, cfg.Private.ConversionApiKey, clientOpts...)
		pdfs = optimize.NewPdfOptimizer(client, pdfOptions(cfg))
	} else {
		logger.Log.Info("conversion service not configured, pdf optimization disabled")
	}

	ingestor := service.NewIngestor(blobs, storage, images, pdfs)

	jwtService := jwt.New(cfg.JwtKey(), 24*time.Hour)
	authMw := middleware.NewAuth(jwtService)

	h := handler.New(ingestor, storage, cfg)

	gc := service.NewBlobGarbageCollector(storage, blobs, cfg.Public.BlobGCSafetyAge.Std())

	return &Dependencies{
		Storage:        storage,
		Blobs:          blobs,
		Handler:        h,
		AuthMiddleware: authMw,
		GC:             gc,
	}, nil
}

func imageOptions(cfg *config.Config) optimize.ImageOptions {
	opts := optimize.DefaultImageOptions()
	img := cfg.Public.Image
	if img.MaxWidth > 0 {
		opts.MaxWidth = img.MaxWidth
	}
	if img.MaxHeight > 0 {
		opts.MaxHeight = img.MaxHeight
	}
	if img.ThumbnailSize > 0 {
		opts.ThumbnailSize = img.ThumbnailSize
	}
	if img.JpegQuality > 0 {
		opts.JpegQuality = img.JpegQuality
	}
	if img.ThumbnailQuality > 0 {
		opts.ThumbnailQuality = img.ThumbnailQuality
	}
	return opts
}

func pdfOptions(cfg *config.Config) optimize.PdfOptions {
	opts := optimize.DefaultPdfOptions()
	pdf := cfg.Public.Pdf
	if pdf.SkipThresholdBytes > 0 {
		opts.SkipThresholdBytes = pdf.SkipThresholdBytes
	}
	if pdf.PollBudget > 0 {
		opts.PollBudget = pdf.PollBudget.Std()
	}
	if size := cfg.Public.Image.ThumbnailSize; size > 0 {
		opts.ThumbnailSize = size
	}
	return opts
}
