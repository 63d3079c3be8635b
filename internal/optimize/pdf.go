package optimize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homedger-dev/homedger/internal/convert"
	"github.com/homedger-dev/homedger/shared/domain"
	"github.com/homedger-dev/homedger/shared/logger"
)

// Task names within one conversion job. The two export tasks are the
// second-chance resolution path when extension matching finds nothing.
const (
	taskImport          = "import-file"
	taskOptimize        = "optimize-file"
	taskThumbnail       = "make-thumbnail"
	taskExportFile      = "export-file"
	taskExportThumbnail = "export-thumbnail"
)

// ErrNoPdfArtifact means the finished job exposed no downloadable PDF.
// A missing primary artifact is not recoverable locally.
var ErrNoPdfArtifact = errors.New("conversion job produced no pdf artifact")

// JobClient is the slice of the conversion client the optimizer needs.
type JobClient interface {
	CreateJob(ctx context.Context, tasks map[string]convert.TaskSpec) (*convert.Job, error)
	Upload(ctx context.Context, task *convert.Task, filename string, data []byte) error
	Wait(ctx context.Context, id string) (*convert.Job, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

type PdfOptions struct {
	SkipThresholdBytes int64         // inputs below this skip the external round trip
	PollBudget         time.Duration // overall wall clock for one job
	ThumbnailSize      int
}

func DefaultPdfOptions() PdfOptions {
	return PdfOptions{
		SkipThresholdBytes: 100 * 1024,
		PollBudget:         60 * time.Second,
		ThumbnailSize:      400,
	}
}

type PdfOptimizer struct {
	client JobClient
	opts   PdfOptions
}

func NewPdfOptimizer(client JobClient, opts PdfOptions) *PdfOptimizer {
	return &PdfOptimizer{client: client, opts: opts}
}

// Optimize submits the PDF to the external conversion service as a single
// job of cooperating tasks, waits for a terminal status within the poll
// budget, and downloads the compressed PDF plus a first-page thumbnail.
// Errors are left to the caller's fallback policy; there are no retries.
func (o *PdfOptimizer) Optimize(ctx context.Context, data []byte, filename string) (*domain.OptimizationResult, error) {
	if int64(len(data)) < o.opts.SkipThresholdBytes {
		// Not worth the external round trip; return the input untouched.
		// Format stays empty: a skipped job is a passthrough, not an
		// optimization, and metrics label it as such.
		size := int64(len(data))
		return &domain.OptimizationResult{
			Data:          data,
			OriginalSize:  size,
			OptimizedSize: size,
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.PollBudget)
	defer cancel()

	job, err := o.client.CreateJob(ctx, map[string]convert.TaskSpec{
		taskImport: {
			"operation": "import/upload",
		},
		taskOptimize: {
			"operation":    "optimize",
			"input":        taskImport,
			"input_format": "pdf",
			"profile":      "web", // tuned for on-screen viewing
		},
		taskThumbnail: {
			"operation":     "thumbnail",
			"input":         taskImport,
			"output_format": "jpg",
			"width":         o.opts.ThumbnailSize,
			"height":        o.opts.ThumbnailSize,
			"fit":           "max", // page 1 only, aspect ratio preserved
		},
		taskExportFile: {
			"operation": "export/url",
			"input":     taskOptimize,
		},
		taskExportThumbnail: {
			"operation": "export/url",
			"input":     taskThumbnail,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := o.client.Upload(ctx, job.Task(taskImport), filename, data); err != nil {
		return nil, fmt.Errorf("failed to upload pdf to conversion service: %w", err)
	}

	job, err = o.client.Wait(ctx, job.Id)
	if err != nil {
		return nil, err
	}

	pdfUrl := job.FileUrlByExt(".pdf")
	if pdfUrl == "" {
		pdfUrl = job.FileUrlByTask(taskExportFile)
	}
	if pdfUrl == "" {
		return nil, ErrNoPdfArtifact
	}

	optimized, err := o.client.Download(ctx, pdfUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to download optimized pdf: %w", err)
	}

	result := &domain.OptimizationResult{
		Data:          optimized,
		OriginalSize:  int64(len(data)),
		OptimizedSize: int64(len(optimized)),
		Format:        "pdf",
	}

	// Thumbnail is a secondary artifact; losing it never fails the job.
	thumbUrl := job.FileUrlByExt(".jpg")
	if thumbUrl == "" {
		thumbUrl = job.FileUrlByTask(taskExportThumbnail)
	}
	if thumbUrl == "" {
		logger.Log.Warn("conversion job produced no thumbnail artifact", "jobId", job.Id)
		return result, nil
	}

	thumb, err := o.client.Download(ctx, thumbUrl)
	if err != nil {
		logger.Log.Warn("failed to download pdf thumbnail", "jobId", job.Id, "error", err)
		return result, nil
	}
	result.Thumbnail = thumb
	result.ThumbnailSize = int64(len(thumb))

	return result, nil
}
