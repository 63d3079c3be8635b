package optimize

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homedger-dev/homedger/internal/convert"
)

type mockJobClient struct {
	createJobFunc func(ctx context.Context, tasks map[string]convert.TaskSpec) (*convert.Job, error)
	uploadFunc    func(ctx context.Context, task *convert.Task, filename string, data []byte) error
	waitFunc      func(ctx context.Context, id string) (*convert.Job, error)
	downloadFunc  func(ctx context.Context, url string) ([]byte, error)

	createJobCalls int
	uploadCalls    int
	waitCalls      int
	downloadCalls  []string
}

func (m *mockJobClient) CreateJob(ctx context.Context, tasks map[string]convert.TaskSpec) (*convert.Job, error) {
	m.createJobCalls++
	return m.createJobFunc(ctx, tasks)
}

func (m *mockJobClient) Upload(ctx context.Context, task *convert.Task, filename string, data []byte) error {
	m.uploadCalls++
	return m.uploadFunc(ctx, task, filename, data)
}

func (m *mockJobClient) Wait(ctx context.Context, id string) (*convert.Job, error) {
	m.waitCalls++
	return m.waitFunc(ctx, id)
}

func (m *mockJobClient) Download(ctx context.Context, url string) ([]byte, error) {
	m.downloadCalls = append(m.downloadCalls, url)
	return m.downloadFunc(ctx, url)
}

// largePdf returns a payload above the default skip threshold.
func largePdf() []byte {
	data := make([]byte, 200*1024)
	copy(data, "%PDF-1.7")
	return data
}

func pendingJob() *convert.Job {
	return &convert.Job{
		Id:     "job-1",
		Status: convert.StatusWaiting,
		Tasks: []convert.Task{
			{Name: "import-file", Result: &convert.TaskResult{Form: &convert.UploadForm{Url: "https://upload.example/form"}}},
		},
	}
}

func finishedJob(files map[string][]convert.ResultFile) *convert.Job {
	job := &convert.Job{Id: "job-1", Status: convert.StatusFinished}
	for name, fs := range files {
		job.Tasks = append(job.Tasks, convert.Task{
			Name:   name,
			Status: convert.StatusFinished,
			Result: &convert.TaskResult{Files: fs},
		})
	}
	return job
}

func TestPdfOptimizer_SkipThreshold(t *testing.T) {
	client := &mockJobClient{}
	o := NewPdfOptimizer(client, DefaultPdfOptions())

	data := []byte("%PDF-1.7 tiny receipt")
	res, err := o.Optimize(context.Background(), data, "receipt.pdf")
	require.NoError(t, err)

	assert.True(t, bytes.Equal(data, res.Data), "below-threshold pdf must pass through bit for bit")
	assert.Nil(t, res.Thumbnail)
	assert.Empty(t, res.Format, "a skipped job is a passthrough, not an optimization")
	assert.Equal(t, int64(len(data)), res.OriginalSize)
	assert.Equal(t, res.OriginalSize, res.OptimizedSize)
	assert.Zero(t, client.createJobCalls, "external service must not be contacted")
}

func TestPdfOptimizer_Success(t *testing.T) {
	optimized := []byte("%PDF-1.7 compressed")
	thumb := []byte("\xff\xd8jpeg bytes")

	client := &mockJobClient{
		createJobFunc: func(ctx context.Context, tasks map[string]convert.TaskSpec) (*convert.Job, error) {
			assert.Len(t, tasks, 5)
			assert.Contains(t, tasks, "import-file")
			assert.Contains(t, tasks, "optimize-file")
			assert.Contains(t, tasks, "make-thumbnail")
			return pendingJob(), nil
		},
		uploadFunc: func(ctx context.Context, task *convert.Task, filename string, data []byte) error {
			require.NotNil(t, task)
			assert.Equal(t, "import-file", task.Name)
			assert.Equal(t, "invoice.pdf", filename)
			return nil
		},
		waitFunc: func(ctx context.Context, id string) (*convert.Job, error) {
			assert.Equal(t, "job-1", id)
			return finishedJob(map[string][]convert.ResultFile{
				"export-file":      {{Filename: "invoice.pdf", Url: "https://dl.example/invoice.pdf"}},
				"export-thumbnail": {{Filename: "invoice.jpg", Url: "https://dl.example/invoice.jpg"}},
			}), nil
		},
		downloadFunc: func(ctx context.Context, url string) ([]byte, error) {
			if url == "https://dl.example/invoice.pdf" {
				return optimized, nil
			}
			return thumb, nil
		},
	}

	o := NewPdfOptimizer(client, DefaultPdfOptions())
	res, err := o.Optimize(context.Background(), largePdf(), "invoice.pdf")
	require.NoError(t, err)

	assert.Equal(t, optimized, res.Data)
	assert.Equal(t, thumb, res.Thumbnail)
	assert.Equal(t, int64(len(optimized)), res.OptimizedSize)
	assert.Equal(t, int64(len(thumb)), res.ThumbnailSize)
	assert.Equal(t, "pdf", res.Format)
	assert.Equal(t, 1, client.uploadCalls)
	assert.Len(t, client.downloadCalls, 2)
}

func TestPdfOptimizer_NamedTaskFallback(t *testing.T) {
	// Artifact filenames carry no recognizable extensions, so resolution
	// has to fall back to the export task names.
	client := &mockJobClient{
		createJobFunc: func(ctx context.Context, tasks map[string]convert.TaskSpec) (*convert.Job, error) {
			return pendingJob(), nil
		},
		uploadFunc: func(ctx context.Context, task *convert.Task, filename string, data []byte) error { return nil },
		waitFunc: func(ctx context.Context, id string) (*convert.Job, error) {
			return finishedJob(map[string][]convert.ResultFile{
				"export-file":      {{Filename: "artifact-a", Url: "https://dl.example/a"}},
				"export-thumbnail": {{Filename: "artifact-b", Url: "https://dl.example/b"}},
			}), nil
		},
		downloadFunc: func(ctx context.Context, url string) ([]byte, error) {
			return []byte("payload:" + url), nil
		},
	}

	o := NewPdfOptimizer(client, DefaultPdfOptions())
	res, err := o.Optimize(context.Background(), largePdf(), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, []byte("payload:https://dl.example/a"), res.Data)
	assert.Equal(t, []byte("payload:https://dl.example/b"), res.Thumbnail)
}

func TestPdfOptimizer_NoPdfArtifact(t *testing.T) {
	client := &mockJobClient{
		createJobFunc: func(ctx context.Context, tasks map[string]convert.TaskSpec) (*convert.Job, error) {
			return pendingJob(), nil
		},
		uploadFunc: func(ctx context.Context, task *convert.Task, filename string, data []byte) error { return nil },
		waitFunc: func(ctx context.Context, id string) (*convert.Job, error) {
			return finishedJob(nil), nil
		},
	}

	o := NewPdfOptimizer(client, DefaultPdfOptions())
	_, err := o.Optimize(context.Background(), largePdf(), "doc.pdf")
	assert.ErrorIs(t, err, ErrNoPdfArtifact)
}

func TestPdfOptimizer_JobFailed(t *testing.T) {
	client := &mockJobClient{
		createJobFunc: func(ctx context.Context, tasks map[string]convert.TaskSpec) (*convert.Job, error) {
			return pendingJob(), nil
		},
		uploadFunc: func(ctx context.Context, task *convert.Task, filename string, data []byte) error { return nil },
		waitFunc: func(ctx context.Context, id string) (*convert.Job, error) {
			return nil, convert.ErrJobFailed
		},
	}

	o := NewPdfOptimizer(client, DefaultPdfOptions())
	_, err := o.Optimize(context.Background(), largePdf(), "doc.pdf")
	assert.ErrorIs(t, err, convert.ErrJobFailed)
}

func TestPdfOptimizer_ThumbnailFailureIsNotFatal(t *testing.T) {
	t.Run("thumbnail download error", func(t *testing.T) {
		client := &mockJobClient{
			createJobFunc: func(ctx context.Context, tasks map[string]convert.TaskSpec) (*convert.Job, error) {
				return pendingJob(), nil
			},
			uploadFunc: func(ctx context.Context, task *convert.Task, filename string, data []byte) error { return nil },
			waitFunc: func(ctx context.Context, id string) (*convert.Job, error) {
				return finishedJob(map[string][]convert.ResultFile{
					"export-file":      {{Filename: "doc.pdf", Url: "https://dl.example/doc.pdf"}},
					"export-thumbnail": {{Filename: "doc.jpg", Url: "https://dl.example/doc.jpg"}},
				}), nil
			},
			downloadFunc: func(ctx context.Context, url string) ([]byte, error) {
				if url == "https://dl.example/doc.jpg" {
					return nil, errors.New("network blip")
				}
				return []byte("compressed"), nil
			},
		}

		o := NewPdfOptimizer(client, DefaultPdfOptions())
		res, err := o.Optimize(context.Background(), largePdf(), "doc.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("compressed"), res.Data)
		assert.Nil(t, res.Thumbnail)
	})

	t.Run("missing thumbnail artifact", func(t *testing.T) {
		client := &mockJobClient{
			createJobFunc: func(ctx context.Context, tasks map[string]convert.TaskSpec) (*convert.Job, error) {
				return pendingJob(), nil
			},
			uploadFunc: func(ctx context.Context, task *convert.Task, filename string, data []byte) error { return nil },
			waitFunc: func(ctx context.Context, id string) (*convert.Job, error) {
				return finishedJob(map[string][]convert.ResultFile{
					"export-file": {{Filename: "doc.pdf", Url: "https://dl.example/doc.pdf"}},
				}), nil
			},
			downloadFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte("compressed"), nil
			},
		}

		o := NewPdfOptimizer(client, DefaultPdfOptions())
		res, err := o.Optimize(context.Background(), largePdf(), "doc.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("compressed"), res.Data)
		assert.Nil(t, res.Thumbnail)
		assert.Len(t, client.downloadCalls, 1)
	})
}
