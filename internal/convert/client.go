// Package convert implements the client side of the external conversion
// service's asynchronous job protocol: submit a job of named tasks, upload
// the input, poll until the job reaches a terminal status, download artifacts.
package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/homedger-dev/homedger/shared/logger"
)

// ErrJobFailed is returned when a job reaches the error terminal status.
var ErrJobFailed = errors.New("conversion job failed")

// TaskSpec is the request-side definition of one task. The service's task
// vocabulary is open-ended, so specs are free-form key/value maps.
type TaskSpec map[string]any

type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	pollInterval time.Duration
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPollInterval overrides the delay between job status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		pollInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope matches the service's {"data": ...} response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("conversion service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return json.Unmarshal(env.Data, out)
}

// CreateJob submits a job containing the given named tasks.
func (c *Client) CreateJob(ctx context.Context, tasks map[string]TaskSpec) (*Job, error) {
	payload, err := json.Marshal(map[string]any{"tasks": tasks})
	if err != nil {
		return nil, err
	}

	var job Job
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(payload), "application/json", &job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return &job, nil
}

// GetJob fetches the current state of a job.
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	var job Job
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/jobs/"+id, nil, "", &job); err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return &job, nil
}

// Upload posts the input bytes to an import task's upload form.
func (c *Client) Upload(ctx context.Context, task *Task, filename string, data []byte) error {
	if task == nil || task.Result == nil || task.Result.Form == nil {
		return fmt.Errorf("task has no upload form")
	}
	form := task.Result.Form

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range form.Parameters {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, form.Url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload returned %d", resp.StatusCode)
	}
	return nil
}

// Wait polls the job until it reaches a terminal status or ctx expires.
// The caller bounds the overall wait with a context deadline; Wait itself
// only paces the polls. An error terminal status yields ErrJobFailed.
func (c *Client) Wait(ctx context.Context, id string) (*Job, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		job, err := c.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}

		if job.Status.Terminal() {
			if job.Status == StatusError {
				return job, fmt.Errorf("%w: %s", ErrJobFailed, job.FirstError())
			}
			return job, nil
		}
		logger.Log.Debug("conversion job still running", "jobId", id, "status", job.Status)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for job %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Download fetches an exported artifact into memory.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
