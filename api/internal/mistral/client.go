package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultBase = "https://api.mistral.ai"

// Client talks to the Mistral OCR REST API. A Client is immutable after
// construction; credential updates build a new one.
type Client struct {
	apiKey string
	base   string
	model  string
	httpc  *http.Client

	pollRetries int
	pollDelay   time.Duration
}

type Option func(*Client)

func WithBase(base string) Option {
	return func(c *Client) { c.base = base }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithPolling bounds the task-status poll loop.
func WithPolling(retries int, delay time.Duration) Option {
	return func(c *Client) {
		c.pollRetries = retries
		c.pollDelay = delay
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		base:        DefaultBase,
		model:       "mistral-ocr-latest",
		httpc:       &http.Client{Timeout: 60 * time.Second},
		pollRetries: 30,
		pollDelay:   2 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Model() string { return c.model }

// StatusError carries the remote status code so the HTTP layer can remap
// well-known codes (429, 401, 413) to friendlier messages.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mistral %d: %s", e.Code, e.Body)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	body, err := c.do(req)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) postJSON(ctx context.Context, path string, in any) ([]byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// UploadFile sends binary content to the files endpoint with the given
// purpose ("ocr" or "batch") and returns the opaque file id.
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader, mime, purpose string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	hdr.Set("Content-Type", mime)
	fw, err := mw.CreatePart(hdr)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", err
	}
	if err := mw.WriteField("purpose", purpose); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/files", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("file upload failed: %w", err)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("file upload returned no id")
	}
	return out.ID, nil
}

// SignedURL resolves a file id into a time-limited retrieval URL.
func (c *Client) SignedURL(ctx context.Context, fileID string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.getJSON(ctx, "/v1/files/"+fileID+"/url", &out); err != nil {
		return "", fmt.Errorf("failed to get signed URL: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("signed URL response has no url")
	}
	return out.URL, nil
}

// Process runs synchronous OCR on one document. When the service answers
// with a task id instead of a result, Process polls the task status with a
// bounded retry loop. It returns both the typed result and the raw body so
// callers can normalize whichever shape came back.
func (c *Client) Process(ctx context.Context, doc Document, includeImages bool) (*OCRResponse, json.RawMessage, error) {
	body, err := c.postJSON(ctx, "/v1/ocr", OCRRequest{
		Model:              c.model,
		Document:           doc,
		IncludeImageBase64: includeImages,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("OCR request failed: %w", err)
	}

	var env struct {
		TaskID string `json:"task_id"`
	}
	_ = json.Unmarshal(body, &env)
	if env.TaskID != "" {
		body, err = c.waitForTask(ctx, env.TaskID)
		if err != nil {
			return nil, nil, err
		}
	}

	var out OCRResponse
	if err := json.Unmarshal(body, &out); err != nil {
		// Keep the raw payload: the normalizer's fallback paths can still
		// extract text from shapes the typed model does not cover.
		logrus.WithError(err).Warn("ocr response did not match typed model")
	}
	return &out, body, nil
}

func (c *Client) waitForTask(ctx context.Context, taskID string) (json.RawMessage, error) {
	for attempt := 0; attempt < c.pollRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/ocr/"+taskID, nil)
		if err != nil {
			return nil, err
		}
		body, err := c.do(req)
		if err != nil {
			logrus.WithField("task_id", taskID).WithError(err).Warn("ocr status check failed")
			continue
		}

		var status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal(body, &status); err != nil {
			return nil, err
		}
		switch status.Status {
		case "completed":
			return body, nil
		case "failed":
			return nil, fmt.Errorf("OCR processing failed: %s", status.Error)
		}
	}
	return nil, fmt.Errorf("OCR processing timed out after %d attempts", c.pollRetries)
}

// CreateBatchJob uploads the entries as one NDJSON batch file and starts a
// batch job over the OCR endpoint.
func (c *Client) CreateBatchJob(ctx context.Context, entries []BatchEntry) (*BatchJob, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return nil, err
		}
	}

	fileID, err := c.UploadFile(ctx, "batch.jsonl", &buf, "application/json-lines", "batch")
	if err != nil {
		return nil, fmt.Errorf("failed to upload batch file: %w", err)
	}

	body, err := c.postJSON(ctx, "/v1/batch/jobs", map[string]any{
		"input_files": []string{fileID},
		"model":       c.model,
		"endpoint":    "/v1/ocr",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create batch job: %w", err)
	}
	var job BatchJob
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, err
	}
	if job.ID == "" {
		return nil, fmt.Errorf("batch job response has no id")
	}
	return &job, nil
}

func (c *Client) JobStatus(ctx context.Context, jobID string) (*BatchJob, error) {
	var job BatchJob
	if err := c.getJSON(ctx, "/v1/batch/jobs/"+jobID, &job); err != nil {
		return nil, fmt.Errorf("failed to get batch status: %w", err)
	}
	return &job, nil
}

// DownloadFile fetches a stored file's contents through its signed URL.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := c.SignedURL(ctx, fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download results: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
