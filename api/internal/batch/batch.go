// Package batch builds multi-file OCR submissions and turns remote job
// status into progress or normalized results.
package batch

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ocr-web/api/internal/mistral"
	"ocr-web/api/internal/ocr"
	"ocr-web/api/internal/util"
)

type Orchestrator struct {
	c *mistral.Client
}

func New(c *mistral.Client) *Orchestrator {
	return &Orchestrator{c: c}
}

// BuildEntry converts one stored upload into a batch request entry. PDFs
// are uploaded to the remote service and referenced by signed URL; images
// are inlined as base64 data URLs. Each entry gets its own correlation id.
func (o *Orchestrator) BuildEntry(ctx context.Context, name, path string) (mistral.BatchEntry, error) {
	entry := mistral.BatchEntry{CustomID: uuid.New().String()}

	if util.IsPDF(name) {
		f, err := os.Open(path)
		if err != nil {
			return entry, err
		}
		defer f.Close()
		fileID, err := o.c.UploadFile(ctx, name, f, util.MimeByExt(name), "ocr")
		if err != nil {
			return entry, err
		}
		url, err := o.c.SignedURL(ctx, fileID)
		if err != nil {
			return entry, err
		}
		entry.Body.Document = mistral.Document{
			Type:         "document_url",
			DocumentURL:  url,
			DocumentName: name,
		}
		return entry, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	// sniffed content type wins over the extension when it is an image
	mime := util.SniffMimeHTTP(b)
	if !strings.HasPrefix(mime, "image/") {
		mime = util.MimeByExt(name)
	}
	entry.Body.Document = mistral.Document{
		Type:     "image_url",
		ImageURL: util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(b)),
	}
	return entry, nil
}

// Submit starts a batch job and returns immediately; callers poll Status.
func (o *Orchestrator) Submit(ctx context.Context, entries []mistral.BatchEntry) (*mistral.BatchJob, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no valid files to process")
	}
	return o.c.CreateBatchJob(ctx, entries)
}

type Progress struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type ItemResult struct {
	CustomID string       `json:"custom_id"`
	Result   ocr.Document `json:"result"`
}

// Status is the payload returned to the polling client: either an
// in-progress tuple passed through from the remote job's own accounting,
// or the full normalized result set.
type Status struct {
	Status   string       `json:"status"`
	Progress *Progress    `json:"progress,omitempty"`
	Results  []ItemResult `json:"results,omitempty"`
}

func (o *Orchestrator) Status(ctx context.Context, jobID string) (*Status, error) {
	job, err := o.c.JobStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != "completed" {
		return &Status{
			Status: job.Status,
			Progress: &Progress{
				Total:     job.TotalRequests,
				Succeeded: job.SucceededRequests,
				Failed:    job.FailedRequests,
			},
		}, nil
	}

	data, err := o.c.DownloadFile(ctx, job.OutputFile)
	if err != nil {
		return nil, err
	}
	return &Status{
		Status:  "completed",
		Results: parseResults(data),
	}, nil
}

// parseResults normalizes each NDJSON record's body through the same path
// as synchronous OCR. Unparseable lines degrade that one item only. Lines
// are read without a length cap: inlined image payloads can make a single
// record arbitrarily large.
func parseResults(data []byte) []ItemResult {
	results := []ItemResult{}
	rd := bufio.NewReader(bytes.NewReader(data))
	for {
		line, readErr := rd.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec mistral.BatchRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				logrus.WithError(err).Warn("skipping unparseable batch result line")
			} else if body := rec.Result(); len(body) > 0 {
				results = append(results, ItemResult{
					CustomID: rec.CustomID,
					Result:   ocr.Normalize(ocr.FromJSON(body)),
				})
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			logrus.WithError(readErr).Warn("stopped reading batch results early")
			break
		}
	}
	return results
}
