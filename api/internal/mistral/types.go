package mistral

import "encoding/json"

// Document describes the input to the OCR endpoint: either a reference URL
// obtained from the files API or an inline base64 data URL.
type Document struct {
	Type         string `json:"type"` // "document_url" | "image_url"
	DocumentURL  string `json:"document_url,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	DocumentName string `json:"document_name,omitempty"`
}

type OCRRequest struct {
	Model              string   `json:"model"`
	Document           Document `json:"document"`
	IncludeImageBase64 bool     `json:"include_image_base64,omitempty"`
}

// OCRResponse is the typed view of a successful OCR result. Every field is
// optional on the wire; absent fields stay at their zero value.
type OCRResponse struct {
	Model     string    `json:"model,omitempty"`
	Text      string    `json:"text,omitempty"`
	Pages     []Page    `json:"pages,omitempty"`
	UsageInfo UsageInfo `json:"usage_info,omitempty"`
}

type Page struct {
	Index      int         `json:"index,omitempty"`
	Text       string      `json:"text,omitempty"`
	Content    string      `json:"content,omitempty"`
	Markdown   string      `json:"markdown,omitempty"`
	Images     []Image     `json:"images,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

type Image struct {
	ID           string   `json:"id,omitempty"`
	TopLeftX     int      `json:"top_left_x,omitempty"`
	TopLeftY     int      `json:"top_left_y,omitempty"`
	BottomRightX int      `json:"bottom_right_x,omitempty"`
	BottomRightY int      `json:"bottom_right_y,omitempty"`
	Text         string   `json:"text,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
	Type         string   `json:"type,omitempty"`
	ImageBase64  string   `json:"image_base64,omitempty"`
}

type Dimensions struct {
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

type UsageInfo struct {
	PagesProcessed int `json:"pages_processed,omitempty"`
	DocSizeBytes   int `json:"doc_size_bytes,omitempty"`
}

// BatchEntry is one request line of the NDJSON batch input file.
type BatchEntry struct {
	CustomID string    `json:"custom_id"`
	Body     BatchBody `json:"body"`
}

type BatchBody struct {
	Document Document `json:"document"`
}

// BatchJob is returned by both job creation and job status.
type BatchJob struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	TotalRequests     int    `json:"total_requests"`
	SucceededRequests int    `json:"succeeded_requests"`
	FailedRequests    int    `json:"failed_requests"`
	OutputFile        string `json:"output_file,omitempty"`
	ErrorFile         string `json:"error_file,omitempty"`
}

// BatchRecord is one line of the NDJSON batch output file. Some API
// revisions put the result under "body", others under "response.body".
type BatchRecord struct {
	CustomID string          `json:"custom_id"`
	Body     json.RawMessage `json:"body,omitempty"`
	Response *struct {
		StatusCode int             `json:"status_code,omitempty"`
		Body       json.RawMessage `json:"body,omitempty"`
	} `json:"response,omitempty"`
}

// Result returns the raw OCR result payload of a batch record, regardless
// of which envelope variant the service produced.
func (r *BatchRecord) Result() json.RawMessage {
	if len(r.Body) > 0 {
		return r.Body
	}
	if r.Response != nil {
		return r.Response.Body
	}
	return nil
}
