package ocr

// Document is the canonical representation produced from a raw OCR result.
// Its page list is never empty and TotalPages always matches its length.
type Document struct {
	Model     string     `json:"model"`
	Pages     []Page     `json:"pages"`
	Metadata  Metadata   `json:"metadata"`
	UsageInfo UsageInfo  `json:"usage_info"`
	Error     string     `json:"error,omitempty"`
	DebugInfo *DebugInfo `json:"debug_info,omitempty"`
}

type Metadata struct {
	Languages  []string `json:"languages"`
	Topics     []string `json:"topics"`
	TotalPages int      `json:"total_pages"`
}

type UsageInfo struct {
	PagesProcessed int `json:"pages_processed"`
	DocSizeBytes   int `json:"doc_size_bytes"`
}

type Page struct {
	// PageNum is the position of the page in the document, assigned by the
	// normalizer. Index values claimed by the input are ignored.
	PageNum    int        `json:"page_num"`
	Text       string     `json:"text"`
	Markdown   string     `json:"markdown"`
	Dimensions Dimensions `json:"dimensions"`
	Images     []Image    `json:"images"`
}

type Dimensions struct {
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

type Image struct {
	ID          string      `json:"id"`
	Coordinates Coordinates `json:"coordinates"`
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	Type        string      `json:"type"`
	ImageBase64 string      `json:"image_base64,omitempty"`
}

type Coordinates struct {
	TopLeft     Point `json:"top_left"`
	BottomRight Point `json:"bottom_right"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DebugInfo echoes the raw payload when no page content could be extracted
// through any recognized shape.
type DebugInfo struct {
	RawResponse any `json:"raw_response"`
}
