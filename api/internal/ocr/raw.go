package ocr

import (
	"encoding/json"
	"strconv"

	"ocr-web/api/internal/mistral"
)

// Raw is the accessor abstraction over an untrusted OCR result. The two
// shapes the service has been observed to return — a free-form JSON object
// and the typed client response — are adapted behind this one interface so
// the normalizer is written once.
type Raw interface {
	// Get reports the value for key and whether the field is present.
	Get(key string) (any, bool)
	// Echo returns a representation of the whole payload for debug output.
	Echo() any
}

// MapRaw adapts a decoded JSON object.
type MapRaw map[string]any

func (m MapRaw) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapRaw) Echo() any { return map[string]any(m) }

// FromJSON decodes a raw result body. Payloads that are not JSON objects
// yield an empty accessor; the normalizer's fallback paths take over.
func FromJSON(body []byte) Raw {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return MapRaw(nil)
	}
	return MapRaw(m)
}

// respRaw adapts the typed client response. Zero values count as absent,
// which is the best a typed shape can express.
type respRaw struct {
	r *mistral.OCRResponse
}

// FromResponse wraps a typed OCR response in the accessor interface.
func FromResponse(r *mistral.OCRResponse) Raw {
	return respRaw{r: r}
}

func (t respRaw) Get(key string) (any, bool) {
	if t.r == nil {
		return nil, false
	}
	switch key {
	case "model":
		return t.r.Model, t.r.Model != ""
	case "text":
		return t.r.Text, t.r.Text != ""
	case "pages":
		if len(t.r.Pages) == 0 {
			return nil, false
		}
		pages := make([]any, len(t.r.Pages))
		for i := range t.r.Pages {
			pages[i] = pageRaw{p: &t.r.Pages[i]}
		}
		return pages, true
	case "usage_info":
		return MapRaw{
			"pages_processed": float64(t.r.UsageInfo.PagesProcessed),
			"doc_size_bytes":  float64(t.r.UsageInfo.DocSizeBytes),
		}, true
	}
	return nil, false
}

func (t respRaw) Echo() any { return t.r }

type pageRaw struct {
	p *mistral.Page
}

func (t pageRaw) Get(key string) (any, bool) {
	switch key {
	case "text":
		return t.p.Text, t.p.Text != ""
	case "content":
		return t.p.Content, t.p.Content != ""
	case "markdown":
		return t.p.Markdown, t.p.Markdown != ""
	case "images":
		if len(t.p.Images) == 0 {
			return nil, false
		}
		imgs := make([]any, len(t.p.Images))
		for i := range t.p.Images {
			imgs[i] = imageRaw{img: &t.p.Images[i]}
		}
		return imgs, true
	case "dimensions":
		if t.p.Dimensions == nil {
			return nil, false
		}
		return MapRaw{
			"width":    t.p.Dimensions.Width,
			"height":   t.p.Dimensions.Height,
			"rotation": t.p.Dimensions.Rotation,
			"unit":     t.p.Dimensions.Unit,
		}, true
	}
	return nil, false
}

func (t pageRaw) Echo() any { return t.p }

type imageRaw struct {
	img *mistral.Image
}

func (t imageRaw) Get(key string) (any, bool) {
	switch key {
	case "id":
		return t.img.ID, t.img.ID != ""
	case "top_left_x":
		return float64(t.img.TopLeftX), true
	case "top_left_y":
		return float64(t.img.TopLeftY), true
	case "bottom_right_x":
		return float64(t.img.BottomRightX), true
	case "bottom_right_y":
		return float64(t.img.BottomRightY), true
	case "text":
		return t.img.Text, t.img.Text != ""
	case "confidence":
		if t.img.Confidence == nil {
			return nil, false
		}
		return *t.img.Confidence, true
	case "type":
		return t.img.Type, t.img.Type != ""
	case "image_base64":
		return t.img.ImageBase64, t.img.ImageBase64 != ""
	}
	return nil, false
}

func (t imageRaw) Echo() any { return t.img }

// asRaw wraps map values and nested adapters uniformly.
func asRaw(v any) (Raw, bool) {
	switch x := v.(type) {
	case Raw:
		return x, true
	case map[string]any:
		return MapRaw(x), true
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// getString reads a string field with a default for absent or non-string
// values. A missing field never aborts processing.
func getString(r Raw, key, def string) string {
	if v, ok := r.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// getFloat coerces a numeric field. Absent or non-numeric values become
// def, never an error.
func getFloat(r Raw, key string, def float64) float64 {
	v, ok := r.Get(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}
