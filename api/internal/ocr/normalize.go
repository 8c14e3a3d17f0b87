package ocr

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// FallbackModel names the document when the raw result carries no model.
	FallbackModel = "mistral-ocr"

	// NoTextMessage is the single placeholder page emitted when nothing is
	// extractable through any recognized shape.
	NoTextMessage = "No text was extracted from this image. Please ensure the image contains readable text."

	// ErrorMessage is the placeholder page emitted when normalization
	// itself faults.
	ErrorMessage = "Error processing OCR response. Please try again or contact support if the issue persists."

	// maxWalkDepth bounds the fallback extraction walk over untrusted input.
	maxWalkDepth = 32
)

// Normalize converts a raw OCR result into a canonical document. It never
// fails: any internal fault becomes a document with a single placeholder
// page and the fault recorded in Error, so callers always have a
// renderable body.
func Normalize(raw Raw) Document {
	doc, err := normalize(raw)
	if err != nil {
		return errorDocument(raw, err)
	}
	return doc
}

func errorDocument(raw Raw, cause error) Document {
	model := FallbackModel
	if raw != nil {
		model = getString(raw, "model", FallbackModel)
	}
	return Document{
		Model: model,
		Pages: []Page{{
			PageNum:  0,
			Text:     ErrorMessage,
			Markdown: ErrorMessage,
			Images:   []Image{},
		}},
		Metadata: Metadata{
			Languages:  []string{},
			Topics:     []string{},
			TotalPages: 1,
		},
		Error: cause.Error(),
	}
}

func normalize(raw Raw) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("normalize: %v", r)
		}
	}()

	if raw == nil {
		raw = MapRaw(nil)
	}

	doc = Document{
		Model: getString(raw, "model", FallbackModel),
		Pages: []Page{},
		Metadata: Metadata{
			Languages: []string{},
			Topics:    []string{},
		},
	}
	if v, ok := raw.Get("usage_info"); ok {
		if ur, ok := asRaw(v); ok {
			doc.UsageInfo.PagesProcessed = int(getFloat(ur, "pages_processed", 0))
			doc.UsageInfo.DocSizeBytes = int(getFloat(ur, "doc_size_bytes", 0))
		}
	}

	// Texts gathered for document-wide language and topic detection.
	var allText []string

	if pages, ok := pageList(raw); ok {
		// Path A: a non-empty page collection.
		for idx, el := range pages {
			pr, _ := asRaw(el)
			doc.Pages = append(doc.Pages, normalizePage(idx, pr, &allText))
		}
	} else if v, ok := raw.Get("text"); ok {
		// Path B: a single page synthesized from the top-level text field.
		text, _ := v.(string)
		if text != "" {
			allText = append(allText, text)
		}
		doc.Pages = append(doc.Pages, Page{
			PageNum:  0,
			Text:     text,
			Markdown: text,
			Images:   []Image{},
		})
	} else if found := firstCollectedText(raw.Echo()); found != "" {
		// Path C: deep fallback extraction over the raw structure.
		allText = append(allText, strings.TrimSpace(found))
		doc.Pages = append(doc.Pages, Page{
			PageNum:  0,
			Text:     strings.TrimSpace(found),
			Markdown: found,
			Images:   []Image{},
		})
	}

	if len(doc.Pages) == 0 {
		// Path D: nothing recognizable anywhere.
		doc.DebugInfo = &DebugInfo{RawResponse: raw.Echo()}
		doc.Pages = append(doc.Pages, Page{
			PageNum:  0,
			Text:     NoTextMessage,
			Markdown: NoTextMessage,
			Images:   []Image{},
		})
	}

	if len(allText) > 0 {
		combined := strings.Join(allText, " ")
		if lang := detectLanguage(combined); lang != "" {
			doc.Metadata.Languages = append(doc.Metadata.Languages, lang)
		}
		doc.Metadata.Topics = detectTopics(combined)
	}

	doc.Metadata.TotalPages = len(doc.Pages)
	return doc, nil
}

func pageList(raw Raw) ([]any, bool) {
	v, ok := raw.Get("pages")
	if !ok {
		return nil, false
	}
	list, ok := asList(v)
	if !ok || len(list) == 0 {
		return nil, false
	}
	return list, true
}

// normalizePage builds one canonical page. idx becomes the page number
// regardless of any index the input claims. A nil or malformed page record
// degrades to an empty page instead of failing the document.
func normalizePage(idx int, pr Raw, allText *[]string) Page {
	page := Page{PageNum: idx, Images: []Image{}}
	if pr == nil {
		return page
	}

	if v, ok := pr.Get("dimensions"); ok {
		if dr, ok := asRaw(v); ok {
			page.Dimensions = Dimensions{
				Width:    getFloat(dr, "width", 0),
				Height:   getFloat(dr, "height", 0),
				Rotation: getFloat(dr, "rotation", 0),
				Unit:     getString(dr, "unit", ""),
			}
		}
	}

	var imageTexts []string
	if v, ok := pr.Get("images"); ok {
		if list, ok := asList(v); ok {
			for _, el := range list {
				ir, ok := asRaw(el)
				if !ok {
					continue
				}
				img := normalizeImage(ir)
				page.Images = append(page.Images, img)
				if img.Text != "" {
					imageTexts = append(imageTexts, img.Text)
					*allText = append(*allText, img.Text)
				}
			}
		}
	}

	text := getString(pr, "text", "")
	if text == "" {
		text = getString(pr, "content", "")
	}
	if text != "" {
		*allText = append(*allText, text)
	}

	// Associated image text joins the plain text, blank-line separated.
	page.Text = text
	for _, t := range imageTexts {
		if page.Text != "" {
			page.Text += "\n\n"
		}
		page.Text += t
	}

	md := getString(pr, "markdown", text)
	for _, img := range page.Images {
		md = inlineImage(md, img)
	}
	page.Markdown = md
	return page
}

// normalizeImage reads every field independently with an explicit default;
// a missing or mistyped field never aborts the image.
func normalizeImage(ir Raw) Image {
	return Image{
		ID: getString(ir, "id", ""),
		Coordinates: Coordinates{
			TopLeft: Point{
				X: getFloat(ir, "top_left_x", 0),
				Y: getFloat(ir, "top_left_y", 0),
			},
			BottomRight: Point{
				X: getFloat(ir, "bottom_right_x", 0),
				Y: getFloat(ir, "bottom_right_y", 0),
			},
		},
		Text:        getString(ir, "text", ""),
		Confidence:  getFloat(ir, "confidence", 0),
		Type:        getString(ir, "type", "unknown"),
		ImageBase64: getString(ir, "image_base64", ""),
	}
}

// inlineImage resolves one image into the page markdown as a data URL.
// Resolution order: consume the `![id](id)` placeholder when present;
// leave already-inlined markdown untouched; otherwise anchor the reference
// after the first verbatim occurrence of the image's associated text, or
// append it at the end. The text anchor is a placement heuristic, not a
// layout guarantee.
func inlineImage(md string, img Image) string {
	if img.ImageBase64 == "" {
		return md
	}
	ref := "![" + img.ID + "](data:image/png;base64," + img.ImageBase64 + ")"
	placeholder := "![" + img.ID + "](" + img.ID + ")"

	if strings.Contains(md, placeholder) {
		return strings.ReplaceAll(md, placeholder, ref)
	}
	if strings.Contains(md, ref) {
		return md
	}
	block := "\n" + ref + "\n"
	if img.Text != "" {
		if i := strings.Index(md, img.Text); i >= 0 {
			pos := i + len(img.Text)
			return md[:pos] + block + md[pos:]
		}
	}
	return md + block
}

// firstCollectedText walks the raw structure depth-first, gathering strings
// stored under text-bearing keys, and returns the first non-blank one. Map
// keys are visited in sorted order with the text-bearing keys checked
// first, so the result is deterministic. Depth is bounded against
// pathological nesting.
func firstCollectedText(v any) string {
	var collected []string
	collectText(v, 0, &collected)
	for _, s := range collected {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

var textBearingKeys = []string{"text", "content", "markdown"}

func collectText(v any, depth int, out *[]string) {
	if depth > maxWalkDepth {
		return
	}
	switch x := v.(type) {
	case map[string]any:
		for _, k := range textBearingKeys {
			if s, ok := x[k].(string); ok {
				*out = append(*out, s)
			}
		}
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch x[k].(type) {
			case map[string]any, []any:
				collectText(x[k], depth+1, out)
			}
		}
	case []any:
		for _, el := range x {
			collectText(el, depth+1, out)
		}
	}
}
