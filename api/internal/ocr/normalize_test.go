package ocr

import (
	"encoding/json"
	"strings"
	"testing"
)

func rawFromJSON(t *testing.T, s string) Raw {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return MapRaw(m)
}

func TestNormalizeSinglePage(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"model":"m1","pages":[{"text":"Hello","markdown":"Hello","images":[]}]}`))

	if doc.Model != "m1" {
		t.Fatalf("model = %q, want m1", doc.Model)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages))
	}
	p := doc.Pages[0]
	if p.PageNum != 0 || p.Text != "Hello" || p.Markdown != "Hello" {
		t.Fatalf("unexpected page: %+v", p)
	}
	if doc.Metadata.TotalPages != 1 {
		t.Fatalf("total_pages = %d, want 1", doc.Metadata.TotalPages)
	}
	if doc.Error != "" {
		t.Fatalf("unexpected error: %q", doc.Error)
	}
}

func TestNormalizePageNumbersArePositional(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[
		{"index":7,"text":"a"},
		{"index":3,"text":"b"},
		{"index":99,"text":"c"}
	]}`))

	if len(doc.Pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(doc.Pages))
	}
	for i, p := range doc.Pages {
		if p.PageNum != i {
			t.Errorf("page %d has page_num %d", i, p.PageNum)
		}
	}
	if doc.Metadata.TotalPages != 3 {
		t.Errorf("total_pages = %d, want 3", doc.Metadata.TotalPages)
	}
}

func TestNormalizeTopLevelText(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"text":"just text"}`))

	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages))
	}
	if doc.Pages[0].Text != "just text" || doc.Pages[0].Markdown != "just text" {
		t.Fatalf("unexpected page: %+v", doc.Pages[0])
	}
	if len(doc.Pages[0].Images) != 0 {
		t.Fatalf("synthesized page should have no images")
	}
}

func TestNormalizeDeepFallbackExtraction(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"result":{"inner":[{"content":"  buried text  "}]}}`))

	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages))
	}
	if doc.Pages[0].Text != "buried text" {
		t.Fatalf("text = %q, want %q", doc.Pages[0].Text, "buried text")
	}
	if doc.DebugInfo != nil {
		t.Fatalf("debug_info should only be set when nothing was extracted")
	}
}

func TestNormalizeNoContentPlaceholder(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"status":"done","pages":[]}`))

	if len(doc.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(doc.Pages))
	}
	if doc.Pages[0].Text != NoTextMessage {
		t.Fatalf("text = %q, want placeholder", doc.Pages[0].Text)
	}
	if doc.Metadata.TotalPages != 1 {
		t.Fatalf("total_pages = %d, want 1", doc.Metadata.TotalPages)
	}
	if doc.DebugInfo == nil {
		t.Fatalf("debug_info missing on placeholder path")
	}
	if doc.Model != FallbackModel {
		t.Fatalf("model = %q, want fallback", doc.Model)
	}
}

func TestNormalizeNilRaw(t *testing.T) {
	doc := Normalize(nil)
	if len(doc.Pages) != 1 || doc.Pages[0].Text != NoTextMessage {
		t.Fatalf("nil raw should produce the placeholder page, got %+v", doc.Pages)
	}
}

func TestNormalizeMalformedPageDegrades(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[
		{"text":"good"},
		{},
		"not even an object",
		{"images":"not a list"}
	]}`))

	if len(doc.Pages) != 4 {
		t.Fatalf("pages = %d, want 4", len(doc.Pages))
	}
	if doc.Pages[0].Text != "good" {
		t.Errorf("page 0 text = %q", doc.Pages[0].Text)
	}
	for i := 1; i < 4; i++ {
		if doc.Pages[i].Text != "" {
			t.Errorf("page %d should be empty, got %q", i, doc.Pages[i].Text)
		}
	}
	if doc.Error != "" {
		t.Fatalf("malformed pages must not fail the document: %q", doc.Error)
	}
}

func TestNormalizeConfidenceCoercion(t *testing.T) {
	cases := []struct {
		name string
		json string
		want float64
	}{
		{"absent", `{"pages":[{"images":[{"id":"a"}]}]}`, 0},
		{"numeric", `{"pages":[{"images":[{"id":"a","confidence":0.75}]}]}`, 0.75},
		{"numeric string", `{"pages":[{"images":[{"id":"a","confidence":"0.5"}]}]}`, 0.5},
		{"garbage", `{"pages":[{"images":[{"id":"a","confidence":"high"}]}]}`, 0},
		{"null", `{"pages":[{"images":[{"id":"a","confidence":null}]}]}`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := Normalize(rawFromJSON(t, tc.json))
			if got := doc.Pages[0].Images[0].Confidence; got != tc.want {
				t.Fatalf("confidence = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNormalizeImageDefaults(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[{"images":[{}]}]}`))
	img := doc.Pages[0].Images[0]
	if img.ID != "" || img.Text != "" || img.Confidence != 0 || img.Type != "unknown" {
		t.Fatalf("unexpected defaults: %+v", img)
	}
}

func TestNormalizeImageTextJoinsPageText(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[{
		"text":"body",
		"images":[{"id":"a","text":"caption one"},{"id":"b","text":"caption two"}]
	}]}`))

	want := "body\n\ncaption one\n\ncaption two"
	if doc.Pages[0].Text != want {
		t.Fatalf("text = %q, want %q", doc.Pages[0].Text, want)
	}
}

func TestNormalizeInlinesPlaceholder(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[{"text":"","markdown":"![a](a)","images":[{"id":"a","image_base64":"XYZ"}]}]}`))

	md := doc.Pages[0].Markdown
	if !strings.Contains(md, "![a](data:image/png;base64,XYZ)") {
		t.Fatalf("markdown missing inlined data URL: %q", md)
	}
	if strings.Contains(md, "![a](a)") {
		t.Fatalf("placeholder should have been consumed: %q", md)
	}
}

func TestNormalizeAnchorsImageAfterText(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[{
		"markdown":"intro figure caption outro figure caption",
		"images":[{"id":"a","text":"figure caption","image_base64":"QQ"}]
	}]}`))

	md := doc.Pages[0].Markdown
	ref := "![a](data:image/png;base64,QQ)"
	first := strings.Index(md, ref)
	if first < 0 {
		t.Fatalf("reference not inserted: %q", md)
	}
	if strings.Count(md, ref) != 1 {
		t.Fatalf("reference inserted more than once: %q", md)
	}
	// after the first caption, before the second
	if first > strings.LastIndex(md, "figure caption") {
		t.Fatalf("reference anchored after the wrong occurrence: %q", md)
	}
}

func TestNormalizeAppendsImageWithoutAnchor(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[{
		"markdown":"no matching text here",
		"images":[{"id":"img-0","image_base64":"AA"}]
	}]}`))

	md := doc.Pages[0].Markdown
	if !strings.HasSuffix(strings.TrimSpace(md), "![img-0](data:image/png;base64,AA)") {
		t.Fatalf("reference should be appended at the end: %q", md)
	}
}

func TestInlineImageIdempotent(t *testing.T) {
	img := Image{ID: "a", ImageBase64: "XYZ", Text: "caption"}
	once := inlineImage("caption and more", img)
	twice := inlineImage(once, img)
	if once != twice {
		t.Fatalf("inlining is not idempotent:\nonce:  %q\ntwice: %q", once, twice)
	}

	// already-resolved markdown with no placeholder stays untouched
	resolved := "text ![a](data:image/png;base64,XYZ) tail"
	if got := inlineImage(resolved, Image{ID: "a", ImageBase64: "XYZ"}); got != resolved {
		t.Fatalf("resolved markdown modified: %q", got)
	}
}

func TestNormalizeDimensions(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[{"text":"x","dimensions":{"width":612,"height":792,"unit":"pt"}}]}`))
	d := doc.Pages[0].Dimensions
	if d.Width != 612 || d.Height != 792 || d.Unit != "pt" || d.Rotation != 0 {
		t.Fatalf("unexpected dimensions: %+v", d)
	}
}

func TestNormalizeUsageInfo(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"text":"x","usage_info":{"pages_processed":4,"doc_size_bytes":1024}}`))
	if doc.UsageInfo.PagesProcessed != 4 || doc.UsageInfo.DocSizeBytes != 1024 {
		t.Fatalf("unexpected usage info: %+v", doc.UsageInfo)
	}
}

func TestDetectTopics(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"please find the invoice attached", []string{"financial"}},
		{"invoice for the patient's stay", []string{"financial", "medical"}},
		{"nothing of note", []string{}},
		{"the company signed the contract for new software at the university hospital",
			[]string{"medical", "legal", "technical", "educational", "business"}},
	}
	for _, tc := range cases {
		got := detectTopics(tc.text)
		if len(got) != len(tc.want) {
			t.Errorf("detectTopics(%q) = %v, want %v", tc.text, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("detectTopics(%q) = %v, want %v", tc.text, got, tc.want)
				break
			}
		}
	}
}

func TestNormalizeDetectsLanguageAndTopics(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[{"text":"This invoice covers the payment for the hospital visit of the patient last month."}]}`))

	if len(doc.Metadata.Topics) < 2 || doc.Metadata.Topics[0] != "financial" || doc.Metadata.Topics[1] != "medical" {
		t.Fatalf("topics = %v", doc.Metadata.Topics)
	}
	// language detection is best-effort; the list is either empty or one code
	if len(doc.Metadata.Languages) > 1 {
		t.Fatalf("languages = %v, want at most one entry", doc.Metadata.Languages)
	}
}

func TestNormalizeDetectionSkippedWithoutText(t *testing.T) {
	doc := Normalize(rawFromJSON(t, `{"pages":[{}]}`))
	if len(doc.Metadata.Languages) != 0 || len(doc.Metadata.Topics) != 0 {
		t.Fatalf("detection ran on empty text: %+v", doc.Metadata)
	}
}

func TestNormalizeDeeplyNestedInputIsBounded(t *testing.T) {
	depth := maxWalkDepth * 4
	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString(`{"nested":`)
	}
	b.WriteString(`{"other":"x"}`)
	for i := 0; i < depth; i++ {
		b.WriteString(`}`)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(b.String()), &m); err != nil {
		t.Skipf("decoder refused depth %d: %v", depth, err)
	}

	doc := Normalize(MapRaw(m))
	if len(doc.Pages) != 1 || doc.Pages[0].Text != NoTextMessage {
		t.Fatalf("expected placeholder for unrecognizable nested input, got %+v", doc.Pages)
	}
}
