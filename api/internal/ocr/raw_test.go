package ocr

import (
	"testing"

	"ocr-web/api/internal/mistral"
)

func TestFromResponseAdapter(t *testing.T) {
	conf := 0.9
	resp := &mistral.OCRResponse{
		Model: "m2",
		Pages: []mistral.Page{
			{
				Markdown: "# Title",
				Content:  "Title",
				Images: []mistral.Image{{
					ID:          "img-0",
					TopLeftX:    1,
					TopLeftY:    2,
					Confidence:  &conf,
					ImageBase64: "AAA",
				}},
				Dimensions: &mistral.Dimensions{Width: 100, Height: 200, Unit: "px"},
			},
			{Text: "second page"},
		},
		UsageInfo: mistral.UsageInfo{PagesProcessed: 2},
	}

	doc := Normalize(FromResponse(resp))

	if doc.Model != "m2" {
		t.Fatalf("model = %q", doc.Model)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(doc.Pages))
	}
	p0 := doc.Pages[0]
	if p0.Text != "Title" {
		t.Errorf("page 0 text = %q, want content fallback", p0.Text)
	}
	if p0.Dimensions.Width != 100 || p0.Dimensions.Unit != "px" {
		t.Errorf("page 0 dimensions = %+v", p0.Dimensions)
	}
	if len(p0.Images) != 1 {
		t.Fatalf("page 0 images = %d", len(p0.Images))
	}
	img := p0.Images[0]
	if img.ID != "img-0" || img.Confidence != 0.9 || img.Type != "unknown" {
		t.Errorf("unexpected image: %+v", img)
	}
	if img.Coordinates.TopLeft.X != 1 || img.Coordinates.TopLeft.Y != 2 {
		t.Errorf("unexpected coordinates: %+v", img.Coordinates)
	}
	if doc.Pages[1].PageNum != 1 || doc.Pages[1].Text != "second page" {
		t.Errorf("page 1 = %+v", doc.Pages[1])
	}
	if doc.UsageInfo.PagesProcessed != 2 {
		t.Errorf("usage = %+v", doc.UsageInfo)
	}
}

func TestFromResponseTopLevelText(t *testing.T) {
	doc := Normalize(FromResponse(&mistral.OCRResponse{Text: "flat text"}))
	if len(doc.Pages) != 1 || doc.Pages[0].Text != "flat text" {
		t.Fatalf("unexpected pages: %+v", doc.Pages)
	}
}

func TestFromResponseEmpty(t *testing.T) {
	doc := Normalize(FromResponse(&mistral.OCRResponse{}))
	if len(doc.Pages) != 1 || doc.Pages[0].Text != NoTextMessage {
		t.Fatalf("empty typed response should yield the placeholder page: %+v", doc.Pages)
	}
}

func TestFromJSONRejectsNonObject(t *testing.T) {
	doc := Normalize(FromJSON([]byte(`"just a string"`)))
	if len(doc.Pages) != 1 || doc.Pages[0].Text != NoTextMessage {
		t.Fatalf("non-object payload should yield the placeholder page: %+v", doc.Pages)
	}
}

func TestGetFloatCoercions(t *testing.T) {
	r := MapRaw{
		"f": 1.5,
		"s": "2.5",
		"x": []any{},
	}
	if got := getFloat(r, "f", 0); got != 1.5 {
		t.Errorf("float: %v", got)
	}
	if got := getFloat(r, "s", 0); got != 2.5 {
		t.Errorf("string: %v", got)
	}
	if got := getFloat(r, "x", 0); got != 0 {
		t.Errorf("list: %v", got)
	}
	if got := getFloat(r, "missing", 7); got != 7 {
		t.Errorf("default: %v", got)
	}
}
