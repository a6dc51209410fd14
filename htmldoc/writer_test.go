package htmldoc

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/tsawler/wdocx/model"
)

func sampleDocument() *model.Document {
	doc := model.NewDocument()
	doc.Append(model.NewHeading("Heading1", "Introduction", "intro"))

	p := model.NewNode(model.KindStyledText, "body1")
	p.Append(model.Span{Text: "Read "})
	p.Append(model.Span{Text: "the docs", StyleRef: "Hyperlink", Link: model.ExternalLink("https://example.com/docs")})
	p.Append(model.Span{Text: " or go "})
	p.Append(model.Span{Text: "back", StyleRef: "Hyperlink", Link: model.InternalLink("intro")})
	doc.Append(p)

	doc.Append(model.NewHeading("Heading2", "Details", ""))

	for _, it := range []struct {
		kind  model.NodeKind
		style string
		level int
		text  string
	}{
		{model.KindNormalListItem, "nList1", 1, "A"},
		{model.KindNormalListItem, "nList2", 2, "B"},
		{model.KindNormalListItem, "nList1", 1, "C"},
		{model.KindOrderedListItem, "numList1", 1, "D"},
	} {
		item := model.NewListItem(it.kind, it.style, it.level)
		item.Append(model.Span{Text: it.text})
		doc.Append(item)
	}

	doc.Append(model.NewCode("code", "if a < b && c {\n\treturn\n}"))
	return doc
}

func renderQuery(t *testing.T, doc *model.Document, opts RenderOptions) *goquery.Document {
	t.Helper()
	out, err := String(doc, opts)
	if err != nil {
		t.Fatalf("String() error = %v", err)
	}
	q, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parsing rendered HTML: %v", err)
	}
	return q
}

// ============================================================================
// Blocks
// ============================================================================

func TestRender_Headings(t *testing.T) {
	q := renderQuery(t, sampleDocument(), DefaultRenderOptions())

	h1 := q.Find("h1#intro")
	if h1.Length() != 1 {
		t.Fatalf("h1#intro count = %d, want 1", h1.Length())
	}
	if h1.Text() != "Introduction" {
		t.Errorf("h1 text = %q", h1.Text())
	}
	if class, _ := h1.Attr("class"); class != "Heading1" {
		t.Errorf("h1 class = %q", class)
	}

	h2 := q.Find("h2")
	if _, ok := h2.Attr("id"); ok {
		t.Error("heading without anchor should have no id")
	}
	if h2.Text() != "Details" {
		t.Errorf("h2 text = %q", h2.Text())
	}
}

func TestRender_Links(t *testing.T) {
	q := renderQuery(t, sampleDocument(), DefaultRenderOptions())

	p := q.Find("p.body1")
	if p.Text() != "Read the docs or go back" {
		t.Errorf("paragraph text = %q", p.Text())
	}

	links := p.Find("a")
	if links.Length() != 2 {
		t.Fatalf("link count = %d, want 2", links.Length())
	}
	if href, _ := links.Eq(0).Attr("href"); href != "https://example.com/docs" {
		t.Errorf("external href = %q", href)
	}
	if href, _ := links.Eq(1).Attr("href"); href != "#intro" {
		t.Errorf("internal href = %q", href)
	}
	if class, _ := links.Eq(0).Attr("class"); class != "Hyperlink" {
		t.Errorf("link class = %q", class)
	}
}

func TestRender_Lists(t *testing.T) {
	q := renderQuery(t, sampleDocument(), RenderOptions{Fragment: true})

	if n := q.Find("body > ul").Length(); n != 1 {
		t.Fatalf("top-level ul count = %d, want 1", n)
	}
	if n := q.Find("body > ul > li").Length(); n != 2 {
		t.Errorf("top-level items = %d, want 2", n)
	}
	if got := q.Find("body > ul > li > ul > li.nList2").Text(); got != "B" {
		t.Errorf("nested item = %q, want B", got)
	}
	if got := q.Find("body > ol > li.numList1").Text(); got != "D" {
		t.Errorf("ordered item = %q, want D", got)
	}
}

func TestRender_ListStartsBelowLevelOne(t *testing.T) {
	doc := model.NewDocument()
	item := model.NewListItem(model.KindNormalListItem, "nList3", 3)
	item.Append(model.Span{Text: "deep"})
	doc.Append(item)
	doc.Append(model.NewHeading("Heading1", "After", ""))
	item = model.NewListItem(model.KindNormalListItem, "nList1", 1)
	item.Append(model.Span{Text: "fresh"})
	doc.Append(item)

	q := renderQuery(t, doc, RenderOptions{Fragment: true})
	if n := q.Find("ul").Length(); n != 2 {
		t.Errorf("ul count = %d, want 2 (a heading ends the list)", n)
	}
}

func TestRender_Code(t *testing.T) {
	q := renderQuery(t, sampleDocument(), DefaultRenderOptions())

	code := q.Find("pre.code > code")
	if code.Length() != 1 {
		t.Fatalf("pre > code count = %d", code.Length())
	}
	if code.Text() != "if a < b && c {\n\treturn\n}" {
		t.Errorf("code text = %q", code.Text())
	}
}

func TestRender_CharacterStyle(t *testing.T) {
	doc := model.NewDocument()
	p := model.NewNode(model.KindStyledText, "body1")
	p.Append(model.Span{Text: "plain "})
	p.Append(model.Span{Text: "strong", StyleRef: "Strong"})
	p.Append(model.Span{Text: " same", StyleRef: "body1"})
	doc.Append(p)

	q := renderQuery(t, doc, RenderOptions{Fragment: true})
	if got := q.Find("p > span.Strong").Text(); got != "strong" {
		t.Errorf("styled span = %q", got)
	}
	if n := q.Find("span").Length(); n != 1 {
		t.Errorf("span count = %d, want 1", n)
	}
}

// ============================================================================
// Page
// ============================================================================

func TestRender_Page(t *testing.T) {
	opts := RenderOptions{Title: "Guide", Stylesheet: "styles.css"}
	out, err := String(model.NewDocument(), opts)
	if err != nil {
		t.Fatalf("String() error = %v", err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("missing doctype: %q", out)
	}

	q, _ := goquery.NewDocumentFromReader(strings.NewReader(out))
	if q.Find("title").Text() != "Guide" {
		t.Errorf("title = %q", q.Find("title").Text())
	}
	if href, _ := q.Find(`link[rel="stylesheet"]`).Attr("href"); href != "styles.css" {
		t.Errorf("stylesheet href = %q", href)
	}
	if charset, _ := q.Find("meta").Attr("charset"); charset != "utf-8" {
		t.Errorf("charset = %q", charset)
	}
}

func TestRender_Fragment(t *testing.T) {
	out, err := String(sampleDocument(), RenderOptions{Fragment: true})
	if err != nil {
		t.Fatalf("String() error = %v", err)
	}
	if strings.Contains(out, "<html") || strings.Contains(out, "<body") {
		t.Errorf("fragment should not contain page elements: %s", out)
	}
	if !strings.HasPrefix(out, `<h1 id="intro" class="Heading1">Introduction</h1>`) {
		t.Errorf("fragment = %s", out)
	}
}
