package mdh

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const integrationDoc = `# Release Notes

Intro paragraph with *emphasis*, **strong** and ` + "`code`" + `.

## Changes

- first change
- second change with [a link](http://example.com/changes)
- third change

| Area | Status |
|------|-------:|
| api  | done   |
| docs | open   |

> Quoted remark
> with a second line.

### Credits

Thanks[^t] to everyone.

[^t]: really
`

func TestRenderedDocumentStructure(t *testing.T) {
	html := render(t, integrationDoc, Tables|Footnotes|ExtAnchorLinks)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + html + "</body></html>"))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}

	if got := doc.Find("h1").Length(); got != 1 {
		t.Fatalf("h1 count = %d", got)
	}
	if got := doc.Find("h2").Length(); got != 1 {
		t.Fatalf("h2 count = %d", got)
	}
	if name, _ := doc.Find("h1 a").Attr("name"); name != "release-notes" {
		t.Fatalf("h1 anchor name = %q", name)
	}

	if got := doc.Find("ul li").Length(); got != 3 {
		t.Fatalf("list item count = %d", got)
	}
	if href, _ := doc.Find("ul li a").Attr("href"); href != "http://example.com/changes" {
		t.Fatalf("list link href = %q", href)
	}

	if got := doc.Find("table thead th").Length(); got != 2 {
		t.Fatalf("table header cell count = %d", got)
	}
	if got := doc.Find("table tbody tr").Length(); got != 2 {
		t.Fatalf("table body row count = %d", got)
	}
	if align, _ := doc.Find("table tbody tr td").Eq(1).Attr("align"); align != "right" {
		t.Fatalf("second column alignment = %q", align)
	}

	if got := doc.Find("blockquote p").Length(); got != 1 {
		t.Fatalf("blockquote paragraph count = %d", got)
	}

	if got := doc.Find("div.footnotes ol li").Length(); got != 1 {
		t.Fatalf("footnote count = %d", got)
	}
	if id, _ := doc.Find("div.footnotes li").Attr("id"); id != "fn-1" {
		t.Fatalf("footnote id = %q", id)
	}
	if got := doc.Find("sup a.footnote-ref").Length(); got != 1 {
		t.Fatalf("footnote ref count = %d", got)
	}

	if got := doc.Find("em").Length(); got != 1 {
		t.Fatalf("em count = %d", got)
	}
	if got := doc.Find("strong").Length(); got != 1 {
		t.Fatalf("strong count = %d", got)
	}
	if got := doc.Find("p code").Length(); got != 1 {
		t.Fatalf("inline code count = %d", got)
	}
}

func BenchmarkMarkdownToHTML(b *testing.B) {
	p := New(Tables | Footnotes | FencedCodeBlocks)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := p.MarkdownToHTML(integrationDoc); err != nil {
			b.Fatalf("render: %v", err)
		}
	}
}

func BenchmarkParse(b *testing.B) {
	p := New(Tables | Footnotes | FencedCodeBlocks)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := p.Parse(integrationDoc); err != nil {
			b.Fatalf("parse: %v", err)
		}
	}
}
