package mdh

import (
	"strings"
	"testing"
)

func TestHeadingAnchorExt(t *testing.T) {
	html := render(t, "# H1\n", ExtAnchorLinks)
	if html != `<h1><a name="h1"></a>H1</h1>` {
		t.Fatalf("unexpected heading render: %q", html)
	}
	html = render(t, "# H1\n", ExtAnchorLinks|ExtAnchorLinksWrap)
	if html != `<h1><a name="h1">H1</a></h1>` {
		t.Fatalf("unexpected wrapped heading render: %q", html)
	}
}

func TestHeadingAnchorPlain(t *testing.T) {
	html := render(t, "# Some Title\n", AnchorLinks)
	if html != `<h1><a name="some-title">Some Title</a></h1>` {
		t.Fatalf("unexpected plain anchor render: %q", html)
	}
}

func TestEmphasisAfterCodeSpan(t *testing.T) {
	html := render(t, "`x`_y_\n", None)
	if html != "<p><code>x</code>_y_</p>" {
		t.Fatalf("strict rules: %q", html)
	}
	html = render(t, "`x`_y_\n", RelaxedStrongEmphasisRules)
	if html != "<p><code>x</code><em>y</em></p>" {
		t.Fatalf("relaxed rules: %q", html)
	}
}

func TestFootnoteNumberingAndDiv(t *testing.T) {
	html := render(t, "A[^a] B[^b]\n\n[^b]: bee\n[^a]: ay\n", Footnotes)
	want := `<p>A<sup id="fnref-1"><a href="#fn-1" class="footnote-ref">1</a></sup>` +
		` B<sup id="fnref-2"><a href="#fn-2" class="footnote-ref">2</a></sup></p>` +
		"<div class=\"footnotes\">\n<hr/>\n<ol>\n" +
		"<li id=\"fn-1\"><p>ay<a href=\"#fnref-1\" class=\"footnote-backref\">&#8617;</a></p></li>\n" +
		"<li id=\"fn-2\"><p>bee<a href=\"#fnref-2\" class=\"footnote-backref\">&#8617;</a></p></li>\n" +
		"</ol>\n</div>\n"
	if html != want {
		t.Fatalf("footnote render:\ngot  %q\nwant %q", html, want)
	}
}

func TestUnreferencedFootnoteOmitted(t *testing.T) {
	html := render(t, "A[^a]\n\n[^a]: ay\n[^b]: bee\n", Footnotes)
	if strings.Contains(html, "bee") {
		t.Fatalf("unreferenced footnote must be omitted: %q", html)
	}
	if !strings.Contains(html, "ay") {
		t.Fatalf("referenced footnote missing: %q", html)
	}
}

func TestTableRender(t *testing.T) {
	html := render(t, "| a | b |\n|---|--:|\n| 1 | 2 |\n", Tables)
	want := "<table>\n" +
		"  <thead>\n" +
		"    <tr>\n" +
		"      <th>a </th>\n" +
		"      <th align=\"right\">b </th>\n" +
		"    </tr>\n" +
		"  </thead>\n" +
		"  <tbody>\n" +
		"    <tr>\n" +
		"      <td>1 </td>\n" +
		"      <td align=\"right\">2 </td>\n" +
		"    </tr>\n" +
		"  </tbody>\n" +
		"</table>"
	if html != want {
		t.Fatalf("table render:\ngot  %q\nwant %q", html, want)
	}
}

func TestReferenceLabelNormalization(t *testing.T) {
	html := render(t, "[x][Y]\n\n[y]: http://e\n", None)
	if html != `<p><a href="http://e">x</a></p>` {
		t.Fatalf("reference resolution: %q", html)
	}
}

func TestUnresolvedReferencePrintsSource(t *testing.T) {
	html := render(t, "[x][nope]\n", None)
	if html != "<p>[x][nope]</p>" {
		t.Fatalf("unresolved reference: %q", html)
	}
	html = render(t, "[x]\n", None)
	if html != "<p>[x]</p>" {
		t.Fatalf("bare unresolved reference: %q", html)
	}
}

func TestBlockQuoteRender(t *testing.T) {
	html := render(t, "> a\n\nb\n", None)
	want := "<blockquote>\n  <p>a</p>\n</blockquote>\n<p>b</p>"
	if html != want {
		t.Fatalf("blockquote render:\ngot  %q\nwant %q", html, want)
	}
}

func TestTightAndLooseLists(t *testing.T) {
	html := render(t, "- one\n- two\n", None)
	want := "<ul>\n  <li>one</li>\n  <li>two</li>\n</ul>"
	if html != want {
		t.Fatalf("tight list:\ngot  %q\nwant %q", html, want)
	}
	html = render(t, "- one\n\n- two\n", None)
	if !strings.Contains(html, "<p>one</p>") || !strings.Contains(html, "<p>two</p>") {
		t.Fatalf("loose list items must wrap paragraphs: %q", html)
	}
}

func TestOrderedListRender(t *testing.T) {
	html := render(t, "1. first\n2. second\n", None)
	want := "<ol>\n  <li>first</li>\n  <li>second</li>\n</ol>"
	if html != want {
		t.Fatalf("ordered list:\ngot  %q\nwant %q", html, want)
	}
}

func TestTaskListRender(t *testing.T) {
	html := render(t, "- [x] done\n- [ ] todo\n", TaskListItems)
	checkedItem := `<li class="task-list-item"><input type="checkbox" class="task-list-item-checkbox"` +
		` checked="checked" disabled="disabled"></input>done</li>`
	openItem := `<li class="task-list-item"><input type="checkbox" class="task-list-item-checkbox"` +
		` disabled="disabled"></input>todo</li>`
	want := "<ul>\n  " + checkedItem + "\n  " + openItem + "\n</ul>"
	if html != want {
		t.Fatalf("task list:\ngot  %q\nwant %q", html, want)
	}
}

func TestVerbatimIndented(t *testing.T) {
	html := render(t, "    code <x>\n", None)
	if html != "<pre><code>code &lt;x&gt;\n</code></pre>" {
		t.Fatalf("indented verbatim: %q", html)
	}
}

func TestVerbatimFencedWithLanguage(t *testing.T) {
	html := render(t, "```go\nx := 1\n```\n", FencedCodeBlocks)
	if html != "<pre><code class=\"go\">x := 1\n</code></pre>" {
		t.Fatalf("fenced verbatim: %q", html)
	}
}

func TestVerbatimLeadingNewlinesBecomeBreaks(t *testing.T) {
	html := render(t, "```\n\ncode\n```\n", FencedCodeBlocks)
	if html != "<pre><code><br/>code\n</code></pre>" {
		t.Fatalf("leading newline handling: %q", html)
	}
}

func TestCustomVerbatimSerializer(t *testing.T) {
	p := New(FencedCodeBlocks)
	html, err := p.MarkdownToHTMLWith("```go\nx\n```\n",
		WithVerbatimSerializer("go", uppercaseVerbatim{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != "<pre>X\n</pre>" {
		t.Fatalf("custom verbatim serializer: %q", html)
	}
}

func TestSmartsAndQuotes(t *testing.T) {
	html := render(t, "it's -- a...\n", Smartypants)
	if html != "<p>it&rsquo;s &ndash; a&hellip;</p>" {
		t.Fatalf("smarts: %q", html)
	}
	html = render(t, "\"x\"\n", Quotes)
	if html != "<p>&ldquo;x&rdquo;</p>" {
		t.Fatalf("double quotes: %q", html)
	}
}

func TestStrikethrough(t *testing.T) {
	html := render(t, "~~gone~~\n", Strikethrough)
	if html != "<p><del>gone</del></p>" {
		t.Fatalf("strikethrough: %q", html)
	}
}

func TestHardwraps(t *testing.T) {
	html := render(t, "a\nb\n", Hardwraps)
	if html != "<p>a<br/>b</p>" {
		t.Fatalf("hardwraps: %q", html)
	}
	html = render(t, "a\nb\n", None)
	if html != "<p>a b</p>" {
		t.Fatalf("soft wrap: %q", html)
	}
}

func TestAbbreviationExpansion(t *testing.T) {
	html := render(t, "*[HTML]: Hyper Text\n\nHTML is neat, XHTML is not HTML5.\n", Abbreviations)
	if !strings.Contains(html, `<abbr title="Hyper Text">HTML</abbr> is neat`) {
		t.Fatalf("abbreviation not expanded: %q", html)
	}
	// no expansion inside larger words
	if strings.Contains(html, `X<abbr`) || strings.Contains(html, `<abbr title="Hyper Text">HTML</abbr>5`) {
		t.Fatalf("abbreviation matched inside a word: %q", html)
	}
}

func TestHTMLSuppression(t *testing.T) {
	html := render(t, "a <b>x</b> c\n", SuppressInlineHTML)
	if html != "<p>a x c</p>" {
		t.Fatalf("inline html suppression: %q", html)
	}
	html = render(t, "<div>\nraw\n</div>\n\ntail\n", SuppressHTMLBlocks)
	if strings.Contains(html, "<div>") {
		t.Fatalf("block html not suppressed: %q", html)
	}
}

func TestHTMLPassthrough(t *testing.T) {
	html := render(t, "a <b>x</b> c\n", None)
	if html != "<p>a <b>x</b> c</p>" {
		t.Fatalf("inline html passthrough: %q", html)
	}
}

func TestAutoLinks(t *testing.T) {
	html := render(t, "<http://example.com/x>\n", None)
	if html != `<p><a href="http://example.com/x">http://example.com/x</a></p>` {
		t.Fatalf("angle autolink: %q", html)
	}
	html = render(t, "see http://example.com/x now\n", Autolinks)
	if !strings.Contains(html, `<a href="http://example.com/x">http://example.com/x</a>`) {
		t.Fatalf("bare autolink: %q", html)
	}
}

func TestBareAutoLinkExcludesTrailingPunctuation(t *testing.T) {
	html := render(t, "go to http://example.com/x. Now\n", Autolinks)
	if !strings.Contains(html, `<a href="http://example.com/x">`) {
		t.Fatalf("trailing punctuation not excluded: %q", html)
	}
}

func TestMailLinkObfuscation(t *testing.T) {
	html := render(t, "<a@b.c>\n", None)
	obfuscated := "&#97;&#x40;&#98;&#x2e;&#99;"
	want := `<p><a href="mailto:` + obfuscated + `">` + obfuscated + `</a></p>`
	if html != want {
		t.Fatalf("mail link:\ngot  %q\nwant %q", html, want)
	}
}

func TestWikiLinks(t *testing.T) {
	html := render(t, "[[Page Name|text]]\n", WikiLinks)
	if html != `<p><a href="./Page-Name.html">text</a></p>` {
		t.Fatalf("wiki link with text: %q", html)
	}
	html = render(t, "[[Page#frag]]\n", WikiLinks)
	if html != `<p><a href="./Page.html#frag">Page#frag</a></p>` {
		t.Fatalf("wiki link with fragment: %q", html)
	}
}

func TestExplicitLinkWithTitle(t *testing.T) {
	html := render(t, `[x](http://e "The <Title>")`+"\n", None)
	if html != `<p><a href="http://e" title="The &lt;Title&gt;">x</a></p>` {
		t.Fatalf("explicit link title: %q", html)
	}
}

func TestImageRender(t *testing.T) {
	html := render(t, "![alt](http://e/i.png)\n", None)
	if html != `<p><img src="http://e/i.png" alt="alt" /></p>` {
		t.Fatalf("image: %q", html)
	}
	html = render(t, "![](http://e/i.png)\n", None)
	if html != `<p><img src="http://e/i.png" /></p>` {
		t.Fatalf("empty alt must be omitted: %q", html)
	}
}

func TestCustomLinkRenderer(t *testing.T) {
	p := New(None)
	html, err := p.MarkdownToHTMLWith("[x](http://e)\n", WithLinkRenderer(noFollowRenderer{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != `<p><a href="http://e" rel="nofollow">x</a></p>` {
		t.Fatalf("custom link renderer: %q", html)
	}
}

func TestCustomHeaderIDComputer(t *testing.T) {
	p := New(ExtAnchorLinks)
	html, err := p.MarkdownToHTMLWith("# One\n", WithHeaderIDComputer(staticIDComputer{id: "custom"}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != `<h1><a name="custom"></a>One</h1>` {
		t.Fatalf("custom id: %q", html)
	}
	html, err = p.MarkdownToHTMLWith("# One\n", WithHeaderIDComputer(staticIDComputer{}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if html != `<h1>One</h1>` {
		t.Fatalf("empty id must strip the anchor: %q", html)
	}
}

func TestTocRender(t *testing.T) {
	html := render(t, "[TOC]\n\n# One\n", Toc|ExtAnchorLinks)
	want := "<div class=\"toc\">\n  <ul>\n    <li class=\"toc-h1\"><a href=\"#one\">One</a></li>\n  </ul>\n</div>\n" +
		`<h1><a name="one"></a>One</h1>`
	if html != want {
		t.Fatalf("toc render:\ngot  %q\nwant %q", html, want)
	}
}

func TestTocLevelFilter(t *testing.T) {
	html := render(t, "[TOC level=1]\n\n# One\n\n## Two\n", Toc|ExtAnchorLinks)
	if strings.Contains(html, "toc-h2") {
		t.Fatalf("level filter failed: %q", html)
	}
	if !strings.Contains(html, "toc-h1") {
		t.Fatalf("level 1 entry missing: %q", html)
	}
}

func TestHorizontalRule(t *testing.T) {
	html := render(t, "a\n\n---\n\nb\n", None)
	if html != "<p>a</p>\n<hr/>\n<p>b</p>" {
		t.Fatalf("hrule: %q", html)
	}
	// without a following blank line the dashes are not a rule
	html = render(t, "a\n\n---\nb\n", None)
	if strings.Contains(html, "<hr/>") {
		t.Fatalf("hrule without blank line must not match: %q", html)
	}
	html = render(t, "a\n\n---\nb\n", RelaxedHRules)
	if !strings.Contains(html, "<hr/>") {
		t.Fatalf("relaxed hrule must match: %q", html)
	}
}

func TestSerializerPluginFallback(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an unknown node kind")
		}
	}()
	NewHTMLSerializer().Visit(&unknownNode{})
}

func TestSerializerPluginHandlesUnknownNode(t *testing.T) {
	s := NewHTMLSerializer(WithSerializerPlugins(unknownNodePlugin{}))
	root := &RootNode{}
	root.setChildren([]Node{&unknownNode{}})
	if html := s.ToHTML(root); html != "handled" {
		t.Fatalf("plugin fallback: %q", html)
	}
}

// helpers

func render(t *testing.T, src string, exts Extensions) string {
	t.Helper()
	html, err := New(exts).MarkdownToHTML(src)
	if err != nil {
		t.Fatalf("render %q: %v", src, err)
	}
	return html
}

type uppercaseVerbatim struct{}

func (uppercaseVerbatim) SerializeVerbatim(node *VerbatimNode, printer *Printer) {
	printer.Print("<pre>").Print(strings.ToUpper(node.Text)).Print("</pre>")
}

type noFollowRenderer struct {
	DefaultLinkRenderer
}

func (noFollowRenderer) RenderExpLink(node *ExpLinkNode, text string) Rendering {
	rendering := DefaultLinkRenderer{}.RenderExpLink(node, text)
	return rendering.WithAttribute(NoFollow.Name, NoFollow.Value)
}

type staticIDComputer struct {
	id string
}

func (c staticIDComputer) ComputeHeaderID(node *HeadingNode, anchor *AnchorLinkNode, headerText string) string {
	return c.id
}

type unknownNode struct {
	leafNode
}

type unknownNodePlugin struct{}

func (unknownNodePlugin) Visit(node Node, serializer *HTMLSerializer, printer *Printer) bool {
	if _, ok := node.(*unknownNode); !ok {
		return false
	}
	printer.Print("handled")
	return true
}
