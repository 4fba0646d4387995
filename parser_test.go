package mdh

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEmptyInputYieldsEmptyRoot(t *testing.T) {
	root := parse(t, "", None)
	if len(root.Children()) != 0 {
		t.Fatalf("expected no children, got %d", len(root.Children()))
	}
	if root.StartIndex() != 0 || root.EndIndex() != 0 {
		t.Fatalf("expected empty range, got [%d,%d]", root.StartIndex(), root.EndIndex())
	}
}

func TestParseDeterminism(t *testing.T) {
	src := "# Title\n\nSome *emphasis* and [a link](http://x) here.\n\n- one\n- two\n\n> quoted\n"
	first := parse(t, src, All)
	second := parse(t, src, All)
	if diff := cmp.Diff(first, second, astCompareOptions...); diff != "" {
		t.Fatalf("parses differ:\n%s", diff)
	}
}

func TestNodeIndexInvariants(t *testing.T) {
	sources := []string{
		"plain text\n",
		"# Heading\n\npara *em* **strong** `code`\n",
		"- one\n- two\n  continued\n\n- three\n",
		"> a\n> > b\n> c\n",
		"1. first\n2. second\n",
		"    indented code\n\ntail\n",
		"A[^a]\n\n[^a]: note\n",
		"| a | b |\n|---|---|\n| 1 | 2 |\n",
	}
	for _, src := range sources {
		root := parse(t, src, Tables|Footnotes)
		limit := len([]rune(src))
		walkAll(root, func(n Node) {
			if n.StartIndex() < 0 || n.StartIndex() > n.EndIndex() || n.EndIndex() > limit {
				t.Fatalf("source %q: node %T has bad range [%d,%d] (len %d)",
					src, n, n.StartIndex(), n.EndIndex(), limit)
			}
		})
		Walk(root, func(n Node) bool {
			children := n.Children()
			for i := 1; i < len(children); i++ {
				if children[i-1].EndIndex() > children[i].StartIndex() {
					t.Fatalf("source %q: siblings overlap: %T [%d,%d] before %T [%d,%d]",
						src, children[i-1], children[i-1].StartIndex(), children[i-1].EndIndex(),
						children[i], children[i].StartIndex(), children[i].EndIndex())
				}
			}
			return true
		})
	}
}

func TestAdjacentTextNodesCoalesce(t *testing.T) {
	root := parse(t, "a&amp;b and more\n", None)
	Walk(root, func(n Node) bool {
		children := n.Children()
		for i := 1; i < len(children); i++ {
			_, prevText := children[i-1].(*TextNode)
			_, curText := children[i].(*TextNode)
			if prevText && curText {
				t.Fatalf("adjacent TextNodes not coalesced under %T", n)
			}
		}
		return true
	})
}

func TestSpecialTextDoesNotCoalesce(t *testing.T) {
	root := parse(t, "a\\*b\n", None)
	para := root.Children()[0].(*ParaNode)
	inlines := para.Children()[0].(*SuperNode)
	kinds := make([]string, 0, 3)
	for _, child := range inlines.Children() {
		switch child.(type) {
		case *SpecialTextNode:
			kinds = append(kinds, "special")
		case *TextNode:
			kinds = append(kinds, "text")
		}
	}
	want := []string{"text", "special", "text"}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, kinds)
	}
}

func TestUnclosedEmphasisStaysUnclosed(t *testing.T) {
	root := parse(t, "*foo\n", None)
	var emph *StrongEmphNode
	Walk(root, func(n Node) bool {
		if e, ok := n.(*StrongEmphNode); ok {
			emph = e
		}
		return true
	})
	if emph == nil {
		t.Fatalf("no emphasis node parsed")
	}
	if emph.Closed {
		t.Fatalf("expected unclosed emphasis")
	}
	if emph.Chars != "*" {
		t.Fatalf("expected opening chars %q, got %q", "*", emph.Chars)
	}
}

func TestFenceLengthMismatch(t *testing.T) {
	// a longer closing fence terminates
	root := parse(t, "```\ncode\n````\n", FencedCodeBlocks)
	if countVerbatim(root) != 1 {
		t.Fatalf("longer close fence should terminate the block")
	}
	// a shorter closing fence does not
	root = parse(t, "````\ncode\n```\n", FencedCodeBlocks)
	if countVerbatim(root) != 0 {
		t.Fatalf("shorter close fence must not terminate the block")
	}
	// the other fence character does not close either
	root = parse(t, "```\ncode\n~~~\n", FencedCodeBlocks)
	if countVerbatim(root) != 0 {
		t.Fatalf("close fence of the other character must not terminate the block")
	}
}

func TestSetextNeedsThreeUnderlineChars(t *testing.T) {
	root := parse(t, "title\n-\n", None)
	for _, child := range root.Children() {
		if _, ok := child.(*HeadingNode); ok {
			t.Fatalf("single dash must not form a setext heading")
		}
	}
	root = parse(t, "title\n---\n", None)
	heading, ok := root.Children()[0].(*HeadingNode)
	if !ok {
		t.Fatalf("expected a setext heading, got %T", root.Children()[0])
	}
	if heading.Level != 2 || !heading.IsSetext {
		t.Fatalf("expected setext level 2, got level %d setext %v", heading.Level, heading.IsSetext)
	}
}

func TestBlockQuoteSubParseIndices(t *testing.T) {
	src := "> a\n> > b\n> c\n"
	root := parse(t, src, None)
	quote, ok := root.Children()[0].(*BlockQuoteNode)
	if !ok {
		t.Fatalf("expected a block quote, got %T", root.Children()[0])
	}
	var kinds []string
	for _, child := range quote.Children() {
		switch child.(type) {
		case *ParaNode:
			kinds = append(kinds, "para")
		case *BlockQuoteNode:
			kinds = append(kinds, "quote")
		}
	}
	if strings.Join(kinds, ",") != "para,quote,para" {
		t.Fatalf("expected para,quote,para children, got %v", kinds)
	}

	// the inner b must point at its offset in the original buffer
	inner := quote.Children()[1].(*BlockQuoteNode)
	bOffset := strings.IndexByte(src, 'b')
	found := false
	Walk(inner, func(n Node) bool {
		if text, ok := n.(*TextNode); ok && text.Text == "b" {
			found = true
			if text.StartIndex() != bOffset {
				t.Fatalf("inner b starts at %d, want %d", text.StartIndex(), bOffset)
			}
		}
		return true
	})
	if !found {
		t.Fatalf("no text node for b found")
	}
}

func TestTableStructureAndAlignment(t *testing.T) {
	root := parse(t, "| a | b |\n|---|--:|\n| 1 | 2 |\n", Tables)
	table, ok := root.Children()[0].(*TableNode)
	if !ok {
		t.Fatalf("expected a table, got %T", root.Children()[0])
	}
	if len(table.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(table.Columns))
	}
	if table.Columns[0].Alignment != AlignNone {
		t.Fatalf("column 0 alignment = %v, want none", table.Columns[0].Alignment)
	}
	if table.Columns[1].Alignment != AlignRight {
		t.Fatalf("column 1 alignment = %v, want right", table.Columns[1].Alignment)
	}
	header, ok := table.Children()[0].(*TableHeaderNode)
	if !ok || len(header.Children()) != 1 {
		t.Fatalf("expected one header row")
	}
	body, ok := table.Children()[1].(*TableBodyNode)
	if !ok || len(body.Children()) != 1 {
		t.Fatalf("expected one body row")
	}
}

func TestLooseListWrapsEveryItem(t *testing.T) {
	root := parse(t, "- one\n\n- two\n", None)
	list := root.Children()[0].(*BulletListNode)
	for i, item := range list.Children() {
		sub := item.Children()[0].(*RootNode)
		if _, ok := sub.Children()[0].(*ParaNode); !ok {
			t.Fatalf("item %d first child is %T, want Para", i, sub.Children()[0])
		}
	}
}

func TestTightListStaysBare(t *testing.T) {
	root := parse(t, "- one\n- two\n", None)
	list := root.Children()[0].(*BulletListNode)
	for i, item := range list.Children() {
		sub := item.Children()[0].(*RootNode)
		if _, ok := sub.Children()[0].(*SuperNode); !ok {
			t.Fatalf("item %d first child is %T, want a bare inline run", i, sub.Children()[0])
		}
	}
}

func TestQuotedDefinitionsAreDiscarded(t *testing.T) {
	root := parse(t, "> [y]: http://e\n\n[x][y]\n", None)
	if len(root.References) != 0 {
		t.Fatalf("reference defined inside a block quote must be discarded")
	}
}

func TestDummyReferenceKey(t *testing.T) {
	root := parse(t, "[x][]\n", DummyReferenceKey)
	link := findRefLink(t, root)
	if link.ReferenceKey != Node(DummyReferenceKeyNode) {
		t.Fatalf("expected the dummy reference key sentinel")
	}
	root = parse(t, "[x]\n", DummyReferenceKey)
	link = findRefLink(t, root)
	if link.ReferenceKey != nil || link.Bracketed {
		t.Fatalf("bare [x] must not carry a key or bracket")
	}
	root = parse(t, "[x][]\n", None)
	link = findRefLink(t, root)
	if link.ReferenceKey != nil || !link.Bracketed {
		t.Fatalf("without the extension [x][] has no key but keeps the bracket")
	}
}

func TestParseTimeout(t *testing.T) {
	p := New(None, WithMaxParsingTime(time.Nanosecond))
	_, err := p.Parse("some *text* with [inlines](x)\n")
	if err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if _, err := p.MarkdownToHTML("more *text*\n"); err != ErrTimeout {
		t.Fatalf("expected ErrTimeout from MarkdownToHTML, got %v", err)
	}
}

func TestProcessorSequentialReuse(t *testing.T) {
	p := New(None)
	first, err := p.MarkdownToHTML("a\n")
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := p.MarkdownToHTML("a\n")
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if first != second {
		t.Fatalf("renders differ: %q vs %q", first, second)
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	inputs := []string{"Foo Bar", "  A\tB\nC ", "mixedCASE", ""}
	for _, input := range inputs {
		once := normalizeKey(input)
		twice := normalizeKey(once)
		if once != twice {
			t.Fatalf("normalizeKey not idempotent for %q: %q vs %q", input, once, twice)
		}
	}
	if normalizeKey("Foo Bar") != "foobar" {
		t.Fatalf("normalizeKey(%q) = %q", "Foo Bar", normalizeKey("Foo Bar"))
	}
}

func TestTocOnlyInput(t *testing.T) {
	root := parse(t, "[TOC]\n", Toc)
	toc, ok := root.Children()[0].(*TocNode)
	if !ok {
		t.Fatalf("expected a TOC node, got %T", root.Children()[0])
	}
	if len(toc.Headings) != 0 {
		t.Fatalf("expected empty heading list, got %d", len(toc.Headings))
	}
	if toc.Level != 6 {
		t.Fatalf("default TOC level = %d, want 6", toc.Level)
	}
}

func TestTocSeesHeadingsInDocumentOrder(t *testing.T) {
	root := parse(t, "# One\n\n[TOC]\n\n## Two\n", Toc)
	var toc *TocNode
	Walk(root, func(n Node) bool {
		if tocNode, ok := n.(*TocNode); ok {
			toc = tocNode
		}
		return true
	})
	if toc == nil {
		t.Fatalf("no TOC parsed")
	}
	if len(toc.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(toc.Headings))
	}
	if toc.Headings[0].Level != 1 || toc.Headings[1].Level != 2 {
		t.Fatalf("headings out of document order")
	}
}

// helpers

func parse(t *testing.T, src string, exts Extensions) *RootNode {
	t.Helper()
	root, err := New(exts).Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return root
}

func countVerbatim(root *RootNode) int {
	count := 0
	Walk(root, func(n Node) bool {
		if _, ok := n.(*VerbatimNode); ok {
			count++
		}
		return true
	})
	return count
}

func findRefLink(t *testing.T, root *RootNode) *RefLinkNode {
	t.Helper()
	var link *RefLinkNode
	Walk(root, func(n Node) bool {
		if ref, ok := n.(*RefLinkNode); ok {
			link = ref
		}
		return true
	})
	if link == nil {
		t.Fatalf("no reference link parsed")
	}
	return link
}

var astCompareOptions = []cmp.Option{
	cmp.AllowUnexported(
		span{}, leafNode{}, parentNode{},
		RootNode{}, SuperNode{}, ParaNode{}, BlockQuoteNode{}, VerbatimNode{},
		HTMLBlockNode{}, InlineHTMLNode{}, HeadingNode{}, BulletListNode{},
		OrderedListNode{}, ListItemNode{}, TaskListItemNode{},
		DefinitionListNode{}, DefinitionTermNode{}, DefinitionNode{},
		TableNode{}, TableHeaderNode{}, TableBodyNode{}, TableRowNode{},
		TableCellNode{}, TableColumnNode{}, TableCaptionNode{}, SimpleNode{},
		TextNode{}, SpecialTextNode{}, AnchorLinkNode{}, StrongEmphNode{},
		StrikeNode{}, QuotedNode{}, CodeNode{}, AutoLinkNode{}, MailLinkNode{},
		WikiLinkNode{}, ExpLinkNode{}, ExpImageNode{}, RefLinkNode{},
		RefImageNode{}, FootnoteRefNode{}, FootnoteNode{}, AbbreviationNode{},
		ReferenceNode{}, TocNode{},
	),
}
