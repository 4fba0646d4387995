package mdh

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SerializeOption configures an HTMLSerializer.
type SerializeOption func(*HTMLSerializer)

// WithLinkRenderer replaces the default link renderer.
func WithLinkRenderer(renderer LinkRenderer) SerializeOption {
	return func(s *HTMLSerializer) {
		s.linkRenderer = renderer
	}
}

// WithVerbatimSerializer registers a verbatim serializer for a language
// tag; the DefaultVerbatimSerializerKey entry replaces the default.
func WithVerbatimSerializer(language string, serializer VerbatimSerializer) SerializeOption {
	return func(s *HTMLSerializer) {
		s.verbatim[language] = serializer
	}
}

// WithSerializerPlugins registers fallbacks for node kinds the built-in
// serializer does not recognize.
func WithSerializerPlugins(plugins ...SerializerPlugin) SerializeOption {
	return func(s *HTMLSerializer) {
		s.plugins = append(s.plugins, plugins...)
	}
}

// WithHeaderIDComputer replaces the default header anchor id computation.
func WithHeaderIDComputer(computer HeaderIDComputer) SerializeOption {
	return func(s *HTMLSerializer) {
		s.idComputer = computer
	}
}

// HTMLSerializer renders a document tree as an HTML fragment. It consults
// the root's side tables for references and abbreviations, numbers
// footnotes in first-reference order, and precomputes header anchor ids
// before emitting anything.
type HTMLSerializer struct {
	printer      *Printer
	linkRenderer LinkRenderer
	verbatim     map[string]VerbatimSerializer
	plugins      []SerializerPlugin
	idComputer   HeaderIDComputer

	references          map[string]*ReferenceNode
	abbreviations       map[string]string
	referencedFootnotes map[string]int
	headerIDs           map[int]string

	rootFootnotes []*FootnoteNode
	currentTable  *TableNode
	currentColumn int
	inTableHeader bool
	rootNesting   int
}

// NewHTMLSerializer creates a serializer with the default link renderer,
// verbatim serializer and header id computer unless overridden.
func NewHTMLSerializer(opts ...SerializeOption) *HTMLSerializer {
	s := &HTMLSerializer{
		linkRenderer: DefaultLinkRenderer{},
		verbatim:     map[string]VerbatimSerializer{},
		idComputer:   DefaultHeaderIDComputer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if _, ok := s.verbatim[DefaultVerbatimSerializerKey]; !ok {
		s.verbatim[DefaultVerbatimSerializerKey] = DefaultVerbatimSerializer{}
	}
	return s
}

// ToHTML renders the tree. The serializer is reusable sequentially but not
// concurrently.
func (s *HTMLSerializer) ToHTML(root *RootNode) string {
	s.printer = &Printer{}
	s.references = map[string]*ReferenceNode{}
	s.abbreviations = map[string]string{}
	s.referencedFootnotes = map[string]int{}
	s.headerIDs = computeHeaderIDs(root, s.idComputer)
	s.rootFootnotes = root.Footnotes
	s.rootNesting = 0
	s.visit(root)
	return s.printer.String()
}

func (s *HTMLSerializer) visit(node Node) {
	switch t := node.(type) {
	case *RootNode:
		s.visitRoot(t)
	case *ParaNode:
		s.printBreakBeforeTag(t, "p")
	case *BlockQuoteNode:
		s.printIndentedTag(t, "blockquote")
	case *VerbatimNode:
		s.lookupVerbatimSerializer(t.Type).SerializeVerbatim(t, s.printer)
	case *HTMLBlockNode:
		if t.Text != "" {
			s.printer.Println()
		}
		s.printer.Print(t.Text)
	case *InlineHTMLNode:
		s.printer.Print(t.Text)
	case *HeadingNode:
		s.visitHeading(t)
	case *BulletListNode:
		s.printIndentedTag(t, "ul")
	case *OrderedListNode:
		s.printIndentedTag(t, "ol")
	case *TaskListItemNode:
		s.visitTaskListItem(t)
	case *ListItemNode:
		s.printConditionallyIndentedTag(t, "li")
	case *DefinitionListNode:
		s.printIndentedTag(t, "dl")
	case *DefinitionTermNode:
		s.printConditionallyIndentedTag(t, "dt")
	case *DefinitionNode:
		s.printConditionallyIndentedTag(t, "dd")
	case *TableNode:
		s.currentTable = t
		s.printIndentedTag(t, "table")
		s.currentTable = nil
	case *TableHeaderNode:
		s.inTableHeader = true
		s.printIndentedTag(t, "thead")
		s.inTableHeader = false
	case *TableBodyNode:
		s.printIndentedTag(t, "tbody")
	case *TableRowNode:
		s.currentColumn = 0
		s.printIndentedTag(t, "tr")
	case *TableCellNode:
		s.visitTableCell(t)
	case *TableCaptionNode:
		s.printer.Println().Print("<caption>")
		s.visitChildren(t)
		s.printer.Print("</caption>")
	case *SimpleNode:
		s.visitSimple(t)
	case *StrikeNode:
		s.printTag(t, "del")
	case *StrongEmphNode:
		s.visitStrongEmph(t)
	case *QuotedNode:
		s.visitQuoted(t)
	case *CodeNode:
		s.printer.Print("<code>")
		s.printer.PrintEncoded(t.Text)
		s.printer.Print("</code>")
	case *AnchorLinkNode:
		s.printAnchor(s.linkRenderer.RenderAnchorLink(t))
	case *AutoLinkNode:
		s.printLink(s.linkRenderer.RenderAutoLink(t))
	case *MailLinkNode:
		s.printLink(s.linkRenderer.RenderMailLink(t))
	case *WikiLinkNode:
		s.printLink(s.linkRenderer.RenderWikiLink(t))
	case *ExpLinkNode:
		s.printLink(s.linkRenderer.RenderExpLink(t, s.printChildrenToString(t)))
	case *ExpImageNode:
		s.printImageTag(s.linkRenderer.RenderExpImage(t, s.printChildrenToString(t)))
	case *RefLinkNode:
		s.visitRefLink(t)
	case *RefImageNode:
		s.visitRefImage(t)
	case *FootnoteRefNode:
		s.visitFootnoteRef(t)
	case *FootnoteNode:
		// rendered at the bottom of the page, not in place
	case *ReferenceNode:
		// definitions are not printed
	case *AbbreviationNode:
		// definitions are not printed
	case *TocNode:
		s.visitToc(t)
	case *SpecialTextNode:
		s.printer.PrintEncoded(t.Text)
	case *TextNode:
		if len(s.abbreviations) == 0 {
			s.printer.Print(t.Text)
		} else {
			s.printWithAbbreviations(t.Text)
		}
	case *SuperNode:
		s.visitChildren(t)
	default:
		for _, plugin := range s.plugins {
			if plugin.Visit(node, s, s.printer) {
				return
			}
		}
		panic(fmt.Sprintf("mdh: don't know how to serialize node %T", node))
	}
}

// Visit renders an arbitrary node; it is the entry point for serializer
// plugins that recurse into known children.
func (s *HTMLSerializer) Visit(node Node) {
	s.visit(node)
}

func (s *HTMLSerializer) visitChildren(node Node) {
	for _, child := range node.Children() {
		s.visit(child)
	}
}

func (s *HTMLSerializer) visitRoot(node *RootNode) {
	s.rootNesting++
	defer func() { s.rootNesting-- }()

	for _, ref := range node.References {
		s.references[normalizeKey(s.printChildrenToString(ref))] = ref
	}
	for _, abbr := range node.Abbreviations {
		label := s.printChildrenToString(abbr)
		expansion := ""
		if abbr.Expansion != nil {
			expansion = s.printNodeToString(abbr.Expansion)
		}
		s.abbreviations[label] = expansion
	}

	s.visitChildren(node)

	if s.rootNesting == 1 && len(s.referencedFootnotes) > 0 {
		s.printFootnotes()
	}
}

func (s *HTMLSerializer) printFootnotes() {
	byNumber := make(map[int]*FootnoteNode)
	for _, def := range s.rootFootnotes {
		if num, ok := s.referencedFootnotes[def.Label]; ok {
			byNumber[num] = def
		}
	}
	s.printer.Print("<div class=\"footnotes\">\n")
	s.printer.Print("<hr/>\n")
	s.printer.Print("<ol>\n")
	for num := 1; num <= len(s.referencedFootnotes); num++ {
		def := byNumber[num]
		id := strconv.Itoa(num)
		if def == nil {
			s.printer.Print("<li id=\"fn-" + id + "\"><p><a href=\"#fnref-" + id +
				"\" class=\"footnote-backref\">&#8617;</a></p></li>\n")
			continue
		}
		s.printer.Print("<li id=\"fn-" + id + "\"><p>")
		s.visitChildren(def.Body)
		s.printer.Print("<a href=\"#fnref-" + id + "\" class=\"footnote-backref\">&#8617;</a></p>")
		s.printer.Print("</li>\n")
	}
	s.printer.Print("</ol>\n")
	s.printer.Print("</div>\n")
}

func (s *HTMLSerializer) visitFootnoteRef(node *FootnoteRefNode) {
	num, ok := s.referencedFootnotes[node.Label]
	if !ok {
		num = len(s.referencedFootnotes) + 1
		s.referencedFootnotes[node.Label] = num
	}
	id := strconv.Itoa(num)
	s.printer.Print("<sup id=\"fnref-" + id + "\"><a href=\"#fn-" + id +
		"\" class=\"footnote-ref\">" + id + "</a></sup>")
}

func (s *HTMLSerializer) visitHeading(node *HeadingNode) {
	tag := "h" + strconv.Itoa(node.Level)
	startWasNewLine := s.printer.EndsWithNewLine()
	s.printer.Println()
	s.printer.PrintChar('<').Print(tag).PrintChar('>')
	children := node.Children()
	if len(children) > 0 {
		if anchor, ok := children[0].(*AnchorLinkNode); ok {
			id := s.headerIDs[node.StartIndex()]
			if id == "" {
				// an empty computed id strips the anchor, keeping any
				// heading text it wrapped
				s.printer.Print(anchor.Text)
				children = children[1:]
			} else {
				named := *anchor
				named.Name = id
				s.visit(&named)
				children = children[1:]
			}
		}
	}
	for _, child := range children {
		s.visit(child)
	}
	s.printer.Print("</").Print(tag).PrintChar('>')
	s.printer.Printchkln(startWasNewLine)
}

func (s *HTMLSerializer) visitTaskListItem(node *TaskListItemNode) {
	firstChild := node.Children()[0].Children()[0]
	_, firstIsPara := firstChild.(*ParaNode)
	indent := 0
	if len(node.Children()) > 1 {
		indent = 2
	}
	checkbox := "<input type=\"checkbox\" class=\"task-list-item-checkbox\""
	if node.Done {
		checkbox += " checked=\"checked\""
	}
	checkbox += " disabled=\"disabled\"></input>"
	startWasNewLine := s.printer.EndsWithNewLine()

	s.printer.Println().Print("<li class=\"task-list-item\">").Indent(indent)
	if firstIsPara {
		s.printer.Println().Print("<p>")
		s.printer.Print(checkbox)
		s.visitChildren(firstChild)
		for _, child := range node.Children()[1:] {
			s.visit(child)
		}
		s.printer.Print("</p>")
	} else {
		s.printer.Print(checkbox)
		s.visitChildren(node)
	}
	s.printer.Indent(-indent).Printchkln(indent != 0).Print("</li>").
		Printchkln(startWasNewLine)
}

func (s *HTMLSerializer) visitSimple(node *SimpleNode) {
	switch node.Type {
	case Apostrophe:
		s.printer.Print("&rsquo;")
	case Ellipsis:
		s.printer.Print("&hellip;")
	case Emdash:
		s.printer.Print("&mdash;")
	case Endash:
		s.printer.Print("&ndash;")
	case HRule:
		s.printer.Println().Print("<hr/>")
	case Linebreak:
		s.printer.Print("<br/>")
	case Nbsp:
		s.printer.Print("&nbsp;")
	}
}

func (s *HTMLSerializer) visitStrongEmph(node *StrongEmphNode) {
	if !node.Closed {
		// the sequence never closed: the opening chars are literal text
		s.printer.Print(node.Chars)
		s.visitChildren(node)
		return
	}
	if node.Strong {
		s.printTag(node, "strong")
	} else {
		s.printTag(node, "em")
	}
}

func (s *HTMLSerializer) visitQuoted(node *QuotedNode) {
	switch node.Type {
	case QuotedDoubleAngle:
		s.printer.Print("&laquo;")
		s.visitChildren(node)
		s.printer.Print("&raquo;")
	case QuotedDouble:
		s.printer.Print("&ldquo;")
		s.visitChildren(node)
		s.printer.Print("&rdquo;")
	case QuotedSingle:
		s.printer.Print("&lsquo;")
		s.visitChildren(node)
		s.printer.Print("&rsquo;")
	}
}

func (s *HTMLSerializer) visitRefLink(node *RefLinkNode) {
	text := s.printChildrenToString(node)
	key := text
	if node.ReferenceKey != nil {
		key = s.printChildrenToString(node.ReferenceKey)
	}
	ref := s.references[normalizeKey(key)]
	if ref == nil {
		// no such reference: print the source form back
		s.printer.PrintChar('[').Print(text).PrintChar(']')
		if node.Bracketed {
			s.printer.Print(node.SeparatorSpace).PrintChar('[')
			if node.ReferenceKey != nil {
				s.printer.Print(key)
			}
			s.printer.PrintChar(']')
		}
		return
	}
	s.printLink(s.linkRenderer.RenderRefLink(node, ref.URL, ref.Title, text))
}

func (s *HTMLSerializer) visitRefImage(node *RefImageNode) {
	text := s.printChildrenToString(node)
	key := text
	if node.ReferenceKey != nil {
		key = s.printChildrenToString(node.ReferenceKey)
	}
	ref := s.references[normalizeKey(key)]
	if ref == nil {
		s.printer.Print("![").Print(text).PrintChar(']')
		if node.Bracketed {
			s.printer.Print(node.SeparatorSpace).PrintChar('[')
			if node.ReferenceKey != nil {
				s.printer.Print(key)
			}
			s.printer.PrintChar(']')
		}
		return
	}
	s.printImageTag(s.linkRenderer.RenderRefImage(node, ref.URL, ref.Title, text))
}

func (s *HTMLSerializer) visitTableCell(node *TableCellNode) {
	tag := "td"
	if s.inTableHeader {
		tag = "th"
	}
	columns := s.currentTable.Columns
	var column *TableColumnNode
	if len(columns) > 0 {
		ix := s.currentColumn
		if ix > len(columns)-1 {
			ix = len(columns) - 1
		}
		column = columns[ix]
	}
	s.printer.Println().PrintChar('<').Print(tag)
	if column != nil {
		s.printColumnAlignment(column)
	}
	if node.ColSpan > 1 {
		s.printer.Print(" colspan=\"" + strconv.Itoa(node.ColSpan) + "\"")
	}
	s.printer.PrintChar('>')
	s.visitChildren(node)
	s.printer.Print("</").Print(tag).PrintChar('>')
	s.currentColumn += node.ColSpan
}

func (s *HTMLSerializer) printColumnAlignment(column *TableColumnNode) {
	switch column.Alignment {
	case AlignLeft:
		s.printer.Print(" align=\"left\"")
	case AlignRight:
		s.printer.Print(" align=\"right\"")
	case AlignCenter:
		s.printer.Print(" align=\"center\"")
	}
}

func (s *HTMLSerializer) visitToc(node *TocNode) {
	s.printer.Println().Print("<div class=\"toc\">").Indent(2)
	s.printer.Println().Print("<ul>").Indent(2)
	for _, heading := range node.Headings {
		if heading.Level > node.Level {
			continue
		}
		id := s.headerIDs[heading.StartIndex()]
		if id == "" {
			continue
		}
		s.printer.Println().
			Print("<li class=\"toc-h" + strconv.Itoa(heading.Level) + "\">").
			Print("<a href=\"#" + id + "\">")
		s.printer.PrintEncoded(headingText(heading))
		s.printer.Print("</a></li>")
	}
	s.printer.Indent(-2).Println().Print("</ul>")
	s.printer.Indent(-2).Println().Print("</div>")
}

func (s *HTMLSerializer) lookupVerbatimSerializer(language string) VerbatimSerializer {
	if serializer, ok := s.verbatim[language]; ok && language != "" {
		return serializer
	}
	return s.verbatim[DefaultVerbatimSerializerKey]
}

//************* HELPERS ****************

func (s *HTMLSerializer) printTag(node Node, tag string) {
	s.printer.PrintChar('<').Print(tag).PrintChar('>')
	s.visitChildren(node)
	s.printer.Print("</").Print(tag).PrintChar('>')
}

func (s *HTMLSerializer) printBreakBeforeTag(node Node, tag string) {
	startWasNewLine := s.printer.EndsWithNewLine()
	s.printer.Println()
	s.printTag(node, tag)
	s.printer.Printchkln(startWasNewLine)
}

func (s *HTMLSerializer) printIndentedTag(node Node, tag string) {
	s.printer.Println().PrintChar('<').Print(tag).PrintChar('>').Indent(2)
	s.visitChildren(node)
	s.printer.Indent(-2).Println().Print("</").Print(tag).PrintChar('>')
}

func (s *HTMLSerializer) printConditionallyIndentedTag(node Node, tag string) {
	if len(node.Children()) > 1 {
		s.printIndentedTag(node, tag)
		return
	}
	startWasNewLine := s.printer.EndsWithNewLine()
	s.printer.Println().PrintChar('<').Print(tag).PrintChar('>')
	s.visitChildren(node)
	s.printer.Print("</").Print(tag).PrintChar('>').Printchkln(startWasNewLine)
}

func (s *HTMLSerializer) printLink(rendering Rendering) {
	s.printer.Print("<a")
	s.printRawAttribute("href", rendering.Href)
	for _, attr := range rendering.Attributes {
		s.printRawAttribute(attr.Name, attr.Value)
	}
	s.printer.PrintChar('>').Print(rendering.Text).Print("</a>")
}

// printAnchor emits a heading anchor, whose rendering carries no href.
func (s *HTMLSerializer) printAnchor(rendering Rendering) {
	s.printer.Print("<a")
	if rendering.Href != "" {
		s.printRawAttribute("href", rendering.Href)
	}
	for _, attr := range rendering.Attributes {
		s.printRawAttribute(attr.Name, attr.Value)
	}
	s.printer.PrintChar('>').Print(rendering.Text).Print("</a>")
}

func (s *HTMLSerializer) printImageTag(rendering Rendering) {
	s.printer.Print("<img")
	s.printRawAttribute("src", rendering.Href)
	if rendering.Text != "" {
		s.printRawAttribute("alt", rendering.Text)
	}
	for _, attr := range rendering.Attributes {
		s.printRawAttribute(attr.Name, attr.Value)
	}
	s.printer.Print(" />")
}

func (s *HTMLSerializer) printRawAttribute(name, value string) {
	s.printer.PrintChar(' ').Print(name).Print("=\"").Print(value).PrintChar('"')
}

// printChildrenToString renders a node's children into a fresh buffer.
func (s *HTMLSerializer) printChildrenToString(node Node) string {
	prior := s.printer
	s.printer = &Printer{}
	s.visitChildren(node)
	result := s.printer.String()
	s.printer = prior
	return result
}

func (s *HTMLSerializer) printNodeToString(node Node) string {
	prior := s.printer
	s.printer = &Printer{}
	s.visit(node)
	result := s.printer.String()
	s.printer = prior
	return result
}

// normalizeKey lowercases a reference label and strips spaces, tabs and
// newlines; normalizeKey is idempotent.
func normalizeKey(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		sb.WriteRune(toLowerRuneFold(r))
	}
	return sb.String()
}

func toLowerRuneFold(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// printWithAbbreviations scans text for abbreviation occurrences on word
// boundaries and wraps the matches in <abbr> tags. Matched segments are
// HTML-encoded; the remainder prints as-is, like every other Text node.
func (s *HTMLSerializer) printWithAbbreviations(text string) {
	type expansion struct {
		pos   int
		abbr  string
		title string
	}
	var found []expansion
	abbrs := make([]string, 0, len(s.abbreviations))
	for abbr := range s.abbreviations {
		abbrs = append(abbrs, abbr)
	}
	sort.Strings(abbrs)
	for _, abbr := range abbrs {
		if abbr == "" {
			continue
		}
		ix := 0
		for {
			sx := strings.Index(text[ix:], abbr)
			if sx < 0 {
				break
			}
			sx += ix
			ix = sx + len(abbr)
			if sx > 0 && isLetterOrDigit(lastRuneBefore(text, sx)) {
				continue
			}
			if ix < len(text) && isLetterOrDigit(firstRuneAt(text, ix)) {
				continue
			}
			found = append(found, expansion{pos: sx, abbr: abbr, title: s.abbreviations[abbr]})
		}
	}
	if len(found) == 0 {
		s.printer.Print(text)
		return
	}
	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	ix := 0
	for _, match := range found {
		if match.pos < ix {
			continue
		}
		s.printer.Print(text[ix:match.pos])
		s.printer.Print("<abbr")
		if match.title != "" {
			s.printer.Print(" title=\"")
			s.printer.PrintEncoded(match.title)
			s.printer.PrintChar('"')
		}
		s.printer.PrintChar('>')
		s.printer.PrintEncoded(match.abbr)
		s.printer.Print("</abbr>")
		ix = match.pos + len(match.abbr)
	}
	s.printer.Print(text[ix:])
}

func lastRuneBefore(s string, ix int) rune {
	r := rune(0)
	for _, c := range s[:ix] {
		r = c
	}
	return r
}

func firstRuneAt(s string, ix int) rune {
	for _, c := range s[ix:] {
		return c
	}
	return 0
}
