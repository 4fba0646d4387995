package mdh

// Node is a single node of the parsed document tree. StartIndex and
// EndIndex are rune offsets into the original source, also for nodes that
// were produced by an internal sub-parse of a block quote or list item
// body. For every node 0 <= StartIndex <= EndIndex <= len(source).
type Node interface {
	StartIndex() int
	EndIndex() int
	Children() []Node
	// ShiftIndices adds delta to every index in the subtree.
	ShiftIndices(delta int)
	// MapIndices replaces every index i in the subtree with ixMap[i].
	MapIndices(ixMap []int)
}

type span struct {
	start int
	end   int
}

func (s *span) StartIndex() int { return s.start }
func (s *span) EndIndex() int   { return s.end }

// SetRange sets the source range of the node.
func (s *span) SetRange(start, end int) {
	s.start = start
	s.end = end
}

func (s *span) shift(delta int) {
	s.start += delta
	s.end += delta
}

func (s *span) remap(ixMap []int) {
	s.start = ixMap[s.start]
	s.end = ixMap[s.end]
}

type leafNode struct {
	span
}

func (n *leafNode) Children() []Node       { return nil }
func (n *leafNode) ShiftIndices(delta int) { n.shift(delta) }
func (n *leafNode) MapIndices(ixMap []int) { n.remap(ixMap) }

type parentNode struct {
	span
	children []Node
}

func (n *parentNode) Children() []Node { return n.children }

func (n *parentNode) ShiftIndices(delta int) {
	n.shift(delta)
	for _, child := range n.children {
		child.ShiftIndices(delta)
	}
}

func (n *parentNode) MapIndices(ixMap []int) {
	n.remap(ixMap)
	for _, child := range n.children {
		child.MapIndices(ixMap)
	}
}

func (n *parentNode) setChildren(children []Node) { n.children = children }

// appendChild adds child, coalescing adjacent plain TextNodes. SpecialText
// and other TextNode-shaped kinds never coalesce.
func (n *parentNode) appendChild(child Node) {
	if text, ok := child.(*TextNode); ok && len(n.children) > 0 {
		if last, ok := n.children[len(n.children)-1].(*TextNode); ok {
			last.Text += text.Text
			last.end = text.end
			return
		}
	}
	n.children = append(n.children, child)
}

// RootNode is the document root. References, Abbreviations and Footnotes
// are the side tables collected during the parse; sub-parse roots carry
// empty tables because definitions are only recognized at top level.
type RootNode struct {
	parentNode
	References    []*ReferenceNode
	Abbreviations []*AbbreviationNode
	Footnotes     []*FootnoteNode
}

// The side tables are not shifted or remapped here: every definition node
// is also reachable as a child of some parent, which adjusts it.

// SuperNode is a plain container without semantics of its own, used for
// inline runs and link labels.
type SuperNode struct {
	parentNode
}

// DummyReferenceKeyNode is the sentinel reference key carried by a RefLinkNode
// or RefImageNode parsed from the empty-bracket form [text][] when the
// DummyReferenceKey extension is enabled.
var DummyReferenceKeyNode = &SuperNode{}

// ParaNode is a paragraph.
type ParaNode struct {
	parentNode
}

// BlockQuoteNode is a >-prefixed block; its children come from a recursive
// sub-parse of the stripped content.
type BlockQuoteNode struct {
	parentNode
}

// VerbatimNode is an indented or fenced code block. Type is the language
// tag of a fenced block, or empty.
type VerbatimNode struct {
	leafNode
	Text string
	Type string
}

// HTMLBlockNode is a block-level HTML passthrough.
type HTMLBlockNode struct {
	leafNode
	Text string
}

// InlineHTMLNode is an inline HTML passthrough.
type InlineHTMLNode struct {
	leafNode
	Text string
}

// HeadingNode is an ATX or setext heading with level 1 through 6. IsToc
// records whether the heading was collected for [TOC] rendering.
type HeadingNode struct {
	parentNode
	Level    int
	IsToc    bool
	IsSetext bool
}

// BulletListNode is an unordered list of ListItemNodes.
type BulletListNode struct {
	parentNode
}

// OrderedListNode is an ordered list of ListItemNodes.
type OrderedListNode struct {
	parentNode
}

// ListItemNode is a list item; its children are the roots of the sub-parses
// of the item's source blocks.
type ListItemNode struct {
	parentNode
}

// TaskListItemNode is a GitHub style task list item.
type TaskListItemNode struct {
	ListItemNode
	Done   bool
	Marker string
}

// DefinitionListNode is a definition list of terms and definitions.
type DefinitionListNode struct {
	parentNode
}

// DefinitionTermNode is a term line of a definition list.
type DefinitionTermNode struct {
	parentNode
}

// DefinitionNode is a definition body of a definition list.
type DefinitionNode struct {
	parentNode
}

// TableAlignment is the column alignment derived from a table divider cell.
type TableAlignment int

// Column alignments.
const (
	AlignNone TableAlignment = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// TableNode is a table; Columns carries the alignment row.
type TableNode struct {
	parentNode
	Columns []*TableColumnNode
}

// ShiftIndices shifts the table, its children and its column nodes.
func (n *TableNode) ShiftIndices(delta int) {
	n.parentNode.ShiftIndices(delta)
	for _, col := range n.Columns {
		col.ShiftIndices(delta)
	}
}

// MapIndices remaps the table, its children and its column nodes.
func (n *TableNode) MapIndices(ixMap []int) {
	n.parentNode.MapIndices(ixMap)
	for _, col := range n.Columns {
		col.MapIndices(ixMap)
	}
}

// TableHeaderNode groups the rows before the divider.
type TableHeaderNode struct {
	parentNode
}

// TableBodyNode groups the rows after the divider.
type TableBodyNode struct {
	parentNode
}

// TableRowNode is a single table row.
type TableRowNode struct {
	parentNode
}

// TableCellNode is a table cell; ColSpan counts the trailing | characters
// attached to the cell, at least 1.
type TableCellNode struct {
	parentNode
	ColSpan int
}

// TableColumnNode is one cell of the divider row.
type TableColumnNode struct {
	leafNode
	Alignment TableAlignment
}

func (n *TableColumnNode) markLeftAligned() {
	n.Alignment = AlignLeft
}

func (n *TableColumnNode) markRightAligned() {
	if n.Alignment == AlignLeft {
		n.Alignment = AlignCenter
	} else {
		n.Alignment = AlignRight
	}
}

// TableCaptionNode is a [caption] line following a table.
type TableCaptionNode struct {
	parentNode
}

// SimpleNodeType tags the atomic marker nodes.
type SimpleNodeType int

// Atomic marker kinds.
const (
	HRule SimpleNodeType = iota
	Linebreak
	Apostrophe
	Ellipsis
	Emdash
	Endash
	Nbsp
)

// SimpleNode is an atomic marker without children or text.
type SimpleNode struct {
	leafNode
	Type SimpleNodeType
}

// TextNode is ordinary text. Adjacent TextNode siblings are coalesced.
type TextNode struct {
	leafNode
	Text string
}

// SpecialTextNode is text that originated from an escape or a special
// character and is HTML-encoded on emit. It never coalesces with TextNode.
type SpecialTextNode struct {
	TextNode
}

// AnchorLinkNode is the named anchor prepended to (or wrapped around) a
// heading's content.
type AnchorLinkNode struct {
	TextNode
	Name string
}

// NewAnchorLinkNode derives the anchor name from textForName and carries
// text as the anchor's visible content.
func NewAnchorLinkNode(textForName, text string) *AnchorLinkNode {
	node := &AnchorLinkNode{Name: generateAnchorName(textForName)}
	node.Text = text
	return node
}

// StrongEmphNode is an emphasis or strong span. Chars is the opening
// delimiter run; an unclosed node renders Chars literally followed by its
// children.
type StrongEmphNode struct {
	parentNode
	Chars  string
	Strong bool
	Closed bool
}

// StrikeNode is a ~~...~~ span, preserving the closed state of the
// underlying delimiter parse.
type StrikeNode struct {
	StrongEmphNode
}

// QuotedType tags the smart quote variants.
type QuotedType int

// Smart quote variants.
const (
	QuotedSingle QuotedType = iota
	QuotedDouble
	QuotedDoubleAngle
)

// QuotedNode is a typographic quote pair around inline content.
type QuotedNode struct {
	parentNode
	Type QuotedType
}

// CodeNode is an inline code span.
type CodeNode struct {
	leafNode
	Text string
}

// AutoLinkNode is a URL autolink.
type AutoLinkNode struct {
	leafNode
	Text string
}

// MailLinkNode is an email autolink.
type MailLinkNode struct {
	leafNode
	Text string
}

// WikiLinkNode is a [[page]] or [[page|text]] link; Text is the raw
// bracket content.
type WikiLinkNode struct {
	leafNode
	Text string
}

// ExpLinkNode is an explicit [text](url "title") link; its children are
// the link text.
type ExpLinkNode struct {
	parentNode
	URL   string
	Title string
}

// ExpImageNode is an explicit ![alt](url "title") image; its children are
// the alt text.
type ExpImageNode struct {
	parentNode
	URL   string
	Title string
}

// RefLinkNode is a reference link [text][key], [text][] or [text]. The key
// resolves against the root's reference table at serialization time.
// Bracketed records whether a second bracket pair was present;
// SeparatorSpace is the whitespace between the pairs. ReferenceKey is nil
// for the implicit forms, or DummyReferenceKeyNode for [text][] under the
// DummyReferenceKey extension.
type RefLinkNode struct {
	parentNode
	ReferenceKey   Node
	SeparatorSpace string
	Bracketed      bool
}

// ShiftIndices shifts the link and its reference key.
func (n *RefLinkNode) ShiftIndices(delta int) {
	n.parentNode.ShiftIndices(delta)
	if n.ReferenceKey != nil && n.ReferenceKey != Node(DummyReferenceKeyNode) {
		n.ReferenceKey.ShiftIndices(delta)
	}
}

// MapIndices remaps the link and its reference key.
func (n *RefLinkNode) MapIndices(ixMap []int) {
	n.parentNode.MapIndices(ixMap)
	if n.ReferenceKey != nil && n.ReferenceKey != Node(DummyReferenceKeyNode) {
		n.ReferenceKey.MapIndices(ixMap)
	}
}

// RefImageNode is the image form of RefLinkNode.
type RefImageNode struct {
	parentNode
	ReferenceKey   Node
	SeparatorSpace string
	Bracketed      bool
}

// ShiftIndices shifts the image and its reference key.
func (n *RefImageNode) ShiftIndices(delta int) {
	n.parentNode.ShiftIndices(delta)
	if n.ReferenceKey != nil && n.ReferenceKey != Node(DummyReferenceKeyNode) {
		n.ReferenceKey.ShiftIndices(delta)
	}
}

// MapIndices remaps the image and its reference key.
func (n *RefImageNode) MapIndices(ixMap []int) {
	n.parentNode.MapIndices(ixMap)
	if n.ReferenceKey != nil && n.ReferenceKey != Node(DummyReferenceKeyNode) {
		n.ReferenceKey.MapIndices(ixMap)
	}
}

// FootnoteRefNode is a [^label] reference in body text.
type FootnoteRefNode struct {
	leafNode
	Label string
}

// FootnoteNode is a [^label]: definition; Body is the inline content.
type FootnoteNode struct {
	leafNode
	Label string
	Body  Node
}

// ShiftIndices shifts the definition and its body.
func (n *FootnoteNode) ShiftIndices(delta int) {
	n.leafNode.ShiftIndices(delta)
	if n.Body != nil {
		n.Body.ShiftIndices(delta)
	}
}

// MapIndices remaps the definition and its body.
func (n *FootnoteNode) MapIndices(ixMap []int) {
	n.leafNode.MapIndices(ixMap)
	if n.Body != nil {
		n.Body.MapIndices(ixMap)
	}
}

// AbbreviationNode is a *[label]: expansion definition; its children are
// the label, Expansion the expansion content.
type AbbreviationNode struct {
	parentNode
	Expansion Node
}

// ShiftIndices shifts the definition and its expansion.
func (n *AbbreviationNode) ShiftIndices(delta int) {
	n.parentNode.ShiftIndices(delta)
	if n.Expansion != nil {
		n.Expansion.ShiftIndices(delta)
	}
}

// MapIndices remaps the definition and its expansion.
func (n *AbbreviationNode) MapIndices(ixMap []int) {
	n.parentNode.MapIndices(ixMap)
	if n.Expansion != nil {
		n.Expansion.MapIndices(ixMap)
	}
}

// ReferenceNode is a [label]: url "title" definition; its children are the
// label content.
type ReferenceNode struct {
	parentNode
	URL   string
	Title string
}

// TocNode is a [TOC] marker. Headings holds every collected heading in
// document order, regardless of where the marker appears; Level bounds the
// rendered depth.
type TocNode struct {
	parentNode
	Headings []*HeadingNode
	Level    int
}

// The headings are owned by the tree itself; shifting or remapping them
// here would double-adjust.

// Walk calls fn for node and, while fn keeps returning true, for every
// node below it in depth-first order.
func Walk(node Node, fn func(Node) bool) {
	if !fn(node) {
		return
	}
	for _, child := range node.Children() {
		Walk(child, fn)
	}
}
