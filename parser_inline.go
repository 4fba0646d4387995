package mdh

import (
	"strings"
	"unicode"
)

//************* INLINES ****************

// parseInlines matches a run of inlines with intermediate endlines; a
// trailing endline is consumed but dropped.
func (p *parser) parseInlines() (*SuperNode, bool) {
	start := p.pos
	node := &SuperNode{}
	for {
		if !p.peekEndline() {
			before := p.pos
			if child, ok := p.parseInline(lastTerminal(node)); ok && p.pos > before {
				node.appendChild(child)
				continue
			}
			p.pos = before
		}
		save := p.pos
		endline, ok := p.parseEndline()
		if ok {
			mark := p.pos
			if _, more := p.parseInline(endline); more {
				p.pos = mark
				node.appendChild(endline)
				continue
			}
			p.pos = save
		}
		break
	}
	if len(node.Children()) == 0 {
		p.pos = start
		return nil, false
	}
	if endline, ok := p.parseEndline(); ok {
		_ = endline // trailing endline is dropped
	}
	node.SetRange(start, p.pos)
	return node, true
}

// parseInline matches one inline. prev is the deepest preceding node at
// the current nesting level, used by the emphasis entry rules. The parsing
// deadline is polled here.
func (p *parser) parseInline(prev Node) (Node, bool) {
	p.checkDeadline()
	if !p.linkMiss[p.pos] {
		save := p.pos
		if node, ok := p.parseLink(); ok {
			return node, true
		}
		p.linkMiss[save] = true
	}
	return p.parseNonLinkInline(prev)
}

func (p *parser) parseNonLinkInline(prev Node) (Node, bool) {
	for _, plugin := range p.plugins.Inline {
		if node, ok := plugin.ParseInline(&ParserState{p: p}); ok {
			return node, true
		}
	}
	if node, ok := p.parseStr(); ok {
		return node, true
	}
	if node, ok := p.parseEndline(); ok {
		return node, true
	}
	if node, ok := p.parseUlOrStarLine(); ok {
		return node, true
	}
	if node, ok := p.parseSpaces(); ok {
		return node, true
	}
	if node, ok := p.parseStrongOrEmph(prev); ok {
		return node, true
	}
	if node, ok := p.parseImage(); ok {
		return node, true
	}
	if node, ok := p.parseCode(); ok {
		return node, true
	}
	if node, ok := p.parseInlineHTML(); ok {
		return node, true
	}
	if node, ok := p.parseEntity(); ok {
		return node, true
	}
	if node, ok := p.parseEscapedChar(); ok {
		return node, true
	}
	if p.exts.Has(Quotes) {
		if node, ok := p.parseSingleQuoted(); ok {
			return node, true
		}
		if node, ok := p.parseDoubleQuoted(); ok {
			return node, true
		}
		if node, ok := p.parseDoubleAngleQuoted(); ok {
			return node, true
		}
	}
	if p.exts.Has(Smarts) {
		if node, ok := p.parseSmarts(); ok {
			return node, true
		}
	}
	if p.exts.Has(Strikethrough) {
		if node, ok := p.parseStrike(prev); ok {
			return node, true
		}
	}
	if p.exts.Has(Footnotes) {
		if node, ok := p.parseFootnoteRef(); ok {
			return node, true
		}
	}
	return p.parseSymbol()
}

// lastTerminal descends into the last child until it reaches a node
// without children; nil means the container is empty, which is a legal
// position for everything.
func lastTerminal(node Node) Node {
	children := node.Children()
	if len(children) == 0 {
		return nil
	}
	last := children[len(children)-1]
	if len(last.Children()) > 0 {
		return lastTerminal(last)
	}
	return last
}

//************* TEXT RUNS ****************

func (p *parser) isSpecialChar(r rune) bool {
	return strings.ContainsRune(p.specialChars, r)
}

func (p *parser) parseStr() (Node, bool) {
	start := p.pos
	for p.notNewline() && !isSpacechar(p.peek()) && !p.isSpecialChar(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return nil, false
	}
	node := &TextNode{Text: string(p.src[start:p.pos])}
	node.SetRange(start, p.pos)
	return node, true
}

func (p *parser) parseSpaces() (Node, bool) {
	start := p.pos
	p.sp()
	if p.pos == start {
		return nil, false
	}
	node := &TextNode{Text: string(p.src[start:p.pos])}
	node.SetRange(start, p.pos)
	return node, true
}

func (p *parser) parseSymbol() (Node, bool) {
	start := p.pos
	if p.eof() || !p.isSpecialChar(p.peek()) {
		return nil, false
	}
	node := &SpecialTextNode{}
	node.Text = string(p.advance())
	node.SetRange(start, p.pos)
	return node, true
}

func (p *parser) parseEscapedChar() (Node, bool) {
	save := p.pos
	if !p.matchChar('\\') {
		return nil, false
	}
	if p.eof() || !strings.ContainsRune(p.escapableChars, p.peek()) {
		p.pos = save
		return nil, false
	}
	node := &SpecialTextNode{}
	node.Text = string(p.advance())
	node.SetRange(save, p.pos)
	return node, true
}

func (p *parser) parseEntity() (Node, bool) {
	save := p.pos
	if !p.matchChar('&') {
		return nil, false
	}
	ok := false
	if p.matchChar('#') {
		if p.matchIgnoreCase('x') {
			for isHexDigit(p.peek()) {
				p.pos++
				ok = true
			}
		} else {
			for p.peek() >= '0' && p.peek() <= '9' {
				p.pos++
				ok = true
			}
		}
	} else {
		for p.isAlphanumeric(p.peek()) {
			p.pos++
			ok = true
		}
	}
	if !ok || !p.matchChar(';') {
		p.pos = save
		return nil, false
	}
	node := &TextNode{Text: string(p.src[save:p.pos])}
	node.SetRange(save, p.pos)
	return node, true
}

func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

//************* ENDLINES ****************

func (p *parser) peekEndline() bool {
	save := p.pos
	_, ok := p.parseEndline()
	p.pos = save
	return ok
}

func (p *parser) parseEndline() (Node, bool) {
	if p.endlineMiss[p.pos] {
		return nil, false
	}
	start := p.pos
	// hard line break: two trailing spaces
	if p.match("  ") {
		if p.normalEndlineAhead() {
			node := &SimpleNode{Type: Linebreak}
			node.SetRange(start, p.pos)
			return node, true
		}
		p.pos = start
	}
	// terminal endline: newline at end of input
	mark := p.pos
	p.sp()
	if p.newline() && p.eof() {
		node := &TextNode{Text: "\n"}
		node.SetRange(start, p.pos)
		return node, true
	}
	p.pos = mark
	if p.normalEndlineAhead() {
		var node Node
		if p.exts.Has(Hardwraps) {
			linebreak := &SimpleNode{Type: Linebreak}
			linebreak.SetRange(start, p.pos)
			node = linebreak
		} else {
			text := &TextNode{Text: " "}
			text.SetRange(start, p.pos)
			node = text
		}
		return node, true
	}
	p.endlineMiss[start] = true
	return nil, false
}

// normalEndlineAhead consumes a newline that continues the current
// paragraph: not a blank line and not followed by a quote marker, an ATX
// start, a setext underline or a code fence.
func (p *parser) normalEndlineAhead() bool {
	save := p.pos
	p.sp()
	if !p.newline() {
		p.pos = save
		return false
	}
	if p.peekBlankLine() || p.peek() == '>' || p.peek() == '#' ||
		p.peekSetextBreak() || p.peekFencedCode() {
		p.pos = save
		return false
	}
	return true
}

func (p *parser) peekSetextBreak() bool {
	save := p.pos
	defer func() { p.pos = save }()
	for p.notNewline() {
		p.pos++
	}
	if !p.newline() {
		return false
	}
	if _, ok := p.nOrMore('=', 3); !ok {
		if _, ok := p.nOrMore('-', 3); !ok {
			return false
		}
	}
	return p.newline()
}

func (p *parser) peekFencedCode() bool {
	save := p.pos
	_, ok := p.parseFencedCodeBlock()
	p.pos = save
	return ok
}

//************* EMPHASIS / STRONG ****************

// parseUlOrStarLine keeps the parser from drowning in long runs of *, _
// or ~, and in runs with space on both sides; they become plain text.
func (p *parser) parseUlOrStarLine() (Node, bool) {
	if p.starMiss[p.pos] {
		return nil, false
	}
	start := p.pos
	if !p.charLine('_') && !p.charLine('*') && !p.charLine('~') {
		p.starMiss[start] = true
		return nil, false
	}
	node := &TextNode{Text: string(p.src[start:p.pos])}
	node.SetRange(start, p.pos)
	return node, true
}

func (p *parser) charLine(c rune) bool {
	if _, ok := p.nOrMore(c, 4); ok {
		return true
	}
	save := p.pos
	if p.spacechar() {
		count := 0
		for p.matchChar(c) {
			count++
		}
		if count > 0 && isSpacechar(p.peek()) {
			return true
		}
	}
	p.pos = save
	return false
}

func (p *parser) peekCharLine(c rune) bool {
	save := p.pos
	ok := p.charLine(c)
	p.pos = save
	return ok
}

func (p *parser) parseStrongOrEmph(prev Node) (Node, bool) {
	r := p.peek()
	if r != '*' && r != '_' {
		return nil, false
	}
	for _, chars := range []string{"**", "__", "*", "_"} {
		if node, ok := p.parseEmphOrStrong(chars, prev); ok {
			return node, true
		}
	}
	return nil, false
}

func (p *parser) parseStrike(prev Node) (Node, bool) {
	inner, ok := p.parseEmphOrStrong("~~", prev)
	if !ok {
		return nil, false
	}
	node := &StrikeNode{StrongEmphNode: *inner}
	return node, true
}

// parseEmphOrStrong is the shared delimiter engine for *, _, **, __ and
// ~~ runs. It implements the entry and close legality rules, close-char
// stealing between nested runs, and unclosed preservation.
func (p *parser) parseEmphOrStrong(chars string, prev Node) (*StrongEmphNode, bool) {
	save := p.pos
	if !p.mayEnterEmphOrStrong(chars, prev) {
		return nil, false
	}
	if !p.emphOrStrongOpen(chars) {
		p.pos = save
		return nil, false
	}
	node := &StrongEmphNode{Chars: chars, Strong: len(chars) == 2}
	p.emphNesting = append(p.emphNesting, node.Strong)
	defer func() { p.emphNesting = p.emphNesting[:len(p.emphNesting)-1] }()

	stolen := false
	for {
		if stolen || p.emphOrStrongClose(chars, node, false) {
			break
		}
		child, ok := p.parseInline(lastTerminal(node))
		if !ok {
			break
		}
		if se, isEmph := child.(*StrongEmphNode); isEmph && len(chars) == 2 &&
			se.Closed && strings.HasSuffix(se.Chars, chars[:1]) &&
			p.peek() == rune(chars[0]) && p.at(p.pos+1) != rune(chars[0]) {
			// the nested child consumed a closing char the parent needs:
			// degrade the child to unclosed and take the closer back
			se.Closed = false
			node.appendChild(se)
			p.pos++
			stolen = true
			continue
		}
		node.appendChild(child)
	}
	if len(node.Children()) == 0 {
		p.pos = save
		return nil, false
	}
	if stolen || p.emphOrStrongClose(chars, node, true) {
		node.Closed = true
	}
	node.SetRange(save, p.pos)
	return node, true
}

func (p *parser) emphOrStrongOpen(chars string) bool {
	save := p.pos
	if p.peekCharLine(rune(chars[0])) {
		return false
	}
	if !p.match(chars) {
		return false
	}
	if p.eof() || isSpacechar(p.peek()) || isNewlineChar(p.peek()) {
		p.pos = save
		return false
	}
	return true
}

// emphOrStrongClose tests (and with consume, matches) a closing delimiter
// run: the preceding child must not end in whitespace or a line break, and
// a single-char close must not touch a following alphanumeric. Under the
// relaxed rules the test applies to every underscore close, single or
// double, and to no other close.
func (p *parser) emphOrStrongClose(chars string, node *StrongEmphNode, consume bool) bool {
	children := node.Children()
	if len(children) > 0 {
		switch last := children[len(children)-1].(type) {
		case *TextNode:
			if strings.HasSuffix(last.Text, " ") {
				return false
			}
		case *SimpleNode:
			if last.Type == Linebreak {
				return false
			}
		}
	}
	save := p.pos
	if !p.match(chars) {
		return false
	}
	static := len(chars) == 2
	if p.exts.Has(RelaxedStrongEmphasisRules) {
		static = chars[0] != '_'
	}
	if !static && p.isAlphanumeric(p.peek()) {
		p.pos = save
		return false
	}
	if !consume {
		p.pos = save
	}
	return true
}

// mayEnterEmphOrStrong combines the entry position rule with the nesting
// rule: emphasis only nests inside strong and vice versa, never inside the
// same state.
func (p *parser) mayEnterEmphOrStrong(chars string, prev Node) bool {
	if !p.isLegalEmphOrStrongStart(chars, prev) {
		return false
	}
	if len(p.emphNesting) > 0 && p.emphNesting[len(p.emphNesting)-1] == (len(chars) == 2) {
		return false
	}
	return true
}

func (p *parser) isLegalEmphOrStrongStart(chars string, prev Node) bool {
	if p.pos == 0 {
		return true
	}
	if p.exts.Has(RelaxedStrongEmphasisRules) {
		before := p.at(p.pos - 1)
		if chars[0] == '_' {
			return !isLetterOrDigit(before) && before != '_'
		}
		return !isLetterOrDigit(before)
	}
	switch t := prev.(type) {
	case nil:
		return true
	case *TextNode:
		return strings.HasSuffix(t.Text, " ")
	case *SimpleNode:
		return true
	default:
		return false
	}
}

//************* QUOTES / SMARTS ****************

func (p *parser) parseSingleQuoted() (Node, bool) {
	save := p.pos
	if p.pos > 0 && unicode.IsLetter(p.at(p.pos-1)) {
		return nil, false
	}
	if !p.matchChar('\'') {
		return nil, false
	}
	node := &QuotedNode{Type: QuotedSingle}
	for {
		if p.peekSingleQuoteEnd() {
			break
		}
		child, ok := p.parseInline(lastTerminal(node))
		if !ok {
			p.pos = save
			return nil, false
		}
		node.appendChild(child)
	}
	if len(node.Children()) == 0 || !p.singleQuoteEnd() {
		p.pos = save
		return nil, false
	}
	node.SetRange(save, p.pos)
	return node, true
}

func (p *parser) singleQuoteEnd() bool {
	save := p.pos
	if !p.matchChar('\'') {
		return false
	}
	if p.isAlphanumeric(p.peek()) {
		p.pos = save
		return false
	}
	return true
}

func (p *parser) peekSingleQuoteEnd() bool {
	save := p.pos
	ok := p.singleQuoteEnd()
	p.pos = save
	return ok
}

func (p *parser) parseDoubleQuoted() (Node, bool) {
	save := p.pos
	if !p.matchChar('"') {
		return nil, false
	}
	node := &QuotedNode{Type: QuotedDouble}
	for p.peek() != '"' {
		child, ok := p.parseInline(lastTerminal(node))
		if !ok {
			p.pos = save
			return nil, false
		}
		node.appendChild(child)
	}
	if len(node.Children()) == 0 || !p.matchChar('"') {
		p.pos = save
		return nil, false
	}
	node.SetRange(save, p.pos)
	return node, true
}

func (p *parser) parseDoubleAngleQuoted() (Node, bool) {
	save := p.pos
	if !p.match("<<") {
		return nil, false
	}
	node := &QuotedNode{Type: QuotedDoubleAngle}
	mark := p.pos
	if p.spacechar() {
		nbsp := &SimpleNode{Type: Nbsp}
		nbsp.SetRange(mark, p.pos)
		node.appendChild(nbsp)
	}
	for {
		mark := p.pos
		p.sp()
		if p.pos > mark && p.peekLiteral(">>") {
			nbsp := &SimpleNode{Type: Nbsp}
			nbsp.SetRange(mark, p.pos)
			node.appendChild(nbsp)
			continue
		}
		p.pos = mark
		if p.peekLiteral(">>") {
			break
		}
		child, ok := p.parseInline(lastTerminal(node))
		if !ok {
			p.pos = save
			return nil, false
		}
		node.appendChild(child)
	}
	if len(node.Children()) == 0 || !p.match(">>") {
		p.pos = save
		return nil, false
	}
	node.SetRange(save, p.pos)
	return node, true
}

func (p *parser) peekLiteral(literal string) bool {
	save := p.pos
	ok := p.match(literal)
	p.pos = save
	return ok
}

func (p *parser) parseSmarts() (Node, bool) {
	start := p.pos
	var kind SimpleNodeType
	switch {
	case p.match("..."), p.match(". . ."):
		kind = Ellipsis
	case p.match("---"):
		kind = Emdash
	case p.match("--"):
		kind = Endash
	case p.matchChar('\''):
		kind = Apostrophe
	default:
		return nil, false
	}
	node := &SimpleNode{Type: kind}
	node.SetRange(start, p.pos)
	return node, true
}

//************* CODE ****************

func (p *parser) parseCode() (Node, bool) {
	if p.peek() != '`' {
		return nil, false
	}
	for n := 1; n <= 5; n++ {
		if node, ok := p.parseCodeWithTicks(n); ok {
			return node, true
		}
	}
	return nil, false
}

func (p *parser) parseCodeWithTicks(n int) (Node, bool) {
	save := p.pos
	if !p.ticks(n) {
		return nil, false
	}
	p.sp()
	contentStart := p.pos
	matched := false
	for {
		if p.peek() == '`' {
			if p.peekTicks(n) {
				break
			}
			for p.matchChar('`') {
			}
			matched = true
			continue
		}
		if p.peekSpTicks(n) {
			break
		}
		if p.nonspacechar() || p.spacechar() {
			matched = true
			continue
		}
		mark := p.pos
		if p.newline() {
			if p.peekBlankLine() {
				p.pos = mark
				break
			}
			matched = true
			continue
		}
		break
	}
	if !matched {
		p.pos = save
		return nil, false
	}
	content := string(p.src[contentStart:p.pos])
	p.sp()
	if !p.ticks(n) {
		p.pos = save
		return nil, false
	}
	node := &CodeNode{Text: content}
	node.SetRange(save, p.pos)
	return node, true
}

func (p *parser) ticks(n int) bool {
	save := p.pos
	for i := 0; i < n; i++ {
		if !p.matchChar('`') {
			p.pos = save
			return false
		}
	}
	if p.peek() == '`' {
		p.pos = save
		return false
	}
	return true
}

func (p *parser) peekTicks(n int) bool {
	save := p.pos
	ok := p.ticks(n)
	p.pos = save
	return ok
}

func (p *parser) peekSpTicks(n int) bool {
	save := p.pos
	p.sp()
	ok := p.ticks(n)
	p.pos = save
	return ok
}

//************* INLINE HTML ****************

func (p *parser) parseInlineHTML() (Node, bool) {
	start := p.pos
	if !p.htmlComment() && !p.htmlTag() {
		return nil, false
	}
	text := string(p.src[start:p.pos])
	if p.exts.Has(SuppressInlineHTML) {
		text = ""
	}
	node := &InlineHTMLNode{Text: text}
	node.SetRange(start, p.pos)
	return node, true
}

//************* FOOTNOTE REF ****************

func (p *parser) parseFootnoteRef() (Node, bool) {
	start := p.pos
	label, ok := p.footnoteLabel()
	if !ok {
		return nil, false
	}
	node := &FootnoteRefNode{Label: label}
	node.SetRange(start, p.pos)
	return node, true
}
