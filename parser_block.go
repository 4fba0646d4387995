package mdh

//************* BLOCKS ****************

// parseRoot builds the root of one buffer. The grammar guarantees progress
// for any non-empty remainder, but a zero-width plugin match would stall
// the loop, so progress is enforced.
func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	start := p.pos
	for {
		before := p.pos
		node, ok := p.parseBlock()
		if !ok || p.pos == before {
			break
		}
		root.appendChild(node)
	}
	root.SetRange(start, p.pos)
	return root
}

// parseBlock skips blank lines and tries the block alternatives in order;
// the first match wins.
func (p *parser) parseBlock() (Node, bool) {
	save := p.pos
	for p.blankLine() {
	}
	for _, plugin := range p.plugins.Block {
		if node, ok := plugin.ParseBlock(&ParserState{p: p}); ok {
			return node, true
		}
	}
	if node, ok := p.parseBlockQuote(); ok {
		return node, true
	}
	if node, ok := p.parseVerbatim(); ok {
		return node, true
	}
	if p.exts.Has(Footnotes) {
		if node, ok := p.parseFootnoteDef(); ok {
			return node, true
		}
	}
	if p.exts.Has(Abbreviations) {
		if node, ok := p.parseAbbreviation(); ok {
			return node, true
		}
	}
	if node, ok := p.parseReference(); ok {
		return node, true
	}
	if node, ok := p.parseHorizontalRule(); ok {
		return node, true
	}
	if node, ok := p.parseHeading(); ok {
		return node, true
	}
	if node, ok := p.parseOrderedList(); ok {
		return node, true
	}
	if node, ok := p.parseBulletList(); ok {
		return node, true
	}
	if node, ok := p.parseHTMLBlock(); ok {
		return node, true
	}
	if p.exts.Has(Tables) {
		if node, ok := p.parseTable(); ok {
			return node, true
		}
	}
	if p.exts.Has(Definitions) {
		if node, ok := p.parseDefinitionList(); ok {
			return node, true
		}
	}
	if p.exts.Has(FencedCodeBlocks) {
		if node, ok := p.parseFencedCodeBlock(); ok {
			return node, true
		}
	}
	if p.exts.Has(Toc) {
		if node, ok := p.parseToc(); ok {
			return node, true
		}
	}
	if node, ok := p.parsePara(); ok {
		return node, true
	}
	if node, ok := p.parseInlines(); ok {
		return node, true
	}
	p.pos = save
	return nil, false
}

// parsePara matches inline content followed by a blank line or end of
// input. The blank line is only tested, never consumed, so it remains
// available for the next block.
func (p *parser) parsePara() (Node, bool) {
	save := p.pos
	p.nonindentSpace()
	start := p.pos
	inlines, ok := p.parseInlines()
	if !ok {
		p.pos = save
		return nil, false
	}
	if !p.peekBlankLine() {
		p.pos = save
		return nil, false
	}
	node := &ParaNode{}
	node.appendChild(inlines)
	node.SetRange(start, p.pos)
	return node, true
}

//************* BLOCK QUOTE ****************

// parseBlockQuote strips one leading > (and an optional single space) from
// each quoted line into a sub-parse buffer, keeping trailing blank lines
// only when another > line follows. Two newlines are appended so the inner
// parse terminates its last paragraph.
func (p *parser) parseBlockQuote() (Node, bool) {
	start := p.pos
	var inner []rune
	matched := false
	for {
		save := p.pos
		if !p.matchChar('>') {
			break
		}
		prefix := 1
		if p.matchChar(' ') {
			prefix = 2
		}
		line, ok := p.line()
		if !ok {
			p.pos = save
			break
		}
		inner = append(inner, crossed(prefix)...)
		inner = appendRunes(inner, line)
		matched = true
		// trailing blank lines belong to the quote only when another
		// quoted line follows
		blanksStart := p.pos
		blanks := 0
		for p.blankLine() {
			blanks++
		}
		if blanks > 0 {
			if p.peek() != '>' {
				p.pos = blanksStart
				break
			}
			inner = appendRunes(inner, string(p.src[blanksStart:p.pos]))
		}
	}
	if !matched {
		p.pos = start
		return nil, false
	}
	inner = append(inner, '\n', '\n')
	sub := p.subParse(inner, start)
	node := &BlockQuoteNode{}
	node.setChildren(sub.Children())
	node.SetRange(start, p.pos)
	return node, true
}

//************* VERBATIM ****************

// parseVerbatim consumes lines indented by a tab or four spaces, expanding
// interior tabs to the next multiple of four columns and preserving blank
// lines inside the block.
func (p *parser) parseVerbatim() (Node, bool) {
	start := p.pos
	var text []rune
	matched := false
	for {
		save := p.pos
		var line []rune
		for p.blankLine() {
			line = append(line, '\n')
		}
		if !p.indent() {
			p.pos = save
			break
		}
		lineStart := len(line)
		chars := 0
		for {
			if p.matchChar('\t') {
				col := len(line) - lineStart
				for i := 0; i < 4-col%4; i++ {
					line = append(line, ' ')
				}
				chars++
				continue
			}
			if p.notNewline() {
				line = append(line, p.advance())
				chars++
				continue
			}
			break
		}
		if chars == 0 || !p.newline() {
			p.pos = save
			break
		}
		text = append(text, line...)
		text = append(text, '\n')
		matched = true
	}
	if !matched {
		p.pos = start
		return nil, false
	}
	node := &VerbatimNode{Text: string(text)}
	node.SetRange(start, p.pos)
	return node, true
}

//************* FENCED CODE ****************

// parseFencedCodeBlock matches an opening fence of three or more backticks
// or tildes with an optional language tag, raw lines, and a closing fence
// of the same character with equal or greater length. Without a closing
// fence the whole rule backtracks.
func (p *parser) parseFencedCodeBlock() (Node, bool) {
	start := p.pos
	marker, length, info, ok := p.openCodeFence()
	if !ok {
		return nil, false
	}
	var text []rune
	matched := false
	for {
		if p.peekCloseCodeFence(marker, length) {
			break
		}
		save := p.pos
		lineStart := p.pos
		for p.notNewline() {
			p.pos++
		}
		if !p.newline() {
			p.pos = save
			break
		}
		text = append(text, p.src[lineStart:p.pos]...)
		matched = true
	}
	if !matched || !p.closeCodeFence(marker, length) {
		p.pos = start
		return nil, false
	}
	node := &VerbatimNode{Text: string(text), Type: info}
	node.SetRange(start, p.pos)
	return node, true
}

func (p *parser) openCodeFence() (rune, int, string, bool) {
	save := p.pos
	marker := '`'
	length, ok := p.nOrMore('`', 3)
	if !ok {
		marker = '~'
		if length, ok = p.nOrMore('~', 3); !ok {
			return 0, 0, "", false
		}
	}
	p.sp()
	infoStart := p.pos
	for p.notNewline() && p.peek() != '`' && p.peek() != '~' {
		p.pos++
	}
	info := string(p.src[infoStart:p.pos])
	if !p.newline() {
		p.pos = save
		return 0, 0, "", false
	}
	return marker, length, info, true
}

func (p *parser) closeCodeFence(marker rune, length int) bool {
	save := p.pos
	count, ok := p.nOrMore(marker, 3)
	if !ok || count < length {
		p.pos = save
		return false
	}
	p.sp()
	for p.notNewline() && p.peek() != '`' && p.peek() != '~' {
		p.pos++
	}
	if !p.newline() {
		p.pos = save
		return false
	}
	return true
}

func (p *parser) peekCloseCodeFence(marker rune, length int) bool {
	save := p.pos
	ok := p.closeCodeFence(marker, length)
	p.pos = save
	return ok
}

//************* HORIZONTAL RULE ****************

func (p *parser) parseHorizontalRule() (Node, bool) {
	save := p.pos
	p.nonindentSpace()
	start := p.pos
	if !p.hruleLine() {
		p.pos = save
		return nil, false
	}
	node := &SimpleNode{Type: HRule}
	node.SetRange(start, p.pos)
	return node, true
}

// hruleLine matches the characters of a horizontal rule up to and
// including its newline, plus the blank-line requirement.
func (p *parser) hruleLine() bool {
	save := p.pos
	if !p.hruleChars('*') && !p.hruleChars('-') && !p.hruleChars('_') {
		return false
	}
	p.sp()
	if !p.newline() {
		p.pos = save
		return false
	}
	if !p.exts.Has(RelaxedHRules) && !p.peekBlankLine() {
		p.pos = save
		return false
	}
	return true
}

func (p *parser) peekHRule() bool {
	save := p.pos
	p.nonindentSpace()
	ok := p.hruleLine()
	p.pos = save
	return ok
}

func (p *parser) hruleChars(c rune) bool {
	save := p.pos
	for i := 0; i < 3; i++ {
		if i > 0 {
			p.sp()
		}
		if !p.matchChar(c) {
			p.pos = save
			return false
		}
	}
	for {
		more := p.pos
		p.sp()
		if !p.matchChar(c) {
			p.pos = more
			break
		}
	}
	return true
}

//************* HEADINGS ****************

func (p *parser) parseHeading() (Node, bool) {
	if node, ok := p.parseAtxHeading(); ok {
		return node, true
	}
	return p.parseSetextHeading()
}

func (p *parser) parseAtxHeading() (Node, bool) {
	save := p.pos
	start := p.pos
	level := 0
	for level < 6 && p.matchChar('#') {
		level++
	}
	if level == 0 {
		p.pos = save
		return nil, false
	}
	node := &HeadingNode{Level: level, IsToc: p.exts.Has(Toc)}
	if p.exts.Has(ATXHeaderSpace) && !p.spacechar() {
		p.pos = save
		return nil, false
	}
	p.sp()
	for {
		if p.peekAtxTrailer() {
			break
		}
		child, ok := p.parseInline(lastTerminal(node))
		if !ok {
			break
		}
		node.appendChild(child)
	}
	if len(node.Children()) == 0 {
		p.pos = save
		return nil, false
	}
	p.wrapInAnchor(node)
	p.sp()
	for p.matchChar('#') {
	}
	p.sp()
	if !p.newline() {
		p.pos = save
		return nil, false
	}
	node.SetRange(start, p.pos)
	p.headings = append(p.headings, node)
	return node, true
}

// peekAtxTrailer reports whether the cursor is at the optional trailing
// hash run of an ATX heading, or at the end of its line.
func (p *parser) peekAtxTrailer() bool {
	save := p.pos
	p.sp()
	for p.matchChar('#') {
	}
	p.sp()
	ok := p.eof() || isNewlineChar(p.peek())
	p.pos = save
	return ok
}

func (p *parser) parseSetextHeading() (Node, bool) {
	if !p.peekSetextUnderline() {
		return nil, false
	}
	if node, ok := p.parseSetextHeadingOf('=', 1); ok {
		return node, true
	}
	return p.parseSetextHeadingOf('-', 2)
}

// peekSetextUnderline tests for a non-empty line followed by a line of at
// least three = or - characters before committing to the heading parse.
func (p *parser) peekSetextUnderline() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if !p.notNewline() {
		return false
	}
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
	p.sp()
	return p.newlineAhead()
}

func (p *parser) newlineAhead() bool {
	save := p.pos
	ok := p.newline()
	p.pos = save
	return ok
}

func (p *parser) parseSetextHeadingOf(c rune, level int) (Node, bool) {
	save := p.pos
	start := p.pos
	node := &HeadingNode{Level: level, IsToc: p.exts.Has(Toc), IsSetext: true}
	for {
		if p.peekEndline() {
			break
		}
		child, ok := p.parseInline(lastTerminal(node))
		if !ok {
			break
		}
		node.appendChild(child)
	}
	if len(node.Children()) == 0 {
		p.pos = save
		return nil, false
	}
	p.wrapInAnchor(node)
	p.sp()
	if !p.newline() {
		p.pos = save
		return nil, false
	}
	if _, ok := p.nOrMore(c, 3); !ok {
		p.pos = save
		return nil, false
	}
	p.sp()
	if !p.newline() {
		p.pos = save
		return nil, false
	}
	node.SetRange(start, p.pos)
	p.headings = append(p.headings, node)
	return node, true
}

// wrapInAnchor attaches the anchor node required by the anchor-link
// extensions. The extended variant collects the text of all children and
// either prepends an empty-text anchor or wraps the whole text; the plain
// variant applies only to headings with a single text child.
func (p *parser) wrapInAnchor(node *HeadingNode) {
	if !p.exts.Has(AnchorLinks | ExtAnchorLinks) {
		return
	}
	children := node.Children()
	if p.exts.Has(ExtAnchorLinks) {
		if len(children) == 0 {
			return
		}
		text, textStart, textEnd := collectChildrenText(node)
		text = trimSpaces(text)
		if text == "" {
			return
		}
		if p.exts.Has(ExtAnchorLinksWrap) {
			anchor := NewAnchorLinkNode(text, text)
			anchor.SetRange(textStart, textEnd)
			node.setChildren([]Node{anchor})
		} else {
			anchor := NewAnchorLinkNode(text, "")
			anchor.SetRange(textStart, textEnd)
			node.setChildren(append([]Node{anchor}, children...))
		}
		return
	}
	if len(children) == 1 {
		if text, ok := children[0].(*TextNode); ok {
			anchor := NewAnchorLinkNode(text.Text, text.Text)
			anchor.SetRange(text.StartIndex(), text.EndIndex())
			node.setChildren([]Node{anchor})
		}
	}
}

// collectChildrenText accumulates the text of every TextNode and
// SpecialTextNode below node, with the source range of the run.
func collectChildrenText(node Node) (string, int, int) {
	text := ""
	start, end := 0, 0
	seen := false
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case *TextNode:
			text += t.Text
		case *SpecialTextNode:
			text += t.Text
		default:
			for _, child := range n.Children() {
				walk(child)
			}
			return
		}
		if !seen {
			start = n.StartIndex()
			seen = true
		}
		end = n.EndIndex()
	}
	for _, child := range node.Children() {
		walk(child)
	}
	return text, start, end
}

func trimSpaces(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}

//************* HTML BLOCK ****************

func (p *parser) parseHTMLBlock() (Node, bool) {
	save := p.pos
	start := p.pos
	if !p.htmlBlockInTags() && !p.htmlComment() && !p.htmlBlockSelfClosing() {
		p.pos = save
		return nil, false
	}
	text := string(p.src[start:p.pos])
	if !p.blankLine() {
		p.pos = save
		return nil, false
	}
	if p.exts.Has(SuppressHTMLBlocks) {
		text = ""
	}
	node := &HTMLBlockNode{Text: text}
	node.SetRange(start, p.pos)
	return node, true
}

func (p *parser) htmlBlockInTags() bool {
	save := p.pos
	tag, ok := p.htmlBlockOpen("")
	p.pos = save
	if !ok {
		return false
	}
	return p.htmlTagBlock(tag)
}

// htmlTagBlock matches a balanced run of tag, allowing nested occurrences
// of the same tag.
func (p *parser) htmlTagBlock(tag string) bool {
	save := p.pos
	if _, ok := p.htmlBlockOpen(tag); !ok {
		p.pos = save
		return false
	}
	for {
		if p.htmlTagBlock(tag) {
			continue
		}
		if p.peekHTMLBlockClose(tag) {
			break
		}
		if p.eof() {
			p.pos = save
			return false
		}
		p.pos++
	}
	if !p.htmlBlockClose(tag) {
		p.pos = save
		return false
	}
	return true
}

// htmlBlockOpen matches an opening tag. With want empty, any known
// block-capable tag name is accepted and returned lowercased; otherwise
// the name must repeat want.
func (p *parser) htmlBlockOpen(want string) (string, bool) {
	save := p.pos
	if !p.matchChar('<') {
		return "", false
	}
	p.spn1()
	tag, ok := p.definedHTMLTagName(want)
	if !ok {
		p.pos = save
		return "", false
	}
	p.spn1()
	for p.htmlAttribute() {
	}
	if !p.matchChar('>') {
		p.pos = save
		return "", false
	}
	return tag, true
}

func (p *parser) htmlBlockClose(tag string) bool {
	save := p.pos
	if !p.matchChar('<') {
		return false
	}
	p.spn1()
	if !p.matchChar('/') {
		p.pos = save
		return false
	}
	nameStart := p.pos
	for p.isAlphanumeric(p.peek()) {
		p.pos++
	}
	if p.pos == nameStart || string(p.src[nameStart:p.pos]) != tag {
		p.pos = save
		return false
	}
	p.spn1()
	if !p.matchChar('>') {
		p.pos = save
		return false
	}
	return true
}

func (p *parser) peekHTMLBlockClose(tag string) bool {
	save := p.pos
	ok := p.htmlBlockClose(tag)
	p.pos = save
	return ok
}

func (p *parser) htmlBlockSelfClosing() bool {
	save := p.pos
	if !p.matchChar('<') {
		return false
	}
	p.spn1()
	if _, ok := p.definedHTMLTagName(""); !ok {
		p.pos = save
		return false
	}
	p.spn1()
	for p.htmlAttribute() {
	}
	p.matchChar('/')
	p.spn1()
	if !p.matchChar('>') {
		p.pos = save
		return false
	}
	return true
}

func (p *parser) definedHTMLTagName(want string) (string, bool) {
	save := p.pos
	nameStart := p.pos
	for p.isAlphanumeric(p.peek()) {
		p.pos++
	}
	if p.pos == nameStart {
		return "", false
	}
	name := toLowerASCII(string(p.src[nameStart:p.pos]))
	if want != "" {
		if name != want {
			p.pos = save
			return "", false
		}
		return name, true
	}
	if !htmlTags[name] {
		p.pos = save
		return "", false
	}
	return name, true
}

func (p *parser) htmlAttribute() bool {
	save := p.pos
	nameStart := p.pos
	for p.isAlphanumeric(p.peek()) || p.peek() == '-' || p.peek() == '_' {
		p.pos++
	}
	if p.pos == nameStart {
		return false
	}
	p.spn1()
	if p.matchChar('=') {
		p.spn1()
		if !p.htmlQuoted() {
			chars := 0
			for p.peek() != '>' && p.nonspacechar() {
				chars++
			}
			if chars == 0 {
				p.pos = save
				return false
			}
		}
	}
	p.spn1()
	return true
}

func (p *parser) htmlQuoted() bool {
	for _, q := range []rune{'"', '\''} {
		save := p.pos
		if !p.matchChar(q) {
			continue
		}
		for !p.eof() && p.peek() != q {
			p.pos++
		}
		if p.matchChar(q) {
			return true
		}
		p.pos = save
	}
	return false
}

func (p *parser) htmlComment() bool {
	save := p.pos
	if !p.match("<!--") {
		return false
	}
	for !p.eof() {
		if p.match("-->") {
			return true
		}
		p.pos++
	}
	p.pos = save
	return false
}

// htmlTag matches a single inline opening, closing or self-closing tag
// with an arbitrary name.
func (p *parser) htmlTag() bool {
	save := p.pos
	if !p.matchChar('<') {
		return false
	}
	p.spn1()
	p.matchChar('/')
	nameStart := p.pos
	for p.isAlphanumeric(p.peek()) {
		p.pos++
	}
	if p.pos == nameStart {
		p.pos = save
		return false
	}
	p.spn1()
	for p.htmlAttribute() {
	}
	p.matchChar('/')
	p.spn1()
	if !p.matchChar('>') {
		p.pos = save
		return false
	}
	return true
}

func toLowerASCII(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}

var htmlTags = map[string]bool{
	"html": true,
	"base": true, "head": true, "link": true, "meta": true, "style": true, "title": true,
	"address": true, "article": true, "aside": true, "body": true, "footer": true,
	"header": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hgroup": true, "nav": true, "section": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"hr": true, "li": true, "main": true, "ol": true, "p": true, "pre": true, "ul": true,
	"a": true, "b": true, "bdi": true, "bdo": true, "br": true, "cite": true, "code": true,
	"data": true, "dfn": true, "em": true, "i": true, "kbd": true, "mark": true, "q": true,
	"rp": true, "rt": true, "rtc": true, "ruby": true, "s": true, "samp": true,
	"small": true, "span": true, "strong": true, "sub": true, "sup": true, "time": true,
	"u": true, "var": true, "wbr": true,
	"area": true, "audio": true, "img": true, "map": true, "track": true, "video": true,
	"embed": true, "iframe": true, "object": true, "param": true, "source": true,
	"canvas": true, "noscript": true, "script": true,
	"del": true, "ins": true,
	"caption": true, "col": true, "colgroup": true, "table": true, "tbody": true,
	"td": true, "tfoot": true, "th": true, "thead": true, "tr": true,
	"button": true, "datalist": true, "fieldset": true, "form": true, "input": true,
	"keygen": true, "label": true, "legend": true, "meter": true, "optgroup": true,
	"option": true, "output": true, "progress": true, "select": true, "textarea": true,
	"details": true, "dialog": true, "menu": true, "menuitem": true, "summary": true,
	"content": true, "decorator": true, "element": true, "shadow": true, "template": true,
	"acronym": true, "applet": true, "basefont": true, "big": true, "blink": true,
	"center": true, "dir": true, "frame": true, "frameset": true, "isindex": true,
	"listing": true, "noembed": true, "plaintext": true, "spacer": true, "strike": true,
	"tt": true, "xmp": true,
}
