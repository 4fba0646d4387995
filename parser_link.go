package mdh

import "strings"

//************* LINKS ****************

func (p *parser) parseLink() (Node, bool) {
	start := p.pos
	if p.exts.Has(WikiLinks) {
		if node, ok := p.parseWikiLink(); ok {
			setRange(node, start, p.pos)
			return node, true
		}
	}
	if label, ok := p.parseLabel(); ok {
		var node Node
		if explicit, ok := p.parseExplicitLink(label, false); ok {
			node = explicit
		} else {
			node = p.parseReferenceLink(label, false)
		}
		setRange(node, start, p.pos)
		return node, true
	}
	if node, ok := p.parseAutoLink(); ok {
		setRange(node, start, p.pos)
		return node, true
	}
	return nil, false
}

// parseNonAutoLinkInline is the inline set used inside link labels:
// everything but autolinks, so a bare URL never terminates a label.
func (p *parser) parseNonAutoLinkInline(prev Node) (Node, bool) {
	start := p.pos
	if label, ok := p.parseLabel(); ok {
		var node Node
		if explicit, ok := p.parseExplicitLink(label, false); ok {
			node = explicit
		} else {
			node = p.parseReferenceLink(label, false)
		}
		setRange(node, start, p.pos)
		return node, true
	}
	return p.parseNonLinkInline(prev)
}

func setRange(node Node, start, end int) {
	type ranged interface{ SetRange(start, end int) }
	node.(ranged).SetRange(start, end)
}

// parseLabel matches a [bracketed] inline run. The emphasis nesting stack
// is swapped out so delimiters inside the label do not interact with
// delimiters around the link.
func (p *parser) parseLabel() (*SuperNode, bool) {
	save := p.pos
	if p.matchChar('[') {
		if !(p.exts.Has(Footnotes) && p.peek() == '^') {
			p.checkDeadline()
			node := &SuperNode{}
			savedNesting := p.emphNesting
			p.emphNesting = nil
			ok := true
			for p.peek() != ']' {
				child, good := p.parseNonAutoLinkInline(lastTerminal(node))
				if !good {
					ok = false
					break
				}
				node.appendChild(child)
			}
			p.emphNesting = savedNesting
			if ok && len(node.Children()) > 0 && p.matchChar(']') {
				node.SetRange(save, p.pos)
				return node, true
			}
		}
		p.pos = save
	}
	if p.exts.Has(IntelliJDummyIdentifier) {
		if p.match("[]") && p.peekEmptyLabelFollower() {
			node := &SuperNode{}
			node.SetRange(save, p.pos)
			return node, true
		}
		p.pos = save
	}
	return nil, false
}

// peekEmptyLabelFollower accepts an empty label only where a definition,
// another label or an explicit link tail follows.
func (p *parser) peekEmptyLabelFollower() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if p.matchChar(':') {
		return true
	}
	if p.peekLiteral("[]") {
		return true
	}
	if _, ok := p.parseLabel(); ok {
		return true
	}
	p.pos = save
	p.spn1()
	if !p.matchChar('(') {
		return false
	}
	p.sp()
	p.linkSource()
	p.spn1()
	p.linkTitle()
	p.sp()
	return p.matchChar(')')
}

func (p *parser) parseExplicitLink(label *SuperNode, image bool) (Node, bool) {
	save := p.pos
	p.spn1()
	if !p.matchChar('(') {
		p.pos = save
		return nil, false
	}
	p.sp()
	url := p.linkSource()
	p.spn1()
	title := p.linkTitle()
	p.sp()
	if !p.matchChar(')') {
		p.pos = save
		return nil, false
	}
	if image {
		node := &ExpImageNode{URL: url, Title: title}
		node.setChildren([]Node{label})
		return node, true
	}
	node := &ExpLinkNode{URL: url, Title: title}
	node.setChildren([]Node{label})
	return node, true
}

// parseReferenceLink always succeeds: a label without a link tail is an
// implicit reference link that resolves, or prints itself back, at
// serialization time.
func (p *parser) parseReferenceLink(label *SuperNode, image bool) Node {
	save := p.pos
	var key Node
	bracketed := false
	sep := p.spn1Text()
	if k, ok := p.parseLabel(); ok {
		key = k
		bracketed = true
	} else if p.match("[]") {
		bracketed = true
		if p.exts.Has(DummyReferenceKey) {
			key = DummyReferenceKeyNode
		}
	} else {
		p.pos = save
		sep = ""
	}
	if image {
		node := &RefImageNode{ReferenceKey: key, SeparatorSpace: sep, Bracketed: bracketed}
		node.setChildren([]Node{label})
		return node
	}
	node := &RefLinkNode{ReferenceKey: key, SeparatorSpace: sep, Bracketed: bracketed}
	node.setChildren([]Node{label})
	return node
}

// linkSource matches a link URL: angle- or paren-wrapped, or a run of
// non-space characters with \( and \) escapes. It may be empty.
func (p *parser) linkSource() string {
	save := p.pos
	if p.matchChar('(') {
		inner := p.linkSource()
		if p.matchChar(')') {
			return inner
		}
		p.pos = save
	}
	if p.matchChar('<') {
		inner := p.linkSource()
		if p.matchChar('>') {
			return inner
		}
		p.pos = save
	}
	var url []rune
	for {
		if p.matchChar('\\') {
			if p.matchAny("()") {
				url = append(url, p.src[p.pos-1])
				continue
			}
			p.pos--
		}
		r := p.peek()
		if r == '(' || r == ')' || r == '>' {
			break
		}
		if !p.nonspacechar() {
			break
		}
		url = append(url, r)
	}
	return string(url)
}

// linkTitle matches an optional single- or double-quoted title that ends
// where its delimiter is followed by ) or the line end.
func (p *parser) linkTitle() string {
	for _, delim := range []rune{'\'', '"'} {
		save := p.pos
		if !p.matchChar(delim) {
			continue
		}
		start := p.pos
		closed := false
		for {
			if p.peekTitleEnd(delim) {
				closed = true
				break
			}
			if !p.notNewline() {
				break
			}
			p.pos++
		}
		if closed {
			title := string(p.src[start:p.pos])
			p.matchChar(delim)
			return title
		}
		p.pos = save
	}
	return ""
}

func (p *parser) peekTitleEnd(delim rune) bool {
	save := p.pos
	defer func() { p.pos = save }()
	if !p.matchChar(delim) {
		return false
	}
	p.sp()
	return p.peek() == ')' || isNewlineChar(p.peek())
}

//************* AUTO LINKS ****************

func (p *parser) parseAutoLink() (Node, bool) {
	start := p.pos
	relaxed := p.exts.Has(Autolinks)
	hasAngle := p.matchChar('<')
	if !hasAngle && !relaxed {
		return nil, false
	}
	node, ok := p.autoLinkURL()
	if !ok {
		node, ok = p.autoLinkEmail()
	}
	if !ok {
		p.pos = start
		return nil, false
	}
	if relaxed {
		p.matchChar('>')
	} else if !p.matchChar('>') {
		p.pos = start
		return nil, false
	}
	return node, true
}

func (p *parser) autoLinkURL() (Node, bool) {
	save := p.pos
	letters := 0
	for p.isLetter(p.peek()) {
		p.pos++
		letters++
	}
	if letters == 0 || !p.match("://") || !p.autoLinkEnd() {
		p.pos = save
		return nil, false
	}
	node := &AutoLinkNode{Text: string(p.src[save:p.pos])}
	node.SetRange(save, p.pos)
	return node, true
}

func (p *parser) autoLinkEmail() (Node, bool) {
	save := p.pos
	chars := 0
	for p.isAlphanumeric(p.peek()) || p.peek() == '-' || p.peek() == '+' ||
		p.peek() == '_' || p.peek() == '.' {
		p.pos++
		chars++
	}
	if chars == 0 || !p.matchChar('@') || !p.autoLinkEnd() {
		p.pos = save
		return nil, false
	}
	node := &MailLinkNode{Text: string(p.src[save:p.pos])}
	node.SetRange(save, p.pos)
	return node, true
}

// autoLinkEnd consumes the tail of an autolink. Under the Autolinks
// extension the link stops before emphasis delimiters and before trailing
// punctuation followed by whitespace.
func (p *parser) autoLinkEnd() bool {
	count := 0
	stopChars := "<*>"
	if p.exts.Has(Strikethrough) {
		stopChars = "<*~>"
	}
	for {
		if p.eof() || isNewlineChar(p.peek()) {
			break
		}
		if p.exts.Has(Autolinks) {
			if strings.ContainsRune(stopChars, p.peek()) {
				break
			}
			if p.peekAutoLinkTerminator() {
				break
			}
		} else if p.peek() == '>' {
			break
		}
		p.pos++
		count++
	}
	return count > 0
}

func (p *parser) peekAutoLinkTerminator() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.matchAny(".,;:)}]\"'")
	return p.eof() || isSpacechar(p.peek()) || isNewlineChar(p.peek())
}

//************* WIKI LINKS ****************

func (p *parser) parseWikiLink() (*WikiLinkNode, bool) {
	save := p.pos
	if !p.match("[[") {
		return nil, false
	}
	start := p.pos
	for !p.peekLiteral("]]") {
		if p.eof() || p.peekBlankLine() {
			p.pos = save
			return nil, false
		}
		p.pos++
	}
	text := string(p.src[start:p.pos])
	if text == "" && !p.exts.Has(IntelliJDummyIdentifier) {
		p.pos = save
		return nil, false
	}
	p.match("]]")
	return &WikiLinkNode{Text: text}, true
}

//************* IMAGES ****************

func (p *parser) parseImage() (Node, bool) {
	start := p.pos
	if !p.matchChar('!') {
		return nil, false
	}
	alt, ok := p.parseImageAlt()
	if !ok {
		p.pos = start
		return nil, false
	}
	if p.exts.Has(MultiLineImageURLs) {
		if node, ok := p.parseMultiLineURLImage(alt); ok {
			setRange(node, start, p.pos)
			return node, true
		}
	}
	if node, ok := p.parseExplicitLink(alt, true); ok {
		setRange(node, start, p.pos)
		return node, true
	}
	node := p.parseReferenceLink(alt, true)
	setRange(node, start, p.pos)
	return node, true
}

// parseImageAlt matches the alt bracket of an image, which unlike a link
// label may be empty and never contains links.
func (p *parser) parseImageAlt() (*SuperNode, bool) {
	save := p.pos
	if !p.matchChar('[') {
		return nil, false
	}
	p.checkDeadline()
	node := &SuperNode{}
	savedNesting := p.emphNesting
	p.emphNesting = nil
	for p.peek() != ']' {
		child, ok := p.parseNonLinkInline(lastTerminal(node))
		if !ok {
			break
		}
		node.appendChild(child)
	}
	p.emphNesting = savedNesting
	if !p.matchChar(']') {
		p.pos = save
		return nil, false
	}
	node.SetRange(save, p.pos)
	return node, true
}

// parseMultiLineURLImage matches an image URL that opens with a trailing ?
// on its first line and absorbs everything up to a line-initial ) or
// "title") into the URL.
func (p *parser) parseMultiLineURLImage(alt *SuperNode) (Node, bool) {
	save := p.pos
	p.spn1()
	if !p.matchChar('(') {
		p.pos = save
		return nil, false
	}
	p.sp()
	url, ok := p.multiLineLinkSource()
	if !ok {
		p.pos = save
		return nil, false
	}
	title, ok := p.multiLineImageEnd()
	if !ok {
		p.pos = save
		return nil, false
	}
	node := &ExpImageNode{URL: url, Title: title}
	node.setChildren([]Node{alt})
	return node, true
}

func (p *parser) multiLineImageEnd() (string, bool) {
	save := p.pos
	p.nonindentSpace()
	title := p.linkTitle()
	if title != "" {
		p.sp()
	}
	if !p.matchChar(')') {
		p.pos = save
		return "", false
	}
	p.sp()
	if !p.newlineAhead() {
		p.pos = save
		return "", false
	}
	return title, true
}

func (p *parser) peekMultiLineImageEnd() bool {
	save := p.pos
	_, ok := p.multiLineImageEnd()
	p.pos = save
	return ok
}

func (p *parser) multiLineLinkSource() (string, bool) {
	save := p.pos
	var url []rune
	for {
		if p.matchChar('\\') {
			if p.matchAny("()?") {
				url = append(url, p.src[p.pos-1])
				continue
			}
			p.pos--
		}
		r := p.peek()
		if r == '(' || r == ')' || r == '?' {
			break
		}
		if !p.nonspacechar() {
			break
		}
		url = append(url, r)
	}
	if len(url) == 0 {
		p.pos = save
		return "", false
	}
	mark := p.pos
	if !p.matchChar('?') {
		p.pos = save
		return "", false
	}
	p.sp()
	if !p.newline() {
		p.pos = save
		return "", false
	}
	url = append(url, p.src[mark:p.pos]...)
	lines := 0
	for {
		if p.peekMultiLineImageEnd() {
			break
		}
		lineStart := p.pos
		for p.notNewline() {
			p.pos++
		}
		if !p.newline() {
			p.pos = save
			return "", false
		}
		url = append(url, p.src[lineStart:p.pos]...)
		lines++
	}
	if lines == 0 {
		p.pos = save
		return "", false
	}
	return string(url), true
}

//************* REFERENCES ****************

func (p *parser) parseReference() (Node, bool) {
	save := p.pos
	p.nonindentSpace()
	start := p.pos
	label, ok := p.parseLabel()
	if !ok || !p.matchChar(':') {
		p.pos = save
		return nil, false
	}
	p.spn1()
	url, ok := p.refSrc()
	if !ok {
		p.pos = save
		return nil, false
	}
	p.sp()
	title := p.refTitle()
	p.sp()
	if !p.newlineAhead() {
		p.pos = save
		return nil, false
	}
	node := &ReferenceNode{URL: url, Title: title}
	node.setChildren([]Node{label})
	node.SetRange(start, p.pos)
	p.newline()
	p.references = append(p.references, node)
	return node, true
}

func (p *parser) refSrc() (string, bool) {
	save := p.pos
	if p.matchChar('<') {
		if url, ok := p.refSrcContent(); ok && p.matchChar('>') {
			return url, true
		}
		p.pos = save
	}
	return p.refSrcContent()
}

func (p *parser) refSrcContent() (string, bool) {
	start := p.pos
	for p.peek() != '>' && p.nonspacechar() {
	}
	if p.pos == start {
		return "", false
	}
	return string(p.src[start:p.pos]), true
}

func (p *parser) refTitle() string {
	for _, pair := range [][2]rune{{'\'', '\''}, {'"', '"'}, {'(', ')'}} {
		save := p.pos
		if !p.matchChar(pair[0]) {
			continue
		}
		start := p.pos
		closed := false
		for {
			if p.peekRefTitleEnd(pair[1]) {
				closed = true
				break
			}
			if !p.notNewline() {
				break
			}
			p.pos++
		}
		if closed {
			title := string(p.src[start:p.pos])
			p.matchChar(pair[1])
			return title
		}
		p.pos = save
	}
	return ""
}

// peekRefTitleEnd reports the title's closing delimiter followed by the
// line end.
func (p *parser) peekRefTitleEnd(close rune) bool {
	save := p.pos
	defer func() { p.pos = save }()
	if !p.matchChar(close) {
		return false
	}
	p.sp()
	return isNewlineChar(p.peek()) || p.eof()
}

//************* FOOTNOTES ****************

func (p *parser) footnoteLabel() (string, bool) {
	save := p.pos
	if !p.match("[^") {
		return "", false
	}
	start := p.pos
	for p.isAlphanumericDashUnderDot(p.peek()) {
		p.pos++
	}
	if p.pos == start && !p.exts.Has(IntelliJDummyIdentifier) {
		p.pos = save
		return "", false
	}
	label := string(p.src[start:p.pos])
	if !p.matchChar(']') {
		p.pos = save
		return "", false
	}
	return label, true
}

func (p *parser) parseFootnoteDef() (Node, bool) {
	save := p.pos
	p.nonindentSpace()
	start := p.pos
	label, ok := p.footnoteLabel()
	if !ok {
		p.pos = save
		return nil, false
	}
	p.sp()
	if !p.matchChar(':') {
		p.pos = save
		return nil, false
	}
	p.sp()
	body := &SuperNode{}
	bodyStart := p.pos
	for p.notNewline() {
		child, ok := p.parseInline(lastTerminal(body))
		if !ok {
			break
		}
		body.appendChild(child)
	}
	if len(body.Children()) == 0 {
		p.pos = save
		return nil, false
	}
	body.SetRange(bodyStart, p.pos)
	node := &FootnoteNode{Label: label, Body: body}
	node.SetRange(start, p.pos)
	p.footnotes = append(p.footnotes, node)
	return node, true
}

//************* ABBREVIATIONS ****************

func (p *parser) parseAbbreviation() (Node, bool) {
	save := p.pos
	p.nonindentSpace()
	start := p.pos
	if !p.matchChar('*') {
		p.pos = save
		return nil, false
	}
	label, ok := p.parseLabel()
	if !ok {
		p.pos = save
		return nil, false
	}
	p.sp()
	if !p.matchChar(':') {
		p.pos = save
		return nil, false
	}
	p.sp()
	expansion := &SuperNode{}
	expStart := p.pos
	for p.notNewline() {
		child, ok := p.parseInline(lastTerminal(expansion))
		if !ok {
			break
		}
		expansion.appendChild(child)
	}
	expansion.SetRange(expStart, p.pos)
	node := &AbbreviationNode{Expansion: expansion}
	node.setChildren([]Node{label})
	node.SetRange(start, p.pos)
	p.abbreviations = append(p.abbreviations, node)
	return node, true
}

//*************** TOC *****************

func (p *parser) parseToc() (Node, bool) {
	save := p.pos
	p.nonindentSpace()
	start := p.pos
	if !p.match("[TOC") {
		p.pos = save
		return nil, false
	}
	level := 6
	mark := p.pos
	p.sp()
	if p.match("level=") && p.peek() >= '1' && p.peek() <= '9' {
		level = int(p.advance() - '0')
	} else {
		p.pos = mark
	}
	if !p.matchChar(']') {
		p.pos = save
		return nil, false
	}
	node := &TocNode{Level: level}
	node.SetRange(start, p.pos)
	p.tocNodes = append(p.tocNodes, node)
	return node, true
}
