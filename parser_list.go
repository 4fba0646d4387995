package mdh

//************* LISTS ****************

type listItemKind int

const (
	bulletItem listItemKind = iota
	orderedItem
	definitionItem
)

func (p *parser) parseBulletList() (Node, bool) {
	start := p.pos
	items, anyLoose, ok := p.parseListItems(p.bullet, bulletItem)
	if !ok {
		return nil, false
	}
	list := &BulletListNode{}
	list.setChildren(items)
	list.SetRange(start, p.pos)
	p.normalizeListLooseness(items, anyLoose)
	return list, true
}

func (p *parser) parseOrderedList() (Node, bool) {
	start := p.pos
	items, anyLoose, ok := p.parseListItems(p.enumerator, orderedItem)
	if !ok {
		return nil, false
	}
	list := &OrderedListNode{}
	list.setChildren(items)
	list.SetRange(start, p.pos)
	p.normalizeListLooseness(items, anyLoose)
	return list, true
}

func (p *parser) parseListItems(itemStart func() bool, kind listItemKind) ([]Node, bool, bool) {
	item, loose, ok := p.parseListItem(itemStart, kind)
	if !ok {
		return nil, false, false
	}
	items := []Node{item}
	anyLoose := loose
	for {
		save := p.pos
		// absorb all blank lines but the one preceding the next item, so
		// any number of blank lines may separate two items
		for {
			mark := p.pos
			if !p.blankLine() || !p.peekBlankLine() {
				p.pos = mark
				break
			}
		}
		next, loose, ok := p.parseListItem(itemStart, kind)
		if !ok {
			p.pos = save
			break
		}
		items = append(items, next)
		anyLoose = anyLoose || loose
	}
	return items, anyLoose, true
}

// normalizeListLooseness wraps the first sub-parse of every item in a
// paragraph once any item of the list is loose, or always under the
// ForceListItemPara extension. Looseness is a property of the list, not of
// individual items.
func (p *parser) normalizeListLooseness(items []Node, anyLoose bool) {
	if !anyLoose && !p.exts.Has(ForceListItemPara) {
		return
	}
	for _, item := range items {
		wrapFirstItemInPara(item)
	}
}

// wrapFirstItemInPara turns the bare inline run of the item's first
// sub-parse into a paragraph, leaving already-wrapped or non-inline
// content alone.
func wrapFirstItemInPara(item Node) {
	parent, ok := item.(interface {
		Children() []Node
		setChildren([]Node)
	})
	if !ok || len(parent.Children()) == 0 {
		return
	}
	first, ok := parent.Children()[0].(*RootNode)
	if !ok || len(first.Children()) == 0 {
		return
	}
	if _, ok := first.Children()[0].(*SuperNode); !ok {
		return
	}
	para := &ParaNode{}
	para.setChildren(first.Children())
	para.SetRange(first.StartIndex(), first.EndIndex())
	wrapper := &RootNode{}
	wrapper.setChildren([]Node{para})
	wrapper.SetRange(para.StartIndex(), para.EndIndex())
	children := parent.Children()
	children[0] = wrapper
}

// wrapFirstSubItemInPara propagates looseness into a nested list that is
// the sole content of a loose continuation block.
func wrapFirstSubItemInPara(sub *RootNode) {
	if len(sub.Children()) == 0 {
		return
	}
	first := sub.Children()[0]
	if len(first.Children()) != 1 {
		return
	}
	if item, ok := first.Children()[0].(*ListItemNode); ok {
		wrapFirstItemInPara(item)
	}
}

// parseListItem assembles one item: the marker line, lazy continuation
// lines, and indented continuation blocks. Every assembled segment is
// parsed recursively with marker and indent characters crossed out so
// source indices survive. The returned loose flag reports a blank line
// before the item or before one of its indented continuation blocks.
func (p *parser) parseListItem(itemStart func() bool, kind listItemKind) (Node, bool, bool) {
	startPos := p.pos
	delta := p.pos
	var block []rune
	itemLoose := false

	save := p.pos
	if p.blankLine() {
		block = append(block, crossed(p.pos-save)...)
		itemLoose = true
	}
	save = p.pos
	if !itemStart() {
		p.pos = startPos
		return nil, false, false
	}
	block = append(block, crossed(p.pos-save)...)

	taskDone := false
	taskMarker := ""
	if kind == bulletItem && p.exts.Has(TaskListItems) {
		save = p.pos
		switch {
		case p.match("[ ] "):
			taskMarker = "[ ] "
		case p.match("[x] "), p.match("[X] "):
			taskMarker = string(p.src[save:p.pos])
			taskDone = true
		}
		block = append(block, crossed(p.pos-save)...)
	}

	line, ok := p.line()
	if !ok {
		p.pos = startPos
		return nil, false, false
	}
	block = appendRunes(block, line)

	// lazy continuation lines of the marker line
	for {
		save := p.pos
		indentLen := 0
		if p.indent() {
			indentLen = p.pos - save
		}
		if p.peekItemBreak() {
			p.pos = save
			break
		}
		cont, ok := p.line()
		if !ok {
			p.pos = save
			break
		}
		block = append(block, crossed(indentLen)...)
		block = appendRunes(block, cont)
	}

	if itemLoose {
		block = append(block, '\n')
	}
	item := p.newListItem(kind, taskMarker, taskDone, p.subParse(block, delta))

	// indented continuation blocks
	for {
		segDelta := p.pos
		segLoose := p.peekBlankLine()
		seg, ok := p.collectIndentedBlocks()
		if !ok {
			break
		}
		if segLoose {
			seg = append(seg, '\n')
			itemLoose = true
		}
		sub := p.subParse(seg, segDelta)
		if segLoose {
			wrapFirstSubItemInPara(sub)
		}
		item.appendChild(sub)
	}

	children := item.Children()
	item.SetRange(children[0].StartIndex(), children[len(children)-1].EndIndex())
	return item, itemLoose, true
}

type listItemParent interface {
	Node
	appendChild(Node)
	SetRange(start, end int)
}

func (p *parser) newListItem(kind listItemKind, taskMarker string, taskDone bool, sub *RootNode) listItemParent {
	var item listItemParent
	switch {
	case kind == definitionItem:
		item = &DefinitionNode{}
	case taskMarker != "":
		item = &TaskListItemNode{Done: taskDone, Marker: taskMarker}
	default:
		item = &ListItemNode{}
	}
	item.appendChild(sub)
	return item
}

// collectIndentedBlocks gathers the indented continuation blocks of a list
// item: blank separators (all but one character crossed out), an indented
// line, and any following lines that are neither blank nor item starts.
func (p *parser) collectIndentedBlocks() ([]rune, bool) {
	var block []rune
	matched := false
	for {
		save := p.pos
		var line []rune
		for {
			mark := p.pos
			if !p.blankLine() {
				break
			}
			line = append(line, crossed(p.pos-mark-1)...)
			line = append(line, '\n')
		}
		mark := p.pos
		if !p.indent() {
			p.pos = save
			break
		}
		line = append(line, crossed(p.pos-mark)...)
		text, ok := p.line()
		if !ok {
			p.pos = save
			break
		}
		line = appendRunes(line, text)
		for {
			inner := p.pos
			if p.peekBlankLine() || p.peekItemStart() {
				break
			}
			indentLen := 0
			if p.indent() {
				indentLen = p.pos - inner
			}
			text, ok := p.line()
			if !ok {
				p.pos = inner
				break
			}
			line = append(line, crossed(indentLen)...)
			line = appendRunes(line, text)
		}
		block = append(block, line...)
		matched = true
	}
	if !matched {
		return nil, false
	}
	return block, true
}

// peekItemBreak reports a bullet, enumerator, blank line, horizontal rule
// or definition bullet ahead, any of which ends the lazy continuation of
// an item's marker line.
func (p *parser) peekItemBreak() bool {
	if p.peekBlankLine() || p.peekHRule() {
		return true
	}
	return p.peekItemStart()
}

// peekItemStart reports a bullet, enumerator or definition bullet ahead.
func (p *parser) peekItemStart() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if p.bullet() {
		return true
	}
	p.pos = save
	if p.enumerator() {
		return true
	}
	p.pos = save
	if p.exts.Has(Definitions) && p.defListBullet() {
		return true
	}
	return false
}

// bullet matches a +, * or - item marker that is not a horizontal rule.
func (p *parser) bullet() bool {
	if p.peekHRule() {
		return false
	}
	save := p.pos
	p.nonindentSpace()
	if !p.matchAny("+*-") {
		p.pos = save
		return false
	}
	if !p.spacechar() {
		p.pos = save
		return false
	}
	p.sp()
	return true
}

// enumerator matches a digits-and-dot item marker.
func (p *parser) enumerator() bool {
	save := p.pos
	p.nonindentSpace()
	digits := 0
	for p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
		digits++
	}
	if digits == 0 || !p.matchChar('.') {
		p.pos = save
		return false
	}
	if !p.spacechar() {
		p.pos = save
		return false
	}
	p.sp()
	return true
}

// defListBullet matches a : or ~ definition marker.
func (p *parser) defListBullet() bool {
	save := p.pos
	p.nonindentSpace()
	if !p.matchAny(":~") {
		p.pos = save
		return false
	}
	if !p.spacechar() {
		p.pos = save
		return false
	}
	p.sp()
	return true
}

//************** DEFINITION LISTS ************

func (p *parser) parseDefinitionList() (Node, bool) {
	start := p.pos
	if isSpacechar(p.peek()) || !p.peekDefinitionList() {
		return nil, false
	}
	list := &DefinitionListNode{}
	groups := 0
	for {
		var terms []Node
		for {
			term, ok := p.parseDefListTerm()
			if !ok {
				break
			}
			terms = append(terms, term)
		}
		if len(terms) == 0 {
			break
		}
		var defs []Node
		for {
			def, _, ok := p.parseListItem(p.defListBullet, definitionItem)
			if !ok {
				break
			}
			defs = append(defs, def)
		}
		if len(defs) == 0 {
			break
		}
		for _, term := range terms {
			list.appendChild(term)
		}
		for _, def := range defs {
			list.appendChild(def)
		}
		groups++
		p.blankLine()
	}
	if groups == 0 {
		p.pos = start
		return nil, false
	}
	list.SetRange(start, p.pos)
	return list, true
}

// peekDefinitionList tests for one or more term lines followed by a
// definition bullet before committing.
func (p *parser) peekDefinitionList() bool {
	save := p.pos
	defer func() { p.pos = save }()
	lines := 0
	for {
		if p.peekBlankLine() {
			break
		}
		mark := p.pos
		if p.defListBullet() {
			p.pos = mark
			break
		}
		if !p.notNewline() {
			break
		}
		if _, ok := p.line(); !ok {
			break
		}
		lines++
	}
	if lines == 0 {
		return false
	}
	for p.blankLine() {
	}
	return p.defListBullet()
}

func (p *parser) parseDefListTerm() (Node, bool) {
	save := p.pos
	if isSpacechar(p.peek()) {
		return nil, false
	}
	mark := p.pos
	if p.defListBullet() {
		p.pos = mark
		return nil, false
	}
	start := p.pos
	node := &DefinitionTermNode{}
	for {
		if !p.notNewline() || p.peekColonEOL() {
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
	p.matchChar(':')
	if !p.newline() {
		p.pos = save
		return nil, false
	}
	node.SetRange(start, p.pos)
	return node, true
}

// peekColonEOL reports a colon directly followed by the line end, which
// terminates the inline run of a term.
func (p *parser) peekColonEOL() bool {
	save := p.pos
	defer func() { p.pos = save }()
	return p.matchChar(':') && p.newline()
}
