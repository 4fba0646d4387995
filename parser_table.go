package mdh

//************* TABLES ****************

// parseTable matches optional header rows, a divider row that defines the
// column alignments, optional body rows and an optional caption. At least
// one header or body row is required.
func (p *parser) parseTable() (Node, bool) {
	start := p.pos
	table := &TableNode{}

	headerStart := p.pos
	if row, ok := p.parseTableRow(table, true); ok {
		header := &TableHeaderNode{}
		header.appendChild(row)
		for {
			row, ok := p.parseTableRow(table, true)
			if !ok {
				break
			}
			header.appendChild(row)
		}
		header.SetRange(headerStart, p.pos)
		table.appendChild(header)
	}

	if !p.parseTableDivider(table) {
		p.pos = start
		return nil, false
	}

	bodyStart := p.pos
	if row, ok := p.parseTableRow(table, false); ok {
		body := &TableBodyNode{}
		body.appendChild(row)
		for {
			row, ok := p.parseTableRow(table, false)
			if !ok {
				break
			}
			body.appendChild(row)
		}
		body.SetRange(bodyStart, p.pos)
		table.appendChild(body)
	}

	if len(table.Children()) == 0 {
		p.pos = start
		return nil, false
	}

	if caption, ok := p.parseTableCaption(); ok {
		table.appendChild(caption)
	}
	table.SetRange(start, p.pos)
	return table, true
}

// parseTableDivider matches the alignment row: cells of the form :?-+:?
// separated by |, requiring a leading or trailing pipe or at least two
// cells.
func (p *parser) parseTableDivider(table *TableNode) bool {
	save := p.pos
	pipeSeen := p.matchChar('|')
	columns := 0
	for {
		col, sawPipe, ok := p.parseTableColumn()
		if !ok {
			break
		}
		pipeSeen = pipeSeen || sawPipe
		table.Columns = append(table.Columns, col)
		columns++
	}
	if columns == 0 || !(pipeSeen || columns >= 2) {
		p.pos = save
		table.Columns = nil
		return false
	}
	p.sp()
	if !p.newline() {
		p.pos = save
		table.Columns = nil
		return false
	}
	return true
}

func (p *parser) parseTableColumn() (*TableColumnNode, bool, bool) {
	save := p.pos
	start := p.pos
	col := &TableColumnNode{}
	p.sp()
	if p.matchChar(':') {
		col.markLeftAligned()
	}
	p.sp()
	dashes := 0
	for p.matchChar('-') {
		dashes++
	}
	if dashes == 0 {
		p.pos = save
		return nil, false, false
	}
	p.sp()
	if p.matchChar(':') {
		col.markRightAligned()
	}
	p.sp()
	sawPipe := p.matchChar('|')
	col.SetRange(start, p.pos)
	return col, sawPipe, true
}

// parseTableRow matches one pipe-separated row. Before the divider has
// been seen a row whose cells all look like divider cells must not match,
// so the divider row itself is left for parseTableDivider.
func (p *parser) parseTableRow(table *TableNode, beforeDivider bool) (Node, bool) {
	save := p.pos
	start := p.pos
	row := &TableRowNode{}
	leadingPipe := p.matchChar('|')
	for {
		cell, ok := p.parseTableCell(beforeDivider)
		if !ok {
			break
		}
		row.appendChild(cell)
	}
	cells := len(row.Children())
	if cells == 0 {
		p.pos = save
		return nil, false
	}
	if !leadingPipe && cells <= 1 && p.at(p.pos-1) != '|' {
		p.pos = save
		return nil, false
	}
	p.sp()
	if !p.newline() {
		p.pos = save
		return nil, false
	}
	row.SetRange(start, p.pos)
	return row, true
}

func (p *parser) parseTableCell(beforeDivider bool) (Node, bool) {
	save := p.pos
	start := p.pos
	if beforeDivider && p.peekDividerCell() {
		return nil, false
	}
	cell := &TableCellNode{}
	mark := p.pos
	p.sp()
	if p.peek() == '|' || !p.notNewline() {
		p.pos = mark
	}
	for {
		if p.peek() == '|' || p.peekSpEOL() {
			break
		}
		child, ok := p.parseInline(lastTerminal(cell))
		if !ok {
			break
		}
		cell.appendChild(child)
	}
	if len(cell.Children()) == 0 {
		p.pos = save
		return nil, false
	}
	cell.SetRange(start, p.pos)
	pipes := 0
	for p.matchChar('|') {
		pipes++
	}
	cell.ColSpan = pipes
	if cell.ColSpan < 1 {
		cell.ColSpan = 1
	}
	return cell, true
}

// peekDividerCell reports a divider-shaped cell ahead: :?-+:? closed by a
// pipe or the line end.
func (p *parser) peekDividerCell() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.sp()
	p.matchChar(':')
	p.sp()
	dashes := 0
	for p.matchChar('-') {
		dashes++
	}
	if dashes == 0 {
		return false
	}
	p.sp()
	p.matchChar(':')
	p.sp()
	return p.peek() == '|' || isNewlineChar(p.peek()) || p.eof()
}

func (p *parser) peekSpEOL() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.sp()
	return isNewlineChar(p.peek()) || p.eof()
}

//************* TABLE CAPTION ****************

func (p *parser) parseTableCaption() (Node, bool) {
	save := p.pos
	if !p.matchChar('[') {
		return nil, false
	}
	if p.exts.Has(Footnotes) && p.peek() == '^' {
		p.pos = save
		return nil, false
	}
	p.sp()
	start := p.pos
	caption := &TableCaptionNode{}
	for {
		if !p.notNewline() || p.peekCaptionEnd() {
			break
		}
		child, ok := p.parseInline(lastTerminal(caption))
		if !ok {
			break
		}
		caption.appendChild(child)
	}
	if len(caption.Children()) == 0 {
		p.pos = save
		return nil, false
	}
	caption.SetRange(start, p.pos)
	p.sp()
	p.matchChar(']')
	p.sp()
	if !p.newline() {
		p.pos = save
		return nil, false
	}
	return caption, true
}

// peekCaptionEnd reports the optional ] and the line end ahead.
func (p *parser) peekCaptionEnd() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.sp()
	p.matchChar(']')
	p.sp()
	return isNewlineChar(p.peek()) || p.eof()
}
