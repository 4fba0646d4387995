package mdh

// HeaderIDComputer derives the anchor id of a heading. anchor is the
// heading's anchor child when one was attached at parse time, headerText
// the accumulated text of the heading. An empty return means "no id":
// the heading is emitted without an anchor and the table of contents
// skips it.
type HeaderIDComputer interface {
	ComputeHeaderID(node *HeadingNode, anchor *AnchorLinkNode, headerText string) string
}

// DefaultHeaderIDComputer keeps the anchor name derived at parse time, or
// derives one from the heading text for headings without an anchor.
type DefaultHeaderIDComputer struct{}

// ComputeHeaderID implements HeaderIDComputer.
func (DefaultHeaderIDComputer) ComputeHeaderID(node *HeadingNode, anchor *AnchorLinkNode, headerText string) string {
	if anchor != nil {
		return anchor.Name
	}
	return generateAnchorName(headerText)
}

// computeHeaderIDs runs the id-computing pass over the whole tree before
// any HTML is emitted, so anchor ids are identical between the heading
// emit and every [TOC] emit, regardless of where the marker appears.
func computeHeaderIDs(root *RootNode, computer HeaderIDComputer) map[int]string {
	ids := make(map[int]string)
	Walk(root, func(node Node) bool {
		heading, ok := node.(*HeadingNode)
		if !ok {
			return true
		}
		var anchor *AnchorLinkNode
		if children := heading.Children(); len(children) > 0 {
			if a, isAnchor := children[0].(*AnchorLinkNode); isAnchor {
				anchor = a
			}
		}
		ids[heading.StartIndex()] = computer.ComputeHeaderID(heading, anchor, headingText(heading))
		return true
	})
	return ids
}

// headingText accumulates the visible text of a heading: plain text nodes
// and special text spanning a single source character (bare symbols;
// backslash escapes span two and are left out), at any depth.
func headingText(heading *HeadingNode) string {
	text := ""
	var walk func(Node)
	walk = func(n Node) {
		switch t := n.(type) {
		case *TextNode:
			text += t.Text
		case *SpecialTextNode:
			if t.EndIndex()-t.StartIndex() <= 1 {
				text += t.Text
			}
		default:
			for _, child := range n.Children() {
				walk(child)
			}
		}
	}
	for _, child := range heading.Children() {
		walk(child)
	}
	if text == "" {
		if children := heading.Children(); len(children) > 0 {
			if anchor, ok := children[0].(*AnchorLinkNode); ok {
				// wrapped anchors hold all the text
				return anchor.Text
			}
		}
	}
	return text
}
