package mdh

// ParserState is the surface of the parser exposed to grammar plugins. A
// plugin rule reads the cursor, consumes input on success, and must leave
// the position untouched on failure.
type ParserState struct {
	p *parser
}

// Pos returns the current rune position.
func (s *ParserState) Pos() int { return s.p.pos }

// SetPos moves the cursor, used to backtrack a failed plugin rule.
func (s *ParserState) SetPos(pos int) { s.p.pos = pos }

// Source returns the buffer currently being parsed. During a sub-parse
// this is the compacted inner buffer, not the original input.
func (s *ParserState) Source() []rune { return s.p.src }

// EOF reports whether the cursor is at end of input.
func (s *ParserState) EOF() bool { return s.p.eof() }

// Peek returns the rune at the cursor without consuming it, or -1 at EOF.
func (s *ParserState) Peek() rune { return s.p.peek() }

// Match consumes the literal when it is next in the input.
func (s *ParserState) Match(literal string) bool { return s.p.match(literal) }

// MatchChar consumes c when it is next in the input.
func (s *ParserState) MatchChar(c rune) bool { return s.p.matchChar(c) }

// Extensions returns the active extension bitset.
func (s *ParserState) Extensions() Extensions { return s.p.exts }

// InlinePlugin contributes alternatives to the inline rule set. Its rule
// is tried after the link rules and before the other built-in inline
// alternatives. SpecialChars lists
// characters that must interrupt plain text runs so the rule gets a chance
// to see them.
type InlinePlugin interface {
	ParseInline(s *ParserState) (Node, bool)
	SpecialChars() string
}

// BlockPlugin contributes alternatives to the block rule set, tried before
// the built-in block alternatives.
type BlockPlugin interface {
	ParseBlock(s *ParserState) (Node, bool)
}

// SerializerPlugin handles node kinds the built-in HTML serializer does
// not recognize. Visit returns true when the plugin emitted the node; the
// first acceptor wins.
type SerializerPlugin interface {
	Visit(node Node, serializer *HTMLSerializer, printer *Printer) bool
}

// Plugins bundles the grammar plugins handed to a Processor.
type Plugins struct {
	Inline []InlinePlugin
	Block  []BlockPlugin
}

func (p Plugins) specialChars() string {
	var chars string
	for _, plugin := range p.Inline {
		chars += plugin.SpecialChars()
	}
	return chars
}
