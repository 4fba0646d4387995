package mdh

import (
	"errors"
	"time"
)

var (
	// ErrTimeout reports that parsing exceeded the configured deadline.
	ErrTimeout = errors.New("markdown parsing deadline exceeded")
	// ErrParseFailure reports input the grammar could not consume.
	ErrParseFailure = errors.New("markdown parse failed")
)

// DefaultMaxParsingTime bounds a single parse unless overridden with
// WithMaxParsingTime.
const DefaultMaxParsingTime = 2 * time.Second

// Processor parses Markdown and renders HTML. A Processor owns mutable
// parser state and is not safe for concurrent use; reuse it sequentially
// or create one per goroutine.
type Processor struct {
	exts           Extensions
	maxParsingTime time.Duration
	plugins        Plugins
}

// Option configures a Processor.
type Option func(*Processor)

// WithMaxParsingTime sets the parsing deadline; zero disables it.
func WithMaxParsingTime(d time.Duration) Option {
	return func(p *Processor) {
		p.maxParsingTime = d
	}
}

// WithPlugins registers grammar plugins.
func WithPlugins(plugins Plugins) Option {
	return func(p *Processor) {
		p.plugins = plugins
	}
}

// New creates a Processor for the given extension set.
func New(exts Extensions, opts ...Option) *Processor {
	p := &Processor{exts: exts, maxParsingTime: DefaultMaxParsingTime}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Parse parses source into a document tree. Two phantom newlines are
// appended before parsing so that a final line without a terminator still
// closes its block; indices are clamped back to the source afterwards, so
// every index satisfies 0 <= start <= end <= len([]rune(source)).
func (p *Processor) Parse(source string) (*RootNode, error) {
	runes := []rune(source)
	padded := make([]rune, 0, len(runes)+2)
	padded = append(padded, runes...)
	padded = append(padded, '\n', '\n')

	par := newParser(p.exts, p.maxParsingTime, p.plugins)
	root, err := par.parse(padded)
	if err != nil {
		return nil, err
	}
	for i := root.EndIndex(); i < len(runes); i++ {
		if !isSpacechar(padded[i]) && !isNewlineChar(padded[i]) {
			return nil, ErrParseFailure
		}
	}
	clampIndices(root, len(runes))
	return root, nil
}

// MarkdownToHTML parses source and renders it with the default serializer
// configuration.
func (p *Processor) MarkdownToHTML(source string) (string, error) {
	return p.MarkdownToHTMLWith(source)
}

// MarkdownToHTMLWith parses source and renders it with a customized
// serializer, for example a subclassed link renderer or per-language
// verbatim serializers.
func (p *Processor) MarkdownToHTMLWith(source string, opts ...SerializeOption) (string, error) {
	root, err := p.Parse(source)
	if err != nil {
		return "", err
	}
	return NewHTMLSerializer(opts...).ToHTML(root), nil
}

// clampIndices pulls every index that points into the phantom-newline
// region back to the source length.
func clampIndices(node Node, max int) {
	walkAll(node, func(n Node) {
		if setter, ok := n.(interface{ SetRange(start, end int) }); ok {
			start, end := n.StartIndex(), n.EndIndex()
			if start > max {
				start = max
			}
			if end > max {
				end = max
			}
			setter.SetRange(start, end)
		}
	})
}

// walkAll visits every node in the subtree, including the members that are
// not ordinary children: reference keys, abbreviation expansions, footnote
// bodies and table columns.
func walkAll(node Node, fn func(Node)) {
	fn(node)
	switch t := node.(type) {
	case *RefLinkNode:
		if t.ReferenceKey != nil && t.ReferenceKey != Node(DummyReferenceKeyNode) {
			walkAll(t.ReferenceKey, fn)
		}
	case *RefImageNode:
		if t.ReferenceKey != nil && t.ReferenceKey != Node(DummyReferenceKeyNode) {
			walkAll(t.ReferenceKey, fn)
		}
	case *AbbreviationNode:
		if t.Expansion != nil {
			walkAll(t.Expansion, fn)
		}
	case *FootnoteNode:
		if t.Body != nil {
			walkAll(t.Body, fn)
		}
	case *TableNode:
		for _, col := range t.Columns {
			walkAll(col, fn)
		}
	}
	for _, child := range node.Children() {
		walkAll(child, fn)
	}
}
