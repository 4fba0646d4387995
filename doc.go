// Package mdh parses Markdown into a typed document tree and renders HTML.
//
// The parser is a recursive-descent PEG over the source text. It produces a
// RootNode whose subtree carries [start,end) rune indices into the original
// input, plus three side tables collected while parsing: link references,
// abbreviations, and footnote definitions. The HTML serializer walks the
// tree depth-first, resolving references, expanding abbreviations, numbering
// footnotes in first-reference order, and computing header anchor ids before
// any output is emitted.
//
// Core properties:
//   - Standard Markdown plus a fixed, bit-selectable set of extensions
//   - Source indices survive the recursive sub-parses of block quotes and
//     list items
//   - Pluggable link rendering, verbatim (code block) serialization, header
//     id computation, and grammar/serializer plugins
//   - A parsing deadline bounds the damage of pathological inputs
//
// Example:
//
//	p := mdh.New(mdh.Tables | mdh.FencedCodeBlocks)
//	html, err := p.MarkdownToHTML("# Hello\n\nMarkdown in, HTML out.\n")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// A Processor is not safe for concurrent use; callers serialize access or
// create one per goroutine. Sequential reuse is fine.
package mdh
