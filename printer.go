package mdh

import "golang.org/x/net/html"

// Printer is the output buffer of the HTML serializer. It tracks the
// current indent level and whether the buffer ends in a fresh line, and
// HTML-encodes on demand.
type Printer struct {
	buf    []byte
	indent int
}

// Indent changes the indent level applied by Println.
func (p *Printer) Indent(delta int) *Printer {
	p.indent += delta
	return p
}

// Print appends s verbatim.
func (p *Printer) Print(s string) *Printer {
	p.buf = append(p.buf, s...)
	return p
}

// PrintChar appends a single byte character.
func (p *Printer) PrintChar(c byte) *Printer {
	p.buf = append(p.buf, c)
	return p
}

// PrintEncoded appends s with &, <, >, " and ' encoded as HTML entities.
func (p *Printer) PrintEncoded(s string) *Printer {
	return p.Print(html.EscapeString(s))
}

// Println starts a new line, unless the buffer is empty, and applies the
// current indent.
func (p *Printer) Println() *Printer {
	if len(p.buf) > 0 {
		p.buf = append(p.buf, '\n')
	}
	for i := 0; i < p.indent; i++ {
		p.buf = append(p.buf, ' ')
	}
	return p
}

// Printchkln calls Println when newline is true.
func (p *Printer) Printchkln(newline bool) *Printer {
	if newline {
		return p.Println()
	}
	return p
}

// EndsWithNewLine reports whether the buffer ends in a newline.
func (p *Printer) EndsWithNewLine() bool {
	return len(p.buf) > 0 && p.buf[len(p.buf)-1] == '\n'
}

// String returns the buffer contents.
func (p *Printer) String() string {
	return string(p.buf)
}

// Clear empties the buffer, keeping the indent level.
func (p *Printer) Clear() {
	p.buf = p.buf[:0]
}
