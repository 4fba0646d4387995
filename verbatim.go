package mdh

// DefaultVerbatimSerializerKey is the registry key of the fallback
// verbatim serializer.
const DefaultVerbatimSerializerKey = ""

// VerbatimSerializer emits a code block. Serializers are registered per
// language tag; the default is registered under
// DefaultVerbatimSerializerKey.
type VerbatimSerializer interface {
	SerializeVerbatim(node *VerbatimNode, printer *Printer)
}

// DefaultVerbatimSerializer emits <pre><code class="lang">...</code></pre>
// with leading newlines of the raw text turned into <br/> tags.
type DefaultVerbatimSerializer struct{}

// SerializeVerbatim implements VerbatimSerializer.
func (DefaultVerbatimSerializer) SerializeVerbatim(node *VerbatimNode, printer *Printer) {
	attrs := NewAttributes()
	if node.Type != "" {
		attrs.AddClass(node.Type)
	}
	printer.Println().Print("<pre><code")
	attrs.print(printer)
	printer.PrintChar('>')
	text := node.Text
	for len(text) > 0 && text[0] == '\n' {
		printer.Print("<br/>")
		text = text[1:]
	}
	printer.PrintEncoded(text)
	printer.Print("</code></pre>")
}
