package mdh

import "testing"

func TestAttributesPreserveInsertionOrder(t *testing.T) {
	attrs := NewAttributes()
	attrs.Add("href", "http://e").Add("class", "a").Add("rel", "nofollow")
	attrs.Add("class", "b")
	if got := printAttrs(attrs); got != ` href="http://e" class="a b" rel="nofollow"` {
		t.Fatalf("attribute order: %q", got)
	}
}

func TestAttributesReplaceKeepsPosition(t *testing.T) {
	attrs := NewAttributes()
	attrs.Add("class", "a").Add("id", "x")
	attrs.Replace("class", "b")
	if got := printAttrs(attrs); got != ` class="b" id="x"` {
		t.Fatalf("replace moved the attribute: %q", got)
	}
}

func TestAttributesClassHelpers(t *testing.T) {
	attrs := NewAttributes()
	attrs.AddClass("one").AddClass("two")
	if !attrs.HasClass("one") || !attrs.HasClass("two") {
		t.Fatalf("missing class values: %q", attrs.Get("class", ""))
	}
	if attrs.HasClass("on") {
		t.Fatalf("partial class value must not match")
	}
	attrs.RemoveClass("one")
	if attrs.HasClass("one") {
		t.Fatalf("class not removed: %q", attrs.Get("class", ""))
	}
	if !attrs.Contains("class") {
		t.Fatalf("emptied class attribute must keep its slot")
	}
}

func TestAttributesEmptyClassSkippedOnPrint(t *testing.T) {
	attrs := NewAttributes()
	attrs.AddClass("only").RemoveClass("only").Add("id", "x")
	if got := printAttrs(attrs); got != ` id="x"` {
		t.Fatalf("empty class must be skipped: %q", got)
	}
}

func TestAttributesRemove(t *testing.T) {
	attrs := NewAttributes()
	attrs.Add("id", "x").Add("title", "t")
	attrs.Remove("id")
	if attrs.Contains("id") {
		t.Fatalf("attribute not removed")
	}
	if got := printAttrs(attrs); got != ` title="t"` {
		t.Fatalf("remaining attributes: %q", got)
	}
}

func TestHrefQueryEncoding(t *testing.T) {
	attrs := NewAttributes()
	attrs.Add("href", "http://e/p?a=1&b=two words")
	want := ` href="http://e/p?a=1&amp;b=two%20words"`
	if got := printAttrs(attrs); got != want {
		t.Fatalf("query encoding:\ngot  %q\nwant %q", got, want)
	}
}

func TestNonQueryValueEscaping(t *testing.T) {
	attrs := NewAttributes()
	attrs.Add("title", `say "hi" \now`)
	want := ` title="say \"hi\" \\now"`
	if got := printAttrs(attrs); got != want {
		t.Fatalf("value escaping:\ngot  %q\nwant %q", got, want)
	}
}

func printAttrs(attrs *Attributes) string {
	printer := &Printer{}
	attrs.print(printer)
	return printer.String()
}
