package mdh

import (
	"net/url"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Attributes is an HTML tag attribute set that preserves insertion order
// for stable output.
type Attributes struct {
	attrs *linkedhashmap.Map
}

// NewAttributes returns an empty attribute set.
func NewAttributes() *Attributes {
	return &Attributes{attrs: linkedhashmap.New()}
}

// Add appends value to the attribute, space-delimited when the attribute
// already exists (the class convention).
func (a *Attributes) Add(name, value string) *Attributes {
	return a.AddDelimited(name, " ", value)
}

// AddDelimited appends value to the attribute with the given delimiter
// when the attribute already exists.
func (a *Attributes) AddDelimited(name, delim, value string) *Attributes {
	if existing, ok := a.attrs.Get(name); ok {
		a.attrs.Put(name, existing.(string)+delim+value)
	} else {
		a.attrs.Put(name, value)
	}
	return a
}

// AddAll adds every rendering attribute in order.
func (a *Attributes) AddAll(attrs []Attribute) *Attributes {
	for _, attr := range attrs {
		a.Add(attr.Name, attr.Value)
	}
	return a
}

// Replace sets the attribute, keeping its original position when it
// already exists.
func (a *Attributes) Replace(name, value string) *Attributes {
	a.attrs.Put(name, value)
	return a
}

// Remove deletes the attribute.
func (a *Attributes) Remove(name string) *Attributes {
	a.attrs.Remove(name)
	return a
}

// RemoveDelimited removes value from a delimited attribute value, keeping
// the attribute's position even when it becomes empty.
func (a *Attributes) RemoveDelimited(name, delim, value string) *Attributes {
	existing, ok := a.attrs.Get(name)
	if !ok {
		return a
	}
	var kept []string
	for _, part := range strings.Split(existing.(string), delim) {
		if part != "" && part != value {
			kept = append(kept, part)
		}
	}
	a.attrs.Put(name, strings.Join(kept, delim))
	return a
}

// AddClass adds a class value.
func (a *Attributes) AddClass(value string) *Attributes {
	return a.Add("class", value)
}

// RemoveClass removes a class value.
func (a *Attributes) RemoveClass(value string) *Attributes {
	return a.RemoveDelimited("class", " ", value)
}

// HasClass reports whether value is one of the class values.
func (a *Attributes) HasClass(value string) bool {
	classAttr := " " + a.Get("class", "") + " "
	return strings.Contains(classAttr, " "+value+" ")
}

// Contains reports whether the attribute is present.
func (a *Attributes) Contains(name string) bool {
	_, ok := a.attrs.Get(name)
	return ok
}

// Get returns the attribute value, or fallback when absent.
func (a *Attributes) Get(name, fallback string) string {
	if value, ok := a.attrs.Get(name); ok {
		return value.(string)
	}
	return fallback
}

// print writes the attributes in insertion order. A class attribute is
// trimmed and skipped when empty; src and href values containing a query
// get the query portion URL-encoded; everything else is escaped for
// double-quoted attribute positions.
func (a *Attributes) print(printer *Printer) {
	it := a.attrs.Iterator()
	for it.Next() {
		name := it.Key().(string)
		value := it.Value().(string)
		switch {
		case name == "class":
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			printAttribute(printer, name, escapeAttributeValue(trimmed))
		case (name == "src" || name == "href") && strings.Contains(value, "?"):
			printAttribute(printer, name, encodeURLQuery(value))
		default:
			printAttribute(printer, name, escapeAttributeValue(strings.TrimSpace(value)))
		}
	}
}

func printAttribute(printer *Printer, name, value string) {
	printer.PrintChar(' ').Print(name).PrintChar('=').PrintChar('"').Print(value).PrintChar('"')
}

func escapeAttributeValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `"`, `\"`)
}

// encodeURLQuery percent-encodes the query portion of a src/href value,
// keeping = and & (as &amp;) readable and encoding spaces as %20.
func encodeURLQuery(value string) string {
	pos := strings.IndexByte(value, '?')
	if pos < 0 || pos+1 >= len(value) {
		return value
	}
	query := url.QueryEscape(value[pos+1:])
	query = strings.ReplaceAll(query, "+", "%20")
	query = strings.ReplaceAll(query, "%3D", "=")
	query = strings.ReplaceAll(query, "%26", "&amp;")
	return value[:pos+1] + query
}
