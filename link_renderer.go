package mdh

import (
	"net/url"
	"strings"
)

// Attribute is a single HTML tag attribute of a link rendering.
type Attribute struct {
	Name  string
	Value string
}

// NoFollow is the rel="nofollow" attribute.
var NoFollow = Attribute{Name: "rel", Value: "nofollow"}

// Rendering holds the href, link text and extra tag attributes of a link
// as it is going to be emitted.
type Rendering struct {
	Href       string
	Text       string
	Attributes []Attribute
}

// WithAttribute returns the rendering with the attribute appended. A
// repeated name concatenates values with a space, as for class.
func (r Rendering) WithAttribute(name, value string) Rendering {
	for i, attr := range r.Attributes {
		if attr.Name == name {
			merged := Attribute{Name: name, Value: attr.Value + " " + value}
			r.Attributes = append(r.Attributes[:i], r.Attributes[i+1:]...)
			r.Attributes = append(r.Attributes, merged)
			return r
		}
	}
	r.Attributes = append(r.Attributes, Attribute{Name: name, Value: value})
	return r
}

// LinkRenderer turns link nodes into Renderings. Embed DefaultLinkRenderer
// and override individual methods to customize, for example to attach
// rel="nofollow" selectively.
type LinkRenderer interface {
	RenderAutoLink(node *AutoLinkNode) Rendering
	RenderMailLink(node *MailLinkNode) Rendering
	RenderAnchorLink(node *AnchorLinkNode) Rendering
	RenderWikiLink(node *WikiLinkNode) Rendering
	RenderExpLink(node *ExpLinkNode, text string) Rendering
	RenderExpImage(node *ExpImageNode, text string) Rendering
	RenderRefLink(node *RefLinkNode, url, title, text string) Rendering
	RenderRefImage(node *RefImageNode, url, title, alt string) Rendering
}

// DefaultLinkRenderer is the stock link rendering: email addresses are
// obfuscated, wiki page names URL-encoded, titles HTML-encoded, and anchor
// links carry a name attribute.
type DefaultLinkRenderer struct{}

// RenderAutoLink renders a URL autolink.
func (DefaultLinkRenderer) RenderAutoLink(node *AutoLinkNode) Rendering {
	return Rendering{Href: node.Text, Text: node.Text}
}

// RenderMailLink renders an email autolink with the address obfuscated in
// both the href and the text.
func (DefaultLinkRenderer) RenderMailLink(node *MailLinkNode) Rendering {
	obfuscated := obfuscate(node.Text)
	return Rendering{Href: "mailto:" + obfuscated, Text: obfuscated}
}

// RenderAnchorLink renders a heading anchor as a named, href-less anchor.
func (DefaultLinkRenderer) RenderAnchorLink(node *AnchorLinkNode) Rendering {
	return Rendering{Text: node.Text}.WithAttribute("name", node.Name)
}

// RenderWikiLink renders [[page]] and [[page|text]], URL-encoding the page
// name with spaces as dashes and keeping any #fragment.
func (DefaultLinkRenderer) RenderWikiLink(node *WikiLinkNode) Rendering {
	text := node.Text
	page := text
	if pos := strings.IndexByte(text, '|'); pos >= 0 {
		page = text[:pos]
		text = text[pos+1:]
	}
	fragment := ""
	if pos := strings.LastIndexByte(page, '#'); pos >= 0 {
		fragment = page[pos:]
		page = page[:pos]
	}
	href := "./" + url.QueryEscape(strings.ReplaceAll(page, " ", "-")) + ".html" + fragment
	return Rendering{Href: href, Text: text}
}

// RenderExpLink renders an explicit link.
func (DefaultLinkRenderer) RenderExpLink(node *ExpLinkNode, text string) Rendering {
	rendering := Rendering{Href: node.URL, Text: text}
	if node.Title == "" {
		return rendering
	}
	return rendering.WithAttribute("title", encode(node.Title))
}

// RenderExpImage renders an explicit image.
func (DefaultLinkRenderer) RenderExpImage(node *ExpImageNode, text string) Rendering {
	rendering := Rendering{Href: node.URL, Text: text}
	if node.Title == "" {
		return rendering
	}
	return rendering.WithAttribute("title", encode(node.Title))
}

// RenderRefLink renders a resolved reference link.
func (DefaultLinkRenderer) RenderRefLink(node *RefLinkNode, url, title, text string) Rendering {
	rendering := Rendering{Href: url, Text: text}
	if title == "" {
		return rendering
	}
	return rendering.WithAttribute("title", encode(title))
}

// RenderRefImage renders a resolved reference image.
func (DefaultLinkRenderer) RenderRefImage(node *RefImageNode, url, title, alt string) Rendering {
	rendering := Rendering{Href: url, Text: alt}
	if title == "" {
		return rendering
	}
	return rendering.WithAttribute("title", encode(title))
}
