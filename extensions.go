package mdh

import (
	"fmt"
	"sort"
	"strings"
)

// Extensions is a bitset selecting optional Markdown syntax.
type Extensions uint32

const (
	// Smarts converts ... -- --- and ' to typographic entities.
	Smarts Extensions = 1 << iota
	// Quotes converts ' " and << >> pairs to typographic quotes.
	Quotes
	// Abbreviations enables PHP Markdown Extra style abbreviations.
	Abbreviations
	// Hardwraps turns single newlines inside paragraphs into <br/>.
	Hardwraps
	// Autolinks recognizes bare URLs and email addresses without <>.
	Autolinks
	// Tables enables MultiMarkdown style tables.
	Tables
	// Definitions enables PHP Markdown Extra style definition lists.
	Definitions
	// FencedCodeBlocks enables ``` and ~~~ delimited code blocks.
	FencedCodeBlocks
	// SuppressHTMLBlocks drops the content of block-level HTML.
	SuppressHTMLBlocks
	// SuppressInlineHTML drops the content of inline HTML.
	SuppressInlineHTML
	// WikiLinks enables [[page]] and [[page|text]] links.
	WikiLinks
	// Strikethrough enables ~~deleted~~ spans.
	Strikethrough
	// AnchorLinks wraps single-text headings in a named anchor.
	AnchorLinks
	// ATXHeaderSpace requires a space between # and an ATX heading title.
	ATXHeaderSpace
	// ForceListItemPara wraps list item content in paragraphs even when
	// the list is tight.
	ForceListItemPara
	// RelaxedHRules accepts horizontal rules without a trailing blank line.
	RelaxedHRules
	// TaskListItems enables GitHub style [ ] and [x] list items.
	TaskListItems
	// ExtAnchorLinks prepends a named anchor built from the text of all
	// heading children.
	ExtAnchorLinks
	// ExtAnchorLinksWrap makes ExtAnchorLinks wrap the heading text inside
	// the anchor instead of prepending an empty one.
	ExtAnchorLinksWrap
	// Toc enables the [TOC] marker.
	Toc
	// DummyReferenceKey distinguishes [text][] from [text] in the tree.
	DummyReferenceKey
	// MultiLineImageURLs lets image URLs span several source lines.
	MultiLineImageURLs
	// RelaxedStrongEmphasisRules loosens the characters allowed around
	// emphasis delimiters.
	RelaxedStrongEmphasisRules
	// Footnotes enables [^label] references and definitions.
	Footnotes
	// IntelliJDummyIdentifier accepts U+001F as a letter and tolerates
	// empty labels, for editor completion hooks.
	IntelliJDummyIdentifier

	// Smartypants is a convenience alias for Smarts|Quotes.
	Smartypants = Smarts | Quotes

	// None selects plain Markdown with no extensions.
	None Extensions = 0
)

// All enables every extension except the suppression switches,
// IntelliJDummyIdentifier, AnchorLinks, ExtAnchorLinksWrap,
// ForceListItemPara, DummyReferenceKey, MultiLineImageURLs and
// RelaxedStrongEmphasisRules.
const All = Smartypants | Abbreviations | Hardwraps | Autolinks | Tables |
	Definitions | FencedCodeBlocks | WikiLinks | Strikethrough |
	ATXHeaderSpace | RelaxedHRules | TaskListItems | ExtAnchorLinks |
	Toc | Footnotes

// Has reports whether any of the bits in ext are set.
func (e Extensions) Has(ext Extensions) bool {
	return e&ext != 0
}

var extensionNames = map[string]Extensions{
	"smarts":                        Smarts,
	"quotes":                        Quotes,
	"smartypants":                   Smartypants,
	"abbreviations":                 Abbreviations,
	"hardwraps":                     Hardwraps,
	"autolinks":                     Autolinks,
	"tables":                        Tables,
	"definitions":                   Definitions,
	"fenced-code-blocks":            FencedCodeBlocks,
	"html-block-suppress":           SuppressHTMLBlocks,
	"inline-html-suppress":          SuppressInlineHTML,
	"wikilinks":                     WikiLinks,
	"strikethrough":                 Strikethrough,
	"anchor-links":                  AnchorLinks,
	"atx-header-space":              ATXHeaderSpace,
	"force-list-item-para":          ForceListItemPara,
	"relaxed-hrules":                RelaxedHRules,
	"tasklistitems":                 TaskListItems,
	"ext-anchor-links":              ExtAnchorLinks,
	"ext-anchor-links-wrap":         ExtAnchorLinks | ExtAnchorLinksWrap,
	"toc":                           Toc,
	"dummy-reference-key":           DummyReferenceKey,
	"multi-line-image-urls":         MultiLineImageURLs,
	"relaxed-strong-emphasis-rules": RelaxedStrongEmphasisRules,
	"footnotes":                     Footnotes,
	"intellij-dummy-identifier":     IntelliJDummyIdentifier,
}

// ParseExtensions resolves a comma-separated list of extension names, as
// printed by ExtensionNames, into a bitset.
func ParseExtensions(list string) (Extensions, error) {
	var exts Extensions
	for _, name := range strings.Split(list, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if name == "all" {
			exts |= All
			continue
		}
		ext, ok := extensionNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown extension %q", name)
		}
		exts |= ext
	}
	return exts, nil
}

// ExtensionNames returns the recognized extension names in sorted order.
func ExtensionNames() []string {
	names := make([]string, 0, len(extensionNames))
	for name := range extensionNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
