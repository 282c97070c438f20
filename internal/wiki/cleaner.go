// File: internal/wiki/cleaner.go
package wiki

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// Tags whose content is noise, not prose: code blocks keep their text, but
// scripts, styles and macro parameters never do.
var skipTags = map[string]bool{
	"script": true, "style": true, "parameter": true,
}

// Block-level tags whose closing marks a line break in the extracted text.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "ul": true, "ol": true, "blockquote": true,
}

var (
	skipBlockPattern  = regexp.MustCompile(`(?is)<(?:script|style)[^>]*>.*?</(?:script|style)>`)
	blockClosePattern = regexp.MustCompile(`(?i)<(?:/(?:p|div|li|tr|h[1-6]|table|ul|ol|blockquote)|br\s*/?)>`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	multiSpace        = regexp.MustCompile(`[ \t]+`)
	multiNewline      = regexp.MustCompile(`\n{3,}`)
)

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&rsquo;", "'",
	"&ndash;", "-",
	"&mdash;", "-",
)

// Clean converts wiki storage-format markup into analyzer-ready plain text.
// Well-formed markup goes through a proper XML walk; anything the parser
// rejects falls back to tag stripping. Both paths normalize whitespace the
// same way.
func Clean(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	if text, ok := cleanXML(markup); ok {
		return normalize(text)
	}
	return normalize(stripTags(markup))
}

// cleanXML parses the markup as an XML fragment and walks it, emitting
// newlines at block boundaries so section structure survives extraction.
func cleanXML(markup string) (string, bool) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	doc.ReadSettings.Entity = map[string]string{
		"nbsp": " ", "rsquo": "'", "ndash": "-", "mdash": "-",
	}

	// Storage format is a fragment; give it a single root.
	if err := doc.ReadFromString("<root>" + markup + "</root>"); err != nil {
		return "", false
	}

	var sb strings.Builder
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.Child {
			switch node := child.(type) {
			case *etree.CharData:
				sb.WriteString(node.Data)
			case *etree.Element:
				if skipTags[strings.ToLower(node.Tag)] {
					continue
				}
				walk(node)
				if blockTags[strings.ToLower(node.Tag)] {
					sb.WriteString("\n")
				} else {
					sb.WriteString(" ")
				}
			}
		}
	}
	walk(doc.Root())
	return sb.String(), true
}

// stripTags is the lenient fallback for markup the XML parser rejects.
func stripTags(markup string) string {
	text := skipBlockPattern.ReplaceAllString(markup, " ")
	text = blockClosePattern.ReplaceAllString(text, "\n")
	text = tagPattern.ReplaceAllString(text, " ")
	return text
}

// normalize decodes common entities and collapses runs of whitespace while
// preserving paragraph breaks.
func normalize(text string) string {
	text = entityReplacer.Replace(text)
	text = multiSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
