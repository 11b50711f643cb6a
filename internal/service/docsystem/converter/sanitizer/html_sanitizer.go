package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer strips markup that has no business in a passage before it is
// converted: scripts, event handlers, styles and embedded media.
//
// Thread-safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer that keeps text structure (paragraphs,
// headings, lists, tables, emphasis, code) and drops everything else.
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.NewPolicy()
	policy.AllowElements(
		"p", "br", "hr", "div", "span",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption",
		"strong", "b", "em", "i", "u", "sub", "sup",
		"pre", "code", "blockquote",
	)
	policy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	return &HTMLSanitizer{policy: policy}
}

// NewStrictHTMLSanitizer creates a sanitizer that strips all HTML.
func NewStrictHTMLSanitizer() *HTMLSanitizer {
	return &HTMLSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize returns html with every disallowed element and attribute removed.
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
