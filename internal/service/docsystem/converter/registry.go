package converter

import (
	"context"
	"regexp"

	docsysSvc "draftdesk/internal/domain/services/docsystem"
)

// htmlTag matches an opening or closing tag of a known block or inline element.
var htmlTag = regexp.MustCompile(`(?i)</?(p|br|div|span|table|thead|tbody|tr|th|td|ul|ol|li|h[1-6]|strong|em|b|i|pre|code|blockquote)(\s[^>]*)?/?>`)

// Registry routes a passage to the converter for its content: HTML fragments
// go through the HTML converter, everything else through the text converter.
//
// Thread-safe for concurrent use.
type Registry struct {
	html docsysSvc.ContentConverter
	text docsysSvc.ContentConverter
}

// NewRegistry creates a registry with the standard converters.
func NewRegistry() *Registry {
	return &Registry{
		html: NewHTMLConverter(),
		text: NewTextConverter(),
	}
}

var _ docsysSvc.ContentConverter = (*Registry)(nil)

// ConverterFor returns the converter that handles input.
func (r *Registry) ConverterFor(input string) docsysSvc.ContentConverter {
	if htmlTag.MatchString(input) {
		return r.html
	}
	return r.text
}

// Convert converts input with the converter chosen by ConverterFor. HTML
// output is passed through the text converter as well to tidy whitespace.
func (r *Registry) Convert(ctx context.Context, input string) (string, error) {
	conv := r.ConverterFor(input)
	out, err := conv.Convert(ctx, input)
	if err != nil {
		return "", err
	}
	if conv != r.text {
		return r.text.Convert(ctx, out)
	}
	return out, nil
}

func (r *Registry) Name() string {
	return "registry"
}
