package converter

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"

	docsysSvc "draftdesk/internal/domain/services/docsystem"
	"draftdesk/internal/service/docsystem/converter/sanitizer"
)

// htmlConverter converts HTML fragments to markdown in two stages:
// sanitize, then convert. Tables become GitHub-style pipe tables.
type htmlConverter struct {
	sanitizer *sanitizer.HTMLSanitizer
	converter *md.Converter
}

// NewHTMLConverter creates an HTML to markdown converter.
func NewHTMLConverter() docsysSvc.ContentConverter {
	conv := md.NewConverter("", true, nil)
	conv.Use(plugin.Table())
	conv.Use(plugin.Strikethrough(""))
	return &htmlConverter{
		sanitizer: sanitizer.NewHTMLSanitizer(),
		converter: conv,
	}
}

func (c *htmlConverter) Convert(ctx context.Context, input string) (string, error) {
	markdown, err := c.converter.ConvertString(c.sanitizer.Sanitize(input))
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}
	return markdown, nil
}

func (c *htmlConverter) Name() string {
	return "html"
}
