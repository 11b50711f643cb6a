package converter

import (
	"context"
	"strings"

	docsysSvc "draftdesk/internal/domain/services/docsystem"
)

// textConverter handles passages that are already markdown or plain text.
// It only tidies whitespace: trailing spaces go and runs of blank lines
// collapse to one.
type textConverter struct{}

// NewTextConverter creates a text converter.
func NewTextConverter() docsysSvc.ContentConverter {
	return &textConverter{}
}

func (c *textConverter) Convert(ctx context.Context, input string) (string, error) {
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")), nil
}

func (c *textConverter) Name() string {
	return "plaintext"
}
