package docsystem

import "context"

// ContentConverter turns a retrieved passage into display-ready markdown.
// Passages parsed out of PDFs can carry HTML fragments (tables mostly).
//
// Implementations should be stateless and thread-safe.
type ContentConverter interface {
	// Convert returns input as markdown.
	Convert(ctx context.Context, input string) (markdown string, err error)

	// Name returns a human-readable converter name for logging.
	Name() string
}
