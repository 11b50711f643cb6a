package docsystem

import (
	"context"

	"draftdesk/internal/domain/models/docsystem"
)

// DraftService generates draft answers scoped to a folder or to all folders.
type DraftService interface {
	Ask(ctx context.Context, question string, folderID *string) (*docsystem.DraftResult, error)
}
