package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	models "draftdesk/internal/domain/models/docsystem"
	docsysSvc "draftdesk/internal/domain/services/docsystem"

	"golang.org/x/sync/errgroup"
)

type statusTracker struct {
	gateway     docsysSvc.Gateway
	userID      string
	concurrency int
	logger      *slog.Logger
}

// NewStatusTracker creates a tracker that runs at most concurrency status
// queries at a time.
func NewStatusTracker(gateway docsysSvc.Gateway, userID string, concurrency int, logger *slog.Logger) docsysSvc.StatusTracker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &statusTracker{
		gateway:     gateway,
		userID:      userID,
		concurrency: concurrency,
		logger:      logger,
	}
}

// CollectProcessing is a pure scan of the cached folders; it does no I/O.
func (t *statusTracker) CollectProcessing(folders []models.Folder) []models.PendingDocument {
	var pending []models.PendingDocument
	for _, f := range folders {
		for _, d := range f.Documents {
			if !d.Status.IsTerminal() {
				pending = append(pending, models.PendingDocument{
					DocumentID: d.ID,
					FolderID:   f.ID,
				})
			}
		}
	}
	return pending
}

// Reconcile queries every pending document's status, then reloads each folder
// that holds at least one document that became terminal. Documents still in
// flight cause no reload. Per-document failures are collected and returned
// joined; they never stop the remaining documents.
func (t *statusTracker) Reconcile(ctx context.Context, pending []models.PendingDocument, reload docsysSvc.ReloadFunc) (*docsysSvc.ReconcileReport, error) {
	report := &docsysSvc.ReconcileReport{
		Checked:  len(pending),
		Terminal: make(map[string]models.DocumentStatus),
		Failed:   make(map[string]error),
	}
	if len(pending) == 0 {
		return report, nil
	}

	statuses := make([]models.DocumentStatus, len(pending))
	queryErrs := make([]error, len(pending))

	var g errgroup.Group
	g.SetLimit(t.concurrency)
	for i := range pending {
		i := i
		g.Go(func() error {
			statuses[i], queryErrs[i] = t.gateway.GetDocumentStatus(ctx, t.userID, pending[i].DocumentID)
			return nil
		})
	}
	_ = g.Wait()

	var failures []error
	reloaded := make(map[string]bool)
	for i, p := range pending {
		if err := queryErrs[i]; err != nil {
			t.logger.Warn("status query failed", "document_id", p.DocumentID, "folder_id", p.FolderID, "error", err)
			report.Failed[p.DocumentID] = err
			failures = append(failures, err)
			continue
		}
		if !statuses[i].IsTerminal() {
			continue
		}

		report.Terminal[p.DocumentID] = statuses[i]
		t.logger.Info("document indexing finished", "document_id", p.DocumentID, "status", statuses[i])

		if reloaded[p.FolderID] {
			continue
		}
		reloaded[p.FolderID] = true
		if err := reload(ctx, p.FolderID); err != nil {
			t.logger.Warn("folder reload failed", "folder_id", p.FolderID, "error", err)
			failures = append(failures, fmt.Errorf("reload folder %s: %w", p.FolderID, err))
			continue
		}
		report.ReloadedFolders = append(report.ReloadedFolders, p.FolderID)
	}

	return report, errors.Join(failures...)
}
