package docsystem

import (
	"context"

	"draftdesk/internal/domain/models/docsystem"
)

// StatusChange records a document whose status differs after a reload.
type StatusChange struct {
	DocumentID string
	FolderID   string
	From       docsystem.DocumentStatus
	To         docsystem.DocumentStatus
}

// FolderCache holds the best-known snapshot of the folder tree.
// Implementations are not safe for concurrent use; the owner serializes access.
type FolderCache interface {
	// LoadFolders replaces the folder list and reloads documents of every
	// expanded folder that still exists.
	LoadFolders(ctx context.Context) ([]docsystem.Folder, []StatusChange, error)

	// LoadDocuments replaces one folder's documents. On error the prior list is kept.
	LoadDocuments(ctx context.Context, folderID string) ([]docsystem.Document, []StatusChange, error)

	// ApplyUpload sends a file to the backend without touching the cache.
	ApplyUpload(ctx context.Context, file *docsystem.UploadFile, folderID *string) (*docsystem.UploadResult, error)

	// ApplyDelete deletes a document on the backend without touching the cache.
	ApplyDelete(ctx context.Context, documentID string) error

	// Folders returns a deep copy of the current folder list.
	Folders() []docsystem.Folder

	// Folder returns a copy of one folder.
	Folder(folderID string) (docsystem.Folder, bool)

	// FindFolderByName returns the first folder with the given display name.
	FindFolderByName(name string) (docsystem.Folder, bool)

	Expand(folderID string) bool
	Collapse(folderID string)
	IsExpanded(folderID string) bool
	Expanded() []string
}

// StatusTracker finds in-flight documents and reconciles them with the backend.
type StatusTracker interface {
	// CollectProcessing scans folders for documents with a non-terminal status.
	CollectProcessing(folders []docsystem.Folder) []docsystem.PendingDocument

	// Reconcile polls each pending document and calls reload once for every
	// folder holding a document that reached a terminal status. A failure for
	// one document does not stop the others.
	Reconcile(ctx context.Context, pending []docsystem.PendingDocument, reload ReloadFunc) (*ReconcileReport, error)
}

// ReloadFunc refreshes the documents of one folder.
type ReloadFunc func(ctx context.Context, folderID string) error

// ReconcileReport summarizes one reconciliation cycle.
type ReconcileReport struct {
	Checked         int
	Terminal        map[string]docsystem.DocumentStatus // document ID -> status
	Failed          map[string]error                    // document ID -> status query error
	ReloadedFolders []string
}
