package docsystem

import (
	"context"

	"draftdesk/internal/domain/models/docsystem"
)

// Gateway is the backend API for folders, documents and draft generation.
// Every call is an I/O boundary and returns a domain error on failure.
type Gateway interface {
	// ListFolders returns the user's folders without documents populated.
	ListFolders(ctx context.Context, userID string) ([]docsystem.Folder, error)

	// ListDocuments returns the documents of one folder (nil = unfiled).
	ListDocuments(ctx context.Context, userID string, folderID *string) ([]docsystem.Document, error)

	// UploadDocument stores a file, optionally into a folder.
	UploadDocument(ctx context.Context, userID string, file *docsystem.UploadFile, folderID *string) (*docsystem.UploadResult, error)

	// DeleteDocument soft-deletes a document.
	DeleteDocument(ctx context.Context, userID, documentID string) error

	// GetDocumentStatus returns the current indexing status of a document.
	GetDocumentStatus(ctx context.Context, userID, documentID string) (docsystem.DocumentStatus, error)

	// Query generates a draft answer from indexed content.
	Query(ctx context.Context, userID string, req *docsystem.QueryRequest) (*docsystem.DraftResult, error)
}
