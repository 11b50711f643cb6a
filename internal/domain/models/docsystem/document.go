package docsystem

import (
	"time"
)

// DocumentStatus is the backend's indexing state for a document.
// uploaded -> processing -> {completed, failed}
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// IsTerminal reports whether no further transition can leave this status.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseDocumentStatus maps a backend status string onto a known status.
// Anything unrecognized is treated as still processing so it keeps being
// reconciled instead of being mistaken for a final state.
func ParseDocumentStatus(raw string) DocumentStatus {
	switch s := DocumentStatus(raw); s {
	case StatusUploaded, StatusProcessing, StatusCompleted, StatusFailed:
		return s
	default:
		return StatusProcessing
	}
}

type Document struct {
	ID         string         `json:"id"`
	FileName   string         `json:"file_name"`
	FolderID   *string        `json:"folder_id"` // nil = unfiled
	Status     DocumentStatus `json:"status"`
	UploadedAt time.Time      `json:"uploaded_at"`
}

// PendingDocument identifies a document whose indexing is not yet terminal.
type PendingDocument struct {
	DocumentID string
	FolderID   string
}

// UploadFile is a file selected for upload.
type UploadFile struct {
	Name        string
	ContentType string // declared media type, may be empty
	Content     []byte
}

// Size returns the file size in bytes.
func (f *UploadFile) Size() int64 {
	return int64(len(f.Content))
}

// UploadResult is what the backend reports for a stored upload.
type UploadResult struct {
	DocumentID     string  `json:"document_id"`
	FileName       string  `json:"filename"`
	StoredFileName string  `json:"saved_filename"`
	Size           int64   `json:"size"`
	FolderID       *string `json:"folder_id"`
}
