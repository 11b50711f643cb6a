package docsystem

import (
	models "draftdesk/internal/domain/models/docsystem"
)

// EventType names a synchronizer notification.
type EventType string

const (
	EventFoldersLoaded   EventType = "folders_loaded"
	EventDocumentsLoaded EventType = "documents_loaded"
	EventStatusChanged   EventType = "status_changed"
	EventUploaded        EventType = "uploaded"
	EventDeleted         EventType = "deleted"
	EventPollingStarted  EventType = "polling_started"
	EventPollingStopped  EventType = "polling_stopped"
	EventReconcileFailed EventType = "reconcile_failed"
	EventRefreshFailed   EventType = "refresh_failed"
)

// Event is delivered to subscribers after the synchronizer releases its lock,
// so handlers may call back into it.
type Event struct {
	Type       EventType
	FolderID   string
	DocumentID string
	From       models.DocumentStatus
	To         models.DocumentStatus
	Count      int
	Err        error
}
