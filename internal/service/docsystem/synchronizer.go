package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"draftdesk/internal/config"
	"draftdesk/internal/domain"
	models "draftdesk/internal/domain/models/docsystem"
	docsysSvc "draftdesk/internal/domain/services/docsystem"
)

// SynchronizerConfig holds the synchronizer's tunables.
type SynchronizerConfig struct {
	PollInterval     time.Duration
	IntakeFolderName string
}

// Synchronizer keeps the folder cache consistent with the backend: it loads
// the tree, fetches documents on expansion, refreshes after uploads and
// deletes, and runs a reconciliation loop while any document is indexing.
//
// All cache access happens under mu, including the backend calls that feed
// the cache, so there is a single writer at any time.
type Synchronizer struct {
	cache     docsysSvc.FolderCache
	tracker   docsysSvc.StatusTracker
	validator *UploadValidator
	cfg       SynchronizerConfig
	logger    *slog.Logger

	ctx    context.Context // parent of the polling loop, canceled by Close
	cancel context.CancelFunc
	loops  sync.WaitGroup

	mu          sync.Mutex
	poll        context.CancelFunc // non-nil while the loop is armed
	closed      bool
	outbox      []Event
	subscribers []func(Event)
}

// NewSynchronizer wires a synchronizer. Nothing is loaded until Start.
func NewSynchronizer(
	cache docsysSvc.FolderCache,
	tracker docsysSvc.StatusTracker,
	validator *UploadValidator,
	cfg SynchronizerConfig,
	logger *slog.Logger,
) *Synchronizer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = config.DefaultPollInterval
	}
	if cfg.IntakeFolderName == "" {
		cfg.IntakeFolderName = config.DefaultIntakeFolderName
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Synchronizer{
		cache:     cache,
		tracker:   tracker,
		validator: validator,
		cfg:       cfg,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Subscribe registers fn for every future event.
func (s *Synchronizer) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Start performs the initial folder load.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.logger.Info("synchronizer starting", "poll_interval", s.cfg.PollInterval)
	return s.Refresh(ctx)
}

// Refresh reloads the folder list and the documents of expanded folders.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadFoldersLocked(ctx); err != nil {
		return fmt.Errorf("load folders: %w", err)
	}
	return nil
}

// Expand opens a folder. Its documents are fetched only if they have never
// been loaded; expanding an open or already populated folder makes no call.
func (s *Synchronizer) Expand(ctx context.Context, folderID string) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expandLocked(ctx, folderID)
}

func (s *Synchronizer) expandLocked(ctx context.Context, folderID string) error {
	folder, ok := s.cache.Folder(folderID)
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", folderID)}
	}
	s.cache.Expand(folderID)
	if folder.DocumentsLoaded {
		return nil
	}
	return s.loadDocumentsLocked(ctx, folderID)
}

// Collapse closes a folder. Its documents stay cached.
func (s *Synchronizer) Collapse(folderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Collapse(folderID)
}

// Toggle flips a folder's expansion and reports whether it is now open.
func (s *Synchronizer) Toggle(ctx context.Context, folderID string) (bool, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache.IsExpanded(folderID) {
		s.cache.Collapse(folderID)
		return false, nil
	}
	if err := s.expandLocked(ctx, folderID); err != nil {
		return false, err
	}
	return true, nil
}

// Upload validates file, sends it to folderID (or to the intake folder when
// folderID is nil) and refreshes the cache. Indexable uploads also open their
// target folder so the new document shows up while it is processing.
func (s *Synchronizer) Upload(ctx context.Context, file *models.UploadFile, folderID *string) (*models.UploadResult, error) {
	if s.validator != nil {
		if err := s.validator.Validate(file); err != nil {
			return nil, err
		}
	}

	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.resolveTargetLocked(folderID)
	result, err := s.cache.ApplyUpload(ctx, file, target)
	if err != nil {
		s.logger.Warn("upload failed", "file_name", file.Name, "error", err)
		return nil, err
	}

	s.emitLocked(Event{Type: EventUploaded, DocumentID: result.DocumentID, FolderID: deref(target)})
	s.logger.Info("upload accepted",
		"document_id", result.DocumentID,
		"file_name", file.Name,
		"folder_id", deref(target),
	)

	var refreshErrs []error
	foldersErr := s.loadFoldersLocked(ctx)
	if foldersErr != nil {
		refreshErrs = append(refreshErrs, foldersErr)
	}
	if IsIndexable(file) && target != nil {
		// The target may be new to the cache, so it is opened only after the
		// folder reload. An already open folder was refreshed by that reload.
		wasOpen := s.cache.IsExpanded(*target)
		if s.cache.Expand(*target) && (!wasOpen || foldersErr != nil) {
			if err := s.loadDocumentsLocked(ctx, *target); err != nil {
				refreshErrs = append(refreshErrs, err)
			}
		} else if !s.cache.IsExpanded(*target) {
			s.logger.Warn("upload target not in folder list", "folder_id", *target)
		}
	}
	if err := errors.Join(refreshErrs...); err != nil {
		s.logger.Warn("refresh after upload failed", "error", err)
		s.emitLocked(Event{Type: EventRefreshFailed, Err: err})
	}
	return result, nil
}

// Delete removes a document and refreshes its folder and the folder list.
// folderID may be empty, in which case the owning folder is looked up in the
// cache. On failure nothing in the cache changes.
func (s *Synchronizer) Delete(ctx context.Context, documentID, folderID string) error {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()

	if folderID == "" {
		folderID = s.findDocumentFolderLocked(documentID)
	}

	if err := s.cache.ApplyDelete(ctx, documentID); err != nil {
		s.logger.Warn("delete failed", "document_id", documentID, "error", err)
		return err
	}
	s.emitLocked(Event{Type: EventDeleted, DocumentID: documentID, FolderID: folderID})

	var refreshErrs []error
	if folderID != "" {
		if err := s.loadDocumentsLocked(ctx, folderID); err != nil {
			refreshErrs = append(refreshErrs, err)
		}
	}
	if err := s.loadFoldersLocked(ctx); err != nil {
		refreshErrs = append(refreshErrs, err)
	}
	if err := errors.Join(refreshErrs...); err != nil {
		s.logger.Warn("refresh after delete failed", "document_id", documentID, "error", err)
		s.emitLocked(Event{Type: EventRefreshFailed, Err: err})
	}
	return nil
}

// ReconcileNow runs one reconciliation cycle immediately.
func (s *Synchronizer) ReconcileNow(ctx context.Context) (*docsysSvc.ReconcileReport, error) {
	defer s.flush()
	return s.reconcile(ctx)
}

// Folders returns a snapshot of the folder tree.
func (s *Synchronizer) Folders() []models.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Folders()
}

// IsExpanded reports whether folderID is open.
func (s *Synchronizer) IsExpanded(folderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.IsExpanded(folderID)
}

// Pending returns the documents still waiting for a terminal status.
func (s *Synchronizer) Pending() []models.PendingDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.CollectProcessing(s.cache.Folders())
}

// Polling reports whether the reconciliation loop is armed.
func (s *Synchronizer) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.poll != nil
}

// Close stops the reconciliation loop and waits for it to exit. The
// synchronizer must not be used afterwards.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	s.closed = true
	if s.poll != nil {
		s.poll()
		s.poll = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.loops.Wait()
	s.logger.Info("synchronizer closed")
}

func (s *Synchronizer) loadFoldersLocked(ctx context.Context) error {
	folders, changes, err := s.cache.LoadFolders(ctx)
	if err != nil {
		return err
	}
	s.emitLocked(Event{Type: EventFoldersLoaded, Count: len(folders)})
	s.emitChangesLocked(changes)
	s.ensurePollingLocked()
	return nil
}

func (s *Synchronizer) loadDocumentsLocked(ctx context.Context, folderID string) error {
	docs, changes, err := s.cache.LoadDocuments(ctx, folderID)
	if err != nil {
		return err
	}
	s.emitLocked(Event{Type: EventDocumentsLoaded, FolderID: folderID, Count: len(docs)})
	s.emitChangesLocked(changes)
	s.ensurePollingLocked()
	return nil
}

// reconcile polls pending documents without holding the lock, then applies
// folder reloads one at a time under it.
func (s *Synchronizer) reconcile(ctx context.Context) (*docsysSvc.ReconcileReport, error) {
	s.mu.Lock()
	pending := s.tracker.CollectProcessing(s.cache.Folders())
	if len(pending) == 0 {
		s.ensurePollingLocked()
		s.mu.Unlock()
		return &docsysSvc.ReconcileReport{}, nil
	}
	s.mu.Unlock()

	report, err := s.tracker.Reconcile(ctx, pending, func(ctx context.Context, folderID string) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.loadDocumentsLocked(ctx, folderID)
	})

	s.mu.Lock()
	if ctx.Err() == nil {
		for docID, qerr := range report.Failed {
			s.emitLocked(Event{Type: EventReconcileFailed, DocumentID: docID, Err: qerr})
		}
	}
	s.ensurePollingLocked()
	s.mu.Unlock()

	return report, err
}

// ensurePollingLocked arms the loop when documents are pending and disarms it
// when none are. Safe to call after every cache mutation.
func (s *Synchronizer) ensurePollingLocked() {
	pending := s.tracker.CollectProcessing(s.cache.Folders())

	switch {
	case len(pending) > 0 && s.poll == nil && !s.closed:
		ctx, cancel := context.WithCancel(s.ctx)
		s.poll = cancel
		s.loops.Add(1)
		go s.pollLoop(ctx)
		s.logger.Debug("polling armed", "pending", len(pending))
		s.emitLocked(Event{Type: EventPollingStarted, Count: len(pending)})

	case len(pending) == 0 && s.poll != nil:
		s.poll()
		s.poll = nil
		s.logger.Debug("polling disarmed")
		s.emitLocked(Event{Type: EventPollingStopped})
	}
}

func (s *Synchronizer) pollLoop(ctx context.Context) {
	defer s.loops.Done()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.reconcile(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("reconciliation cycle had failures", "error", err)
			}
			s.flush()
		}
	}
}

func (s *Synchronizer) resolveTargetLocked(folderID *string) *string {
	if folderID != nil && *folderID != "" {
		return folderID
	}
	if f, ok := s.cache.FindFolderByName(s.cfg.IntakeFolderName); ok {
		id := f.ID
		return &id
	}
	s.logger.Debug("intake folder not found, uploading unfiled", "name", s.cfg.IntakeFolderName)
	return nil
}

func (s *Synchronizer) findDocumentFolderLocked(documentID string) string {
	for _, f := range s.cache.Folders() {
		for _, d := range f.Documents {
			if d.ID == documentID {
				return f.ID
			}
		}
	}
	return ""
}

func (s *Synchronizer) emitLocked(events ...Event) {
	s.outbox = append(s.outbox, events...)
}

func (s *Synchronizer) emitChangesLocked(changes []docsysSvc.StatusChange) {
	for _, ch := range changes {
		s.emitLocked(Event{
			Type:       EventStatusChanged,
			FolderID:   ch.FolderID,
			DocumentID: ch.DocumentID,
			From:       ch.From,
			To:         ch.To,
		})
	}
}

// flush delivers queued events outside the lock.
func (s *Synchronizer) flush() {
	s.mu.Lock()
	events := s.outbox
	s.outbox = nil
	subscribers := append([]func(Event){}, s.subscribers...)
	s.mu.Unlock()

	for _, ev := range events {
		for _, fn := range subscribers {
			fn(ev)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
