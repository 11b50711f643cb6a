package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"draftdesk/internal/domain"
	models "draftdesk/internal/domain/models/docsystem"
	docsysSvc "draftdesk/internal/domain/services/docsystem"
)

// folderCache is the in-memory folder tree plus the expansion set.
// It is not safe for concurrent use; Synchronizer serializes access.
type folderCache struct {
	gateway  docsysSvc.Gateway
	userID   string
	folders  []models.Folder
	index    map[string]int // folder ID -> position in folders
	expanded map[string]struct{}
	logger   *slog.Logger
}

// NewFolderCache creates an empty cache for userID's folders.
func NewFolderCache(gateway docsysSvc.Gateway, userID string, logger *slog.Logger) docsysSvc.FolderCache {
	return &folderCache{
		gateway:  gateway,
		userID:   userID,
		index:    make(map[string]int),
		expanded: make(map[string]struct{}),
		logger:   logger,
	}
}

// LoadFolders replaces the folder list with the backend's, then reloads the
// documents of every expanded folder that still exists. Expanded folders keep
// their previous documents until their reload succeeds. On a listing error the
// cache is left untouched.
func (c *folderCache) LoadFolders(ctx context.Context) ([]models.Folder, []docsysSvc.StatusChange, error) {
	fetched, err := c.gateway.ListFolders(ctx, c.userID)
	if err != nil {
		return nil, nil, err
	}

	next := make([]models.Folder, 0, len(fetched))
	index := make(map[string]int, len(fetched))
	for _, f := range fetched {
		if _, dup := index[f.ID]; dup {
			c.logger.Warn("duplicate folder in listing", "folder_id", f.ID)
			continue
		}
		f.Documents = []models.Document{}
		f.DocumentsLoaded = false
		if prev, ok := c.lookup(f.ID); ok && c.IsExpanded(f.ID) {
			f.Documents = prev.Documents
			f.DocumentsLoaded = prev.DocumentsLoaded
		}
		index[f.ID] = len(next)
		next = append(next, f)
	}

	for id := range c.expanded {
		if _, ok := index[id]; !ok {
			delete(c.expanded, id)
		}
	}
	c.folders = next
	c.index = index

	c.logger.Debug("folders loaded", "count", len(next), "expanded", len(c.expanded))

	var changes []docsysSvc.StatusChange
	for _, id := range c.Expanded() {
		_, ch, err := c.LoadDocuments(ctx, id)
		if err != nil {
			// Prior documents stay in place; the next refresh retries.
			c.logger.Warn("failed to reload expanded folder", "folder_id", id, "error", err)
			continue
		}
		changes = append(changes, ch...)
	}

	return c.Folders(), changes, nil
}

// LoadDocuments replaces exactly one folder's documents. Sibling folders are
// not touched and on error the folder keeps its previous list.
func (c *folderCache) LoadDocuments(ctx context.Context, folderID string) ([]models.Document, []docsysSvc.StatusChange, error) {
	if _, ok := c.index[folderID]; !ok {
		return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s is not in the folder list", folderID)}
	}

	id := folderID
	docs, err := c.gateway.ListDocuments(ctx, c.userID, &id)
	if err != nil {
		return nil, nil, err
	}
	if docs == nil {
		docs = []models.Document{}
	}

	i, ok := c.index[folderID]
	if !ok {
		return nil, nil, &domain.NotFoundError{Message: fmt.Sprintf("folder %s disappeared during reload", folderID)}
	}
	folder := &c.folders[i]
	changes := diffStatuses(folderID, folder.Documents, docs)
	folder.Documents = docs
	folder.DocumentsLoaded = true

	c.logger.Debug("documents loaded", "folder_id", folderID, "count", len(docs), "status_changes", len(changes))
	return copyDocuments(docs), changes, nil
}

// ApplyUpload delegates to the backend. The caller refreshes the cache.
func (c *folderCache) ApplyUpload(ctx context.Context, file *models.UploadFile, folderID *string) (*models.UploadResult, error) {
	return c.gateway.UploadDocument(ctx, c.userID, file, folderID)
}

// ApplyDelete delegates to the backend. The caller refreshes the cache.
func (c *folderCache) ApplyDelete(ctx context.Context, documentID string) error {
	return c.gateway.DeleteDocument(ctx, c.userID, documentID)
}

func (c *folderCache) Folders() []models.Folder {
	out := make([]models.Folder, len(c.folders))
	for i, f := range c.folders {
		f.Documents = copyDocuments(f.Documents)
		out[i] = f
	}
	return out
}

func (c *folderCache) Folder(folderID string) (models.Folder, bool) {
	f, ok := c.lookup(folderID)
	if !ok {
		return models.Folder{}, false
	}
	f.Documents = copyDocuments(f.Documents)
	return f, true
}

func (c *folderCache) FindFolderByName(name string) (models.Folder, bool) {
	for _, f := range c.folders {
		if f.Name == name {
			f.Documents = copyDocuments(f.Documents)
			return f, true
		}
	}
	return models.Folder{}, false
}

// Expand adds folderID to the expansion set. It returns false for folders
// that are not in the current list.
func (c *folderCache) Expand(folderID string) bool {
	if _, ok := c.index[folderID]; !ok {
		return false
	}
	c.expanded[folderID] = struct{}{}
	return true
}

func (c *folderCache) Collapse(folderID string) {
	delete(c.expanded, folderID)
}

func (c *folderCache) IsExpanded(folderID string) bool {
	_, ok := c.expanded[folderID]
	return ok
}

// Expanded returns the expanded folder IDs in folder-list order.
func (c *folderCache) Expanded() []string {
	ids := make([]string, 0, len(c.expanded))
	for _, f := range c.folders {
		if _, ok := c.expanded[f.ID]; ok {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

func (c *folderCache) lookup(folderID string) (models.Folder, bool) {
	i, ok := c.index[folderID]
	if !ok {
		return models.Folder{}, false
	}
	return c.folders[i], true
}

// diffStatuses reports documents present in both lists whose status moved.
func diffStatuses(folderID string, before, after []models.Document) []docsysSvc.StatusChange {
	if len(before) == 0 {
		return nil
	}
	prev := make(map[string]models.DocumentStatus, len(before))
	for _, d := range before {
		prev[d.ID] = d.Status
	}

	var changes []docsysSvc.StatusChange
	for _, d := range after {
		if old, ok := prev[d.ID]; ok && old != d.Status {
			changes = append(changes, docsysSvc.StatusChange{
				DocumentID: d.ID,
				FolderID:   folderID,
				From:       old,
				To:         d.Status,
			})
		}
	}
	return changes
}

func copyDocuments(docs []models.Document) []models.Document {
	out := make([]models.Document, len(docs))
	copy(out, docs)
	return out
}
