package docsystem

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"draftdesk/internal/domain"
	models "draftdesk/internal/domain/models/docsystem"
)

const testUserID = "00000000-0000-0000-0000-000000000001"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type uploadCall struct {
	FileName string
	FolderID *string
}

// fakeGateway is an in-memory backend. Document listings report the status
// held in statuses when one is set, so the two never disagree.
type fakeGateway struct {
	mu sync.Mutex

	folders    []models.Folder
	docs       map[string][]models.Document // folder ID -> documents
	statuses   map[string]models.DocumentStatus
	statusErrs map[string]error

	listFoldersErr error
	listDocsErrs   map[string]error
	uploadErr      error
	deleteErr      error
	queryResult    *models.DraftResult
	queryErr       error

	nextDocID int
	calls     map[string]int
	uploads   []uploadCall
	deletes   []string
	queries   []*models.QueryRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		docs:         make(map[string][]models.Document),
		statuses:     make(map[string]models.DocumentStatus),
		statusErrs:   make(map[string]error),
		listDocsErrs: make(map[string]error),
		calls:        make(map[string]int),
	}
}

func (g *fakeGateway) addFolder(id, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.folders = append(g.folders, models.Folder{ID: id, Name: name})
}

func (g *fakeGateway) removeFolder(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.folders[:0]
	for _, f := range g.folders {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	g.folders = kept
	delete(g.docs, id)
}

func (g *fakeGateway) addDocument(folderID, docID, name string, status models.DocumentStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fid := folderID
	g.docs[folderID] = append(g.docs[folderID], models.Document{
		ID:         docID,
		FileName:   name,
		FolderID:   &fid,
		Status:     status,
		UploadedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	g.statuses[docID] = status
}

func (g *fakeGateway) setStatus(docID string, status models.DocumentStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[docID] = status
	delete(g.statusErrs, docID)
}

func (g *fakeGateway) setStatusErr(docID string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusErrs[docID] = err
}

func (g *fakeGateway) callCount(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *fakeGateway) totalStatusCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for k, v := range g.calls {
		if strings.HasPrefix(k, "Status:") {
			n += v
		}
	}
	return n
}

func (g *fakeGateway) ListFolders(ctx context.Context, userID string) ([]models.Folder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["ListFolders"]++
	if g.listFoldersErr != nil {
		return nil, g.listFoldersErr
	}
	out := make([]models.Folder, len(g.folders))
	for i, f := range g.folders {
		f.DocumentCount = len(g.docs[f.ID])
		f.Documents = []models.Document{}
		out[i] = f
	}
	return out, nil
}

func (g *fakeGateway) ListDocuments(ctx context.Context, userID string, folderID *string) ([]models.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := ""
	if folderID != nil {
		key = *folderID
	}
	g.calls["ListDocuments:"+key]++
	if err := g.listDocsErrs[key]; err != nil {
		return nil, err
	}
	out := make([]models.Document, 0, len(g.docs[key]))
	for _, d := range g.docs[key] {
		if st, ok := g.statuses[d.ID]; ok {
			d.Status = st
		}
		out = append(out, d)
	}
	return out, nil
}

func (g *fakeGateway) UploadDocument(ctx context.Context, userID string, file *models.UploadFile, folderID *string) (*models.UploadResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Upload"]++
	g.uploads = append(g.uploads, uploadCall{FileName: file.Name, FolderID: folderID})
	if g.uploadErr != nil {
		return nil, g.uploadErr
	}

	g.nextDocID++
	docID := "uploaded-" + strconv.Itoa(g.nextDocID)
	if folderID != nil {
		fid := *folderID
		g.docs[fid] = append(g.docs[fid], models.Document{
			ID:       docID,
			FileName: file.Name,
			FolderID: &fid,
			Status:   models.StatusProcessing,
		})
		g.statuses[docID] = models.StatusProcessing
	}
	return &models.UploadResult{
		DocumentID: docID,
		FileName:   file.Name,
		Size:       file.Size(),
		FolderID:   folderID,
	}, nil
}

func (g *fakeGateway) DeleteDocument(ctx context.Context, userID, documentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Delete"]++
	g.deletes = append(g.deletes, documentID)
	if g.deleteErr != nil {
		return g.deleteErr
	}
	for fid, docs := range g.docs {
		kept := docs[:0]
		for _, d := range docs {
			if d.ID != documentID {
				kept = append(kept, d)
			}
		}
		g.docs[fid] = kept
	}
	return nil
}

func (g *fakeGateway) GetDocumentStatus(ctx context.Context, userID, documentID string) (models.DocumentStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Status:"+documentID]++
	if err := g.statusErrs[documentID]; err != nil {
		return "", err
	}
	st, ok := g.statuses[documentID]
	if !ok {
		return "", &domain.NotFoundError{Message: "document not found"}
	}
	return st, nil
}

func (g *fakeGateway) Query(ctx context.Context, userID string, req *models.QueryRequest) (*models.DraftResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls["Query"]++
	g.queries = append(g.queries, req)
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	return g.queryResult, nil
}

// recorder collects synchronizer events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
